package repository

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/stwalsh4118/autotax/internal/models"
)

// Number of comma-separated fields in a record line:
// brand, line, model year, price, image path.
const recordFieldCount = 5

// fileVehicleSource reads the line-oriented vehicle file.
type fileVehicleSource struct {
	path string
}

// NewFileVehicleSource creates a VehicleSource backed by the file at path.
func NewFileVehicleSource(path string) VehicleSource {
	return &fileVehicleSource{path: path}
}

// Load opens the file and parses it with ParseVehicles.
func (s *fileVehicleSource) Load(ctx context.Context) ([]models.Vehicle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	defer f.Close()

	vehicles, err := ParseVehicles(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return vehicles, nil
}

// ParseVehicles reads a count line followed by exactly that many records.
//
//	<n>
//	<brand>,<line>,<modelYear>,<price>,<imagePath>
//
// Embedded commas are not supported. Anything after the n-th record is ignored.
func ParseVehicles(r io.Reader) ([]models.Vehicle, error) {
	scanner := bufio.NewScanner(r)
	lineNo := 0

	nextLine := func() (string, bool) {
		if !scanner.Scan() {
			return "", false
		}
		lineNo++
		return strings.TrimSuffix(scanner.Text(), "\r"), true
	}

	header, ok := nextLine()
	if !ok {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		}
		return nil, fmt.Errorf("%w: missing record count", ErrMalformedSource)
	}

	count, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil {
		return nil, fmt.Errorf("%w: line 1: record count %q is not an integer", ErrMalformedSource, header)
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: line 1: record count %d is negative", ErrMalformedSource, count)
	}

	vehicles := make([]models.Vehicle, 0, count)
	for i := 0; i < count; i++ {
		text, ok := nextLine()
		if !ok {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
			}
			return nil, fmt.Errorf("%w: declared %d records, found %d", ErrMalformedSource, count, i)
		}

		vehicle, err := parseRecord(text)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedSource, lineNo, err)
		}
		vehicles = append(vehicles, vehicle)
	}

	return vehicles, nil
}

// parseRecord converts one comma-separated record line into a vehicle.
func parseRecord(text string) (models.Vehicle, error) {
	fields := strings.Split(text, ",")
	if len(fields) != recordFieldCount {
		return models.Vehicle{}, fmt.Errorf("expected %d fields, got %d", recordFieldCount, len(fields))
	}

	price, err := parsePrice(fields[3])
	if err != nil {
		return models.Vehicle{}, err
	}

	return models.NewVehicle(fields[0], fields[1], fields[2], price, fields[4]), nil
}

// parsePrice parses a price literal. NaN and infinities are rejected.
func parsePrice(raw string) (float64, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("price %q is not a number", raw)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("price %q is not a finite number", raw)
	}
	return price, nil
}
