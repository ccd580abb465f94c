package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stwalsh4118/autotax/internal/logger"
	"github.com/stwalsh4118/autotax/internal/models"
	"github.com/stwalsh4118/autotax/internal/repository"
)

// Catalog-level errors
var (
	ErrLoad             = errors.New("failed to load vehicle catalog")
	ErrNavigation       = errors.New("cursor at catalog boundary")
	ErrInvalidModelYear = errors.New("invalid model year")
	ErrEmptyCatalog     = errors.New("catalog is empty")
)

// Seed for FindOldest: only model years strictly below it can match.
const oldestYearSeed = 2050

// TaxCatalog holds the loaded vehicles and the cursor marking the current one.
//
// A TaxCatalog is not safe for concurrent use. Callers sharing one instance
// must serialise access themselves.
//
// First and Last refuse to run when the cursor already sits on that end
// instead of acting as no-ops.
type TaxCatalog struct {
	log      *logger.Logger
	vehicles []models.Vehicle
	cursor   int
}

// LoadCatalog reads every record from source and returns a catalog with the
// cursor on the first vehicle. Any source failure is returned wrapped in
// ErrLoad and no catalog is produced.
func LoadCatalog(ctx context.Context, source repository.VehicleSource, log *logger.Logger) (*TaxCatalog, error) {
	vehicles, err := source.Load(ctx)
	if err != nil {
		log.Error("Failed to load vehicle catalog", err, nil)
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	log.Info("Vehicle catalog loaded", map[string]interface{}{
		"count": len(vehicles),
	})

	return NewTaxCatalog(vehicles, log), nil
}

// NewTaxCatalog builds a catalog over a private copy of vehicles.
func NewTaxCatalog(vehicles []models.Vehicle, log *logger.Logger) *TaxCatalog {
	owned := make([]models.Vehicle, len(vehicles))
	copy(owned, vehicles)

	return &TaxCatalog{
		log:      log,
		vehicles: owned,
		cursor:   0,
	}
}

// Len returns the number of vehicles in the catalog.
func (c *TaxCatalog) Len() int {
	return len(c.vehicles)
}

// Position returns the cursor index.
func (c *TaxCatalog) Position() int {
	return c.cursor
}

// Vehicles returns a copy of the catalog in load order.
func (c *TaxCatalog) Vehicles() []models.Vehicle {
	out := make([]models.Vehicle, len(c.vehicles))
	copy(out, c.vehicles)
	return out
}

// ComputeTax returns the payable tax for v. See ComputeTax.
func (c *TaxCatalog) ComputeTax(v models.Vehicle, d Discounts) float64 {
	return ComputeTax(v, d)
}

// CurrentTax returns the payable tax for the vehicle under the cursor.
func (c *TaxCatalog) CurrentTax(d Discounts) (float64, error) {
	v, err := c.Current()
	if err != nil {
		return 0, err
	}
	return ComputeTax(v, d), nil
}

// Current returns the vehicle under the cursor without moving it.
func (c *TaxCatalog) Current() (models.Vehicle, error) {
	if len(c.vehicles) == 0 {
		return models.Vehicle{}, ErrEmptyCatalog
	}
	return c.vehicles[c.cursor], nil
}

// First moves the cursor to the first vehicle.
// It fails with ErrNavigation when the cursor is already there.
func (c *TaxCatalog) First() (models.Vehicle, error) {
	if len(c.vehicles) == 0 {
		return models.Vehicle{}, ErrEmptyCatalog
	}
	if c.cursor == 0 {
		return models.Vehicle{}, c.refuse("first", "already at the first vehicle")
	}
	return c.moveTo(0), nil
}

// Previous moves the cursor one vehicle back.
func (c *TaxCatalog) Previous() (models.Vehicle, error) {
	if len(c.vehicles) == 0 {
		return models.Vehicle{}, ErrEmptyCatalog
	}
	if c.cursor == 0 {
		return models.Vehicle{}, c.refuse("previous", "at the first vehicle")
	}
	return c.moveTo(c.cursor - 1), nil
}

// Next moves the cursor one vehicle forward.
func (c *TaxCatalog) Next() (models.Vehicle, error) {
	if len(c.vehicles) == 0 {
		return models.Vehicle{}, ErrEmptyCatalog
	}
	if c.cursor == len(c.vehicles)-1 {
		return models.Vehicle{}, c.refuse("next", "at the last vehicle")
	}
	return c.moveTo(c.cursor + 1), nil
}

// Last moves the cursor to the last vehicle.
// It fails with ErrNavigation when the cursor is already there.
func (c *TaxCatalog) Last() (models.Vehicle, error) {
	if len(c.vehicles) == 0 {
		return models.Vehicle{}, ErrEmptyCatalog
	}
	if c.cursor == len(c.vehicles)-1 {
		return models.Vehicle{}, c.refuse("last", "already at the last vehicle")
	}
	return c.moveTo(len(c.vehicles) - 1), nil
}

func (c *TaxCatalog) moveTo(pos int) models.Vehicle {
	c.log.Debug("Cursor moved", map[string]interface{}{
		"from": c.cursor,
		"to":   pos,
	})
	c.cursor = pos
	return c.vehicles[pos]
}

func (c *TaxCatalog) refuse(op, reason string) error {
	c.log.Warn("Navigation refused", map[string]interface{}{
		"operation": op,
		"position":  c.cursor,
		"count":     len(c.vehicles),
	})
	return fmt.Errorf("%w: %s", ErrNavigation, reason)
}

// FindMostExpensive returns the vehicle with the highest strictly positive
// price and moves the cursor to it. The first of several equal maxima wins.
func (c *TaxCatalog) FindMostExpensive() (models.Vehicle, bool) {
	var found models.Vehicle
	ok := false
	highest := 0.0

	for i, v := range c.vehicles {
		if v.Price() > highest {
			highest = v.Price()
			found = v
			ok = true
			c.cursor = i
		}
	}

	c.log.Debug("Most expensive vehicle search", map[string]interface{}{
		"found":    ok,
		"position": c.cursor,
	})
	return found, ok
}

// FindOldest returns the vehicle with the lowest model year below 2050 and
// moves the cursor to it. The first of several equal minima wins.
// A model year that does not parse fails the whole search with
// ErrInvalidModelYear; the cursor keeps any move made before the bad record.
func (c *TaxCatalog) FindOldest() (models.Vehicle, bool, error) {
	var found models.Vehicle
	ok := false
	oldest := oldestYearSeed

	for i, v := range c.vehicles {
		year, err := v.ParseModelYear()
		if err != nil {
			c.log.Warn("Unparseable model year", map[string]interface{}{
				"position":   i,
				"model_year": v.ModelYear(),
			})
			return models.Vehicle{}, false, fmt.Errorf("%w: %w", ErrInvalidModelYear, err)
		}
		if year < oldest {
			oldest = year
			found = v
			ok = true
			c.cursor = i
		}
	}

	c.log.Debug("Oldest vehicle search", map[string]interface{}{
		"found":    ok,
		"position": c.cursor,
	})
	return found, ok, nil
}

// FindByBrand returns the last vehicle whose brand equals brand, ignoring
// case. A later match replaces an earlier one. The cursor does not move.
func (c *TaxCatalog) FindByBrand(brand string) (models.Vehicle, bool) {
	return c.findLast("brand", brand, models.Vehicle.Brand)
}

// FindByLine returns the last vehicle whose line equals line, ignoring case.
// A later match replaces an earlier one. The cursor does not move.
func (c *TaxCatalog) FindByLine(line string) (models.Vehicle, bool) {
	return c.findLast("line", line, models.Vehicle.Line)
}

func (c *TaxCatalog) findLast(field, want string, attr func(models.Vehicle) string) (models.Vehicle, bool) {
	var found models.Vehicle
	ok := false

	if want == "" {
		return found, false
	}

	for _, v := range c.vehicles {
		if strings.EqualFold(want, attr(v)) {
			found = v
			ok = true
		}
	}

	c.log.Debug("Vehicle search", map[string]interface{}{
		"field": field,
		"query": want,
		"found": ok,
	})
	return found, ok
}

// AveragePrice returns the arithmetic mean of all prices.
// It fails with ErrEmptyCatalog when there is nothing to average.
func (c *TaxCatalog) AveragePrice() (float64, error) {
	if len(c.vehicles) == 0 {
		return 0, ErrEmptyCatalog
	}

	sum := 0.0
	for _, v := range c.vehicles {
		sum += v.Price()
	}
	return sum / float64(len(c.vehicles)), nil
}
