package repository

import (
	"context"
	"errors"

	"github.com/stwalsh4118/autotax/internal/models"
)

// Source-level errors
var (
	ErrSourceUnavailable = errors.New("vehicle source unavailable")
	ErrMalformedSource   = errors.New("malformed vehicle source")
)

// VehicleSource defines the interface for bulk-loading catalog records.
type VehicleSource interface {
	// Load returns every record of the source in source order.
	// Returns an error wrapping ErrSourceUnavailable when the source cannot be read,
	// or ErrMalformedSource when any declared record is invalid.
	// A failed load never returns a partial slice.
	Load(ctx context.Context) ([]models.Vehicle, error)
}
