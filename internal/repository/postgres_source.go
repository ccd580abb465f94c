package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/autotax/internal/database"
	"github.com/stwalsh4118/autotax/internal/models"
)

// postgresVehicleSource loads the catalog from the vehicles table.
type postgresVehicleSource struct {
	db *database.Database
}

// NewPostgresVehicleSource creates a VehicleSource backed by PostgreSQL.
func NewPostgresVehicleSource(db *database.Database) VehicleSource {
	return &postgresVehicleSource{
		db: db,
	}
}

// vehicleRow mirrors one row of the vehicles table.
type vehicleRow struct {
	Brand     string  `db:"brand"`
	Line      string  `db:"line"`
	ModelYear string  `db:"model_year"`
	ImagePath string  `db:"image_path"`
	Price     float64 `db:"price"`
}

// Load reads every vehicle ordered by its catalog position.
// The whole result set is collected before returning, so a failure midway
// yields no records.
func (s *postgresVehicleSource) Load(ctx context.Context) ([]models.Vehicle, error) {
	query := `
		SELECT
			brand,
			line,
			model_year,
			image_path,
			price
		FROM vehicles
		ORDER BY position
	`

	rows, err := s.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query vehicles: %w", ErrSourceUnavailable, err)
	}

	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[vehicleRow])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to scan vehicle rows: %w", ErrMalformedSource, err)
	}

	vehicles := make([]models.Vehicle, 0, len(records))
	for _, r := range records {
		vehicles = append(vehicles, models.NewVehicle(r.Brand, r.Line, r.ModelYear, r.Price, r.ImagePath))
	}

	return vehicles, nil
}

// ReplaceVehicles overwrites the vehicles table with vehicles, numbering
// positions from 0 in slice order. The swap happens in one transaction so
// readers see either the old catalog or the new one.
func ReplaceVehicles(ctx context.Context, db *database.Database, vehicles []models.Vehicle) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", ErrSourceUnavailable, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM vehicles"); err != nil {
		return fmt.Errorf("failed to clear vehicles: %w", err)
	}

	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"vehicles"},
		[]string{"position", "brand", "line", "model_year", "price", "image_path"},
		pgx.CopyFromSlice(len(vehicles), func(i int) ([]any, error) {
			v := vehicles[i]
			return []any{i, v.Brand(), v.Line(), v.ModelYear(), v.Price(), v.ImagePath()}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to copy vehicles: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit vehicles: %w", err)
	}
	return nil
}
