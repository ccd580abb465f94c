package repository

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/autotax/internal/config"
	"github.com/stwalsh4118/autotax/internal/database"
	"github.com/stwalsh4118/autotax/internal/models"
)

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// setupTestDatabase connects to the integration database and resets the vehicles table.
func setupTestDatabase(t *testing.T) *database.Database {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if os.Getenv("DB_PASSWORD") == "" {
		t.Skip("Skipping integration test: DB_PASSWORD not set")
	}

	cfg := config.DatabaseConfig{
		Host:     getEnvOrDefault("DB_HOST", "localhost"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		Name:     getEnvOrDefault("DB_NAME", "autotax"),
		User:     getEnvOrDefault("DB_USER", "postgres"),
		Password: os.Getenv("DB_PASSWORD"),
		PoolMin:  1,
		PoolMax:  2,
	}

	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg)
	require.NoError(t, err, "Failed to connect to test database")
	t.Cleanup(db.Close)

	require.NoError(t, db.EnsureSchema(ctx))
	_, err = db.Pool.Exec(ctx, "TRUNCATE vehicles")
	require.NoError(t, err)

	return db
}

func TestPostgresVehicleSource_LoadOrdersByPosition(t *testing.T) {
	db := setupTestDatabase(t)
	ctx := context.Background()

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO vehicles (position, brand, line, model_year, price, image_path) VALUES
			(2, 'Toyota', 'Hilux', '2016', 120000000, 'img/hilux.jpg'),
			(0, 'Chevrolet', 'Spark', '2012', 18500000, 'img/spark.jpg'),
			(1, 'Mazda', '3', '2018', 65000000, 'img/mazda3.jpg')
	`)
	require.NoError(t, err)

	vehicles, err := NewPostgresVehicleSource(db).Load(ctx)

	require.NoError(t, err)
	require.Len(t, vehicles, 3)
	assert.Equal(t, "Chevrolet", vehicles[0].Brand())
	assert.Equal(t, "Mazda", vehicles[1].Brand())
	assert.Equal(t, "Toyota", vehicles[2].Brand())
	assert.Equal(t, 120000000.0, vehicles[2].Price())
	assert.Equal(t, "img/hilux.jpg", vehicles[2].ImagePath())
}

func TestPostgresVehicleSource_EmptyTable(t *testing.T) {
	db := setupTestDatabase(t)

	vehicles, err := NewPostgresVehicleSource(db).Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, vehicles)
}

func TestPostgresVehicleSource_CanceledContext(t *testing.T) {
	db := setupTestDatabase(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	vehicles, err := NewPostgresVehicleSource(db).Load(ctx)

	assert.Nil(t, vehicles)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestReplaceVehicles_RoundTrip(t *testing.T) {
	db := setupTestDatabase(t)
	ctx := context.Background()

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO vehicles (position, brand, line, model_year, price) VALUES
			(0, 'Stale', 'Row', '1999', 1)
	`)
	require.NoError(t, err)

	want := []models.Vehicle{
		models.NewVehicle("Renault", "Logan", "2015", 35000000, "img/logan.jpg"),
		models.NewVehicle("Kia", "Picanto", "20x0", 21000000, ""),
	}
	require.NoError(t, ReplaceVehicles(ctx, db, want))

	got, err := NewPostgresVehicleSource(db).Load(ctx)

	require.NoError(t, err)
	assert.Equal(t, want, got)
}
