package cmd

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/autotax/internal/config"
	"github.com/stwalsh4118/autotax/internal/database"
	"github.com/stwalsh4118/autotax/internal/logger"
	"github.com/stwalsh4118/autotax/internal/repository"
	"github.com/stwalsh4118/autotax/internal/services"
)

// openCatalog loads the catalog from the configured source. For the
// postgres source the open pool is returned as well and the caller must
// close it; for the file source the returned *database.Database is nil.
func openCatalog(ctx context.Context, cfg *config.Config, log *logger.Logger) (*services.TaxCatalog, *database.Database, error) {
	var (
		source repository.VehicleSource
		db     *database.Database
	)

	switch cfg.Source.Kind {
	case config.SourceFile:
		source = repository.NewFileVehicleSource(cfg.Source.FilePath)
		log.Info("Using file vehicle source", map[string]interface{}{
			"path": cfg.Source.FilePath,
		})
	case config.SourcePostgres:
		var err error
		db, err = database.NewPostgresPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		source = repository.NewPostgresVehicleSource(db)
		log.Info("Using postgres vehicle source", map[string]interface{}{
			"host":     cfg.Database.Host,
			"database": cfg.Database.Name,
		})
	default:
		return nil, nil, fmt.Errorf("unknown vehicle source %q", cfg.Source.Kind)
	}

	catalog, err := services.LoadCatalog(ctx, source, log.WithComponent("catalog"))
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, nil, err
	}

	return catalog, db, nil
}
