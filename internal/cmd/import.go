package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stwalsh4118/autotax/internal/config"
	"github.com/stwalsh4118/autotax/internal/database"
	"github.com/stwalsh4118/autotax/internal/logger"
	"github.com/stwalsh4118/autotax/internal/repository"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Copy a vehicle file into PostgreSQL",
		Long: `Parse the vehicle file given by --file and replace the contents of the
vehicles table with it, creating the table when needed. The postgres
source then serves the same catalog in the same order.`,
		Args: cobra.NoArgs,
		RunE: runImport,
	}
}

func runImport(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Database.Validate(); err != nil {
		return fmt.Errorf("import needs a database: %w", err)
	}

	log := logger.NewWithWriter(cfg.Server.Env, cmd.ErrOrStderr())
	ctx := cmd.Context()

	vehicles, err := repository.NewFileVehicleSource(cfg.Source.FilePath).Load(ctx)
	if err != nil {
		return err
	}

	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := repository.ReplaceVehicles(ctx, db, vehicles); err != nil {
		return err
	}

	log.Info("Vehicles imported", map[string]interface{}{
		"path":     cfg.Source.FilePath,
		"count":    len(vehicles),
		"database": cfg.Database.Name,
	})
	return nil
}
