package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/stwalsh4118/autotax/internal/config"
	"github.com/stwalsh4118/autotax/internal/database"
	"github.com/stwalsh4118/autotax/internal/handlers"
	"github.com/stwalsh4118/autotax/internal/logger"
	"github.com/stwalsh4118/autotax/internal/middleware"
	"github.com/stwalsh4118/autotax/internal/services"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog over HTTP",
		Long:  "Load the catalog once and serve navigation, search and tax endpoints until interrupted.",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().String("port", "", "HTTP listen port (env PORT)")
	return serveCmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(cfg.Server.Env)
	log.Info("Starting autotax API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
		"source":      cfg.Source.Kind,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog, db, err := openCatalog(ctx, cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           newRouter(cfg, log, catalog, db),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
		return err
	}

	log.Info("Server exited", nil)
	return nil
}

// newRouter wires middleware and routes around catalog.
// Middleware order: RequestID -> Logger -> Recovery -> CORS.
func newRouter(cfg *config.Config, log *logger.Logger, catalog *services.TaxCatalog, db *database.Database) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS))

	vehicleHandler := handlers.NewVehicleHandler(catalog)

	var pinger handlers.Pinger
	if db != nil {
		pinger = db
	}
	healthHandler := handlers.NewHealthHandler(vehicleHandler, pinger, cfg.Server.Env)

	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)

	v1 := router.Group("/api/v1")
	v1.GET("/info", healthHandler.Info)
	vehicleHandler.RegisterRoutes(v1)

	return router
}
