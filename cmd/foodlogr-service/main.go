package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foodlogr/backend/internal/api"
	"github.com/foodlogr/backend/internal/auth"
	"github.com/foodlogr/backend/internal/config"
	"github.com/foodlogr/backend/internal/mcp"
	"github.com/foodlogr/backend/internal/platform/logger"
	"github.com/foodlogr/backend/internal/services"
	"github.com/foodlogr/backend/internal/store"
	"github.com/foodlogr/backend/internal/store/postgres"
	"github.com/foodlogr/backend/internal/store/sqlite"
)

func main() {
	log := logger.New("foodlogr-service")

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Msg("Food log service starting…")

	// -------- Storage layer -----------------
	db, st, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Storage adapter unavailable")
	}
	defer func() { _ = db.Close() }()

	// -------- MCP tool server ---------------
	var mcpHandler http.Handler
	if cfg.MCPEnabled {
		authSvc := services.NewAuthService(st)
		mcpSrv := mcp.NewServer(services.NewFoodLogService(st), services.NewReportService(st))
		mcpHandler = mcp.NewHTTPHandler(mcpSrv, auth.NewAuthorizer(authSvc))
	}

	// -------- Router & Server --------------
	router := api.NewRouter(st, log, api.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		BaseURL:        cfg.BaseURL,
		MCPHandler:     mcpHandler,
	})
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server…")
	ctxShutdown, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

func openStore(cfg *config.Config) (*sql.DB, store.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Bootstrap(context.Background(), db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return db, postgres.New(db), nil
	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return db, sqlite.New(db), nil
	default:
		return nil, nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}
