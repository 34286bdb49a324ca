// Package main implements the entry point for the advertisement board API
// server: users register and authenticate, then create, browse, update and
// delete classified listings.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/adboard/adboard-api/internal/api"
	"github.com/adboard/adboard-api/internal/config"
	"github.com/adboard/adboard-api/internal/platform/logger"
	"github.com/adboard/adboard-api/internal/platform/postgres"
	"github.com/adboard/adboard-api/internal/service/auth"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// run loads configuration, sets up logging, opens the database, applies
// migrations, wires the dependencies and starts the HTTP server. It
// returns only after a graceful shutdown or a fatal startup error.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := openDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("failed to close database", "error", err)
		}
	}()

	if err := runMigrations(db, appLogger); err != nil {
		return err
	}

	tokenService, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to create token service: %w", err)
	}
	passwordHasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	renderer, err := api.NewRenderer(appLogger)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	sessions := postgres.NewSessionFactory(db, appLogger)
	pipeline := api.NewPipeline(sessions, tokenService, appLogger)
	authHandler := api.NewAuthHandler(tokenService, passwordHasher, appLogger)
	listingHandler := api.NewListingHandler(renderer, appLogger)

	router := api.NewRouter(pipeline, authHandler, listingHandler, renderer)

	return startHTTPServer(context.Background(), cfg.Server, router, appLogger)
}

// openDatabase opens the connection pool and verifies connectivity.
func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("database connection established")
	return db, nil
}
