// Package app wires configuration, logging, metrics and the selected store
// into a ready Engine for the CLI commands and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"go.uber.org/zap"

	"kloza/internal/config"
	"kloza/internal/db"
	"kloza/internal/engine"
	"kloza/internal/logging"
	"kloza/internal/metrics"
	"kloza/internal/migrate"
	"kloza/internal/repo"
	"kloza/internal/server"
)

type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Store   repo.Repo
	Engine  engine.Engine
}

// Open builds an App from cfg. The store schema (tables or indexes) is brought
// up to date before Open returns.
func Open(ctx context.Context, workspace string, cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	store, err := OpenStore(ctx, workspace, cfg.Store)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	logger.Debug("store ready", zap.String("driver", cfg.Store.Driver))
	m := metrics.New()
	return &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: m,
		Store:   store,
		Engine:  engine.New(store, logger, m),
	}, nil
}

// OpenStore connects to the configured driver and applies its migrations.
func OpenStore(ctx context.Context, workspace string, cfg config.Store) (repo.Repo, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		conn, err := db.OpenSQLite(SQLitePath(workspace, cfg.SQLite.Path))
		if err != nil {
			return nil, err
		}
		if err := migrate.Migrate(conn); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		return repo.SQLite{DB: conn}, nil
	case config.DriverMongo:
		client, database, err := db.ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		if err := migrate.EnsureMongoIndexes(ctx, database); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		return repo.Mongo{Client: client, DB: database}, nil
	case config.DriverPostgres:
		pool, err := db.ConnectPostgres(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		if err := migrate.MigratePostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return repo.Postgres{Pool: pool}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// SQLitePath resolves a relative database path against the workspace.
func SQLitePath(workspace, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, path)
}

// Handler returns the HTTP API configured from the server section.
func (a *App) Handler() (http.Handler, error) {
	return server.New(server.Config{
		Engine:      a.Engine,
		BasePath:    a.Config.Server.BasePath,
		Development: a.Config.Server.Development(),
		Auth:        server.AuthConfig{JWTSecret: a.Config.Auth.JWTSecret},
		RateLimit:   a.Config.Server.RateLimit,
		Logger:      a.Logger,
		Metrics:     a.Metrics,
	})
}

// Close releases the store and flushes the logger.
func (a *App) Close(ctx context.Context) error {
	err := a.Store.Close(ctx)
	_ = a.Logger.Sync()
	return err
}
