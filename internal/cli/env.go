// Package cli holds the civicctl subcommands.
package cli

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/civicvoice/complaint-service/internal/auth"
	"github.com/civicvoice/complaint-service/internal/config"
	"github.com/civicvoice/complaint-service/internal/observability"
	"github.com/civicvoice/complaint-service/internal/persistence"
)

// errNoDatabase is returned by commands that need Postgres when POSTGRES_DSN is empty.
var errNoDatabase = errors.New("POSTGRES_DSN is not set")

type env struct {
	cfg    *config.Config
	logger *zap.Logger
	pg     *persistence.Postgres
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// openEnv loads configuration and connects to Postgres.
func openEnv(ctx context.Context) (*env, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Postgres.DSN == "" {
		return nil, errNoDatabase
	}
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, pg: pg}, nil
}

func (e *env) close() {
	e.pg.Close()
	_ = e.logger.Sync()
}

func (e *env) tokens() *auth.TokenManager {
	return auth.NewTokenManager(e.cfg.Auth.JWTSecret, e.cfg.Auth.AccessTokenTTLMinutes)
}
