package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Config struct {
	URL string `env:"URL, required"`
	// MaxConns is small by default: the replica serves one budget and
	// the gue workers are the only writers.
	MaxConns       int32  `env:"MAX_CONNS, default=10"`
	MigrationsPath string `env:"MIGRATIONS_PATH, default=file://./migrations"`
}

func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	pgcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}

	pgcfg.MaxConns = cfg.MaxConns

	pool, err := pgxpool.NewWithConfig(ctx, pgcfg)
	if err != nil {
		return nil, err
	}

	return pool, nil
}
