package config

import (
	"context"

	"github.com/sethvargo/go-envconfig"

	"github.com/mishamsk/drebedengi-go/drebedengi"
	"github.com/mishamsk/drebedengi-go/pkg/postgres"
	"github.com/mishamsk/drebedengi-go/syncer"
)

type Config struct {
	Debug      bool              `env:"APP_DEBUG"`
	DB         postgres.Config   `env:",prefix=DB_"`
	Drebedengi drebedengi.Config `env:",prefix=DREBEDENGI_"`
	Syncer     syncer.Config     `env:",prefix=SYNCER_"`
}

func ParseEnv(ctx context.Context) (Config, error) {
	cfg := Config{}
	return cfg, envconfig.Process(ctx, &cfg)
}
