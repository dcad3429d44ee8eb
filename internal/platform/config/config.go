// Package config carga la configuración del servicio desde el entorno.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	// DBDSN activa el storage Postgres. Si viene vacío y SQLitePath también,
	// el servicio corre in-memory (modo dev).
	DBDSN      string `env:"DB_DSN"`
	SQLitePath string `env:"SQLITE_PATH"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	AppName   string `env:"APP_NAME" envDefault:"adoption-center"`
}

func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	return c, nil
}
