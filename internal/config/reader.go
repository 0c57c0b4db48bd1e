package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Reader interface {
	Read() (*Config, error)
}

type EnvReader struct{}

func NewEnvReader() EnvReader {
	return EnvReader{}
}

func (EnvReader) Read() (*Config, error) {
	cfg := new(Config)
	err := cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, err
	}

	err = cfg.validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// ReadClientEnv reads the taskctl configuration.
func ReadClientEnv() (*ClientConfig, error) {
	cfg := new(ClientConfig)
	err := cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) validate() error {
	switch cfg.Env {
	case EnvDev, EnvProd, EnvLocal:
	default:
		return fmt.Errorf("unknown env: %s", cfg.Env)
	}

	switch cfg.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		pg := cfg.Postgres
		if pg.Host == "" || pg.Username == "" || pg.Database == "" {
			return fmt.Errorf("postgres storage requires POSTGRES_HOST, POSTGRES_USERNAME and POSTGRES_DATABASE")
		}
	default:
		return fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}

	return nil
}
