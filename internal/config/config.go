package config

import "time"

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

var globalConfig *Config

func Global() *Config {
	return globalConfig
}

func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

// Config configures the task resource server.
type Config struct {
	Env      string `env:"ENV" env-required:"true"`
	HTTP     HTTPConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	Redis    RedisConfig
}

type HTTPConfig struct {
	Host            string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `env:"HTTP_PORT" env-default:"8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type StorageConfig struct {
	Driver string `env:"STORAGE_DRIVER" env-default:"memory"`
	// Seed pre-populates the memory driver with a sample task.
	Seed bool `env:"STORAGE_SEED" env-default:"false"`
}

type PostgresConfig struct {
	Host           string        `env:"POSTGRES_HOST"`
	Port           int           `env:"POSTGRES_PORT" env-default:"5432"`
	Username       string        `env:"POSTGRES_USERNAME"`
	Password       string        `env:"POSTGRES_PASSWORD"`
	Database       string        `env:"POSTGRES_DATABASE"`
	SSLMode        string        `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	ConnectTimeout time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout    time.Duration `env:"POSTGRES_PING_TIMEOUT" env-default:"10s"`
}

// RedisConfig enables the task list cache when URL is set.
type RedisConfig struct {
	URL         string        `env:"REDIS_URL"`
	TTL         time.Duration `env:"REDIS_TTL" env-default:"30s"`
	PingTimeout time.Duration `env:"REDIS_PING_TIMEOUT" env-default:"5s"`
}

// ClientConfig configures the taskctl client.
type ClientConfig struct {
	Env     string        `env:"ENV" env-default:"local"`
	BaseURL string        `env:"TASKS_BASE_URL" env-default:"http://localhost:8080"`
	Timeout time.Duration `env:"TASKS_TIMEOUT" env-default:"10s"`
}
