package config

import (
	"testing"
	"time"
)

func TestEnvReaderDefaults(t *testing.T) {
	t.Setenv("ENV", EnvDev)

	cfg, err := NewEnvReader().Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if cfg.Storage.Driver != StorageMemory {
		t.Fatalf("expected memory driver, got %q", cfg.Storage.Driver)
	}
	if cfg.HTTP.Port != "8080" || cfg.HTTP.ShutdownTimeout != 5*time.Second {
		t.Fatalf("unexpected http config %+v", cfg.HTTP)
	}
	if cfg.Redis.URL != "" || cfg.Redis.TTL != 30*time.Second {
		t.Fatalf("unexpected redis config %+v", cfg.Redis)
	}
}

func TestEnvReaderPostgres(t *testing.T) {
	t.Setenv("ENV", EnvProd)
	t.Setenv("STORAGE_DRIVER", StoragePostgres)

	if _, err := NewEnvReader().Read(); err == nil {
		t.Fatal("expected error without postgres settings")
	}

	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_USERNAME", "todo")
	t.Setenv("POSTGRES_DATABASE", "todo")
	cfg, err := NewEnvReader().Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if cfg.Postgres.Port != 5432 || cfg.Postgres.SSLMode != "disable" {
		t.Fatalf("unexpected postgres config %+v", cfg.Postgres)
	}
}

func TestEnvReaderRejectsUnknownValues(t *testing.T) {
	t.Setenv("ENV", "staging")
	if _, err := NewEnvReader().Read(); err == nil {
		t.Fatal("expected error for unknown env")
	}

	t.Setenv("ENV", EnvLocal)
	t.Setenv("STORAGE_DRIVER", "sqlite")
	if _, err := NewEnvReader().Read(); err == nil {
		t.Fatal("expected error for unknown storage driver")
	}
}

func TestReadClientEnv(t *testing.T) {
	t.Setenv("TASKS_BASE_URL", "http://tasks:9000")
	t.Setenv("TASKS_TIMEOUT", "2s")

	cfg, err := ReadClientEnv()
	if err != nil {
		t.Fatalf("ReadClientEnv: %v", err)
	}
	if cfg.BaseURL != "http://tasks:9000" || cfg.Timeout != 2*time.Second {
		t.Fatalf("unexpected client config %+v", cfg)
	}
}
