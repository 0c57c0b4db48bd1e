package app

import (
	"context"
	"net"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adanyl0v/go-todo-sync/internal/config"
)

var globalPostgresPool *pgxpool.Pool

// MustConnectPostgres connects to postgres when it is the configured
// storage driver.
func MustConnectPostgres() {
	cfg := config.Global()
	if cfg.Storage.Driver != config.StoragePostgres {
		return
	}

	pgCfg := cfg.Postgres
	poolCfg, err := pgxpool.ParseConfig(postgresURL(pgCfg))
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to parse postgres config")
		panic(err)
	}
	poolCfg.ConnConfig.ConnectTimeout = pgCfg.ConnectTimeout

	globalPostgresPool, err = pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to connect to postgres")
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pgCfg.PingTimeout)
	defer cancel()

	err = globalPostgresPool.Ping(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to ping postgres")
		panic(err)
	}
	globalLogger.Info().
		Str("host", pgCfg.Host).
		Int("port", pgCfg.Port).
		Msg("connected to postgres")
}

func DisconnectPostgres() {
	if globalPostgresPool == nil {
		return
	}
	globalPostgresPool.Close()
	globalLogger.Info().Msg("disconnected from postgres")
}

// postgresURL escapes the credentials, so passwords may hold any character.
func postgresURL(cfg config.PostgresConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.Database,
		RawQuery: url.Values{"sslmode": {cfg.SSLMode}}.Encode(),
	}
	return u.String()
}
