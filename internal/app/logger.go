package app

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-sync/internal/config"
	"github.com/adanyl0v/go-todo-sync/internal/logging"
)

var globalLogger zerolog.Logger

func InitDefaultLogger() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.TimestampFieldName = "timestamp"

	globalLogger = zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Logger()

	globalLogger.Info().Msg("initialized default logger")
}

func MustInitApplicationLogger() {
	env := config.Global().Env

	level, w, err := logging.Output(env, os.Stdout)
	if err != nil {
		globalLogger.Error().
			Str("env", env).
			Msg("unknown env")
		panic(err)
	}
	zerolog.SetGlobalLevel(level)

	globalLogger = globalLogger.Output(w)
	globalLogger.Info().Msg("initialized application logger")
}
