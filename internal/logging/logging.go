package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-sync/internal/config"
)

// Output returns the log level and the writer used in env. Local runs
// get human-readable console output.
func Output(env string, out io.Writer) (zerolog.Level, io.Writer, error) {
	switch env {
	case config.EnvDev:
		return zerolog.DebugLevel, out, nil
	case config.EnvProd:
		return zerolog.InfoLevel, out, nil
	case config.EnvLocal:
		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = out
		return zerolog.TraceLevel, consoleWriter, nil
	default:
		return zerolog.NoLevel, nil, fmt.Errorf("unknown env: %s", env)
	}
}
