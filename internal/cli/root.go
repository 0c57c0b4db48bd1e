package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/adanyl0v/go-todo-sync/internal/config"
	"github.com/adanyl0v/go-todo-sync/internal/gateway"
	"github.com/adanyl0v/go-todo-sync/internal/logging"
	"github.com/adanyl0v/go-todo-sync/internal/store"
)

// session holds what every command needs to reach the task store.
type session struct {
	logger  zerolog.Logger
	baseURL string
	timeout time.Duration
}

// open connects to the task resource and loads the collection. A failed
// first load is returned as an error.
func (s *session) open(ctx context.Context) (*store.Store, error) {
	client, err := gateway.New(s.baseURL, gateway.Options{
		Timeout: s.timeout,
		Logger:  s.logger,
	})
	if err != nil {
		return nil, err
	}

	st := store.Open(ctx, s.logger, client)
	if msg := st.Err(); msg != "" {
		return nil, errors.New(msg)
	}
	return st, nil
}

// NewRootCmd builds the taskctl command tree.
func NewRootCmd(logger zerolog.Logger, cfg *config.ClientConfig) *cobra.Command {
	sess := &session{
		logger:  logger,
		baseURL: cfg.BaseURL,
		timeout: cfg.Timeout,
	}

	rootCmd := &cobra.Command{
		Use:           "taskctl",
		Short:         "Manage tasks kept by a task server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&sess.baseURL, "base-url", cfg.BaseURL, "Task server base URL")
	rootCmd.PersistentFlags().DurationVar(&sess.timeout, "timeout", cfg.Timeout, "Timeout of a single remote call")

	rootCmd.AddCommand(listCmd(sess))
	rootCmd.AddCommand(showCmd(sess))
	rootCmd.AddCommand(addCmd(sess))
	rootCmd.AddCommand(editCmd(sess))
	rootCmd.AddCommand(deleteCmd(sess))
	rootCmd.AddCommand(watchCmd(sess))

	return rootCmd
}

// Execute runs taskctl with the environment configuration.
func Execute(version string) error {
	cfg, err := config.ReadClientEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := newLogger(cfg.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}

	rootCmd := NewRootCmd(logger, cfg)
	rootCmd.Version = version
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// newLogger writes to stderr so logs don't mix with command output.
// Only warnings show up unless env is local.
func newLogger(env string) (zerolog.Logger, error) {
	level, w, err := logging.Output(env, os.Stderr)
	if err != nil {
		return zerolog.Nop(), err
	}
	if env != config.EnvLocal {
		level = zerolog.WarnLevel
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger(), nil
}
