package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-todo-sync/internal/config"
	"github.com/adanyl0v/go-todo-sync/internal/delivery/http/v1"
	"github.com/adanyl0v/go-todo-sync/internal/models"
	"github.com/adanyl0v/go-todo-sync/internal/services"
)

// MustListenAndServeHTTP serves the task resource until SIGINT or
// SIGTERM, then shuts the server down gracefully.
func MustListenAndServeHTTP() {
	cfg := config.Global()
	httpCfg := cfg.HTTP

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: newRouter(cfg),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		globalLogger.Info().
			Str("addr", server.Addr).
			Msg("serving task resource")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
		return
	case <-ctx.Done():
	}

	globalLogger.Info().
		Dur("timeout", httpCfg.ShutdownTimeout).
		Msg("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(shutdownCtx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func newRouter(cfg *config.Config) *gin.Engine {
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	v1.RegisterRoutes(router, v1.New(globalLogger, newTaskService()))
	return router
}

func newTaskService() services.TaskService {
	cfg := config.Global()

	var taskService services.TaskService
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		taskService = services.NewTaskService(globalLogger, globalPostgresPool)
	default:
		var seed []models.Task
		if cfg.Storage.Seed {
			seed = append(seed, sampleTask())
		}
		taskService = services.NewMemoryTaskService(globalLogger, seed...)
	}

	if globalRedisClient != nil {
		taskService = services.NewCachedTaskService(globalLogger, taskService, globalRedisClient, cfg.Redis.TTL)
	}
	return taskService
}

func sampleTask() models.Task {
	return models.Task{
		ID:          "1",
		Title:       "Sample Task",
		Description: "This is a sample task",
		CreatedAt:   models.FormatCreatedAt(time.Now()),
	}
}
