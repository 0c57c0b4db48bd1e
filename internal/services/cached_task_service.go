package services

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-sync/internal/models"
)

const (
	tasksCacheKey = "tasks:all"
	// tasksGenKey counts evictions. A list read from base is cached only
	// if no eviction happened since the read started.
	tasksGenKey = "tasks:gen"
)

var errStaleTasks = errors.New("task list changed while loading")

type cachedTaskServiceImpl struct {
	logger zerolog.Logger
	base   TaskService
	redis  *redis.Client
	ttl    time.Duration
}

// NewCachedTaskService wraps base with a Redis cache of the task list.
// Every successful write evicts the cached list. Redis failures are
// logged and fall back to base.
func NewCachedTaskService(
	logger zerolog.Logger,
	base TaskService,
	client *redis.Client,
	ttl time.Duration,
) TaskService {
	if base == nil {
		panic("services.NewCachedTaskService: base service is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &cachedTaskServiceImpl{
		logger: logger,
		base:   base,
		redis:  client,
		ttl:    ttl,
	}
}

func (s *cachedTaskServiceImpl) ListTasks(ctx context.Context) ([]*models.Task, error) {
	if tasks, ok := s.loadTasks(ctx); ok {
		s.logger.Debug().
			Int("count", len(tasks)).
			Msg("served tasks from cache")
		return tasks, nil
	}

	gen, genOK := s.generation(ctx)

	tasks, err := s.base.ListTasks(ctx)
	if err != nil {
		return nil, err
	}

	if genOK {
		s.storeTasks(ctx, gen, tasks)
	}
	return tasks, nil
}

func (s *cachedTaskServiceImpl) CreateTask(ctx context.Context, draft models.TaskDraft) (*models.Task, error) {
	task, err := s.base.CreateTask(ctx, draft)
	if err != nil {
		return nil, err
	}

	s.evict(ctx)
	return task, nil
}

func (s *cachedTaskServiceImpl) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	task, err := s.base.UpdateTask(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.evict(ctx)
	return task, nil
}

func (s *cachedTaskServiceImpl) DeleteTask(ctx context.Context, id string) error {
	err := s.base.DeleteTask(ctx, id)
	if err != nil {
		return err
	}

	s.evict(ctx)
	return nil
}

func (s *cachedTaskServiceImpl) loadTasks(ctx context.Context) ([]*models.Task, bool) {
	if s.redis == nil {
		return nil, false
	}
	data, err := s.redis.Get(ctx, tasksCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().
				Err(err).
				Msg("failed to read cached tasks")
			_ = s.redis.Del(ctx, tasksCacheKey).Err()
		}
		return nil, false
	}

	var tasks []*models.Task
	err = sonic.Unmarshal(data, &tasks)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Msg("failed to decode cached tasks")
		_ = s.redis.Del(ctx, tasksCacheKey).Err()
		return nil, false
	}
	return tasks, true
}

func (s *cachedTaskServiceImpl) generation(ctx context.Context) (int64, bool) {
	if s.redis == nil || s.ttl == 0 {
		return 0, false
	}
	gen, err := s.redis.Get(ctx, tasksGenKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		s.logger.Warn().
			Err(err).
			Msg("failed to read task cache generation")
		return 0, false
	}
	return gen, true
}

// storeTasks caches tasks read at generation gen. The write is dropped
// when a write to base evicted the cache in the meantime.
func (s *cachedTaskServiceImpl) storeTasks(ctx context.Context, gen int64, tasks []*models.Task) {
	data, err := sonic.Marshal(tasks)
	if err != nil {
		return
	}

	err = s.redis.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, tasksGenKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleTasks
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, tasksCacheKey, data, s.ttl)
			return nil
		})
		return err
	}, tasksGenKey)
	switch {
	case err == nil:
	case errors.Is(err, errStaleTasks), errors.Is(err, redis.TxFailedErr):
		s.logger.Debug().
			Int64("generation", gen).
			Msg("skipped caching stale tasks")
	default:
		s.logger.Warn().
			Err(err).
			Msg("failed to cache tasks")
	}
}

func (s *cachedTaskServiceImpl) evict(ctx context.Context) {
	if s.redis == nil {
		return
	}
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, tasksGenKey)
		pipe.Del(ctx, tasksCacheKey)
		return nil
	})
	if err != nil {
		s.logger.Warn().
			Err(err).
			Msg("failed to evict cached tasks")
	}
}
