package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-sync/internal/models"
)

type stubTaskService struct {
	listTasksFn  func(ctx context.Context) ([]*models.Task, error)
	createTaskFn func(ctx context.Context, draft models.TaskDraft) (*models.Task, error)
	updateTaskFn func(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error)
	deleteTaskFn func(ctx context.Context, id string) error
}

func (s *stubTaskService) ListTasks(ctx context.Context) ([]*models.Task, error) {
	if s.listTasksFn == nil {
		return nil, errors.New("unexpected ListTasks call")
	}
	return s.listTasksFn(ctx)
}

func (s *stubTaskService) CreateTask(ctx context.Context, draft models.TaskDraft) (*models.Task, error) {
	if s.createTaskFn == nil {
		return nil, errors.New("unexpected CreateTask call")
	}
	return s.createTaskFn(ctx, draft)
}

func (s *stubTaskService) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	if s.updateTaskFn == nil {
		return nil, errors.New("unexpected UpdateTask call")
	}
	return s.updateTaskFn(ctx, id, patch)
}

func (s *stubTaskService) DeleteTask(ctx context.Context, id string) error {
	if s.deleteTaskFn == nil {
		return errors.New("unexpected DeleteTask call")
	}
	return s.deleteTaskFn(ctx, id)
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCachedTaskServiceListMissThenHit(t *testing.T) {
	mr, client := setupRedis(t)
	ctx := context.Background()

	var calls int
	base := &stubTaskService{
		listTasksFn: func(context.Context) ([]*models.Task, error) {
			calls++
			return []*models.Task{{ID: "1", Title: "A", Description: "B"}}, nil
		},
	}
	s := NewCachedTaskService(zerolog.Nop(), base, client, time.Minute)

	for i := 0; i < 2; i++ {
		tasks, err := s.ListTasks(ctx)
		if err != nil {
			t.Fatalf("list tasks: %v", err)
		}
		if len(tasks) != 1 || tasks[0].ID != "1" {
			t.Fatalf("unexpected tasks %+v", tasks)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 call to base, got %d", calls)
	}
	if ttl := mr.TTL(tasksCacheKey); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected TTL: %v", ttl)
	}
}

func TestCachedTaskServiceWritesEvict(t *testing.T) {
	mr, client := setupRedis(t)
	ctx := context.Background()

	title := "X"
	base := &stubTaskService{
		createTaskFn: func(context.Context, models.TaskDraft) (*models.Task, error) {
			return &models.Task{ID: "2"}, nil
		},
		updateTaskFn: func(context.Context, string, models.TaskPatch) (*models.Task, error) {
			return &models.Task{ID: "2", Title: title}, nil
		},
		deleteTaskFn: func(context.Context, string) error {
			return nil
		},
	}
	s := NewCachedTaskService(zerolog.Nop(), base, client, time.Minute)

	writes := map[string]func() error{
		"create": func() error {
			_, err := s.CreateTask(ctx, models.TaskDraft{Title: "A", Description: "B"})
			return err
		},
		"update": func() error {
			_, err := s.UpdateTask(ctx, "2", models.TaskPatch{Title: &title})
			return err
		},
		"delete": func() error {
			return s.DeleteTask(ctx, "2")
		},
	}
	for name, write := range writes {
		if err := mr.Set(tasksCacheKey, "[]"); err != nil {
			t.Fatalf("%s: seed cache: %v", name, err)
		}
		if err := write(); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if mr.Exists(tasksCacheKey) {
			t.Fatalf("%s: expected cache to be evicted", name)
		}
	}
}

func TestCachedTaskServiceFailedWriteKeepsCache(t *testing.T) {
	mr, client := setupRedis(t)

	base := &stubTaskService{
		deleteTaskFn: func(context.Context, string) error {
			return ErrTaskNotFound
		},
	}
	s := NewCachedTaskService(zerolog.Nop(), base, client, time.Minute)

	if err := mr.Set(tasksCacheKey, "[]"); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	err := s.DeleteTask(context.Background(), "missing")
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	if !mr.Exists(tasksCacheKey) {
		t.Fatal("expected cache to survive a failed write")
	}
}

func TestCachedTaskServiceCorruptEntryFallsBack(t *testing.T) {
	mr, client := setupRedis(t)

	base := &stubTaskService{
		listTasksFn: func(context.Context) ([]*models.Task, error) {
			return []*models.Task{{ID: "1"}}, nil
		},
	}
	s := NewCachedTaskService(zerolog.Nop(), base, client, 0)

	if err := mr.Set(tasksCacheKey, "{not json"); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	tasks, err := s.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "1" {
		t.Fatalf("unexpected tasks %+v", tasks)
	}
	if mr.Exists(tasksCacheKey) {
		t.Fatal("expected corrupt entry to be dropped and not re-cached with zero ttl")
	}
}

func TestCachedTaskServiceDropsListLoadedAcrossWrite(t *testing.T) {
	mr, client := setupRedis(t)
	ctx := context.Background()

	created := &models.Task{ID: "1", Title: "A", Description: "B"}
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	base := &stubTaskService{
		listTasksFn: func(context.Context) ([]*models.Task, error) {
			if calls.Add(1) == 1 {
				// Read before the create below lands.
				close(started)
				<-release
				return []*models.Task{}, nil
			}
			return []*models.Task{created}, nil
		},
		createTaskFn: func(context.Context, models.TaskDraft) (*models.Task, error) {
			return created, nil
		},
	}
	s := NewCachedTaskService(zerolog.Nop(), base, client, time.Minute)

	done := make(chan error, 1)
	go func() {
		_, err := s.ListTasks(ctx)
		done <- err
	}()

	<-started
	if _, err := s.CreateTask(ctx, models.TaskDraft{Title: "A", Description: "B"}); err != nil {
		t.Fatalf("create task: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("list tasks: %v", err)
	}

	if mr.Exists(tasksCacheKey) {
		t.Fatal("expected list loaded before the write not to be cached")
	}
	tasks, err := s.ListTasks(ctx)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "1" {
		t.Fatalf("expected created task, got %+v", tasks)
	}
	if !mr.Exists(tasksCacheKey) {
		t.Fatal("expected fresh list to be cached")
	}
}
