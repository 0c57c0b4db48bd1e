package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-sync/internal/models"
)

type memoryTaskServiceImpl struct {
	logger zerolog.Logger

	mu    sync.RWMutex
	tasks []models.Task
	now   func() time.Time
}

// NewMemoryTaskService returns a TaskService keeping tasks in process
// memory, pre-populated with the seed tasks. Task IDs are UUIDv7.
func NewMemoryTaskService(logger zerolog.Logger, seed ...models.Task) TaskService {
	return &memoryTaskServiceImpl{
		logger: logger,
		tasks:  append([]models.Task(nil), seed...),
		now:    time.Now,
	}
}

func (s *memoryTaskServiceImpl) ListTasks(_ context.Context) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]*models.Task, len(s.tasks))
	for i := range s.tasks {
		task := s.tasks[i]
		tasks[i] = &task
	}

	s.logger.Debug().
		Int("count", len(tasks)).
		Msg("listed tasks")
	return tasks, nil
}

func (s *memoryTaskServiceImpl) CreateTask(_ context.Context, draft models.TaskDraft) (*models.Task, error) {
	taskUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task uuid")
		return nil, err
	}

	task := models.Task{
		ID:          taskUUID.String(),
		Title:       draft.Title,
		Description: draft.Description,
		Completed:   false,
		CreatedAt:   models.FormatCreatedAt(s.now()),
	}

	s.mu.Lock()
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()

	s.logger.Info().
		Str("task_id", task.ID).
		Msg("created task")
	return &task, nil
}

func (s *memoryTaskServiceImpl) UpdateTask(_ context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		s.logger.Error().
			Str("task_id", id).
			Msg("task not found")
		return nil, ErrTaskNotFound
	}

	task := patch.Apply(s.tasks[i])
	s.tasks[i] = task

	s.logger.Info().
		Str("task_id", id).
		Msg("updated task")
	return &task, nil
}

func (s *memoryTaskServiceImpl) DeleteTask(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		s.logger.Error().
			Str("task_id", id).
			Msg("task not found")
		return ErrTaskNotFound
	}
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)

	s.logger.Info().
		Str("task_id", id).
		Msg("deleted task")
	return nil
}

func (s *memoryTaskServiceImpl) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
