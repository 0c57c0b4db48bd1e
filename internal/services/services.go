package services

import (
	"context"
	"errors"

	"github.com/adanyl0v/go-todo-sync/internal/models"
)

var ErrTaskNotFound = errors.New("task not found")

type TaskService interface {
	// ListTasks returns every task in insertion order. An empty
	// collection is not an error.
	ListTasks(ctx context.Context) ([]*models.Task, error)

	// CreateTask stores a new task. It assigns the ID and the creation
	// timestamp and marks the task as not completed.
	CreateTask(ctx context.Context, draft models.TaskDraft) (*models.Task, error)

	// UpdateTask replaces the patched fields of the task with the given
	// ID and returns the whole resulting task.
	//
	// It returns ErrTaskNotFound if the task doesn't exist.
	UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error)

	// DeleteTask removes the task with the given ID.
	//
	// It returns ErrTaskNotFound if the task doesn't exist.
	DeleteTask(ctx context.Context, id string) error
}
