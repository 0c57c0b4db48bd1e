package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-sync/internal/models"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

// NewTaskService returns a TaskService backed by the tasks table.
// Task IDs are the decimal form of the BIGSERIAL primary key.
func NewTaskService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *taskServiceImpl) ListTasks(ctx context.Context) ([]*models.Task, error) {
	const selectTasksQuery = `
SELECT id,
       title,
       description,
       completed,
       created_at
FROM tasks
ORDER BY id
`
	rows, err := s.pgPool.Query(ctx, selectTasksQuery)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		var (
			taskID    int64
			createdAt time.Time
			task      models.Task
		)
		err = rows.Scan(
			&taskID,
			&task.Title,
			&task.Description,
			&task.Completed,
			&createdAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		task.ID = strconv.FormatInt(taskID, 10)
		task.CreatedAt = models.FormatCreatedAt(createdAt)
		tasks = append(tasks, &task)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}

	s.logger.Debug().
		Int("count", len(tasks)).
		Msg("selected tasks")
	return tasks, nil
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, draft models.TaskDraft) (*models.Task, error) {
	now := time.Now().UTC().Truncate(time.Second)
	task := &models.Task{
		Title:       draft.Title,
		Description: draft.Description,
		Completed:   false,
		CreatedAt:   models.FormatCreatedAt(now),
	}

	const insertTaskQuery = `
INSERT INTO tasks (title,
                   description,
                   completed,
                   created_at)
VALUES ($1, $2, $3, $4)
RETURNING id
`
	var taskID int64
	err := s.pgPool.QueryRow(
		ctx,
		insertTaskQuery,
		task.Title,
		task.Description,
		task.Completed,
		now,
	).Scan(&taskID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, err
	}
	task.ID = strconv.FormatInt(taskID, 10)

	s.logger.Info().
		Str("task_id", task.ID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	task := &models.Task{ID: id}

	const updateTaskQuery = `
UPDATE tasks
SET title = COALESCE($1, title),
    description = COALESCE($2, description),
    completed = COALESCE($3, completed)
WHERE id = $4
RETURNING title, description, completed, created_at
`
	var createdAt time.Time
	err := s.pgPool.QueryRow(
		ctx,
		updateTaskQuery,
		patch.Title,
		patch.Description,
		patch.Completed,
		task.ID,
	).Scan(
		&task.Title,
		&task.Description,
		&task.Completed,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			s.logger.Error().
				Str("task_id", task.ID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to update task")
		return nil, err
	}
	task.CreatedAt = models.FormatCreatedAt(createdAt)

	s.logger.Info().
		Str("task_id", task.ID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, id string) error {
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1
`
	tag, err := s.pgPool.Exec(
		ctx,
		deleteTaskQuery,
		id,
	)
	if err != nil {
		if isInvalidID(err) {
			s.logger.Error().
				Str("task_id", id).
				Msg("task not found")
			return ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Error().
			Str("task_id", id).
			Msg("task not found")
		return ErrTaskNotFound
	}

	s.logger.Info().
		Str("task_id", id).
		Msg("deleted task")
	return nil
}

// isInvalidID reports whether postgres rejected an ID that isn't a
// bigint. Such an ID can't name any task.
func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.InvalidTextRepresentation ||
			pgErr.Code == pgerrcode.NumericValueOutOfRange
	}
	return false
}
