package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-sync/internal/models"
)

// Gateway performs the remote task operations. It is satisfied by
// *gateway.Client.
type Gateway interface {
	List(ctx context.Context) ([]models.Task, error)
	Create(ctx context.Context, draft models.TaskDraft) (models.Task, error)
	Update(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error)
	Delete(ctx context.Context, id string) error
}

// Messages reported by Err after a failed operation.
const (
	MsgRefreshFailed = "failed to load tasks"
	MsgCreateFailed  = "failed to create task"
	MsgUpdateFailed  = "failed to update task"
	MsgDeleteFailed  = "failed to delete task"
)

// ErrInconsistentResult is reported when the gateway returns tasks that
// would leave more than one task with the same ID.
var ErrInconsistentResult = errors.New("inconsistent task data from gateway")

// Store mirrors the remote task collection for every consumer of the
// process.
type Store struct {
	logger  zerolog.Logger
	gateway Gateway

	mu       sync.RWMutex
	tasks    []models.Task
	inFlight int
	errMsg   string
	version  uint64
	subs     map[chan Snapshot]struct{}
}

// New returns an empty store. Use Open to also load the remote
// collection.
func New(logger zerolog.Logger, gateway Gateway) *Store {
	return &Store{
		logger:  logger,
		gateway: gateway,
		tasks:   []models.Task{},
		subs:    make(map[chan Snapshot]struct{}),
	}
}

// Open returns a store after a first Refresh. A failed refresh doesn't
// fail Open: it is reported by Err like any other failure.
func Open(ctx context.Context, logger zerolog.Logger, gateway Gateway) *Store {
	s := New(logger, gateway)
	s.Refresh(ctx)
	return s
}

// Tasks returns a copy of the current collection.
func (s *Store) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tasks)
}

// Task looks a task up by ID in the current collection.
func (s *Store) Task(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.tasks, id)
	if i < 0 {
		return models.Task{}, false
	}
	return s.tasks[i], true
}

// Loading reports whether at least one operation is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight > 0
}

// Err returns the message of the last failed operation, or an empty
// string. It is cleared when the next operation starts.
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// Snapshot returns a copy of the whole store state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Refresh replaces the whole collection with the remote one.
func (s *Store) Refresh(ctx context.Context) Result {
	s.begin()

	tasks, err := s.gateway.List(ctx)
	if err != nil {
		return s.fail(OpRefresh, "", err, MsgRefreshFailed)
	}
	if id, dup := models.DuplicateTaskID(tasks); dup {
		err = fmt.Errorf("%w: duplicate task id %q", ErrInconsistentResult, id)
		return s.fail(OpRefresh, id, err, MsgRefreshFailed)
	}

	fetched := slices.Clone(tasks)
	if fetched == nil {
		fetched = []models.Task{}
	}
	res := s.apply(OpRefresh, func([]models.Task) []models.Task {
		return fetched
	})
	s.logger.Debug().
		Int("count", len(fetched)).
		Uint64("version", res.Version).
		Msg("refreshed tasks")
	return res
}

// AddTask creates a task remotely and appends the created record.
func (s *Store) AddTask(ctx context.Context, draft models.TaskDraft) Result {
	s.begin()

	task, err := s.gateway.Create(ctx, draft)
	if err != nil {
		return s.fail(OpAdd, "", err, MsgCreateFailed)
	}

	res := s.apply(OpAdd, func(current []models.Task) []models.Task {
		// A refresh that completed meanwhile may already hold the record.
		if i := indexOf(current, task.ID); i >= 0 {
			return replaceAt(current, i, task)
		}
		next := make([]models.Task, len(current), len(current)+1)
		copy(next, current)
		return append(next, task)
	})
	res.Task = &task
	s.logger.Debug().
		Str("task_id", task.ID).
		Uint64("version", res.Version).
		Msg("added task")
	return res
}

// UpdateTask patches a task remotely and replaces the local record
// with the returned one. A task that isn't held locally stays absent.
func (s *Store) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) Result {
	s.begin()

	task, err := s.gateway.Update(ctx, id, patch)
	if err != nil {
		return s.fail(OpUpdate, id, err, MsgUpdateFailed)
	}
	if task.ID != id {
		err = fmt.Errorf("%w: updated task has id %q", ErrInconsistentResult, task.ID)
		return s.fail(OpUpdate, id, err, MsgUpdateFailed)
	}

	res := s.apply(OpUpdate, func(current []models.Task) []models.Task {
		i := indexOf(current, id)
		if i < 0 {
			return current
		}
		return replaceAt(current, i, task)
	})
	res.Task = &task
	s.logger.Debug().
		Str("task_id", id).
		Uint64("version", res.Version).
		Msg("updated task")
	return res
}

// DeleteTask deletes a task remotely, then removes it locally.
func (s *Store) DeleteTask(ctx context.Context, id string) Result {
	s.begin()

	err := s.gateway.Delete(ctx, id)
	if err != nil {
		return s.fail(OpDelete, id, err, MsgDeleteFailed)
	}

	res := s.apply(OpDelete, func(current []models.Task) []models.Task {
		i := indexOf(current, id)
		if i < 0 {
			return current
		}
		next := make([]models.Task, 0, len(current)-1)
		next = append(next, current[:i]...)
		return append(next, current[i+1:]...)
	})
	s.logger.Debug().
		Str("task_id", id).
		Uint64("version", res.Version).
		Msg("deleted task")
	return res
}

func (s *Store) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight++
	s.errMsg = ""
	s.version++
	s.notifyLocked()
}

// apply ends a successful operation. derive must return a new slice
// instead of modifying current, which snapshots may still share.
func (s *Store) apply(op Op, derive func(current []models.Task) []models.Task) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = derive(s.tasks)
	s.inFlight--
	s.version++
	s.notifyLocked()
	return Result{Op: op, Version: s.version}
}

func (s *Store) fail(op Op, taskID string, err error, msg string) Result {
	s.logger.Error().
		Err(err).
		Str("op", string(op)).
		Str("task_id", taskID).
		Msg(msg)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = msg
	s.inFlight--
	s.version++
	s.notifyLocked()
	return Result{Op: op, Version: s.version, Err: err}
}

func indexOf(tasks []models.Task, id string) int {
	return slices.IndexFunc(tasks, func(t models.Task) bool {
		return t.ID == id
	})
}

func replaceAt(tasks []models.Task, i int, task models.Task) []models.Task {
	next := slices.Clone(tasks)
	next[i] = task
	return next
}
