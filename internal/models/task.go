package models

import "time"

// CreatedAtLayout is the wire format of Task.CreatedAt.
const CreatedAtLayout = time.RFC3339

type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	CreatedAt   string `json:"createdAt"`
}

// TaskDraft is the input of a task creation. The id, completion flag
// and creation timestamp are always assigned by the task resource.
type TaskDraft struct {
	Title       string `json:"title" validate:"required,notblank,alphanumspace,max=255"`
	Description string `json:"description" validate:"required,notblank,alphanumspace,max=1024"`
}

// TaskPatch replaces the non-nil fields of a task. ID and CreatedAt
// can't be patched.
type TaskPatch struct {
	Title       *string `json:"title,omitempty" validate:"omitnil,notblank,alphanumspace,max=255"`
	Description *string `json:"description,omitempty" validate:"omitnil,notblank,alphanumspace,max=1024"`
	Completed   *bool   `json:"completed,omitempty"`
}

func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

// Apply returns a copy of task with the patch fields replaced.
func (p TaskPatch) Apply(task Task) Task {
	if p.Title != nil {
		task.Title = *p.Title
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.Completed != nil {
		task.Completed = *p.Completed
	}
	return task
}

func FormatCreatedAt(t time.Time) string {
	return t.UTC().Format(CreatedAtLayout)
}

// DuplicateTaskID returns the first ID held by more than one task.
func DuplicateTaskID(tasks []Task) (string, bool) {
	seen := make(map[string]struct{}, len(tasks))
	for _, task := range tasks {
		if _, ok := seen[task.ID]; ok {
			return task.ID, true
		}
		seen[task.ID] = struct{}{}
	}
	return "", false
}
