package models

import (
	"testing"
	"time"
)

func TestTaskPatchApply(t *testing.T) {
	task := Task{ID: "1", Title: "A", Description: "B", CreatedAt: "2024-01-01T00:00:00Z"}
	title := "C"
	done := true

	got := TaskPatch{Title: &title, Completed: &done}.Apply(task)
	want := Task{ID: "1", Title: "C", Description: "B", Completed: true, CreatedAt: "2024-01-01T00:00:00Z"}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if task.Title != "A" {
		t.Fatal("Apply modified its input")
	}
	if !(TaskPatch{}).IsEmpty() || (TaskPatch{Completed: &done}).IsEmpty() {
		t.Fatal("unexpected IsEmpty result")
	}
}

func TestFormatCreatedAt(t *testing.T) {
	ts := time.Date(2024, 1, 1, 3, 0, 0, 0, time.FixedZone("UTC+3", 3*60*60))
	if got := FormatCreatedAt(ts); got != "2024-01-01T00:00:00Z" {
		t.Fatalf("unexpected created at %q", got)
	}
}

func TestDuplicateTaskID(t *testing.T) {
	tasks := []Task{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	if id, ok := DuplicateTaskID(tasks); ok {
		t.Fatalf("unexpected duplicate %q", id)
	}
	if id, ok := DuplicateTaskID(append(tasks, Task{ID: "2"})); !ok || id != "2" {
		t.Fatalf("expected duplicate 2, got %q %v", id, ok)
	}
}
