package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/projectmanager/internal/common"
)

// TaskStatus is the linear, monotonic lifecycle of a task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Next returns the status that follows s. DONE is terminal.
func (s TaskStatus) Next() (TaskStatus, error) {
	switch s {
	case TaskStatusTodo:
		return TaskStatusInProgress, nil
	case TaskStatusInProgress:
		return TaskStatusDone, nil
	case TaskStatusDone:
		return s, fmt.Errorf("%w: task is already in DONE status", common.ErrorBadRequest)
	default:
		return s, fmt.Errorf("%w: invalid current task status %q", common.ErrorBadRequest, s)
	}
}

type Task struct {
	ID          string
	Title       string
	Description string
	AssigneeID  *string
	StepID      string
	Status      TaskStatus
	Deleted     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Advance moves the task one step forward. On error the task is unchanged.
func (t *Task) Advance() error {
	next, err := t.Status.Next()
	if err != nil {
		return err
	}
	t.Status = next
	return nil
}

// TaskFilter narrows task listings inside one project.
type TaskFilter struct {
	Title       string
	Description string
	AssigneeID  string
	StepID      string
	Status      TaskStatus
	Page        Page
}
