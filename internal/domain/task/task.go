package task

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID          uuid.UUID
	Title       string
	Description *string
	Status      Status
	Priority    Priority
	UserID      uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

func (t *Task) IsDeleted() bool {
	return t.DeletedAt != nil
}

type CreateTaskInput struct {
	Title       string
	Description *string
	Status      Status
	Priority    Priority
	UserID      uuid.UUID
}

type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
}
