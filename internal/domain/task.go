package domain

import (
	"strings"
	"time"
)

// TaskStatus is the workflow state of a task
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

// Valid reports whether s is a known task status
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone:
		return true
	}
	return false
}

// Task is a unit of work assigned inside a workspace
type Task struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Status         TaskStatus `json:"status"`
	AssigneeUserID string     `json:"assignee_user_id,omitempty"`
	DueDate        string     `json:"due_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewTask is the create payload for a task
type NewTask struct {
	Title          string `json:"title"`
	AssigneeUserID string `json:"assignee_user_id,omitempty"`
	DueDate        string `json:"due_date,omitempty"`
}

// Validate checks the payload before it is sent
func (t NewTask) Validate() error {
	title := strings.TrimSpace(t.Title)
	if title == "" {
		return ErrTitleRequired
	}
	if len(title) > MaxTitleLength {
		return ErrInvalidInput
	}
	if t.DueDate != "" {
		if _, err := time.Parse(time.DateOnly, t.DueDate); err != nil {
			return ErrInvalidInput
		}
	}
	return nil
}
