package service

import (
	"context"
	"math"

	"github.com/cofoundry/gateway/internal/domain"
	"github.com/cofoundry/gateway/internal/store"
)

// TaskCounts counts tasks by status
type TaskCounts struct {
	Todo       int `json:"todo"`
	InProgress int `json:"in_progress"`
	Done       int `json:"done"`
	Total      int `json:"total"`
}

// TaskBoard is the tasks tab payload
type TaskBoard struct {
	Tasks             []domain.Task `json:"tasks"`
	Counts            TaskCounts    `json:"counts"`
	CompletionPercent int           `json:"completion_percent"`
}

// TaskService handles the tasks tab
type TaskService struct {
	registry *store.Registry
}

// NewTaskService creates a new TaskService
func NewTaskService(registry *store.Registry) *TaskService {
	return &TaskService{registry: registry}
}

// GetBoard loads tasks and counts them
func (s *TaskService) GetBoard(ctx context.Context, identity, workspaceID string) (*TaskBoard, error) {
	sess, err := s.registry.Session(identity, workspaceID)
	if err != nil {
		return nil, err
	}
	if err := sess.Tasks.Load(ctx); err != nil {
		return nil, err
	}
	return BuildTaskBoard(sess.Tasks.Tasks()), nil
}

// BuildTaskBoard counts tasks by status. Completion is the rounded share of
// done tasks, 0 for an empty board.
func BuildTaskBoard(tasks []domain.Task) *TaskBoard {
	board := &TaskBoard{Tasks: nonNil(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case domain.TaskDone:
			board.Counts.Done++
		case domain.TaskInProgress:
			board.Counts.InProgress++
		default:
			board.Counts.Todo++
		}
	}
	board.Counts.Total = len(tasks)
	if board.Counts.Total > 0 {
		board.CompletionPercent = int(math.Round(float64(board.Counts.Done) * 100 / float64(board.Counts.Total)))
	}
	return board
}

// CreateTask adds a task
func (s *TaskService) CreateTask(ctx context.Context, identity, workspaceID string, in domain.NewTask) (*domain.Task, error) {
	sess, err := s.registry.Session(identity, workspaceID)
	if err != nil {
		return nil, err
	}
	return sess.Tasks.Create(ctx, in)
}

// UpdateTaskStatus moves a task
func (s *TaskService) UpdateTaskStatus(ctx context.Context, identity, workspaceID, taskID string, status domain.TaskStatus) (*domain.Task, error) {
	sess, err := s.registry.Session(identity, workspaceID)
	if err != nil {
		return nil, err
	}
	return sess.Tasks.UpdateStatus(ctx, taskID, status)
}
