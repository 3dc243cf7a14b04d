package store

import (
	"context"

	"github.com/cofoundry/gateway/internal/domain"
	"github.com/cofoundry/gateway/internal/events"
	"github.com/rs/zerolog"
)

// TaskStore caches the tasks of a workspace
type TaskStore struct {
	base
	api   TaskAPI
	tasks []domain.Task
}

// NewTaskStore creates a TaskStore bound to scope
func NewTaskStore(api TaskAPI, scope Scope, publisher events.Publisher, logger zerolog.Logger) *TaskStore {
	return &TaskStore{
		base: newBase(scope, publisher, logger, "task_store"),
		api:  api,
	}
}

// Bind switches the store to a new scope and re-fetches if it changed
func (s *TaskStore) Bind(ctx context.Context, identity, workspaceID string) error {
	if s.rebind(Scope{identity, workspaceID}, func() { s.tasks = nil }) {
		return s.Load(ctx)
	}
	return nil
}

// Load fetches tasks. It is a no-op until the scope is ready.
func (s *TaskStore) Load(ctx context.Context) error {
	t, scope := s.ticket()
	if !scope.Ready() {
		return nil
	}
	tasks, err := s.api.ListTasks(ctx, scope.Identity, scope.WorkspaceID)
	if err != nil {
		s.failed(t, err)
		return err
	}
	s.fetched(t, func() { s.tasks = tasks })
	return nil
}

// Tasks returns a copy of the cached tasks
func (s *TaskStore) Tasks() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Task{}, s.tasks...)
}

// Create adds a task and appends it locally
func (s *TaskStore) Create(ctx context.Context, in domain.NewTask) (*domain.Task, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	scope, err := s.requireScope()
	if err != nil {
		return nil, err
	}
	t, _ := s.ticket()
	task, err := s.api.CreateTask(ctx, scope.Identity, scope.WorkspaceID, in)
	if err != nil {
		return nil, err
	}
	s.reconcile(t, scope, func() {
		if i := indexByID(s.tasks, task.ID, taskID); i >= 0 {
			s.tasks[i] = *task
			return
		}
		s.tasks = append(s.tasks, *task)
	})
	s.publish(scope, events.EventTypeCreated, events.EntityTask, task)
	return task, nil
}

// UpdateStatus moves a task and replaces it locally
func (s *TaskStore) UpdateStatus(ctx context.Context, taskID string, status domain.TaskStatus) (*domain.Task, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	scope, err := s.requireScope()
	if err != nil {
		return nil, err
	}
	t, _ := s.ticket()
	task, err := s.api.UpdateTaskStatus(ctx, scope.Identity, taskID, status)
	if err != nil {
		return nil, err
	}
	s.reconcile(t, scope, func() {
		for i := range s.tasks {
			if s.tasks[i].ID == task.ID {
				s.tasks[i] = *task
			}
		}
	})
	s.publish(scope, events.EventTypeUpdated, events.EntityTask, task)
	return task, nil
}

func taskID(v domain.Task) string { return v.ID }
