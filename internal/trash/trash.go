// Package trash implements the soft-delete recycle bin. Rows land here
// when deleted through the API and stay recoverable until restored or
// purged.
package trash

import (
	"context"

	"task-service/internal/domain/task"
	"task-service/internal/domain/user"
	"task-service/internal/repository"

	"github.com/google/uuid"
)

type Service struct {
	users repository.UserRepository
	tasks repository.TaskRepository
}

func NewService(users repository.UserRepository, tasks repository.TaskRepository) *Service {
	return &Service{users: users, tasks: tasks}
}

func (s *Service) ListTasks(ctx context.Context, limit, offset int) ([]*task.Task, error) {
	return s.tasks.ListDeleted(ctx, limit, offset)
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*user.User, error) {
	return s.users.ListDeleted(ctx, limit, offset)
}

func (s *Service) RestoreTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	if err := s.tasks.Restore(ctx, id); err != nil {
		return nil, err
	}
	return s.tasks.GetByID(ctx, id)
}

func (s *Service) RestoreUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if err := s.users.Restore(ctx, id); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

// PurgeTask removes a trashed task for good. Tasks still live are not
// eligible; they must be soft deleted first.
func (s *Service) PurgeTask(ctx context.Context, id uuid.UUID) error {
	return s.tasks.HardDelete(ctx, id)
}

func (s *Service) PurgeUser(ctx context.Context, id uuid.UUID) error {
	return s.users.HardDelete(ctx, id)
}

// EmptyTasks drops every trashed task and reports how many went.
func (s *Service) EmptyTasks(ctx context.Context) (int64, error) {
	return s.tasks.EmptyTrash(ctx)
}
