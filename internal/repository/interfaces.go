package repository

import (
	"context"
	"time"

	"task-service/internal/domain/role"
	"task-service/internal/domain/task"
	"task-service/internal/domain/upload"
	"task-service/internal/domain/user"
	"task-service/internal/rbac"

	"github.com/google/uuid"
)

// Repository interfaces used by the handler, auth, audit and trash
// packages. These are provider-side interfaces that concrete
// implementations must satisfy.

type UserRepository interface {
	Create(ctx context.Context, input user.CreateUserInput) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	List(ctx context.Context, limit, offset int) ([]*user.User, error)
	Update(ctx context.Context, id uuid.UUID, input user.UpdateUserInput) (*user.User, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
	HardDelete(ctx context.Context, id uuid.UUID) error
	ListDeleted(ctx context.Context, limit, offset int) ([]*user.User, error)

	// Hierarchy store surface consumed by rbac.Hierarchy.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Manager(ctx context.Context, id uuid.UUID) (*uuid.UUID, error)
	DirectReports(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
	UpdateManager(ctx context.Context, id uuid.UUID, managerID *uuid.UUID) error
	WithTx(ctx context.Context, fn func(rbac.HierarchyStore) error) error
}

type TaskRepository interface {
	Create(ctx context.Context, input task.CreateTaskInput) (*task.Task, error)
	GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error)
	ListAll(ctx context.Context, limit, offset int) ([]*task.Task, error)
	ListByOwners(ctx context.Context, ownerIDs []uuid.UUID, limit, offset int) ([]*task.Task, error)
	Update(ctx context.Context, id uuid.UUID, input task.UpdateTaskInput) (*task.Task, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
	HardDelete(ctx context.Context, id uuid.UUID) error
	ListDeleted(ctx context.Context, limit, offset int) ([]*task.Task, error)
	EmptyTrash(ctx context.Context) (int64, error)
}

type RoleRepository interface {
	Create(ctx context.Context, input role.CreateRoleInput) (*role.Role, error)
	GetByID(ctx context.Context, id uuid.UUID) (*role.Role, error)
	List(ctx context.Context, component string) ([]*role.Role, error)
	Update(ctx context.Context, id uuid.UUID, input role.UpdateRoleInput) (*role.Role, error)
	Delete(ctx context.Context, id uuid.UUID) error

	Assign(ctx context.Context, userID, roleID uuid.UUID) error
	Unassign(ctx context.Context, userID, roleID uuid.UUID) error
	ListUserRoles(ctx context.Context, userID uuid.UUID) ([]*role.Role, error)
	ListUserPermissionSets(ctx context.Context, userID uuid.UUID, component string) ([]rbac.PermissionSet, error)
}

type ResetTokenRepository interface {
	Create(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	Consume(ctx context.Context, token string) (uuid.UUID, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

type UploadRepository interface {
	Create(ctx context.Context, input upload.CreateUploadInput) (*upload.Upload, error)
	GetByID(ctx context.Context, id uuid.UUID) (*upload.Upload, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*upload.Upload, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
