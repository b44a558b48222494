package role

import (
	"time"

	"task-service/internal/rbac"

	"github.com/google/uuid"
)

// Role defines a permission document for one (component, name) pair. The
// pair is unique; roles never span components.
type Role struct {
	ID          uuid.UUID
	Component   string
	Name        string
	Description *string
	Permissions rbac.PermissionSet
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Assignment links a user to a role. A (user, role) pair exists at most
// once; deleting a role cascades its assignments away.
type Assignment struct {
	UserID     uuid.UUID
	RoleID     uuid.UUID
	AssignedAt time.Time
}

type CreateRoleInput struct {
	Component   string
	Name        string
	Description *string
	Permissions rbac.PermissionSet
}

type UpdateRoleInput struct {
	Description *string
	Permissions rbac.PermissionSet
}
