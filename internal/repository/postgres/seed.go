package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"task-service/internal/rbac"
)

type seedRole struct {
	component   string
	name        string
	description string
	permissions rbac.PermissionSet
}

var defaultRoles = []seedRole{
	{
		component:   "tasks",
		name:        "User",
		description: "Can create and manage own tasks only",
		permissions: rbac.PermissionSet{
			rbac.ActionCreate: rbac.ScopeOwn,
			rbac.ActionRead:   rbac.ScopeOwn,
			rbac.ActionUpdate: rbac.ScopeOwn,
			rbac.ActionDelete: rbac.ScopeOwn,
		},
	},
	{
		component:   "tasks",
		name:        "Manager",
		description: "Can manage own tasks and subordinates' tasks",
		permissions: rbac.PermissionSet{
			rbac.ActionCreate: rbac.ScopeOwn,
			rbac.ActionRead:   rbac.ScopeSubordinates,
			rbac.ActionUpdate: rbac.ScopeSubordinates,
			rbac.ActionDelete: rbac.ScopeNone,
		},
	},
	{
		component:   "tasks",
		name:        "Admin",
		description: "Full access to all tasks",
		permissions: rbac.PermissionSet{
			rbac.ActionCreate: rbac.ScopeAll,
			rbac.ActionRead:   rbac.ScopeAll,
			rbac.ActionUpdate: rbac.ScopeAll,
			rbac.ActionDelete: rbac.ScopeAll,
		},
	},
}

// SeedRoles inserts the default role set. Existing roles are left alone,
// so operators can rerun it after edits without losing changes.
func SeedRoles(ctx context.Context, db *DB) error {
	query := `
		INSERT INTO roles (component, name, description, permissions)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (component, name) DO NOTHING
	`

	for _, r := range defaultRoles {
		permissions, err := json.Marshal(r.permissions)
		if err != nil {
			return fmt.Errorf("seed role %s:%s: %w", r.component, r.name, err)
		}
		if _, err := db.Pool.Exec(ctx, query, r.component, r.name, r.description, permissions); err != nil {
			return fmt.Errorf("seed role %s:%s: %w", r.component, r.name, err)
		}
	}

	return nil
}
