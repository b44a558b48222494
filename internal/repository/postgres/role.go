package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"task-service/internal/domain/role"
	"task-service/internal/rbac"
	apperrors "task-service/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const roleColumns = `id, component, name, description, permissions, created_at, updated_at`

type RoleRepository struct {
	db *DB
}

func NewRoleRepository(db *DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// Permissions are stored as jsonb so role documents keep the null-scope
// convention on disk exactly as the API emits it.
func scanRole(row pgx.Row) (*role.Role, error) {
	r := &role.Role{}
	var permissions []byte
	err := row.Scan(
		&r.ID,
		&r.Component,
		&r.Name,
		&r.Description,
		&permissions,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(permissions, &r.Permissions); err != nil {
		return nil, fmt.Errorf("decode role permissions: %w", err)
	}

	return r, nil
}

func (r *RoleRepository) Create(ctx context.Context, input role.CreateRoleInput) (*role.Role, error) {
	permissions, err := json.Marshal(input.Permissions)
	if err != nil {
		return nil, errFailedCreateRole(err)
	}

	query := `
		INSERT INTO roles (component, name, description, permissions)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + roleColumns

	created, err := scanRole(r.db.Pool.QueryRow(ctx, query,
		input.Component, input.Name, input.Description, permissions))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict(
				fmt.Sprintf("role %q already exists in component %q", input.Name, input.Component))
		}
		return nil, errFailedCreateRole(err)
	}

	return created, nil
}

func (r *RoleRepository) GetByID(ctx context.Context, id uuid.UUID) (*role.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles WHERE id = $1`

	found, err := scanRole(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errRoleNotFound)
		}
		return nil, errFailedGetRole(err)
	}

	return found, nil
}

func (r *RoleRepository) List(ctx context.Context, component string) ([]*role.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles`
	args := []any{}
	if component != "" {
		query += " WHERE component = $1"
		args = append(args, component)
	}
	query += " ORDER BY component, name"

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errFailedListRoles(err)
	}
	defer rows.Close()

	var roles []*role.Role
	for rows.Next() {
		found, err := scanRole(rows)
		if err != nil {
			return nil, errFailedScanRole(err)
		}
		roles = append(roles, found)
	}

	if err := rows.Err(); err != nil {
		return nil, errIterateRoles(err)
	}

	return roles, nil
}

func (r *RoleRepository) Update(ctx context.Context, id uuid.UUID, input role.UpdateRoleInput) (*role.Role, error) {
	query := "UPDATE roles SET updated_at = NOW()"
	args := []any{id}
	argCount := 1

	set := func(column string, value any) {
		argCount++
		query += fmt.Sprintf(", %s = $%d", column, argCount)
		args = append(args, value)
	}

	if input.Description != nil {
		set("description", *input.Description)
	}
	if input.Permissions != nil {
		permissions, err := json.Marshal(input.Permissions)
		if err != nil {
			return nil, errFailedUpdateRole(err)
		}
		set("permissions", permissions)
	}

	query += " WHERE id = $1 RETURNING " + roleColumns

	updated, err := scanRole(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errRoleNotFound)
		}
		return nil, errFailedUpdateRole(err)
	}

	return updated, nil
}

// Delete removes the role; its assignments cascade away so every holder
// loses the grant on their next permission resolution.
func (r *RoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Pool.Exec(ctx, "DELETE FROM roles WHERE id = $1", id)
	if err != nil {
		return errFailedDeleteRole(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errRoleNotFound)
	}

	return nil
}

func (r *RoleRepository) Assign(ctx context.Context, userID, roleID uuid.UUID) error {
	query := "INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)"

	if _, err := r.db.Pool.Exec(ctx, query, userID, roleID); err != nil {
		if isUniqueViolation(err) {
			return apperrors.DuplicateAssignment("role already assigned to user")
		}
		if isForeignKeyViolation(err) {
			return apperrors.NotFound(errUserNotFound)
		}
		return errFailedAssignRole(err)
	}

	return nil
}

func (r *RoleRepository) Unassign(ctx context.Context, userID, roleID uuid.UUID) error {
	query := "DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2"

	result, err := r.db.Pool.Exec(ctx, query, userID, roleID)
	if err != nil {
		return errFailedUnassignRole(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errAssignmentNotFound)
	}

	return nil
}

func (r *RoleRepository) ListUserRoles(ctx context.Context, userID uuid.UUID) ([]*role.Role, error) {
	query := `
		SELECT r.id, r.component, r.name, r.description, r.permissions, r.created_at, r.updated_at
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.component, r.name
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, errFailedListUserRoles(err)
	}
	defer rows.Close()

	var roles []*role.Role
	for rows.Next() {
		found, err := scanRole(rows)
		if err != nil {
			return nil, errFailedScanRole(err)
		}
		roles = append(roles, found)
	}

	if err := rows.Err(); err != nil {
		return nil, errIterateRoles(err)
	}

	return roles, nil
}

// ListUserPermissionSets reads straight from the live assignments, so a
// revoked role is gone from the very next call.
func (r *RoleRepository) ListUserPermissionSets(ctx context.Context, userID uuid.UUID, component string) ([]rbac.PermissionSet, error) {
	query := `
		SELECT r.permissions
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1 AND r.component = $2
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, component)
	if err != nil {
		return nil, errFailedListUserRoles(err)
	}
	defer rows.Close()

	var sets []rbac.PermissionSet
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, errFailedScanRole(err)
		}

		var set rbac.PermissionSet
		if err := json.Unmarshal(raw, &set); err != nil {
			return nil, fmt.Errorf("decode role permissions: %w", err)
		}
		sets = append(sets, set)
	}

	if err := rows.Err(); err != nil {
		return nil, errIterateRoles(err)
	}

	return sets, nil
}
