package postgres

import (
	"context"
	"fmt"

	"task-service/internal/domain/user"
	"task-service/internal/rbac"
	apperrors "task-service/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, password_hash, first_name, last_name, note,
	is_active, is_admin, manager_id, created_at, updated_at, deleted_at`

type UserRepository struct {
	db *DB
	q  querier
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db, q: db.Pool}
}

func scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Note,
		&u.IsActive,
		&u.IsAdmin,
		&u.ManagerID,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, input user.CreateUserInput) (*user.User, error) {
	query := `
		INSERT INTO users (email, password_hash, first_name, last_name, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	u, err := scanUser(r.q.QueryRow(ctx, query,
		input.Email, input.PasswordHash, input.FirstName, input.LastName, input.IsAdmin))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("user with this email already exists")
		}
		return nil, errFailedCreateUser(err)
	}

	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND deleted_at IS NULL`

	u, err := scanUser(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		return nil, errFailedGetUser(err)
	}

	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND deleted_at IS NULL`

	u, err := scanUser(r.q.QueryRow(ctx, query, email))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		return nil, errFailedGetUser(err)
	}

	return u, nil
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*user.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	return r.listUsers(ctx, query, limit, offset)
}

func (r *UserRepository) ListDeleted(ctx context.Context, limit, offset int) ([]*user.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE deleted_at IS NOT NULL
		ORDER BY deleted_at DESC
		LIMIT $1 OFFSET $2
	`
	return r.listUsers(ctx, query, limit, offset)
}

func (r *UserRepository) listUsers(ctx context.Context, query string, args ...any) ([]*user.User, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, errFailedListUsers(err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, errFailedScanUser(err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, errIterateUsers(err)
	}

	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, input user.UpdateUserInput) (*user.User, error) {
	query := "UPDATE users SET updated_at = NOW()"
	args := []any{id}
	argCount := 1

	set := func(column string, value any) {
		argCount++
		query += fmt.Sprintf(", %s = $%d", column, argCount)
		args = append(args, value)
	}

	if input.Email != nil {
		set("email", *input.Email)
	}
	if input.PasswordHash != nil {
		set("password_hash", *input.PasswordHash)
	}
	if input.FirstName != nil {
		set("first_name", *input.FirstName)
	}
	if input.LastName != nil {
		set("last_name", *input.LastName)
	}
	if input.Note != nil {
		set("note", *input.Note)
	}
	if input.IsActive != nil {
		set("is_active", *input.IsActive)
	}
	if input.IsAdmin != nil {
		set("is_admin", *input.IsAdmin)
	}

	query += " WHERE id = $1 AND deleted_at IS NULL RETURNING " + userColumns

	u, err := scanUser(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("email already exists")
		}
		return nil, errFailedUpdateUser(err)
	}

	return u, nil
}

func (r *UserRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := "UPDATE users SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL"

	result, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return errFailedDeleteUser(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errUserNotFound)
	}

	return nil
}

func (r *UserRepository) Restore(ctx context.Context, id uuid.UUID) error {
	query := "UPDATE users SET deleted_at = NULL, updated_at = NOW() WHERE id = $1 AND deleted_at IS NOT NULL"

	result, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return errFailedRestoreUser(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errUserNotFound)
	}

	return nil
}

func (r *UserRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	query := "DELETE FROM users WHERE id = $1 AND deleted_at IS NOT NULL"

	result, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return errFailedDeleteUser(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errUserNotFound)
	}

	return nil
}

// Hierarchy store surface (rbac.HierarchyStore).

func (r *UserRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE id = $1 AND deleted_at IS NULL)", id).Scan(&exists)
	if err != nil {
		return false, errFailedGetUser(err)
	}
	return exists, nil
}

func (r *UserRepository) Manager(ctx context.Context, id uuid.UUID) (*uuid.UUID, error) {
	var managerID *uuid.UUID
	err := r.q.QueryRow(ctx,
		"SELECT manager_id FROM users WHERE id = $1 AND deleted_at IS NULL", id).Scan(&managerID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, errFailedQueryManager(err)
	}
	return managerID, nil
}

func (r *UserRepository) DirectReports(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.q.Query(ctx,
		"SELECT id FROM users WHERE manager_id = $1 AND deleted_at IS NULL", id)
	if err != nil {
		return nil, errFailedQueryManager(err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var reportID uuid.UUID
		if err := rows.Scan(&reportID); err != nil {
			return nil, errFailedScanUser(err)
		}
		ids = append(ids, reportID)
	}

	return ids, rows.Err()
}

func (r *UserRepository) UpdateManager(ctx context.Context, id uuid.UUID, managerID *uuid.UUID) error {
	result, err := r.q.Exec(ctx,
		"UPDATE users SET manager_id = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL",
		id, managerID)
	if err != nil {
		return errFailedSetManager(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errUserNotFound)
	}

	return nil
}

// WithTx runs fn against a repository bound to one transaction, so the
// hierarchy cycle check and the manager write see the same snapshot.
func (r *UserRepository) WithTx(ctx context.Context, fn func(rbac.HierarchyStore) error) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return errFailedStartTransaction(err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&UserRepository{db: r.db, q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return errFailedCommitTransaction(err)
	}

	return nil
}
