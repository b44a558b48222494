package postgres

import (
	"context"
	"fmt"

	"task-service/internal/domain/task"
	apperrors "task-service/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const taskColumns = `id, title, description, status, priority, user_id,
	created_at, updated_at, deleted_at`

type TaskRepository struct {
	db *DB
}

func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.UserID,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TaskRepository) Create(ctx context.Context, input task.CreateTaskInput) (*task.Task, error) {
	query := `
		INSERT INTO tasks (title, description, status, priority, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + taskColumns

	t, err := scanTask(r.db.Pool.QueryRow(ctx, query,
		input.Title, input.Description, input.Status, input.Priority, input.UserID))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		return nil, errFailedCreateTask(err)
	}

	return t, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND deleted_at IS NULL`

	t, err := scanTask(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errTaskNotFound)
		}
		return nil, errFailedGetTask(err)
	}

	return t, nil
}

func (r *TaskRepository) ListAll(ctx context.Context, limit, offset int) ([]*task.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	return r.listTasks(ctx, query, limit, offset)
}

func (r *TaskRepository) ListByOwners(ctx context.Context, ownerIDs []uuid.UUID, limit, offset int) ([]*task.Task, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = ANY($1) AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.listTasks(ctx, query, ownerIDs, limit, offset)
}

func (r *TaskRepository) ListDeleted(ctx context.Context, limit, offset int) ([]*task.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE deleted_at IS NOT NULL
		ORDER BY deleted_at DESC
		LIMIT $1 OFFSET $2
	`
	return r.listTasks(ctx, query, limit, offset)
}

func (r *TaskRepository) listTasks(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errFailedListTasks(err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, errFailedScanTask(err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, errIterateTasks(err)
	}

	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, id uuid.UUID, input task.UpdateTaskInput) (*task.Task, error) {
	query := "UPDATE tasks SET updated_at = NOW()"
	args := []any{id}
	argCount := 1

	set := func(column string, value any) {
		argCount++
		query += fmt.Sprintf(", %s = $%d", column, argCount)
		args = append(args, value)
	}

	if input.Title != nil {
		set("title", *input.Title)
	}
	if input.Description != nil {
		set("description", *input.Description)
	}
	if input.Status != nil {
		set("status", *input.Status)
	}
	if input.Priority != nil {
		set("priority", *input.Priority)
	}

	query += " WHERE id = $1 AND deleted_at IS NULL RETURNING " + taskColumns

	t, err := scanTask(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errTaskNotFound)
		}
		return nil, errFailedUpdateTask(err)
	}

	return t, nil
}

func (r *TaskRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := "UPDATE tasks SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL"

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return errFailedDeleteTask(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errTaskNotFound)
	}

	return nil
}

func (r *TaskRepository) Restore(ctx context.Context, id uuid.UUID) error {
	query := "UPDATE tasks SET deleted_at = NULL, updated_at = NOW() WHERE id = $1 AND deleted_at IS NOT NULL"

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return errFailedRestoreTask(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errTaskNotFound)
	}

	return nil
}

func (r *TaskRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	query := "DELETE FROM tasks WHERE id = $1 AND deleted_at IS NOT NULL"

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return errFailedDeleteTask(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errTaskNotFound)
	}

	return nil
}

func (r *TaskRepository) EmptyTrash(ctx context.Context) (int64, error) {
	result, err := r.db.Pool.Exec(ctx, "DELETE FROM tasks WHERE deleted_at IS NOT NULL")
	if err != nil {
		return 0, errFailedDeleteTask(err)
	}
	return result.RowsAffected(), nil
}
