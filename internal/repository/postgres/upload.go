package postgres

import (
	"context"

	"task-service/internal/domain/upload"
	apperrors "task-service/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const uploadColumns = `id, user_id, object_key, original_name, content_type, size, created_at`

type UploadRepository struct {
	db *DB
}

func NewUploadRepository(db *DB) *UploadRepository {
	return &UploadRepository{db: db}
}

func scanUpload(row pgx.Row) (*upload.Upload, error) {
	u := &upload.Upload{}
	err := row.Scan(
		&u.ID,
		&u.UserID,
		&u.ObjectKey,
		&u.OriginalName,
		&u.ContentType,
		&u.Size,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UploadRepository) Create(ctx context.Context, input upload.CreateUploadInput) (*upload.Upload, error) {
	query := `
		INSERT INTO uploads (user_id, object_key, original_name, content_type, size)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + uploadColumns

	u, err := scanUpload(r.db.Pool.QueryRow(ctx, query,
		input.UserID, input.ObjectKey, input.OriginalName, input.ContentType, input.Size))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		return nil, errFailedCreateUpload(err)
	}

	return u, nil
}

func (r *UploadRepository) GetByID(ctx context.Context, id uuid.UUID) (*upload.Upload, error) {
	query := `SELECT ` + uploadColumns + ` FROM uploads WHERE id = $1`

	u, err := scanUpload(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errUploadNotFound)
		}
		return nil, errFailedGetUpload(err)
	}

	return u, nil
}

func (r *UploadRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*upload.Upload, error) {
	query := `
		SELECT ` + uploadColumns + `
		FROM uploads
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, errFailedListUploads(err)
	}
	defer rows.Close()

	var uploads []*upload.Upload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, errFailedScanUpload(err)
		}
		uploads = append(uploads, u)
	}

	return uploads, rows.Err()
}

func (r *UploadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Pool.Exec(ctx, "DELETE FROM uploads WHERE id = $1", id)
	if err != nil {
		return errFailedDeleteUpload(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errUploadNotFound)
	}

	return nil
}
