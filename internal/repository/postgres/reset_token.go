package postgres

import (
	"context"
	"time"

	apperrors "task-service/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ResetTokenRepository struct {
	db *DB
}

func NewResetTokenRepository(db *DB) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

// Create replaces any outstanding token for the user, so only the most
// recently requested reset link works.
func (r *ResetTokenRepository) Create(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	query := `
		INSERT INTO password_reset_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at, created_at = NOW()
	`

	if _, err := r.db.Pool.Exec(ctx, query, userID, token, expiresAt); err != nil {
		return errFailedCreateResetToken(err)
	}

	return nil
}

// Consume deletes the token row, making every token single use.
func (r *ResetTokenRepository) Consume(ctx context.Context, token string) (uuid.UUID, error) {
	query := `
		DELETE FROM password_reset_tokens
		WHERE token = $1 AND expires_at > NOW()
		RETURNING user_id
	`

	var userID uuid.UUID
	err := r.db.Pool.QueryRow(ctx, query, token).Scan(&userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return uuid.Nil, apperrors.BadRequest(errResetTokenInvalid)
		}
		return uuid.Nil, errFailedConsumeResetToken(err)
	}

	return userID, nil
}

func (r *ResetTokenRepository) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := r.db.Pool.Exec(ctx, "DELETE FROM password_reset_tokens WHERE expires_at <= NOW()")
	if err != nil {
		return 0, errFailedPurgeResetTokens(err)
	}
	return result.RowsAffected(), nil
}
