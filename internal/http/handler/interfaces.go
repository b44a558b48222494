package handler

import (
	"context"
	"io"
	"time"

	"task-service/internal/audit"

	"github.com/labstack/echo/v4"
)

// Consumer-side interfaces defined by handlers.

// AuditRecorder is the write path handlers use to record audit entries.
// *audit.Logger satisfies it; tests substitute a no-op.
type AuditRecorder interface {
	LogFromContext(c echo.Context, rec audit.Record)
}

// ObjectStore is the S3 surface the upload handler needs.
type ObjectStore interface {
	Upload(ctx context.Context, src io.Reader, objectKey, contentType string) error
	PresignDownload(objectKey, filename string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, objectKey string) error
}
