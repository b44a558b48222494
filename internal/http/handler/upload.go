package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"task-service/internal/audit"
	"task-service/internal/auth"
	"task-service/internal/domain/upload"
	"task-service/internal/repository"
	"task-service/pkg/validator"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const uploadFormField = "file"

// UploadHandler stores files in S3 and their metadata in Postgres. Objects
// are keyed by upload id, never by the client-supplied filename.
type UploadHandler struct {
	uploadRepo    repository.UploadRepository
	store         ObjectStore
	audit         AuditRecorder
	maxUploadSize int64
	presignExpiry time.Duration
	pageSize      int
}

func NewUploadHandler(uploadRepo repository.UploadRepository, store ObjectStore, auditLogger AuditRecorder, maxUploadSize int64, presignExpiry time.Duration, pageSize int) *UploadHandler {
	return &UploadHandler{
		uploadRepo:    uploadRepo,
		store:         store,
		audit:         auditLogger,
		maxUploadSize: maxUploadSize,
		presignExpiry: presignExpiry,
		pageSize:      pageSize,
	}
}

type UploadResponse struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"original_name"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
}

func newUploadResponse(u *upload.Upload) UploadResponse {
	return UploadResponse{
		ID:           u.ID.String(),
		OriginalName: u.OriginalName,
		ContentType:  u.ContentType,
		Size:         u.Size,
		CreatedAt:    u.CreatedAt,
	}
}

func (h *UploadHandler) Create(c echo.Context) error {
	current, err := auth.GetUser(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	file, err := c.FormFile(uploadFormField)
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgFileRequired)
	}

	if file.Size > h.maxUploadSize {
		return respondError(c, http.StatusRequestEntityTooLarge, msgFileTooLarge)
	}

	name := filepath.Base(file.Filename)
	if err := validator.FileName(name); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	// The allowlist check runs on the raw header, so a missing content
	// type is rejected here rather than defaulted past the validator.
	contentType := file.Header.Get(echo.HeaderContentType)
	if err := validator.ContentType(contentType); err != nil {
		return respondError(c, http.StatusUnsupportedMediaType, err.Error())
	}

	src, err := file.Open()
	if err != nil {
		return respondError(c, http.StatusInternalServerError, msgUploadFailed)
	}
	defer src.Close()

	ctx := c.Request().Context()
	id := uuid.New()
	objectKey := fmt.Sprintf("uploads/%s/%s", current.ID, id)

	if err := h.store.Upload(ctx, src, objectKey, contentType); err != nil {
		c.Logger().Errorf("s3 upload failed: %v", err)
		return respondError(c, http.StatusInternalServerError, msgUploadFailed)
	}

	created, err := h.uploadRepo.Create(ctx, upload.CreateUploadInput{
		UserID:       current.ID,
		ObjectKey:    objectKey,
		OriginalName: name,
		ContentType:  contentType,
		Size:         file.Size,
	})
	if err != nil {
		// Metadata write failed; do not leave an orphaned object behind.
		if delErr := h.store.Delete(ctx, objectKey); delErr != nil {
			c.Logger().Errorf("orphan cleanup failed for %s: %v", objectKey, delErr)
		}
		return RespondWithMappedError(c, err)
	}

	h.audit.LogFromContext(c, audit.Record{
		UserID:      &current.ID,
		UserEmail:   &current.Email,
		Action:      audit.ActionCreate,
		TableName:   "uploads",
		RecordID:    created.ID.String(),
		NewValues:   map[string]any{"original_name": created.OriginalName, "size": created.Size},
		Description: fmt.Sprintf("Uploaded file %s", created.OriginalName),
	})

	return c.JSON(http.StatusCreated, newUploadResponse(created))
}

// List returns the caller's own uploads.
func (h *UploadHandler) List(c echo.Context) error {
	current, err := auth.GetUser(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	limit, offset := parsePagination(c, h.pageSize)

	uploads, err := h.uploadRepo.ListByUser(c.Request().Context(), current.ID, limit, offset)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	out := make([]UploadResponse, 0, len(uploads))
	for _, u := range uploads {
		out = append(out, newUploadResponse(u))
	}
	return c.JSON(http.StatusOK, out)
}

// DownloadURL presigns a time-limited link for the object. Only the owner
// or an admin may request one.
func (h *UploadHandler) DownloadURL(c echo.Context) error {
	current, err := auth.GetUser(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	found, err := h.uploadRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	if found.UserID != current.ID && !current.IsAdmin {
		return respondError(c, http.StatusForbidden, msgPermissionDenied)
	}

	url, err := h.store.PresignDownload(found.ObjectKey, found.OriginalName, h.presignExpiry)
	if err != nil {
		c.Logger().Errorf("presign failed for %s: %v", found.ObjectKey, err)
		return respondError(c, http.StatusInternalServerError, msgDownloadFailed)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"download_url": url,
		"expires_in":   int64(h.presignExpiry.Seconds()),
	})
}

func (h *UploadHandler) Delete(c echo.Context) error {
	current, err := auth.GetUser(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	ctx := c.Request().Context()
	found, err := h.uploadRepo.GetByID(ctx, id)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	if found.UserID != current.ID && !current.IsAdmin {
		return respondError(c, http.StatusForbidden, msgPermissionDenied)
	}

	if err := h.store.Delete(ctx, found.ObjectKey); err != nil {
		c.Logger().Errorf("s3 delete failed for %s: %v", found.ObjectKey, err)
		return respondError(c, http.StatusInternalServerError, msgUploadFailed)
	}

	if err := h.uploadRepo.Delete(ctx, id); err != nil {
		return RespondWithMappedError(c, err)
	}

	h.audit.LogFromContext(c, audit.Record{
		UserID:      &current.ID,
		UserEmail:   &current.Email,
		Action:      audit.ActionDelete,
		TableName:   "uploads",
		RecordID:    id.String(),
		OldValues:   map[string]any{"original_name": found.OriginalName},
		Description: fmt.Sprintf("Deleted file %s", found.OriginalName),
	})

	return c.NoContent(http.StatusNoContent)
}
