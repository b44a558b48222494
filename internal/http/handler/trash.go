package handler

import (
	"fmt"
	"net/http"

	"task-service/internal/audit"
	"task-service/internal/auth"
	"task-service/internal/trash"

	"github.com/labstack/echo/v4"
)

// TrashHandler is the admin recycle-bin surface: list, restore, and purge
// soft-deleted rows.
type TrashHandler struct {
	svc      *trash.Service
	audit    AuditRecorder
	pageSize int
}

func NewTrashHandler(svc *trash.Service, auditLogger AuditRecorder, pageSize int) *TrashHandler {
	return &TrashHandler{svc: svc, audit: auditLogger, pageSize: pageSize}
}

func (h *TrashHandler) ListTasks(c echo.Context) error {
	limit, offset := parsePagination(c, h.pageSize)

	tasks, err := h.svc.ListTasks(c.Request().Context(), limit, offset)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	return c.JSON(http.StatusOK, newTaskListResponse(tasks))
}

func (h *TrashHandler) ListUsers(c echo.Context) error {
	limit, offset := parsePagination(c, h.pageSize)

	users, err := h.svc.ListUsers(c.Request().Context(), limit, offset)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	return c.JSON(http.StatusOK, newUserListResponse(users))
}

func (h *TrashHandler) RestoreTask(c echo.Context) error {
	current, err := auth.GetUser(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	restored, err := h.svc.RestoreTask(c.Request().Context(), id)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	h.audit.LogFromContext(c, audit.Record{
		UserID:      &current.ID,
		UserEmail:   &current.Email,
		Action:      audit.ActionRestore,
		TableName:   "tasks",
		RecordID:    id.String(),
		Description: fmt.Sprintf("Restored task %s", restored.Title),
	})

	return c.JSON(http.StatusOK, newTaskResponse(restored))
}

func (h *TrashHandler) RestoreUser(c echo.Context) error {
	current, err := auth.GetUser(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	restored, err := h.svc.RestoreUser(c.Request().Context(), id)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	h.audit.LogFromContext(c, audit.Record{
		UserID:      &current.ID,
		UserEmail:   &current.Email,
		Action:      audit.ActionRestore,
		TableName:   "users",
		RecordID:    id.String(),
		Description: fmt.Sprintf("Restored user %s", restored.Email),
	})

	return c.JSON(http.StatusOK, newUserResponse(restored))
}

func (h *TrashHandler) PurgeTask(c echo.Context) error {
	current, err := auth.GetUser(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	if err := h.svc.PurgeTask(c.Request().Context(), id); err != nil {
		return RespondWithMappedError(c, err)
	}

	h.audit.LogFromContext(c, audit.Record{
		UserID:      &current.ID,
		UserEmail:   &current.Email,
		Action:      audit.ActionDelete,
		TableName:   "tasks",
		RecordID:    id.String(),
		Description: "Permanently deleted task from trash",
	})

	return c.NoContent(http.StatusNoContent)
}

func (h *TrashHandler) PurgeUser(c echo.Context) error {
	current, err := auth.GetUser(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	if err := h.svc.PurgeUser(c.Request().Context(), id); err != nil {
		return RespondWithMappedError(c, err)
	}

	h.audit.LogFromContext(c, audit.Record{
		UserID:      &current.ID,
		UserEmail:   &current.Email,
		Action:      audit.ActionDelete,
		TableName:   "users",
		RecordID:    id.String(),
		Description: "Permanently deleted user from trash",
	})

	return c.NoContent(http.StatusNoContent)
}

// EmptyTasks purges every trashed task in one statement.
func (h *TrashHandler) EmptyTasks(c echo.Context) error {
	current, err := auth.GetUser(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	purged, err := h.svc.EmptyTasks(c.Request().Context())
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	h.audit.LogFromContext(c, audit.Record{
		UserID:      &current.ID,
		UserEmail:   &current.Email,
		Action:      audit.ActionDelete,
		TableName:   "tasks",
		Description: fmt.Sprintf("Emptied task trash (%d purged)", purged),
	})

	return c.JSON(http.StatusOK, map[string]any{
		jsonKeyMessage: msgTrashEmptied,
		"purged":       purged,
	})
}
