package handler

import (
	"fmt"
	"net/http"
	"time"

	"task-service/internal/audit"
	"task-service/internal/auth"
	"task-service/internal/domain/task"
	"task-service/internal/rbac"
	"task-service/internal/repository"
	"task-service/pkg/validator"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const componentTasks = "tasks"

type TaskHandler struct {
	taskRepo repository.TaskRepository
	resolver *rbac.Resolver
	audit    AuditRecorder
	pageSize int
}

func NewTaskHandler(taskRepo repository.TaskRepository, resolver *rbac.Resolver, auditLogger AuditRecorder, pageSize int) *TaskHandler {
	return &TaskHandler{
		taskRepo: taskRepo,
		resolver: resolver,
		audit:    auditLogger,
		pageSize: pageSize,
	}
}

type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	UserID      string     `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

func newTaskResponse(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		UserID:      t.UserID.String(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		DeletedAt:   t.DeletedAt,
	}
}

func newTaskListResponse(tasks []*task.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, newTaskResponse(t))
	}
	return out
}

type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
}

// List returns the tasks the caller may read. The effective read scope
// decides the row filter: all rows, the caller's subtree, just the
// caller's own rows, or nothing at all.
func (h *TaskHandler) List(c echo.Context) error {
	current, err := auth.GetUser(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	ctx := c.Request().Context()
	scope, err := h.resolver.FilterScope(ctx, current.ID, componentTasks, rbac.ActionRead)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	limit, offset := parsePagination(c, h.pageSize)

	var tasks []*task.Task
	switch scope {
	case rbac.ScopeAll:
		tasks, err = h.taskRepo.ListAll(ctx, limit, offset)
	case rbac.ScopeSubordinates:
		ids, idsErr := h.resolver.Hierarchy().SubordinateIDs(ctx, current.ID, true)
		if idsErr != nil {
			return RespondWithMappedError(c, idsErr)
		}
		tasks, err = h.taskRepo.ListByOwners(ctx, ids, limit, offset)
	case rbac.ScopeOwn:
		tasks, err = h.taskRepo.ListByOwners(ctx, []uuid.UUID{current.ID}, limit, offset)
	default:
		return respondError(c, http.StatusForbidden, msgPermissionDenied)
	}
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	return c.JSON(http.StatusOK, newTaskListResponse(tasks))
}

func (h *TaskHandler) Create(c echo.Context) error {
	current, err := auth.GetUser(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	ctx := c.Request().Context()
	allowed, err := h.resolver.Authorize(ctx, current.ID, componentTasks, rbac.ActionCreate, nil)
	if err != nil {
		return RespondWithMappedError(c, err)
	}
	if !allowed {
		return respondError(c, http.StatusForbidden, msgPermissionDenied)
	}

	var req CreateTaskRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	req.Title = validator.SanitizeText(req.Title)
	if err := validator.TaskTitle(req.Title); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	status := task.StatusTodo
	if req.Status != nil {
		status = task.Status(*req.Status)
		if !status.Valid() {
			return respondError(c, http.StatusBadRequest, fmt.Sprintf("invalid status %q", *req.Status))
		}
	}

	priority := task.PriorityMedium
	if req.Priority != nil {
		priority = task.Priority(*req.Priority)
		if !priority.Valid() {
			return respondError(c, http.StatusBadRequest, fmt.Sprintf("invalid priority %q", *req.Priority))
		}
	}

	if req.Description != nil {
		sanitized := validator.SanitizeText(*req.Description)
		req.Description = &sanitized
	}

	created, err := h.taskRepo.Create(ctx, task.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		UserID:      current.ID,
	})
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	h.audit.LogFromContext(c, audit.Record{
		UserID:      &current.ID,
		UserEmail:   &current.Email,
		Action:      audit.ActionCreate,
		TableName:   "tasks",
		RecordID:    created.ID.String(),
		NewValues:   map[string]any{"title": created.Title, "status": string(created.Status)},
		Description: fmt.Sprintf("Created task: %s", created.Title),
	})

	return c.JSON(http.StatusCreated, newTaskResponse(created))
}

// Get looks the task up before authorizing, so a missing task is a 404
// even for callers with no read permission at all.
func (h *TaskHandler) Get(c echo.Context) error {
	current, err := auth.GetUser(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	ctx := c.Request().Context()
	t, err := h.taskRepo.GetByID(ctx, id)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	allowed, err := h.resolver.Authorize(ctx, current.ID, componentTasks, rbac.ActionRead, &t.UserID)
	if err != nil {
		return RespondWithMappedError(c, err)
	}
	if !allowed {
		return respondError(c, http.StatusForbidden, msgPermissionDenied)
	}

	return c.JSON(http.StatusOK, newTaskResponse(t))
}

func (h *TaskHandler) Update(c echo.Context) error {
	current, err := auth.GetUser(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	ctx := c.Request().Context()
	existing, err := h.taskRepo.GetByID(ctx, id)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	allowed, err := h.resolver.Authorize(ctx, current.ID, componentTasks, rbac.ActionUpdate, &existing.UserID)
	if err != nil {
		return RespondWithMappedError(c, err)
	}
	if !allowed {
		return respondError(c, http.StatusForbidden, msgPermissionDenied)
	}

	var req UpdateTaskRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	input := task.UpdateTaskInput{}

	if req.Title != nil {
		sanitized := validator.SanitizeText(*req.Title)
		if err := validator.TaskTitle(sanitized); err != nil {
			return respondError(c, http.StatusBadRequest, err.Error())
		}
		input.Title = &sanitized
	}
	if req.Description != nil {
		sanitized := validator.SanitizeText(*req.Description)
		input.Description = &sanitized
	}
	if req.Status != nil {
		status := task.Status(*req.Status)
		if !status.Valid() {
			return respondError(c, http.StatusBadRequest, fmt.Sprintf("invalid status %q", *req.Status))
		}
		input.Status = &status
	}
	if req.Priority != nil {
		priority := task.Priority(*req.Priority)
		if !priority.Valid() {
			return respondError(c, http.StatusBadRequest, fmt.Sprintf("invalid priority %q", *req.Priority))
		}
		input.Priority = &priority
	}

	updated, err := h.taskRepo.Update(ctx, id, input)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	h.audit.LogFromContext(c, audit.Record{
		UserID:      &current.ID,
		UserEmail:   &current.Email,
		Action:      audit.ActionUpdate,
		TableName:   "tasks",
		RecordID:    updated.ID.String(),
		OldValues:   map[string]any{"title": existing.Title, "status": string(existing.Status)},
		NewValues:   map[string]any{"title": updated.Title, "status": string(updated.Status)},
		Description: fmt.Sprintf("Updated task: %s", updated.Title),
	})

	return c.JSON(http.StatusOK, newTaskResponse(updated))
}

// Delete soft deletes; the task can be restored from the trash.
func (h *TaskHandler) Delete(c echo.Context) error {
	current, err := auth.GetUser(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	ctx := c.Request().Context()
	existing, err := h.taskRepo.GetByID(ctx, id)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	allowed, err := h.resolver.Authorize(ctx, current.ID, componentTasks, rbac.ActionDelete, &existing.UserID)
	if err != nil {
		return RespondWithMappedError(c, err)
	}
	if !allowed {
		return respondError(c, http.StatusForbidden, msgPermissionDenied)
	}

	if err := h.taskRepo.SoftDelete(ctx, id); err != nil {
		return RespondWithMappedError(c, err)
	}

	h.audit.LogFromContext(c, audit.Record{
		UserID:      &current.ID,
		UserEmail:   &current.Email,
		Action:      audit.ActionDelete,
		TableName:   "tasks",
		RecordID:    id.String(),
		OldValues:   map[string]any{"title": existing.Title},
		Description: fmt.Sprintf("Deleted task: %s", existing.Title),
	})

	return c.NoContent(http.StatusNoContent)
}
