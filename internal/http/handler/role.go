package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"task-service/internal/audit"
	"task-service/internal/auth"
	"task-service/internal/domain/role"
	"task-service/internal/rbac"
	"task-service/internal/repository"
	apperrors "task-service/pkg/errors"
	"task-service/pkg/validator"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RoleHandler serves the admin RBAC surface: role documents, role
// assignments, manager hierarchy, and effective permission inspection.
type RoleHandler struct {
	roleRepo repository.RoleRepository
	userRepo repository.UserRepository
	resolver *rbac.Resolver
	audit    AuditRecorder
}

func NewRoleHandler(roleRepo repository.RoleRepository, userRepo repository.UserRepository, resolver *rbac.Resolver, auditLogger AuditRecorder) *RoleHandler {
	return &RoleHandler{
		roleRepo: roleRepo,
		userRepo: userRepo,
		resolver: resolver,
		audit:    auditLogger,
	}
}

type RoleResponse struct {
	ID          string             `json:"id"`
	Component   string             `json:"component"`
	Name        string             `json:"name"`
	Description *string            `json:"description"`
	Permissions rbac.PermissionSet `json:"permissions"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func newRoleResponse(r *role.Role) RoleResponse {
	return RoleResponse{
		ID:          r.ID.String(),
		Component:   r.Component,
		Name:        r.Name,
		Description: r.Description,
		Permissions: r.Permissions,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func newRoleListResponse(roles []*role.Role) []RoleResponse {
	out := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, newRoleResponse(r))
	}
	return out
}

type CreateRoleRequest struct {
	Component   string          `json:"component"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Permissions json.RawMessage `json:"permissions"`
}

type UpdateRoleRequest struct {
	Description *string         `json:"description,omitempty"`
	Permissions json.RawMessage `json:"permissions,omitempty"`
}

type SetManagerRequest struct {
	ManagerID *string `json:"manager_id"`
}

func (h *RoleHandler) ListRoles(c echo.Context) error {
	component := c.QueryParam(queryComponent)
	if component != "" {
		if err := validator.Component(component); err != nil {
			return respondError(c, http.StatusBadRequest, err.Error())
		}
	}

	roles, err := h.roleRepo.List(c.Request().Context(), component)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	return c.JSON(http.StatusOK, newRoleListResponse(roles))
}

func (h *RoleHandler) CreateRole(c echo.Context) error {
	current, err := auth.GetUser(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	var req CreateRoleRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	req.Component = strings.TrimSpace(req.Component)
	if err := validator.Component(req.Component); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	if err := validator.RoleName(req.Name); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	permissions, err := parsePermissions(req.Permissions)
	if err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	created, err := h.roleRepo.Create(c.Request().Context(), role.CreateRoleInput{
		Component:   req.Component,
		Name:        req.Name,
		Description: req.Description,
		Permissions: permissions,
	})
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	h.audit.LogFromContext(c, audit.Record{
		UserID:      &current.ID,
		UserEmail:   &current.Email,
		Action:      audit.ActionCreate,
		TableName:   "roles",
		RecordID:    created.ID.String(),
		NewValues:   map[string]any{"component": created.Component, "name": created.Name},
		Description: fmt.Sprintf("Created role %s:%s", created.Component, created.Name),
	})

	return c.JSON(http.StatusCreated, newRoleResponse(created))
}

func (h *RoleHandler) GetRole(c echo.Context) error {
	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	found, err := h.roleRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	return c.JSON(http.StatusOK, newRoleResponse(found))
}

func (h *RoleHandler) UpdateRole(c echo.Context) error {
	current, err := auth.GetUser(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	var req UpdateRoleRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	input := role.UpdateRoleInput{Description: req.Description}
	if len(req.Permissions) > 0 {
		permissions, err := parsePermissions(req.Permissions)
		if err != nil {
			return respondError(c, http.StatusBadRequest, err.Error())
		}
		input.Permissions = permissions
	}

	updated, err := h.roleRepo.Update(c.Request().Context(), id, input)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	h.audit.LogFromContext(c, audit.Record{
		UserID:      &current.ID,
		UserEmail:   &current.Email,
		Action:      audit.ActionUpdate,
		TableName:   "roles",
		RecordID:    updated.ID.String(),
		NewValues:   map[string]any{"component": updated.Component, "name": updated.Name},
		Description: fmt.Sprintf("Updated role %s:%s", updated.Component, updated.Name),
	})

	return c.JSON(http.StatusOK, newRoleResponse(updated))
}

// DeleteRole cascades assignments away, so every holder loses the grant
// on their next request.
func (h *RoleHandler) DeleteRole(c echo.Context) error {
	current, err := auth.GetUser(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	existing, err := h.roleRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	if err := h.roleRepo.Delete(c.Request().Context(), id); err != nil {
		return RespondWithMappedError(c, err)
	}

	h.audit.LogFromContext(c, audit.Record{
		UserID:      &current.ID,
		UserEmail:   &current.Email,
		Action:      audit.ActionDelete,
		TableName:   "roles",
		RecordID:    id.String(),
		OldValues:   map[string]any{"component": existing.Component, "name": existing.Name},
		Description: fmt.Sprintf("Deleted role %s:%s", existing.Component, existing.Name),
	})

	return c.NoContent(http.StatusNoContent)
}

func (h *RoleHandler) AssignRole(c echo.Context) error {
	current, err := auth.GetUser(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	userID, err := parseUUIDParam(c, paramUserID)
	if err != nil {
		return handleHTTPError(c, err)
	}
	roleID, err := parseUUIDParam(c, paramRoleID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	ctx := c.Request().Context()
	target, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return RespondWithMappedError(c, err)
	}
	assigned, err := h.roleRepo.GetByID(ctx, roleID)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	if err := h.roleRepo.Assign(ctx, userID, roleID); err != nil {
		return RespondWithMappedError(c, err)
	}

	h.audit.LogFromContext(c, audit.Record{
		UserID:      &current.ID,
		UserEmail:   &current.Email,
		Action:      audit.ActionCreate,
		TableName:   "user_roles",
		RecordID:    fmt.Sprintf("%s:%s", userID, roleID),
		NewValues:   map[string]any{"user_id": userID.String(), "role_id": roleID.String()},
		Description: fmt.Sprintf("Assigned role %s:%s to %s", assigned.Component, assigned.Name, target.Email),
	})

	return c.NoContent(http.StatusNoContent)
}

func (h *RoleHandler) UnassignRole(c echo.Context) error {
	current, err := auth.GetUser(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	userID, err := parseUUIDParam(c, paramUserID)
	if err != nil {
		return handleHTTPError(c, err)
	}
	roleID, err := parseUUIDParam(c, paramRoleID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	if err := h.roleRepo.Unassign(c.Request().Context(), userID, roleID); err != nil {
		return RespondWithMappedError(c, err)
	}

	h.audit.LogFromContext(c, audit.Record{
		UserID:      &current.ID,
		UserEmail:   &current.Email,
		Action:      audit.ActionDelete,
		TableName:   "user_roles",
		RecordID:    fmt.Sprintf("%s:%s", userID, roleID),
		OldValues:   map[string]any{"user_id": userID.String(), "role_id": roleID.String()},
		Description: fmt.Sprintf("Unassigned role %s from user %s", roleID, userID),
	})

	return c.NoContent(http.StatusNoContent)
}

func (h *RoleHandler) ListUserRoles(c echo.Context) error {
	userID, err := parseUUIDParam(c, paramUserID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	ctx := c.Request().Context()
	if _, err := h.userRepo.GetByID(ctx, userID); err != nil {
		return RespondWithMappedError(c, err)
	}

	roles, err := h.roleRepo.ListUserRoles(ctx, userID)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	return c.JSON(http.StatusOK, newRoleListResponse(roles))
}

// GetUserPermissions returns the union of the user's role documents for
// one component, the same view the resolver authorizes with.
func (h *RoleHandler) GetUserPermissions(c echo.Context) error {
	userID, err := parseUUIDParam(c, paramUserID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	component := c.QueryParam(queryComponent)
	if err := validator.Component(component); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	if _, err := h.userRepo.GetByID(ctx, userID); err != nil {
		return RespondWithMappedError(c, err)
	}

	effective, err := h.resolver.EffectivePermissions(ctx, userID, component)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"user_id":     userID.String(),
		"component":   component,
		"permissions": effective,
	})
}

// SetManager assigns, replaces, or clears a user's manager. The cycle
// check runs inside the same transaction as the write.
func (h *RoleHandler) SetManager(c echo.Context) error {
	current, err := auth.GetUser(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	userID, err := parseUUIDParam(c, paramUserID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	var req SetManagerRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	var managerID *uuid.UUID
	if req.ManagerID != nil {
		parsed, err := uuid.Parse(*req.ManagerID)
		if err != nil {
			return respondError(c, http.StatusBadRequest, msgInvalidIDParam)
		}
		managerID = &parsed
	}

	ctx := c.Request().Context()
	target, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return RespondWithMappedError(c, err)
	}
	oldManager := target.ManagerID

	if err := h.resolver.Hierarchy().SetManager(ctx, userID, managerID); err != nil {
		switch {
		case errors.Is(err, rbac.ErrCycle):
			return respondError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, rbac.ErrNotFound):
			return respondError(c, http.StatusNotFound, msgManagerNotFound)
		}
		return RespondWithMappedError(c, err)
	}

	description := fmt.Sprintf("Removed manager from user %s", target.Email)
	if managerID != nil {
		description = fmt.Sprintf("Assigned manager %s to user %s", managerID, target.Email)
	}

	h.audit.LogFromContext(c, audit.Record{
		UserID:      &current.ID,
		UserEmail:   &current.Email,
		Action:      audit.ActionUpdate,
		TableName:   "users",
		RecordID:    userID.String(),
		OldValues:   map[string]any{"manager_id": uuidPtrString(oldManager)},
		NewValues:   map[string]any{"manager_id": uuidPtrString(managerID)},
		Description: description,
	})

	return c.NoContent(http.StatusNoContent)
}

// GetHierarchy returns the user's manager chain and full subtree.
func (h *RoleHandler) GetHierarchy(c echo.Context) error {
	userID, err := parseUUIDParam(c, paramUserID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	ctx := c.Request().Context()
	target, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	chain, err := h.resolver.Hierarchy().ManagerChain(ctx, userID)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	subordinates, err := h.resolver.Hierarchy().SubordinateIDs(ctx, userID, false)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"user_id":       target.ID.String(),
		"email":         target.Email,
		"manager_chain": uuidStrings(chain),
		"subordinates":  uuidStrings(subordinates),
	})
}

// GetSubordinates lists every transitive subordinate of the user.
func (h *RoleHandler) GetSubordinates(c echo.Context) error {
	userID, err := parseUUIDParam(c, paramUserID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	ctx := c.Request().Context()
	if _, err := h.userRepo.GetByID(ctx, userID); err != nil {
		return RespondWithMappedError(c, err)
	}

	ids, err := h.resolver.Hierarchy().SubordinateIDs(ctx, userID, false)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"user_id":      userID.String(),
		"subordinates": uuidStrings(ids),
	})
}

func parsePermissions(raw json.RawMessage) (rbac.PermissionSet, error) {
	if len(raw) == 0 {
		return nil, apperrors.BadRequest(msgInvalidPermission)
	}

	var permissions rbac.PermissionSet
	if err := json.Unmarshal(raw, &permissions); err != nil {
		return nil, apperrors.BadRequest(err.Error())
	}
	if err := permissions.Validate(); err != nil {
		return nil, apperrors.BadRequest(err.Error())
	}
	return permissions, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func uuidPtrString(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}
