package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"task-service/internal/audit"
	"task-service/internal/auth"
	"task-service/internal/domain/user"
	"task-service/internal/repository"
	apperrors "task-service/pkg/errors"
	"task-service/pkg/password"
	"task-service/pkg/validator"

	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	userRepo repository.UserRepository
	audit    AuditRecorder
	pageSize int
}

func NewUserHandler(userRepo repository.UserRepository, auditLogger AuditRecorder, pageSize int) *UserHandler {
	return &UserHandler{
		userRepo: userRepo,
		audit:    auditLogger,
		pageSize: pageSize,
	}
}

type UserResponse struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FirstName *string    `json:"first_name"`
	LastName  *string    `json:"last_name"`
	Note      *string    `json:"note,omitempty"`
	IsActive  bool       `json:"is_active"`
	IsAdmin   bool       `json:"is_admin"`
	ManagerID *string    `json:"manager_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func newUserResponse(u *user.User) UserResponse {
	resp := UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Note:      u.Note,
		IsActive:  u.IsActive,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		DeletedAt: u.DeletedAt,
	}
	if u.ManagerID != nil {
		managerID := u.ManagerID.String()
		resp.ManagerID = &managerID
	}
	return resp
}

func newUserListResponse(users []*user.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResponse(u))
	}
	return out
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Note      *string `json:"note,omitempty"`
}

type AdminCreateUserRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	IsAdmin   bool    `json:"is_admin,omitempty"`
}

type AdminUpdateUserRequest struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Note      *string `json:"note,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
	IsAdmin   *bool   `json:"is_admin,omitempty"`
}

func (h *UserHandler) List(c echo.Context) error {
	limit, offset := parsePagination(c, h.pageSize)

	users, err := h.userRepo.List(c.Request().Context(), limit, offset)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	return c.JSON(http.StatusOK, newUserListResponse(users))
}

func (h *UserHandler) Me(c echo.Context) error {
	current, err := auth.GetUser(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	return c.JSON(http.StatusOK, newUserResponse(current))
}

func (h *UserHandler) UpdateMe(c echo.Context) error {
	current, err := auth.GetUser(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	var req UpdateProfileRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	if req.FirstName != nil {
		if err := validator.PersonName(*req.FirstName); err != nil {
			return respondError(c, http.StatusBadRequest, err.Error())
		}
	}
	if req.LastName != nil {
		if err := validator.PersonName(*req.LastName); err != nil {
			return respondError(c, http.StatusBadRequest, err.Error())
		}
	}
	if req.Note != nil {
		sanitized := validator.SanitizeText(*req.Note)
		if err := validator.Note(sanitized); err != nil {
			return respondError(c, http.StatusBadRequest, err.Error())
		}
		req.Note = &sanitized
	}

	updated, err := h.userRepo.Update(c.Request().Context(), current.ID, user.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Note:      req.Note,
	})
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	h.audit.LogFromContext(c, audit.Record{
		UserID:      &current.ID,
		UserEmail:   &current.Email,
		Action:      audit.ActionUpdate,
		TableName:   "users",
		RecordID:    updated.ID.String(),
		Description: fmt.Sprintf("Profile updated: %s", updated.Email),
	})

	return c.JSON(http.StatusOK, newUserResponse(updated))
}

// Create provisions an account directly, bypassing registration. Admin only.
func (h *UserHandler) Create(c echo.Context) error {
	current, err := auth.GetUser(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	var req AdminCreateUserRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validator.Email(req.Email); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	if err := validator.Password(req.Password); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	if req.FirstName != nil {
		if err := validator.PersonName(*req.FirstName); err != nil {
			return respondError(c, http.StatusBadRequest, err.Error())
		}
	}
	if req.LastName != nil {
		if err := validator.PersonName(*req.LastName); err != nil {
			return respondError(c, http.StatusBadRequest, err.Error())
		}
	}

	passwordHash, err := password.Hash(req.Password)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, msgPasswordProcessFail)
	}

	created, err := h.userRepo.Create(c.Request().Context(), user.CreateUserInput{
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		IsAdmin:      req.IsAdmin,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return respondError(c, http.StatusConflict, msgEmailAlreadyExists)
		}
		return RespondWithMappedError(c, err)
	}

	h.audit.LogFromContext(c, audit.Record{
		UserID:      &current.ID,
		UserEmail:   &current.Email,
		Action:      audit.ActionCreate,
		TableName:   "users",
		RecordID:    created.ID.String(),
		NewValues:   map[string]any{"email": created.Email, "is_admin": created.IsAdmin},
		Description: fmt.Sprintf("User created by admin: %s", created.Email),
	})

	return c.JSON(http.StatusCreated, newUserResponse(created))
}

func (h *UserHandler) Get(c echo.Context) error {
	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	u, err := h.userRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	return c.JSON(http.StatusOK, newUserResponse(u))
}

func (h *UserHandler) Update(c echo.Context) error {
	current, err := auth.GetUser(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	var req AdminUpdateUserRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	if req.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*req.Email))
		if err := validator.Email(normalized); err != nil {
			return respondError(c, http.StatusBadRequest, err.Error())
		}
		req.Email = &normalized
	}
	if req.FirstName != nil {
		if err := validator.PersonName(*req.FirstName); err != nil {
			return respondError(c, http.StatusBadRequest, err.Error())
		}
	}
	if req.LastName != nil {
		if err := validator.PersonName(*req.LastName); err != nil {
			return respondError(c, http.StatusBadRequest, err.Error())
		}
	}
	if req.Note != nil {
		sanitized := validator.SanitizeText(*req.Note)
		if err := validator.Note(sanitized); err != nil {
			return respondError(c, http.StatusBadRequest, err.Error())
		}
		req.Note = &sanitized
	}

	before, err := h.userRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	updated, err := h.userRepo.Update(c.Request().Context(), id, user.UpdateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Note:      req.Note,
		IsActive:  req.IsActive,
		IsAdmin:   req.IsAdmin,
	})
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	h.audit.LogFromContext(c, audit.Record{
		UserID:      &current.ID,
		UserEmail:   &current.Email,
		Action:      audit.ActionUpdate,
		TableName:   "users",
		RecordID:    updated.ID.String(),
		OldValues:   map[string]any{"email": before.Email, "is_active": before.IsActive, "is_admin": before.IsAdmin},
		NewValues:   map[string]any{"email": updated.Email, "is_active": updated.IsActive, "is_admin": updated.IsAdmin},
		Description: fmt.Sprintf("User updated: %s", updated.Email),
	})

	return c.JSON(http.StatusOK, newUserResponse(updated))
}

// Delete soft deletes the user; the row moves to the trash and can be
// restored from there.
func (h *UserHandler) Delete(c echo.Context) error {
	current, err := auth.GetUser(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	id, err := parseUUIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	if id == current.ID {
		return respondError(c, http.StatusBadRequest, msgCannotDeleteSelf)
	}

	target, err := h.userRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	if err := h.userRepo.SoftDelete(c.Request().Context(), id); err != nil {
		return RespondWithMappedError(c, err)
	}

	h.audit.LogFromContext(c, audit.Record{
		UserID:      &current.ID,
		UserEmail:   &current.Email,
		Action:      audit.ActionDelete,
		TableName:   "users",
		RecordID:    id.String(),
		OldValues:   map[string]any{"email": target.Email},
		Description: fmt.Sprintf("User deleted: %s", target.Email),
	})

	return c.NoContent(http.StatusNoContent)
}
