package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"task-service/internal/audit"
	"task-service/internal/auth"
	"task-service/internal/config"
	"task-service/internal/domain/user"
	"task-service/internal/repository"
	apperrors "task-service/pkg/errors"
	"task-service/pkg/mailer"
	"task-service/pkg/password"
	"task-service/pkg/validator"

	"github.com/labstack/echo/v4"
)

// Pre-computed bcrypt hash (cost 12) used to equalize timing on failed lookups.
// The actual plaintext is irrelevant — this just ensures constant-time response.
const dummyBcryptHash = "$2a$12$dWR5CQpS4zNHLavLSIr4o.P6QDQEUJKv7mJ7WekUHHqyRSRMJzH0S"

type AuthHandler struct {
	userRepo   repository.UserRepository
	resetRepo  repository.ResetTokenRepository
	jwtService *auth.JWTService
	mail       *mailer.Mailer
	audit      AuditRecorder
	app        *config.AppConfig
}

func NewAuthHandler(
	userRepo repository.UserRepository,
	resetRepo repository.ResetTokenRepository,
	jwtService *auth.JWTService,
	mail *mailer.Mailer,
	auditLogger AuditRecorder,
	app *config.AppConfig,
) *AuthHandler {
	return &AuthHandler{
		userRepo:   userRepo,
		resetRepo:  resetRepo,
		jwtService: jwtService,
		mail:       mail,
		audit:      auditLogger,
		app:        app,
	}
}

type RegisterRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
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
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return respondError(c, http.StatusConflict, msgEmailAlreadyExists)
		}
		return RespondWithMappedError(c, err)
	}

	h.audit.LogFromContext(c, audit.Record{
		UserID:      &created.ID,
		UserEmail:   &created.Email,
		Action:      audit.ActionCreate,
		TableName:   "users",
		RecordID:    created.ID.String(),
		NewValues:   map[string]any{"email": created.Email},
		Description: fmt.Sprintf("User registered: %s", created.Email),
	})

	if h.mail.Enabled() {
		if err := h.mail.SendWelcome(created.Email, created.FullName(), h.app.BaseURL); err != nil {
			c.Logger().Warnf("welcome email failed for %s: %v", created.Email, err)
		}
	}

	return c.JSON(http.StatusCreated, newUserResponse(created))
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		password.Verify("", dummyBcryptHash)
		return respondError(c, http.StatusUnauthorized, msgInvalidCredentials)
	}

	u, err := h.userRepo.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		// Run bcrypt against a dummy hash to prevent timing oracle.
		// Without this, "user not found" returns in ~1ms while
		// "wrong password" takes ~200ms, leaking email existence.
		password.Verify(req.Password, dummyBcryptHash)
		return respondError(c, http.StatusUnauthorized, msgInvalidCredentials)
	}

	if !password.Verify(req.Password, u.PasswordHash) {
		return respondError(c, http.StatusUnauthorized, msgInvalidCredentials)
	}

	if !u.IsActive {
		return respondError(c, http.StatusForbidden, msgAccountDisabled)
	}

	pair, err := h.tokenPair(u)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, msgGenerateTokenFail)
	}

	h.audit.LogFromContext(c, audit.Record{
		UserID:      &u.ID,
		UserEmail:   &u.Email,
		Action:      audit.ActionLogin,
		TableName:   "users",
		RecordID:    u.ID.String(),
		Description: fmt.Sprintf("User logged in: %s", u.Email),
	})

	return c.JSON(http.StatusOK, pair)
}

// Refresh exchanges a valid refresh token for a new token pair. The user
// is re-read so deactivation revokes refresh as well.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	claims, err := h.jwtService.VerifyRefresh(req.RefreshToken)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, msgInvalidCredentials)
	}

	u, err := h.userRepo.GetByID(c.Request().Context(), claims.UserID)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, msgInvalidCredentials)
	}

	if !u.IsActive {
		return respondError(c, http.StatusForbidden, msgAccountDisabled)
	}

	pair, err := h.tokenPair(u)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, msgGenerateTokenFail)
	}

	return c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	current, err := auth.GetUser(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	var req ChangePasswordRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	if err := validator.Password(req.NewPassword); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	if !password.Verify(req.CurrentPassword, current.PasswordHash) {
		return respondError(c, http.StatusBadRequest, msgCurrentPasswordBad)
	}

	newHash, err := password.Hash(req.NewPassword)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, msgPasswordProcessFail)
	}

	if _, err := h.userRepo.Update(c.Request().Context(), current.ID, user.UpdateUserInput{
		PasswordHash: &newHash,
	}); err != nil {
		return RespondWithMappedError(c, err)
	}

	h.audit.LogFromContext(c, audit.Record{
		UserID:      &current.ID,
		UserEmail:   &current.Email,
		Action:      audit.ActionPasswordChange,
		TableName:   "users",
		RecordID:    current.ID.String(),
		Description: fmt.Sprintf("Password changed for user: %s", current.Email),
	})

	return respondMessage(c, http.StatusOK, msgPasswordChanged)
}

// ForgotPassword always answers the same way, so the endpoint cannot be
// used to probe which emails are registered.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validator.Email(req.Email); err != nil {
		return respondMessage(c, http.StatusAccepted, msgResetRequested)
	}

	ctx := c.Request().Context()
	u, err := h.userRepo.GetByEmail(ctx, req.Email)
	if err != nil || !u.IsActive {
		return respondMessage(c, http.StatusAccepted, msgResetRequested)
	}

	token := auth.NewResetToken()
	expiresAt := time.Now().Add(h.app.ResetTokenExpiry)
	if err := h.resetRepo.Create(ctx, u.ID, token, expiresAt); err != nil {
		c.Logger().Errorf("reset token create failed: %v", err)
		return respondMessage(c, http.StatusAccepted, msgResetRequested)
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", h.app.BaseURL, token)
	if err := h.mail.SendPasswordReset(u.Email, u.FullName(), resetLink, h.app.ResetTokenExpiry); err != nil {
		c.Logger().Errorf("reset email failed for %s: %v", u.Email, err)
	}

	h.audit.LogFromContext(c, audit.Record{
		UserID:      &u.ID,
		UserEmail:   &u.Email,
		Action:      audit.ActionPasswordReset,
		TableName:   "users",
		RecordID:    u.ID.String(),
		Description: fmt.Sprintf("Password reset requested for: %s", u.Email),
	})

	return respondMessage(c, http.StatusAccepted, msgResetRequested)
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	if err := validator.Password(req.NewPassword); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	userID, err := h.resetRepo.Consume(ctx, req.Token)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	newHash, err := password.Hash(req.NewPassword)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, msgPasswordProcessFail)
	}

	updated, err := h.userRepo.Update(ctx, userID, user.UpdateUserInput{
		PasswordHash: &newHash,
	})
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	h.audit.LogFromContext(c, audit.Record{
		UserID:      &updated.ID,
		UserEmail:   &updated.Email,
		Action:      audit.ActionPasswordReset,
		TableName:   "users",
		RecordID:    updated.ID.String(),
		Description: fmt.Sprintf("Password reset completed for: %s", updated.Email),
	})

	return respondMessage(c, http.StatusOK, msgPasswordResetDone)
}

func (h *AuthHandler) tokenPair(u *user.User) (*TokenPairResponse, error) {
	access, err := h.jwtService.GenerateAccess(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	refresh, err := h.jwtService.GenerateRefresh(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	return &TokenPairResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}
