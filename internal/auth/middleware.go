package auth

import (
	"net/http"
	"strings"

	"task-service/internal/domain/user"
	"task-service/internal/repository"
	apperrors "task-service/pkg/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Middleware struct {
	jwtService *JWTService
	userRepo   repository.UserRepository
}

func NewMiddleware(jwtService *JWTService, userRepo repository.UserRepository) *Middleware {
	return &Middleware{
		jwtService: jwtService,
		userRepo:   userRepo,
	}
}

// RequireJWT loads the current user on every request, so a deactivated or
// deleted account is locked out even while its token is still unexpired.
func (m *Middleware) RequireJWT() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractBearerToken(c)
			if token == "" {
				return respondError(c, http.StatusUnauthorized, msgMissingAuthorization)
			}

			claims, err := m.jwtService.VerifyAccess(token)
			if err != nil {
				return respondError(c, http.StatusUnauthorized, msgInvalidOrExpiredToken)
			}

			current, err := m.userRepo.GetByID(c.Request().Context(), claims.UserID)
			if err != nil {
				return respondError(c, http.StatusUnauthorized, msgInvalidOrExpiredToken)
			}

			if !current.IsActive {
				return respondError(c, http.StatusForbidden, msgAccountDisabled)
			}

			c.Set(ContextKeyUserID, current.ID)
			c.Set(ContextKeyUser, current)
			c.Set(ContextKeyAuthType, AuthTypeJWT)

			return next(c)
		}
	}
}

// RequireAdmin must run after RequireJWT.
func (m *Middleware) RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			current, err := GetUser(c)
			if err != nil {
				return respondError(c, http.StatusUnauthorized, msgUserNotAuthenticated)
			}

			if !current.IsAdmin {
				return respondError(c, http.StatusForbidden, msgAdminRequired)
			}

			return next(c)
		}
	}
}

func extractBearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get(headerAuthorization)
	if authHeader == "" {
		return ""
	}

	parts := strings.Fields(authHeader)
	if len(parts) != authHeaderParts || strings.ToLower(parts[0]) != bearerScheme {
		return ""
	}

	return parts[1]
}

func GetUserID(c echo.Context) (uuid.UUID, error) {
	userID := c.Get(ContextKeyUserID)
	if userID == nil {
		return uuid.Nil, apperrors.Unauthorized(msgUserNotAuthenticated)
	}

	id, ok := userID.(uuid.UUID)
	if !ok {
		return uuid.Nil, apperrors.InternalServer(msgInvalidUserIDCtx, nil)
	}

	return id, nil
}

func GetUser(c echo.Context) (*user.User, error) {
	raw := c.Get(ContextKeyUser)
	if raw == nil {
		return nil, apperrors.Unauthorized(msgUserNotAuthenticated)
	}

	current, ok := raw.(*user.User)
	if !ok || current == nil {
		return nil, apperrors.InternalServer(msgInvalidUserCtx, nil)
	}

	return current, nil
}

func GetAuthType(c echo.Context) AuthType {
	authType := c.Get(ContextKeyAuthType)
	if authType == nil {
		return ""
	}

	t, ok := authType.(AuthType)
	if !ok {
		return ""
	}

	return t
}

func respondError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{jsonKeyError: message})
}
