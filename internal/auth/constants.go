package auth

const (
	ContextKeyUserID   = "user_id"
	ContextKeyUser     = "current_user"
	ContextKeyAuthType = "auth_type"

	jsonKeyError = "error"

	headerAuthorization = "Authorization"

	bearerScheme    = "bearer"
	authHeaderParts = 2

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

const (
	msgMissingAuthorization    = "missing authorization token"
	msgInvalidOrExpiredToken   = "invalid or expired token"
	msgNotRefreshToken         = "not a refresh token"
	msgNotAccessToken          = "not an access token"
	msgAccountDisabled         = "account is disabled"
	msgAdminRequired           = "admin privileges required"
	msgUserNotAuthenticated    = "user not authenticated"
	msgInvalidUserIDCtx        = "invalid user ID in context"
	msgInvalidUserCtx          = "invalid user in context"
	msgUnexpectedSigningMethod = "unexpected signing method: %v"
	msgTokenParseFailed        = "failed to parse token: %w"
	msgInvalidTokenClaims      = "invalid token claims"
)

type AuthType string

const (
	AuthTypeJWT AuthType = "jwt"
)
