package http

import (
	"context"
	stdhttp "net/http"

	"task-service/internal/audit"
	"task-service/internal/auth"
	"task-service/internal/config"
	"task-service/internal/http/handler"
	"task-service/internal/http/middleware"
	"task-service/internal/infra/s3"
	"task-service/internal/rbac"
	"task-service/internal/repository"
	"task-service/internal/trash"
	"task-service/pkg/mailer"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

const (
	jsonKeyStatus    = "status"
	statusOK         = "ok"
	requestBodyLimit = "1M"
)

type ServerDependencies struct {
	Config         *config.Config
	UserRepo       repository.UserRepository
	TaskRepo       repository.TaskRepository
	RoleRepo       repository.RoleRepository
	ResetTokenRepo repository.ResetTokenRepository
	UploadRepo     repository.UploadRepository
	Resolver       *rbac.Resolver
	JWTService     *auth.JWTService
	AuthMiddleware *auth.Middleware
	S3Client       *s3.Client
	Mailer         *mailer.Mailer
	AuditLogger    *audit.Logger
	TrashService   *trash.Service
}

type Server struct {
	echo *echo.Echo
	deps *ServerDependencies
}

func NewServer(deps *ServerDependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = CustomHTTPErrorHandler

	e.Server.ReadTimeout = deps.Config.Server.ReadTimeout
	e.Server.WriteTimeout = deps.Config.Server.WriteTimeout

	// Request ID first, so all logs have one.
	e.Use(middleware.RequestID())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimit(requestBodyLimit))

	globalRateLimiter := middleware.NewGlobalRateLimiter()
	e.Use(globalRateLimiter.Middleware())

	// Strict rate limiting for credential endpoints.
	strictRateLimiter := middleware.NewStrictRateLimiter()

	app := &deps.Config.App
	pageSize := app.PageSize

	authHandler := handler.NewAuthHandler(deps.UserRepo, deps.ResetTokenRepo, deps.JWTService, deps.Mailer, deps.AuditLogger, app)
	userHandler := handler.NewUserHandler(deps.UserRepo, deps.AuditLogger, pageSize)
	taskHandler := handler.NewTaskHandler(deps.TaskRepo, deps.Resolver, deps.AuditLogger, pageSize)
	roleHandler := handler.NewRoleHandler(deps.RoleRepo, deps.UserRepo, deps.Resolver, deps.AuditLogger)
	uploadHandler := handler.NewUploadHandler(deps.UploadRepo, deps.S3Client, deps.AuditLogger, app.MaxUploadSize, app.PresignedURLExpiry, pageSize)
	trashHandler := handler.NewTrashHandler(deps.TrashService, deps.AuditLogger, pageSize)
	auditHandler := handler.NewAuditHandler(deps.AuditLogger, pageSize)

	e.GET("/health", healthCheck)

	v1 := e.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register, strictRateLimiter.Middleware())
	authGroup.POST("/login", authHandler.Login, strictRateLimiter.Middleware())
	authGroup.POST("/refresh", authHandler.Refresh, strictRateLimiter.Middleware())
	authGroup.POST("/forgot-password", authHandler.ForgotPassword, strictRateLimiter.Middleware())
	authGroup.POST("/reset-password", authHandler.ResetPassword, strictRateLimiter.Middleware())
	authGroup.POST("/change-password", authHandler.ChangePassword, deps.AuthMiddleware.RequireJWT())

	api := v1.Group("")
	api.Use(deps.AuthMiddleware.RequireJWT())

	api.GET("/users/me", userHandler.Me)
	api.PUT("/users/me", userHandler.UpdateMe)

	api.GET("/tasks", taskHandler.List)
	api.POST("/tasks", taskHandler.Create)
	api.GET("/tasks/:id", taskHandler.Get)
	api.PUT("/tasks/:id", taskHandler.Update)
	api.DELETE("/tasks/:id", taskHandler.Delete)

	api.POST("/uploads", uploadHandler.Create)
	api.GET("/uploads", uploadHandler.List)
	api.GET("/uploads/:id/download-url", uploadHandler.DownloadURL)
	api.DELETE("/uploads/:id", uploadHandler.Delete)

	admin := v1.Group("/admin")
	admin.Use(deps.AuthMiddleware.RequireJWT(), deps.AuthMiddleware.RequireAdmin())

	admin.GET("/users", userHandler.List)
	admin.POST("/users", userHandler.Create)
	admin.GET("/users/:id", userHandler.Get)
	admin.PUT("/users/:id", userHandler.Update)
	admin.DELETE("/users/:id", userHandler.Delete)

	rbacGroup := admin.Group("/rbac")
	rbacGroup.GET("/roles", roleHandler.ListRoles)
	rbacGroup.POST("/roles", roleHandler.CreateRole)
	rbacGroup.GET("/roles/:id", roleHandler.GetRole)
	rbacGroup.PUT("/roles/:id", roleHandler.UpdateRole)
	rbacGroup.DELETE("/roles/:id", roleHandler.DeleteRole)
	rbacGroup.POST("/users/:user_id/roles/:role_id", roleHandler.AssignRole)
	rbacGroup.DELETE("/users/:user_id/roles/:role_id", roleHandler.UnassignRole)
	rbacGroup.GET("/users/:user_id/roles", roleHandler.ListUserRoles)
	rbacGroup.GET("/users/:user_id/permissions", roleHandler.GetUserPermissions)
	rbacGroup.PUT("/users/:user_id/manager", roleHandler.SetManager)
	rbacGroup.GET("/users/:user_id/subordinates", roleHandler.GetSubordinates)
	rbacGroup.GET("/users/:user_id/hierarchy", roleHandler.GetHierarchy)

	trashGroup := admin.Group("/trash")
	trashGroup.GET("/tasks", trashHandler.ListTasks)
	trashGroup.POST("/tasks/:id/restore", trashHandler.RestoreTask)
	trashGroup.DELETE("/tasks/:id", trashHandler.PurgeTask)
	trashGroup.DELETE("/tasks", trashHandler.EmptyTasks)
	trashGroup.GET("/users", trashHandler.ListUsers)
	trashGroup.POST("/users/:id/restore", trashHandler.RestoreUser)
	trashGroup.DELETE("/users/:id", trashHandler.PurgeUser)

	auditGroup := admin.Group("/audit")
	auditGroup.GET("/logs", auditHandler.ListLogs)
	auditGroup.GET("/actions", auditHandler.ListActions)
	auditGroup.GET("/stats", auditHandler.Stats)

	return &Server{
		echo: e,
		deps: deps,
	}
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func healthCheck(c echo.Context) error {
	return c.JSON(stdhttp.StatusOK, map[string]string{
		jsonKeyStatus: statusOK,
	})
}
