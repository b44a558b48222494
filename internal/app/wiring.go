package app

import (
	"context"
	"fmt"
	"log"

	"task-service/internal/audit"
	"task-service/internal/auth"
	"task-service/internal/config"
	internalhttp "task-service/internal/http"
	"task-service/internal/infra/s3"
	"task-service/internal/rbac"
	"task-service/internal/repository/postgres"
	"task-service/internal/trash"
	"task-service/pkg/mailer"
)

// InitializeService wires up all dependencies and returns a configured
// Service. Migrations and role seeding run here, before the server accepts
// traffic.
func InitializeService() (*Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := postgres.Migrate(cfg.Database.URL()); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	db, err := postgres.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := postgres.SeedRoles(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed roles: %w", err)
	}

	userRepo := postgres.NewUserRepository(db)
	taskRepo := postgres.NewTaskRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	resetTokenRepo := postgres.NewResetTokenRepository(db)
	uploadRepo := postgres.NewUploadRepository(db)

	hierarchy := rbac.NewHierarchy(userRepo)
	resolver := rbac.NewResolver(roleRepo, hierarchy)

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	authMiddleware := auth.NewMiddleware(jwtService, userRepo)

	s3Client, err := s3.NewClient(&cfg.AWS)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	mail := buildMailer(&cfg.Mail)
	auditLogger := audit.NewLogger(db.Pool)
	trashService := trash.NewService(userRepo, taskRepo)

	server := internalhttp.NewServer(&internalhttp.ServerDependencies{
		Config:         cfg,
		UserRepo:       userRepo,
		TaskRepo:       taskRepo,
		RoleRepo:       roleRepo,
		ResetTokenRepo: resetTokenRepo,
		UploadRepo:     uploadRepo,
		Resolver:       resolver,
		JWTService:     jwtService,
		AuthMiddleware: authMiddleware,
		S3Client:       s3Client,
		Mailer:         mail,
		AuditLogger:    auditLogger,
		TrashService:   trashService,
	})

	return &Service{
		config:      cfg,
		db:          db,
		server:      server,
		resetTokens: resetTokenRepo,
		stopPurge:   make(chan struct{}),
	}, nil
}

// buildMailer assembles the provider chain from whichever API keys are set.
// Resend is preferred; SendGrid is the fallback. With no keys the mailer
// runs disabled and only logs.
func buildMailer(cfg *config.MailConfig) *mailer.Mailer {
	var providers []mailer.Provider
	if cfg.ResendAPIKey != "" {
		providers = append(providers, mailer.NewResendProvider(cfg.ResendAPIKey))
	}
	if cfg.SendGridAPIKey != "" {
		providers = append(providers, mailer.NewSendGridProvider(cfg.SendGridAPIKey))
	}

	if !cfg.Enabled() {
		log.Println("Warning: email sending disabled (no mail provider configured)")
	}

	return mailer.New(cfg.FromAddress, cfg.FromName, providers...)
}
