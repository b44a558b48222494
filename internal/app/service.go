package app

import (
	"context"
	"log"
	"net"
	"time"

	"task-service/internal/config"
	internalhttp "task-service/internal/http"
	"task-service/internal/repository/postgres"
)

const resetTokenPurgeInterval = time.Hour

// Service is the assembled application: configuration, database pool, and
// HTTP server, plus the background maintenance loop.
type Service struct {
	config *config.Config
	db     *postgres.DB
	server *internalhttp.Server

	resetTokens *postgres.ResetTokenRepository
	stopPurge   chan struct{}
}

// NewService wires up all dependencies and returns a ready-to-start Service.
func NewService() (*Service, error) {
	return InitializeService()
}

// Start runs the HTTP server and background tasks. It blocks until the
// server stops.
func (s *Service) Start() error {
	go s.startResetTokenPurge()

	address := net.JoinHostPort("", s.config.Server.Port)
	log.Printf("Starting task service on %s", address)
	return s.server.Start(address)
}

// startResetTokenPurge drops expired password reset tokens periodically so
// the table does not accumulate dead rows.
func (s *Service) startResetTokenPurge() {
	ticker := time.NewTicker(resetTokenPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopPurge:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if purged, err := s.resetTokens.PurgeExpired(ctx); err != nil {
				log.Printf("reset token purge failed: %v", err)
			} else if purged > 0 {
				log.Printf("purged %d expired reset tokens", purged)
			}
			cancel()
		}
	}
}

// Shutdown stops the HTTP server gracefully, then the background loop and
// the database pool.
func (s *Service) Shutdown(ctx context.Context) error {
	err := s.server.Shutdown(ctx)
	close(s.stopPurge)
	s.db.Close()
	return err
}

// ShutdownTimeout exposes the configured graceful shutdown window.
func (s *Service) ShutdownTimeout() time.Duration {
	return s.config.Server.ShutdownTimeout
}
