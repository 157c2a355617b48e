package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StaleSessionStore drops conversation states idle since before
type StaleSessionStore interface {
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}

// CleanupService expires abandoned conversation flows
type CleanupService struct {
	sessions StaleSessionStore
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(sessions StaleSessionStore, ttl time.Duration, logger *zap.Logger) *CleanupService {
	return &CleanupService{
		sessions: sessions,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

// CleanupStaleSessions removes states older than the ttl
func (s *CleanupService) CleanupStaleSessions(ctx context.Context) error {
	if s.ttl <= 0 {
		return nil
	}

	before := s.now().Add(-s.ttl)
	s.logger.Info("Starting cleanup of stale conversation states", zap.Duration("ttl", s.ttl))

	n, err := s.sessions.DeleteStale(ctx, before)
	if err != nil {
		s.logger.Error("Failed to cleanup stale conversation states", zap.Error(err))
		return err
	}

	s.logger.Info("Cleanup completed successfully", zap.Int64("removed", n))
	return nil
}
