package service

import (
	"context"
	"fmt"
	"time"

	"vipbot/internal/domain"
	"vipbot/internal/repository"

	"go.uber.org/zap"
)

// VipService runs the membership request/approval protocol
type VipService struct {
	vips   repository.VipRepository
	now    func() time.Time
	logger *zap.Logger
}

// NewVipService creates a new VIP service
func NewVipService(vips repository.VipRepository, logger *zap.Logger) *VipService {
	return &VipService{
		vips:   vips,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock overrides the time source
func (s *VipService) WithClock(now func() time.Time) *VipService {
	s.now = now
	return s
}

// Get returns the record of a user, nil when none exists
func (s *VipService) Get(ctx context.Context, userID int64) (*domain.VipRecord, error) {
	return s.vips.GetVip(ctx, userID)
}

// IsActive reports effective VIP status at the current time
func (s *VipService) IsActive(ctx context.Context, userID int64) (bool, error) {
	rec, err := s.vips.GetVip(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("get vip %d: %w", userID, err)
	}
	return rec.ActiveAt(s.now()), nil
}

// SubmitReceipt stores the payment proof as a pending request, replacing any earlier one
func (s *VipService) SubmitReceipt(ctx context.Context, userID int64, receipt string) error {
	if err := s.vips.UpsertReceipt(ctx, userID, receipt); err != nil {
		return fmt.Errorf("save receipt: %w", err)
	}
	s.logger.Info("VIP receipt submitted", zap.Int64("chat_id", userID))
	return nil
}

// Approve starts a one month membership from now
func (s *VipService) Approve(ctx context.Context, userID int64) (*domain.VipRecord, error) {
	start := s.now()
	end := domain.VipTerm(start)

	ok, err := s.vips.Approve(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("approve vip %d: %w", userID, err)
	}
	if !ok {
		return nil, domain.ErrVipNotFound
	}

	s.logger.Info("VIP approved",
		zap.Int64("chat_id", userID),
		zap.Time("end_date", end),
	)
	return &domain.VipRecord{
		UserID:    userID,
		Approved:  true,
		StartDate: &start,
		EndDate:   &end,
	}, nil
}

// Reject marks the request as not approved; the record is kept
func (s *VipService) Reject(ctx context.Context, userID int64) error {
	ok, err := s.vips.Reject(ctx, userID)
	if err != nil {
		return fmt.Errorf("reject vip %d: %w", userID, err)
	}
	if !ok {
		return domain.ErrVipNotFound
	}
	s.logger.Info("VIP rejected", zap.Int64("chat_id", userID))
	return nil
}
