package testutil

import (
	"time"

	"vipbot/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestUser creates a registered test user
func NewTestUser(chatID int64, name string) *domain.User {
	return &domain.User{
		ChatID:       chatID,
		Name:         &name,
		RegisteredAt: time.Now(),
	}
}

// NewActiveVip creates an approved record valid until end
func NewActiveVip(userID int64, end time.Time) *domain.VipRecord {
	start := end.AddDate(0, -1, 0)
	receipt := "receipt"
	return &domain.VipRecord{
		UserID:         userID,
		Approved:       true,
		StartDate:      &start,
		EndDate:        &end,
		PaymentReceipt: &receipt,
	}
}

// StrPtr returns a pointer to s
func StrPtr(s string) *string {
	return &s
}

// FixedClock returns a time source stuck at t
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
