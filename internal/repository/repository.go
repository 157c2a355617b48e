package repository

import (
	"context"
	"time"

	"vipbot/internal/domain"
)

// UserRepository defines user data operations
type UserRepository interface {
	EnsureUserExists(ctx context.Context, chatID int64, username, firstName string) error
	GetUser(ctx context.Context, chatID int64) (*domain.User, error)
	UpsertProfile(ctx context.Context, chatID int64, profile domain.Profile) error
	UpdateField(ctx context.Context, chatID int64, field domain.ProfileField, value any) error
	AddScore(ctx context.Context, chatID int64, points int) error
	IncrementAIUsage(ctx context.Context, chatID int64) error
	ListAudience(ctx context.Context, audience domain.Audience, now time.Time, limit, offset int) ([]int64, error)
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)
	CountUsers(ctx context.Context) (int, error)
}

// VipRepository defines VIP membership operations
type VipRepository interface {
	GetVip(ctx context.Context, userID int64) (*domain.VipRecord, error)
	UpsertReceipt(ctx context.Context, userID int64, receipt string) error
	Approve(ctx context.Context, userID int64, start, end time.Time) (bool, error)
	Reject(ctx context.Context, userID int64) (bool, error)
	CountActive(ctx context.Context, now time.Time) (int, error)
}

// SettingsRepository defines access to the settings singleton
type SettingsRepository interface {
	GetSettings(ctx context.Context) (*domain.Settings, error)
	SetSetting(ctx context.Context, field domain.SettingField, value *string) error
}

// MessageRepository stores the message and AI chat archives
type MessageRepository interface {
	InsertMessage(ctx context.Context, msg domain.MessageLog) error
	InsertAIChat(ctx context.Context, chat domain.AIChatLog) error
	ListMessages(ctx context.Context, userID int64, limit int) ([]domain.MessageLog, error)
	ListAIChats(ctx context.Context, userID int64, limit int) ([]domain.AIChatLog, error)
}

// BroadcastRepository stores broadcast history
type BroadcastRepository interface {
	InsertBroadcast(ctx context.Context, b domain.Broadcast) (int64, error)
	GetBroadcast(ctx context.Context, id int64) (*domain.Broadcast, error)
}
