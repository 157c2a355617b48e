package testutil

import (
	"context"
	"time"

	"vipbot/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock for UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) EnsureUserExists(ctx context.Context, chatID int64, username, firstName string) error {
	args := m.Called(ctx, chatID, username, firstName)
	return args.Error(0)
}

func (m *MockUserRepository) GetUser(ctx context.Context, chatID int64) (*domain.User, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpsertProfile(ctx context.Context, chatID int64, profile domain.Profile) error {
	args := m.Called(ctx, chatID, profile)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateField(ctx context.Context, chatID int64, field domain.ProfileField, value any) error {
	args := m.Called(ctx, chatID, field, value)
	return args.Error(0)
}

func (m *MockUserRepository) AddScore(ctx context.Context, chatID int64, points int) error {
	args := m.Called(ctx, chatID, points)
	return args.Error(0)
}

func (m *MockUserRepository) IncrementAIUsage(ctx context.Context, chatID int64) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}

func (m *MockUserRepository) ListAudience(ctx context.Context, audience domain.Audience, now time.Time, limit, offset int) ([]int64, error) {
	args := m.Called(ctx, audience, now, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockUserRepository) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) CountUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockVipRepository is a mock for VipRepository
type MockVipRepository struct {
	mock.Mock
}

func (m *MockVipRepository) GetVip(ctx context.Context, userID int64) (*domain.VipRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VipRecord), args.Error(1)
}

func (m *MockVipRepository) UpsertReceipt(ctx context.Context, userID int64, receipt string) error {
	args := m.Called(ctx, userID, receipt)
	return args.Error(0)
}

func (m *MockVipRepository) Approve(ctx context.Context, userID int64, start, end time.Time) (bool, error) {
	args := m.Called(ctx, userID, start, end)
	return args.Bool(0), args.Error(1)
}

func (m *MockVipRepository) Reject(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockVipRepository) CountActive(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

// MockSettingsRepository is a mock for SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) GetSettings(ctx context.Context) (*domain.Settings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Settings), args.Error(1)
}

func (m *MockSettingsRepository) SetSetting(ctx context.Context, field domain.SettingField, value *string) error {
	args := m.Called(ctx, field, value)
	return args.Error(0)
}

// MockMessageRepository is a mock for MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) InsertMessage(ctx context.Context, msg domain.MessageLog) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageRepository) InsertAIChat(ctx context.Context, chat domain.AIChatLog) error {
	args := m.Called(ctx, chat)
	return args.Error(0)
}

func (m *MockMessageRepository) ListMessages(ctx context.Context, userID int64, limit int) ([]domain.MessageLog, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MessageLog), args.Error(1)
}

func (m *MockMessageRepository) ListAIChats(ctx context.Context, userID int64, limit int) ([]domain.AIChatLog, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AIChatLog), args.Error(1)
}

// MockBroadcastRepository is a mock for BroadcastRepository
type MockBroadcastRepository struct {
	mock.Mock
}

func (m *MockBroadcastRepository) InsertBroadcast(ctx context.Context, b domain.Broadcast) (int64, error) {
	args := m.Called(ctx, b)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBroadcastRepository) GetBroadcast(ctx context.Context, id int64) (*domain.Broadcast, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Broadcast), args.Error(1)
}

// MockCompletionProvider is a mock for CompletionProvider
type MockCompletionProvider struct {
	mock.Mock
}

func (m *MockCompletionProvider) Complete(ctx context.Context, turns []domain.Turn) (string, error) {
	args := m.Called(ctx, turns)
	return args.String(0), args.Error(1)
}

// MockReloader is a mock for the completion client reloader
type MockReloader struct {
	mock.Mock
}

func (m *MockReloader) Reload(ctx context.Context, apiKey string) error {
	args := m.Called(ctx, apiKey)
	return args.Error(0)
}

// MockResetter is a mock for the schema resetter
type MockResetter struct {
	mock.Mock
}

func (m *MockResetter) Reset(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockSessionCleaner is a mock for the stale session store
type MockSessionCleaner struct {
	mock.Mock
}

func (m *MockSessionCleaner) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}
