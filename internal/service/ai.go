package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vipbot/internal/domain"
	"vipbot/internal/repository"

	"go.uber.org/zap"
)

// FreeQuota is the number of lifetime AI questions of a non-VIP user
const FreeQuota = 5

var (
	// ErrQuotaExceeded is matched by *QuotaError
	ErrQuotaExceeded = errors.New("ai quota exceeded")
	// ErrAINotConfigured is returned when no AI credential is stored
	ErrAINotConfigured = errors.New("ai is not configured")
)

// QuotaError carries the usage that tripped the gate
type QuotaError struct {
	Used int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("ai quota exceeded: %d/%d", e.Used, FreeQuota)
}

// Is lets errors.Is match ErrQuotaExceeded
func (e *QuotaError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// CompletionProvider turns role-tagged turns into a reply
type CompletionProvider interface {
	Complete(ctx context.Context, turns []domain.Turn) (string, error)
}

// AIService gates and proxies AI chat questions
type AIService struct {
	users    repository.UserRepository
	vips     repository.VipRepository
	settings repository.SettingsRepository
	messages repository.MessageRepository
	provider CompletionProvider
	now      func() time.Time
	logger   *zap.Logger
}

// NewAIService creates a new AI chat service
func NewAIService(
	users repository.UserRepository,
	vips repository.VipRepository,
	settings repository.SettingsRepository,
	messages repository.MessageRepository,
	provider CompletionProvider,
	logger *zap.Logger,
) *AIService {
	return &AIService{
		users:    users,
		vips:     vips,
		settings: settings,
		messages: messages,
		provider: provider,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock overrides the time source
func (s *AIService) WithClock(now func() time.Time) *AIService {
	s.now = now
	return s
}

// CheckQuota returns a *QuotaError when a non-VIP user used the free quota
func (s *AIService) CheckQuota(ctx context.Context, chatID int64) error {
	user, err := s.users.GetUser(ctx, chatID)
	if err != nil {
		return fmt.Errorf("get user %d: %w", chatID, err)
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	return s.checkQuota(ctx, user)
}

func (s *AIService) checkQuota(ctx context.Context, user *domain.User) error {
	if user.AIQuestionsUsed < FreeQuota {
		return nil
	}
	rec, err := s.vips.GetVip(ctx, user.ChatID)
	if err != nil {
		return fmt.Errorf("get vip %d: %w", user.ChatID, err)
	}
	if rec.ActiveAt(s.now()) {
		return nil
	}
	return &QuotaError{Used: user.AIQuestionsUsed}
}

// Ask runs the gates in order (quota, credential) and then queries the provider.
// On success usage is incremented, the pair is archived and the bonus is awarded.
func (s *AIService) Ask(ctx context.Context, chatID int64, question string) (string, error) {
	user, err := s.users.GetUser(ctx, chatID)
	if err != nil {
		return "", fmt.Errorf("get user %d: %w", chatID, err)
	}
	if user == nil {
		return "", domain.ErrUserNotFound
	}
	if err := s.checkQuota(ctx, user); err != nil {
		return "", err
	}

	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return "", fmt.Errorf("get settings: %w", err)
	}
	if strings.TrimSpace(settings.Value(domain.SettingAIToken)) == "" {
		return "", ErrAINotConfigured
	}

	answer, err := s.provider.Complete(ctx, BuildTurns(settings.Value(domain.SettingPrompt), question))
	if err != nil {
		return "", fmt.Errorf("completion: %w", err)
	}

	if err := s.users.IncrementAIUsage(ctx, chatID); err != nil {
		return "", fmt.Errorf("increment ai usage: %w", err)
	}
	if err := s.messages.InsertAIChat(ctx, domain.AIChatLog{UserID: chatID, Question: question, Answer: answer}); err != nil {
		s.logger.Warn("Failed to archive ai chat", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	if err := s.users.AddScore(ctx, chatID, AIChatBonus); err != nil {
		s.logger.Warn("Failed to add ai chat bonus", zap.Int64("chat_id", chatID), zap.Error(err))
	}

	return answer, nil
}

// BuildTurns prepends the stored prompt as a system turn when present
func BuildTurns(prompt, question string) []domain.Turn {
	turns := make([]domain.Turn, 0, 2)
	if strings.TrimSpace(prompt) != "" {
		turns = append(turns, domain.Turn{Role: domain.RoleSystem, Text: prompt})
	}
	return append(turns, domain.Turn{Role: domain.RoleUser, Text: question})
}
