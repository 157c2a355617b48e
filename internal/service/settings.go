package service

import (
	"context"
	"fmt"
	"strings"

	"vipbot/internal/domain"
	"vipbot/internal/repository"

	"go.uber.org/zap"
)

// Reloader rebuilds the completion client after a credential change
type Reloader interface {
	Reload(ctx context.Context, apiKey string) error
}

// SettingsService manages the admin-editable settings row
type SettingsService struct {
	repo     repository.SettingsRepository
	reloader Reloader
	logger   *zap.Logger
}

// NewSettingsService creates a new settings service; reloader may be nil
func NewSettingsService(repo repository.SettingsRepository, reloader Reloader, logger *zap.Logger) *SettingsService {
	return &SettingsService{
		repo:     repo,
		reloader: reloader,
		logger:   logger,
	}
}

// Get returns the current settings
func (s *SettingsService) Get(ctx context.Context) (*domain.Settings, error) {
	return s.repo.GetSettings(ctx)
}

// Set writes one settings column verbatim
func (s *SettingsService) Set(ctx context.Context, field domain.SettingField, value string) error {
	if err := s.repo.SetSetting(ctx, field, &value); err != nil {
		return fmt.Errorf("set %s: %w", field, err)
	}
	s.logger.Info("Setting updated", zap.String("field", string(field)))
	return nil
}

// SetAIToken stores the credential and reconfigures the completion client
func (s *SettingsService) SetAIToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if err := s.Set(ctx, domain.SettingAIToken, token); err != nil {
		return err
	}
	if s.reloader == nil {
		return nil
	}
	if err := s.reloader.Reload(ctx, token); err != nil {
		return fmt.Errorf("reload ai client: %w", err)
	}
	return nil
}

// SetPrompt stores the system prompt
func (s *SettingsService) SetPrompt(ctx context.Context, prompt string) error {
	return s.Set(ctx, domain.SettingPrompt, prompt)
}

// ClearPrompt removes the system prompt
func (s *SettingsService) ClearPrompt(ctx context.Context) error {
	if err := s.repo.SetSetting(ctx, domain.SettingPrompt, nil); err != nil {
		return fmt.Errorf("clear prompt: %w", err)
	}
	s.logger.Info("Prompt deleted")
	return nil
}

// AIKey returns the stored credential; used to build the completion client lazily
func (s *SettingsService) AIKey(ctx context.Context) (string, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return "", err
	}
	return settings.Value(domain.SettingAIToken), nil
}
