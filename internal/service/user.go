package service

import (
	"context"
	"fmt"

	"vipbot/internal/domain"
	"vipbot/internal/repository"

	"go.uber.org/zap"
)

// Score bonuses
const (
	RegistrationBonus = 20
	EditBonus         = 5
	AIChatBonus       = 3
)

// UserService handles user records and profile updates
type UserService struct {
	users  repository.UserRepository
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(users repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger,
	}
}

// EnsureUser creates user record if doesn't exist
func (s *UserService) EnsureUser(ctx context.Context, chatID int64, username, firstName string) error {
	return s.users.EnsureUserExists(ctx, chatID, username, firstName)
}

// Get returns a user or domain.ErrUserNotFound
func (s *UserService) Get(ctx context.Context, chatID int64) (*domain.User, error) {
	user, err := s.users.GetUser(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", chatID, err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// CompleteRegistration stores all profile answers at once, awards the bonus
// and returns the fresh row
func (s *UserService) CompleteRegistration(ctx context.Context, chatID int64, profile domain.Profile) (*domain.User, error) {
	if err := s.users.UpsertProfile(ctx, chatID, profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	if err := s.users.AddScore(ctx, chatID, RegistrationBonus); err != nil {
		return nil, fmt.Errorf("add registration bonus: %w", err)
	}

	s.logger.Info("User registered", zap.Int64("chat_id", chatID))
	return s.Get(ctx, chatID)
}

// UpdateField changes one profile field, awards the edit bonus and returns the fresh row
func (s *UserService) UpdateField(ctx context.Context, chatID int64, field domain.ProfileField, raw string) (*domain.User, error) {
	if err := s.users.UpdateField(ctx, chatID, field, domain.FieldValue(field, raw)); err != nil {
		return nil, fmt.Errorf("update %s: %w", field, err)
	}
	if err := s.users.AddScore(ctx, chatID, EditBonus); err != nil {
		return nil, fmt.Errorf("add edit bonus: %w", err)
	}

	s.logger.Info("Profile field updated",
		zap.Int64("chat_id", chatID),
		zap.String("field", string(field)),
	)
	return s.Get(ctx, chatID)
}

// List returns one page of users
func (s *UserService) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	return s.users.ListUsers(ctx, limit, offset)
}
