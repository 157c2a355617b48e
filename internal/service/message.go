package service

import (
	"context"
	"fmt"

	"vipbot/internal/domain"
	"vipbot/internal/repository"

	"go.uber.org/zap"
)

// ArchiveLimit is the number of entries shown per archive section
const ArchiveLimit = 20

// Archive is the recent correspondence of a user
type Archive struct {
	Messages []domain.MessageLog
	AIChats  []domain.AIChatLog
}

// MessageService logs user <-> admin correspondence
type MessageService struct {
	repo   repository.MessageRepository
	logger *zap.Logger
}

// NewMessageService creates a new message service
func NewMessageService(repo repository.MessageRepository, logger *zap.Logger) *MessageService {
	return &MessageService{
		repo:   repo,
		logger: logger,
	}
}

// Log appends a message to the archive of userID
func (s *MessageService) Log(ctx context.Context, userID int64, dir domain.Direction, p domain.Payload) error {
	kind := p.Kind
	if kind == "" {
		kind = domain.MediaText
	}
	err := s.repo.InsertMessage(ctx, domain.MessageLog{
		UserID:    userID,
		Direction: dir,
		Kind:      kind,
		Text:      p.Text,
		FileID:    p.FileID,
	})
	if err != nil {
		return fmt.Errorf("log message: %w", err)
	}
	return nil
}

// Archive returns the latest messages and AI chats of a user
func (s *MessageService) Archive(ctx context.Context, userID int64) (*Archive, error) {
	msgs, err := s.repo.ListMessages(ctx, userID, ArchiveLimit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	chats, err := s.repo.ListAIChats(ctx, userID, ArchiveLimit)
	if err != nil {
		return nil, fmt.Errorf("list ai chats: %w", err)
	}
	return &Archive{Messages: msgs, AIChats: chats}, nil
}
