package postgres

import (
	"context"

	"vipbot/internal/domain"

	"github.com/jmoiron/sqlx"
)

// MessageRepo implements repository.MessageRepository
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo creates a new message archive repository
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// InsertMessage appends a row to the message log
func (r *MessageRepo) InsertMessage(ctx context.Context, m domain.MessageLog) error {
	query := `
		INSERT INTO messages (user_id, direction, kind, text, file_id)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, m.UserID, m.Direction, m.Kind, m.Text, m.FileID)
	return err
}

// InsertAIChat appends a question/answer pair
func (r *MessageRepo) InsertAIChat(ctx context.Context, c domain.AIChatLog) error {
	query := `INSERT INTO ai_chats (user_id, question, answer) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, c.UserID, c.Question, c.Answer)
	return err
}

// ListMessages returns the latest messages of a user, newest first
func (r *MessageRepo) ListMessages(ctx context.Context, userID int64, limit int) ([]domain.MessageLog, error) {
	query := `
		SELECT id, user_id, direction, kind, text, file_id, created_at
		FROM messages WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	var msgs []domain.MessageLog
	if err := r.db.SelectContext(ctx, &msgs, query, userID, limit); err != nil {
		return nil, err
	}
	return msgs, nil
}

// ListAIChats returns the latest AI chats of a user, newest first
func (r *MessageRepo) ListAIChats(ctx context.Context, userID int64, limit int) ([]domain.AIChatLog, error) {
	query := `
		SELECT id, user_id, question, answer, created_at
		FROM ai_chats WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	var chats []domain.AIChatLog
	if err := r.db.SelectContext(ctx, &chats, query, userID, limit); err != nil {
		return nil, err
	}
	return chats, nil
}
