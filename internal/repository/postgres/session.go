package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"vipbot/internal/domain"

	"github.com/jmoiron/sqlx"
)

// SessionRepo persists conversation states so a restart can resume a flow
type SessionRepo struct {
	db *sqlx.DB
}

// NewSessionRepo creates a new conversation state repository
func NewSessionRepo(db *sqlx.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Get returns the state of a chat, nil when the chat has no active flow
func (r *SessionRepo) Get(ctx context.Context, chatID int64) (domain.State, error) {
	var row struct {
		Kind string `db:"kind"`
		Data []byte `db:"data"`
	}
	query := `SELECT kind, data FROM conversation_states WHERE chat_id = $1`
	err := r.db.GetContext(ctx, &row, query, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return domain.DecodeState(domain.StateKind(row.Kind), row.Data)
}

// Set replaces the state of a chat
func (r *SessionRepo) Set(ctx context.Context, chatID int64, st domain.State) error {
	kind, data, err := domain.EncodeState(st)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO conversation_states (chat_id, kind, data, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (chat_id)
		DO UPDATE SET kind = EXCLUDED.kind, data = EXCLUDED.data, updated_at = NOW()
	`
	_, err = r.db.ExecContext(ctx, query, chatID, string(kind), string(data))
	return err
}

// Delete removes the state of a chat
func (r *SessionRepo) Delete(ctx context.Context, chatID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM conversation_states WHERE chat_id = $1`, chatID)
	return err
}

// DeleteStale removes states not touched since before and returns how many were dropped
func (r *SessionRepo) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM conversation_states WHERE updated_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
