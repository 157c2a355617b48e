package postgres

import (
	"context"
	"database/sql"
	"errors"

	"vipbot/internal/domain"

	"github.com/jmoiron/sqlx"
)

// BroadcastRepo implements repository.BroadcastRepository
type BroadcastRepo struct {
	db *sqlx.DB
}

// NewBroadcastRepo creates a new broadcast history repository
func NewBroadcastRepo(db *sqlx.DB) *BroadcastRepo {
	return &BroadcastRepo{db: db}
}

// InsertBroadcast stores a broadcast summary and returns its id
func (r *BroadcastRepo) InsertBroadcast(ctx context.Context, b domain.Broadcast) (int64, error) {
	query := `
		INSERT INTO broadcasts (target, kind, text, file_id, sent_count, failed_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowxContext(ctx, query,
		b.Target, b.Kind, b.Text, b.FileID, b.SentCount, b.FailedCount,
	).Scan(&id)
	return id, err
}

// GetBroadcast returns a broadcast by id
func (r *BroadcastRepo) GetBroadcast(ctx context.Context, id int64) (*domain.Broadcast, error) {
	var b domain.Broadcast
	query := `
		SELECT id, target, kind, text, file_id, sent_count, failed_count, created_at
		FROM broadcasts WHERE id = $1
	`
	err := r.db.GetContext(ctx, &b, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBroadcastNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}
