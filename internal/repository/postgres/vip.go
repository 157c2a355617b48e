package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"vipbot/internal/domain"

	"github.com/jmoiron/sqlx"
)

// VipRepo implements repository.VipRepository
type VipRepo struct {
	db *sqlx.DB
}

// NewVipRepo creates a new VIP repository
func NewVipRepo(db *sqlx.DB) *VipRepo {
	return &VipRepo{db: db}
}

// GetVip returns the VIP record of a user, nil when none exists
func (r *VipRepo) GetVip(ctx context.Context, userID int64) (*domain.VipRecord, error) {
	var v domain.VipRecord
	query := `SELECT user_id, approved, start_date, end_date, payment_receipt FROM vip_members WHERE user_id = $1`
	err := r.db.GetContext(ctx, &v, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// UpsertReceipt stores a payment receipt and resets approval.
// One row per user: a second receipt overwrites the first.
func (r *VipRepo) UpsertReceipt(ctx context.Context, userID int64, receipt string) error {
	query := `
		INSERT INTO vip_members (user_id, approved, payment_receipt)
		VALUES ($1, FALSE, $2)
		ON CONFLICT (user_id)
		DO UPDATE SET approved = FALSE, payment_receipt = EXCLUDED.payment_receipt
	`
	_, err := r.db.ExecContext(ctx, query, userID, receipt)
	return err
}

// Approve activates the membership window; false when the user has no record
func (r *VipRepo) Approve(ctx context.Context, userID int64, start, end time.Time) (bool, error) {
	query := `
		UPDATE vip_members
		SET approved = TRUE, start_date = $1, end_date = $2
		WHERE user_id = $3
	`
	return r.execAffected(ctx, query, start, end, userID)
}

// Reject marks the request as not approved, keeping the row
func (r *VipRepo) Reject(ctx context.Context, userID int64) (bool, error) {
	query := `UPDATE vip_members SET approved = FALSE WHERE user_id = $1`
	return r.execAffected(ctx, query, userID)
}

// CountActive returns the number of effective VIP members at now
func (r *VipRepo) CountActive(ctx context.Context, now time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM vip_members WHERE approved = TRUE AND end_date > $1`
	err := r.db.GetContext(ctx, &count, query, now)
	return count, err
}

func (r *VipRepo) execAffected(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
