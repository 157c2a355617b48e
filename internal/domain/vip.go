package domain

import (
	"errors"
	"time"
)

// ErrVipNotFound is returned when a user never submitted a receipt
var ErrVipNotFound = errors.New("vip record not found")

// VipRecord holds the membership request and its approval window
type VipRecord struct {
	UserID         int64      `db:"user_id"`
	Approved       bool       `db:"approved"`
	StartDate      *time.Time `db:"start_date"`
	EndDate        *time.Time `db:"end_date"`
	PaymentReceipt *string    `db:"payment_receipt"`
}

// ActiveAt reports effective VIP status: approved and end_date > now
func (v *VipRecord) ActiveAt(now time.Time) bool {
	if v == nil || !v.Approved || v.EndDate == nil {
		return false
	}
	return v.EndDate.After(now)
}

// VipTerm returns the end of a membership started at start (fixed one month term)
func VipTerm(start time.Time) time.Time {
	return start.AddDate(0, 1, 0)
}
