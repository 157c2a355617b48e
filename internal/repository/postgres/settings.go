package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vipbot/internal/domain"

	"github.com/jmoiron/sqlx"
)

// SettingsRepo implements repository.SettingsRepository over the single settings row
type SettingsRepo struct {
	db *sqlx.DB
}

// NewSettingsRepo creates a new settings repository
func NewSettingsRepo(db *sqlx.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// GetSettings returns the settings row, an empty value when it was never written
func (r *SettingsRepo) GetSettings(ctx context.Context) (*domain.Settings, error) {
	var s domain.Settings
	query := `
		SELECT ai_token, prompt, channel_link, vip_channel_link, membership_fee, wallet_address, wallet_network
		FROM settings WHERE id = 1
	`
	err := r.db.GetContext(ctx, &s, query)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.Settings{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SetSetting writes one column; nil clears it
func (r *SettingsRepo) SetSetting(ctx context.Context, field domain.SettingField, value *string) error {
	if !field.Valid() {
		return fmt.Errorf("set setting: unknown field %q", field)
	}
	query := fmt.Sprintf(`
		INSERT INTO settings (id, %[1]s) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET %[1]s = EXCLUDED.%[1]s
	`, field)
	_, err := r.db.ExecContext(ctx, query, value)
	return err
}
