package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vipbot/internal/domain"

	"github.com/jmoiron/sqlx"
)

const userColumns = `chat_id, username, first_name, name, age, city, region, gender, job, goal, phone,
		ai_questions_used, score, registered_at`

// UserRepo implements repository.UserRepository
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// EnsureUserExists creates user if not exists and refreshes the telegram names
func (r *UserRepo) EnsureUserExists(ctx context.Context, chatID int64, username, firstName string) error {
	query := `
		INSERT INTO users (chat_id, username, first_name)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''))
		ON CONFLICT (chat_id)
		DO UPDATE SET username = EXCLUDED.username, first_name = EXCLUDED.first_name
	`
	_, err := r.db.ExecContext(ctx, query, chatID, username, firstName)
	return err
}

// GetUser returns the user row, nil when the chat id is unknown
func (r *UserRepo) GetUser(ctx context.Context, chatID int64) (*domain.User, error) {
	var u domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE chat_id = $1`
	err := r.db.GetContext(ctx, &u, query, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpsertProfile writes all eight profile fields at once
func (r *UserRepo) UpsertProfile(ctx context.Context, chatID int64, p domain.Profile) error {
	query := `
		INSERT INTO users (chat_id, name, age, city, region, gender, job, goal, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (chat_id)
		DO UPDATE SET name = EXCLUDED.name, age = EXCLUDED.age, city = EXCLUDED.city,
			region = EXCLUDED.region, gender = EXCLUDED.gender, job = EXCLUDED.job,
			goal = EXCLUDED.goal, phone = EXCLUDED.phone
	`
	_, err := r.db.ExecContext(ctx, query,
		chatID, p.Name, p.Age, p.City, p.Region, p.Gender, p.Job, p.Goal, p.Phone,
	)
	return err
}

// UpdateField sets a single profile column
func (r *UserRepo) UpdateField(ctx context.Context, chatID int64, field domain.ProfileField, value any) error {
	if !field.Valid() {
		return fmt.Errorf("update field: unknown profile field %q", field)
	}
	// column name comes from the whitelist above
	query := fmt.Sprintf(`UPDATE users SET %s = $1 WHERE chat_id = $2`, field)
	res, err := r.db.ExecContext(ctx, query, value, chatID)
	if err != nil {
		return err
	}
	return requireAffected(res, domain.ErrUserNotFound)
}

// AddScore increments the user score
func (r *UserRepo) AddScore(ctx context.Context, chatID int64, points int) error {
	query := `UPDATE users SET score = score + $1 WHERE chat_id = $2`
	_, err := r.db.ExecContext(ctx, query, points, chatID)
	return err
}

// IncrementAIUsage bumps the lifetime AI question counter
func (r *UserRepo) IncrementAIUsage(ctx context.Context, chatID int64) error {
	query := `UPDATE users SET ai_questions_used = ai_questions_used + 1 WHERE chat_id = $1`
	_, err := r.db.ExecContext(ctx, query, chatID)
	return err
}

// ListAudience returns one page of broadcast recipients
func (r *UserRepo) ListAudience(ctx context.Context, audience domain.Audience, now time.Time, limit, offset int) ([]int64, error) {
	var (
		query string
		args  []any
	)
	switch audience {
	case domain.AudienceAll:
		query = `SELECT chat_id FROM users ORDER BY chat_id LIMIT $1 OFFSET $2`
		args = []any{limit, offset}
	case domain.AudienceVIP:
		query = `
			SELECT u.chat_id FROM users u
			JOIN vip_members v ON v.user_id = u.chat_id
			WHERE v.approved = TRUE AND v.end_date > $1
			ORDER BY u.chat_id LIMIT $2 OFFSET $3
		`
		args = []any{now, limit, offset}
	case domain.AudienceNormal:
		query = `
			SELECT u.chat_id FROM users u
			LEFT JOIN vip_members v ON v.user_id = u.chat_id
			WHERE NOT (COALESCE(v.approved, FALSE) AND COALESCE(v.end_date > $1, FALSE))
			ORDER BY u.chat_id LIMIT $2 OFFSET $3
		`
		args = []any{now, limit, offset}
	default:
		return nil, fmt.Errorf("list audience: unknown audience %q", audience)
	}

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, err
	}
	return ids, nil
}

// ListUsers returns one page of users ordered by registration time
func (r *UserRepo) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY registered_at, chat_id LIMIT $1 OFFSET $2`
	var users []domain.User
	if err := r.db.SelectContext(ctx, &users, query, limit, offset); err != nil {
		return nil, err
	}
	return users, nil
}

// CountUsers returns the total number of users
func (r *UserRepo) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`)
	return count, err
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
