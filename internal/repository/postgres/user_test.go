package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"testing"
	"time"

	"vipbot/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

var userRowColumns = []string{
	"chat_id", "username", "first_name", "name", "age", "city", "region", "gender", "job", "goal", "phone",
	"ai_questions_used", "score", "registered_at",
}

func TestUserRepo_EnsureUserExists(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users").
		WithArgs(int64(123), "alice", "Alice").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.EnsureUserExists(context.Background(), 123, "alice", "Alice")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetUser(t *testing.T) {
	registered := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		chatID        int64
		mockRows      *sqlmock.Rows
		mockError     error
		expectedNil   bool
		expectedError bool
	}{
		{
			name:   "user found",
			chatID: 123,
			mockRows: sqlmock.NewRows(userRowColumns).
				AddRow(123, "alice", "Alice", "Alice", 27, "Paris", "IDF", "female", "dev", "learn", "+33", 2, 40, registered),
		},
		{
			name:   "user without profile",
			chatID: 124,
			mockRows: sqlmock.NewRows(userRowColumns).
				AddRow(124, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, 0, 0, registered),
		},
		{
			name:        "user not exists",
			chatID:      789,
			mockError:   sql.ErrNoRows,
			expectedNil: true,
		},
		{
			name:          "database error",
			chatID:        1,
			mockError:     fmt.Errorf("connection refused"),
			expectedNil:   true,
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewUserRepo(db)

			query := "SELECT (.+) FROM users WHERE chat_id = \\$1"
			if tt.mockError != nil {
				mock.ExpectQuery(query).WithArgs(tt.chatID).WillReturnError(tt.mockError)
			} else {
				mock.ExpectQuery(query).WithArgs(tt.chatID).WillReturnRows(tt.mockRows)
			}

			user, err := repo.GetUser(context.Background(), tt.chatID)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.expectedNil {
				assert.Nil(t, user)
			} else {
				require.NotNil(t, user)
				assert.Equal(t, tt.chatID, user.ChatID)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepo_GetUser_Fields(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	registered := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE chat_id = \\$1").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(5, "bob", "Bob", "Bob", nil, "Rome", "Lazio", "male", "chef", "vip", "+39", 3, 75, registered))

	user, err := repo.GetUser(context.Background(), 5)

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Nil(t, user.Age)
	assert.Equal(t, "Rome", *user.City)
	assert.Equal(t, 3, user.AIQuestionsUsed)
	assert.Equal(t, 75, user.Score)
	assert.Equal(t, 2, user.Level())
	assert.Equal(t, registered, user.RegisteredAt)
}

func TestUserRepo_UpsertProfile(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	var p domain.Profile
	p.Set(domain.FieldName, "Alice")
	p.Set(domain.FieldAge, "not a number")
	p.Set(domain.FieldCity, "Paris")
	p.Set(domain.FieldRegion, "IDF")
	p.Set(domain.FieldGender, "female")
	p.Set(domain.FieldJob, "")
	p.Set(domain.FieldGoal, "learn")
	p.Set(domain.FieldPhone, "+33")

	mock.ExpectExec("INSERT INTO users \\(chat_id, name, age, city, region, gender, job, goal, phone\\)").
		WithArgs(int64(123), "Alice", nil, "Paris", "IDF", "female", "", "learn", "+33").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.UpsertProfile(context.Background(), 123, p)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_UpdateField(t *testing.T) {
	tests := []struct {
		name          string
		field         domain.ProfileField
		value         any
		rowsAffected  int64
		expectQuery   bool
		expectedError error
	}{
		{name: "update city", field: domain.FieldCity, value: "Berlin", rowsAffected: 1, expectQuery: true},
		{name: "null age", field: domain.FieldAge, value: nil, rowsAffected: 1, expectQuery: true},
		{name: "missing user", field: domain.FieldJob, value: "x", rowsAffected: 0, expectQuery: true, expectedError: domain.ErrUserNotFound},
		{name: "unknown column", field: domain.ProfileField("score"), value: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewUserRepo(db)

			if tt.expectQuery {
				mock.ExpectExec(fmt.Sprintf("UPDATE users SET %s = \\$1 WHERE chat_id = \\$2", tt.field)).
					WithArgs(tt.value, int64(7)).
					WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))
			}

			err := repo.UpdateField(context.Background(), 7, tt.field, tt.value)

			switch {
			case tt.expectedError != nil:
				assert.ErrorIs(t, err, tt.expectedError)
			case !tt.expectQuery:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepo_AddScoreAndUsage(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec("UPDATE users SET score = score \\+ \\$1 WHERE chat_id = \\$2").
		WithArgs(20, int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET ai_questions_used = ai_questions_used \\+ 1 WHERE chat_id = \\$1").
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.AddScore(context.Background(), 9, 20))
	assert.NoError(t, repo.IncrementAIUsage(context.Background(), 9))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_ListAudience(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		audience domain.Audience
		query    string
		args     []driver.Value
	}{
		{
			name:     "all users",
			audience: domain.AudienceAll,
			query:    "SELECT chat_id FROM users ORDER BY chat_id LIMIT \\$1 OFFSET \\$2",
			args:     []driver.Value{10, 20},
		},
		{
			name:     "vip users",
			audience: domain.AudienceVIP,
			query:    "JOIN vip_members v ON v.user_id = u.chat_id WHERE v.approved = TRUE AND v.end_date > \\$1",
			args:     []driver.Value{now, 10, 20},
		},
		{
			name:     "regular users",
			audience: domain.AudienceNormal,
			query:    "LEFT JOIN vip_members v ON v.user_id = u.chat_id",
			args:     []driver.Value{now, 10, 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewUserRepo(db)

			args := make([]driver.Value, 0, len(tt.args))
			for _, a := range tt.args {
				args = append(args, a)
			}
			mock.ExpectQuery(tt.query).
				WithArgs(args...).
				WillReturnRows(sqlmock.NewRows([]string{"chat_id"}).AddRow(1).AddRow(2))

			ids, err := repo.ListAudience(context.Background(), tt.audience, now, 10, 20)

			assert.NoError(t, err)
			assert.Equal(t, []int64{1, 2}, ids)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepo_ListAudience_Unknown(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewUserRepo(db)

	ids, err := repo.ListAudience(context.Background(), domain.Audience("robots"), time.Now(), 10, 0)

	assert.Error(t, err)
	assert.Nil(t, ids)
}

func TestUserRepo_CountUsers(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := repo.CountUsers(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 42, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
