package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"vipbot/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepo_Get(t *testing.T) {
	tests := []struct {
		name          string
		rows          *sqlmock.Rows
		err           error
		expected      domain.State
		expectedError error
	}{
		{
			name:     "stateless chat",
			err:      sql.ErrNoRows,
			expected: nil,
		},
		{
			name:     "broadcast state",
			rows:     sqlmock.NewRows([]string{"kind", "data"}).AddRow("broadcast", []byte(`{"target":"vip"}`)),
			expected: domain.BroadcastState{Target: domain.AudienceVIP},
		},
		{
			name:     "edit field state",
			rows:     sqlmock.NewRows([]string{"kind", "data"}).AddRow("edit_city", []byte(`{"field":"city"}`)),
			expected: domain.EditFieldState{Field: domain.FieldCity},
		},
		{
			name:          "unknown kind",
			rows:          sqlmock.NewRows([]string{"kind", "data"}).AddRow("dance", []byte(`{}`)),
			expectedError: domain.ErrUnknownState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewSessionRepo(db)

			q := mock.ExpectQuery("SELECT kind, data FROM conversation_states WHERE chat_id = \\$1").WithArgs(int64(1))
			if tt.err != nil {
				q.WillReturnError(tt.err)
			} else {
				q.WillReturnRows(tt.rows)
			}

			st, err := repo.Get(context.Background(), 1)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, st)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSessionRepo_Set(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepo(db)

	mock.ExpectExec("INSERT INTO conversation_states (.+) ON CONFLICT \\(chat_id\\)").
		WithArgs(int64(1), "reply_to_user", `{"user_id":42}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Set(context.Background(), 1, domain.ReplyState{UserID: 42})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepo_SetNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepo(db)

	assert.Error(t, repo.Set(context.Background(), 1, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepo_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepo(db)

	mock.ExpectExec("DELETE FROM conversation_states WHERE chat_id = \\$1").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Delete(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepo_DeleteStale(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepo(db)
	before := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("DELETE FROM conversation_states WHERE updated_at < \\$1").
		WithArgs(before).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteStale(context.Background(), before)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
