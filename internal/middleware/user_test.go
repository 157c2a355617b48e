package middleware

import (
	"context"
	"testing"

	"vipbot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

type mockEnsurer struct {
	mock.Mock
}

func (m *mockEnsurer) EnsureUser(ctx context.Context, chatID int64, username, firstName string) error {
	args := m.Called(ctx, chatID, username, firstName)
	return args.Error(0)
}

func TestEnsureUser(t *testing.T) {
	bot, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)

	tests := []struct {
		name       string
		sender     *tele.User
		expectCall bool
		wantNext   bool
	}{
		{name: "user is registered", sender: &tele.User{ID: 7, Username: "ann", FirstName: "Ann"}, expectCall: true, wantNext: true},
		{name: "bots are ignored", sender: &tele.User{ID: 8, IsBot: true}},
		{name: "no sender", sender: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &mockEnsurer{}
			if tt.expectCall {
				users.On("EnsureUser", mock.Anything, tt.sender.ID, tt.sender.Username, tt.sender.FirstName).Return(nil).Once()
			}

			called := false
			h := EnsureUser(context.Background(), users, testutil.NewTestLogger())(func(tele.Context) error {
				called = true
				return nil
			})

			update := tele.Update{Message: &tele.Message{Sender: tt.sender, Chat: &tele.Chat{ID: 7}}}
			require.NoError(t, h(bot.NewContext(update)))

			assert.Equal(t, tt.wantNext, called)
			users.AssertExpectations(t)
		})
	}
}
