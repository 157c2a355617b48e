package middleware

import (
	"testing"
	"time"

	"vipbot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

func newTestLimiter(opts RateLimitOptions, now *time.Time) *RateLimiter {
	l := NewRateLimiter(opts, testutil.NewTestLogger())
	l.now = func() time.Time { return *now }
	return l
}

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newTestLimiter(RateLimitOptions{Interval: time.Second, Burst: 2}, &now)

	assert.True(t, l.Allow(1))
	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1))

	// other users have their own bucket
	assert.True(t, l.Allow(2))

	now = now.Add(time.Second)
	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1))
}

func TestRateLimiter_Disabled(t *testing.T) {
	now := time.Now()
	l := newTestLimiter(RateLimitOptions{}, &now)

	for i := 0; i < 100; i++ {
		require.True(t, l.Allow(1))
	}
	assert.Zero(t, l.Len())
}

func TestRateLimiter_Exempt(t *testing.T) {
	now := time.Now()
	l := newTestLimiter(RateLimitOptions{
		Interval: time.Hour,
		Burst:    1,
		Exempt:   map[int64]struct{}{42: {}},
	}, &now)

	for i := 0; i < 10; i++ {
		require.True(t, l.Allow(42))
	}
	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1))
}

func TestRateLimiter_SweepsIdleUsers(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newTestLimiter(RateLimitOptions{Interval: time.Second, Burst: 1}, &now)

	l.Allow(1)
	l.Allow(2)
	require.Equal(t, 2, l.Len())

	now = now.Add(limiterIdle + time.Minute)
	l.Allow(3)

	assert.Equal(t, 1, l.Len())
}

func TestRateLimiter_Middleware(t *testing.T) {
	bot, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)

	now := time.Now()
	l := newTestLimiter(RateLimitOptions{Interval: time.Hour, Burst: 1}, &now)

	calls := 0
	h := l.Middleware()(func(tele.Context) error {
		calls++
		return nil
	})

	update := tele.Update{Message: &tele.Message{Sender: &tele.User{ID: 5}, Chat: &tele.Chat{ID: 5}}}
	require.NoError(t, h(bot.NewContext(update)))
	require.NoError(t, h(bot.NewContext(update)))

	assert.Equal(t, 1, calls)
}
