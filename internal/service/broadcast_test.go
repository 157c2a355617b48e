package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"vipbot/internal/domain"
	"vipbot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeliverer struct {
	mu       sync.Mutex
	attempts []int64
	fail     map[int64]bool
}

func (d *fakeDeliverer) Deliver(_ context.Context, chatID int64, _ domain.Payload) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attempts = append(d.attempts, chatID)
	if d.fail[chatID] {
		return fmt.Errorf("blocked by user %d", chatID)
	}
	return nil
}

func TestBroadcastService_Send(t *testing.T) {
	tests := []struct {
		name       string
		recipients int
		failing    []int64
		batchSize  int
		pauses     int
	}{
		{name: "all delivered", recipients: 25, batchSize: 10, pauses: 2},
		{name: "some fail", recipients: 23, failing: []int64{3, 11, 20}, batchSize: 10, pauses: 2},
		{name: "exact batch", recipients: 10, failing: []int64{1}, batchSize: 10, pauses: 0},
		{name: "nobody", recipients: 0, batchSize: 10, pauses: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewFakeStore()
			for i := 1; i <= tt.recipients; i++ {
				store.PutUser(domain.User{ChatID: int64(i)})
			}
			deliverer := &fakeDeliverer{fail: map[int64]bool{}}
			for _, id := range tt.failing {
				deliverer.fail[id] = true
			}

			pauses := 0
			service := NewBroadcastService(store, store, deliverer, tt.batchSize, time.Second, testutil.NewTestLogger()).
				WithSleep(func(context.Context, time.Duration) error {
					pauses++
					return nil
				})

			payload := domain.Payload{Kind: domain.MediaPhoto, Text: "sale", FileID: "AgAD"}
			b, err := service.Send(context.Background(), domain.AudienceAll, payload)
			require.NoError(t, err)

			assert.Len(t, deliverer.attempts, tt.recipients)
			assert.Equal(t, tt.recipients-len(tt.failing), b.SentCount)
			assert.Equal(t, len(tt.failing), b.FailedCount)
			assert.Equal(t, tt.pauses, pauses)

			saved := store.Broadcasts()
			require.Len(t, saved, 1)
			assert.Equal(t, b.ID, saved[0].ID)
			assert.Equal(t, payload, saved[0].Payload())
			assert.Equal(t, domain.AudienceAll, saved[0].Target)
		})
	}
}

func TestBroadcastService_Audience(t *testing.T) {
	now := time.Now()
	store := testutil.NewFakeStore()
	for i := int64(1); i <= 4; i++ {
		store.PutUser(domain.User{ChatID: i})
	}
	store.PutVip(*testutil.NewActiveVip(2, now.Add(24*time.Hour)))
	store.PutVip(*testutil.NewActiveVip(3, now.Add(-time.Hour)))

	tests := []struct {
		target   domain.Audience
		expected []int64
	}{
		{target: domain.AudienceVIP, expected: []int64{2}},
		{target: domain.AudienceNormal, expected: []int64{1, 3, 4}},
		{target: domain.AudienceAll, expected: []int64{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(string(tt.target), func(t *testing.T) {
			deliverer := &fakeDeliverer{}
			service := NewBroadcastService(store, store, deliverer, 10, 0, testutil.NewTestLogger())

			_, err := service.Send(context.Background(), tt.target, domain.Payload{Kind: domain.MediaText, Text: "hi"})
			require.NoError(t, err)

			assert.ElementsMatch(t, tt.expected, deliverer.attempts)
		})
	}
}

func TestBroadcastService_InterruptedPause(t *testing.T) {
	store := testutil.NewFakeStore()
	for i := int64(1); i <= 15; i++ {
		store.PutUser(domain.User{ChatID: i})
	}
	deliverer := &fakeDeliverer{}
	service := NewBroadcastService(store, store, deliverer, 10, time.Second, testutil.NewTestLogger()).
		WithSleep(func(context.Context, time.Duration) error { return context.Canceled })

	b, err := service.Send(context.Background(), domain.AudienceAll, domain.Payload{Kind: domain.MediaText, Text: "hi"})

	require.NoError(t, err)
	assert.Len(t, deliverer.attempts, 10)
	assert.Equal(t, 10, b.SentCount)
	assert.Equal(t, 5, b.FailedCount)
}

func TestBroadcastService_InvalidTarget(t *testing.T) {
	service := NewBroadcastService(testutil.NewFakeStore(), testutil.NewFakeStore(), &fakeDeliverer{}, 10, 0, testutil.NewTestLogger())

	_, err := service.Send(context.Background(), domain.Audience("aliens"), domain.Payload{})

	assert.Error(t, err)
}

func TestBroadcastService_AudienceError(t *testing.T) {
	store := testutil.NewFakeStore()
	store.Err = errors.New("db down")
	service := NewBroadcastService(store, store, &fakeDeliverer{}, 10, 0, testutil.NewTestLogger())

	_, err := service.Send(context.Background(), domain.AudienceAll, domain.Payload{Kind: domain.MediaText, Text: "x"})

	assert.Error(t, err)
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
}
