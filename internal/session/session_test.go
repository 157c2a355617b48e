package session

import (
	"context"
	"testing"

	"vipbot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	st, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, st)

	require.NoError(t, store.Set(ctx, 1, domain.RegisterState{Step: 2}))
	require.NoError(t, store.Set(ctx, 1, domain.BroadcastState{Target: domain.AudienceVIP}))

	st, err = store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.BroadcastState{Target: domain.AudienceVIP}, st)
	assert.Equal(t, 1, store.Len())
}

func TestMemory_KeyedByChat(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	require.NoError(t, store.Set(ctx, 1, domain.AIChatState{}))
	require.NoError(t, store.Set(ctx, 2, domain.VipWaitingState{}))
	require.NoError(t, store.Delete(ctx, 1))

	st, _ := store.Get(ctx, 1)
	assert.Nil(t, st)
	st, _ = store.Get(ctx, 2)
	assert.Equal(t, domain.VipWaitingState{}, st)
}

func TestMemory_SetNilDeletes(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	require.NoError(t, store.Set(ctx, 1, domain.AIChatState{}))
	require.NoError(t, store.Set(ctx, 1, nil))

	assert.Equal(t, 0, store.Len())
}
