package service

import (
	"context"
	"fmt"
	"testing"

	"vipbot/internal/domain"
	"vipbot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMessageService_Log(t *testing.T) {
	mockRepo := new(testutil.MockMessageRepository)
	mockRepo.On("InsertMessage", mock.Anything, domain.MessageLog{
		UserID:    4,
		Direction: domain.FromUser,
		Kind:      domain.MediaText,
		Text:      "help",
	}).Return(nil)

	err := NewMessageService(mockRepo, testutil.NewTestLogger()).
		Log(context.Background(), 4, domain.FromUser, domain.Payload{Text: "help"})

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestMessageService_Archive(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewFakeStore()
	service := NewMessageService(store, testutil.NewTestLogger())

	require.NoError(t, service.Log(ctx, 4, domain.FromUser, domain.Payload{Kind: domain.MediaText, Text: "one"}))
	require.NoError(t, service.Log(ctx, 4, domain.FromAdmin, domain.Payload{Kind: domain.MediaText, Text: "two"}))
	require.NoError(t, service.Log(ctx, 5, domain.FromUser, domain.Payload{Kind: domain.MediaText, Text: "other"}))
	require.NoError(t, store.InsertAIChat(ctx, domain.AIChatLog{UserID: 4, Question: "q", Answer: "a"}))

	archive, err := service.Archive(ctx, 4)
	require.NoError(t, err)

	require.Len(t, archive.Messages, 2)
	assert.Equal(t, "two", archive.Messages[0].Text)
	assert.Len(t, archive.AIChats, 1)
}

func TestMessageService_Archive_Error(t *testing.T) {
	mockRepo := new(testutil.MockMessageRepository)
	mockRepo.On("ListMessages", mock.Anything, int64(4), ArchiveLimit).Return(nil, fmt.Errorf("db error"))

	archive, err := NewMessageService(mockRepo, testutil.NewTestLogger()).Archive(context.Background(), 4)

	assert.Error(t, err)
	assert.Nil(t, archive)
}
