package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"vipbot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCleanupService_CleanupStaleSessions(t *testing.T) {
	now := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		mockError     error
		expectedError bool
	}{
		{
			name: "successful cleanup",
		},
		{
			name:          "database error",
			mockError:     fmt.Errorf("db error"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := new(testutil.MockSessionCleaner)
			mockStore.On("DeleteStale", mock.Anything, now.Add(-24*time.Hour)).Return(int64(2), tt.mockError)

			service := NewCleanupService(mockStore, 24*time.Hour, testutil.NewTestLogger())
			service.now = testutil.FixedClock(now)

			err := service.CleanupStaleSessions(context.Background())

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			mockStore.AssertExpectations(t)
		})
	}
}

func TestCleanupService_DisabledTTL(t *testing.T) {
	mockStore := new(testutil.MockSessionCleaner)

	err := NewCleanupService(mockStore, 0, testutil.NewTestLogger()).CleanupStaleSessions(context.Background())

	assert.NoError(t, err)
	mockStore.AssertNotCalled(t, "DeleteStale", mock.Anything, mock.Anything)
}
