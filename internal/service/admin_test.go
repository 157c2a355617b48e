package service

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"vipbot/internal/domain"
	"vipbot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestAdminService_Stats(t *testing.T) {
	store := testutil.NewFakeStore()
	for i := int64(1); i <= 3; i++ {
		store.PutUser(domain.User{ChatID: i})
	}
	store.PutVip(*testutil.NewActiveVip(1, time.Now().Add(time.Hour)))

	stats, err := NewAdminService(store, store, nil, testutil.NewTestLogger()).Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.Stats{TotalUsers: 3, ActiveVIP: 1}, stats)
}

func TestAdminService_ResetDatabase(t *testing.T) {
	tests := []struct {
		name          string
		resetError    error
		expectedError bool
	}{
		{name: "reset ok"},
		{name: "reset fails", resetError: fmt.Errorf("locked"), expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetter := new(testutil.MockResetter)
			resetter.On("Reset", mock.Anything).Return(tt.resetError)

			err := NewAdminService(nil, nil, resetter, testutil.NewTestLogger()).ResetDatabase(context.Background())

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			resetter.AssertExpectations(t)
		})
	}
}

func TestAdminService_ExportUsers(t *testing.T) {
	store := testutil.NewFakeStore()
	alice := testutil.NewTestUser(10, "Alice")
	age := 30
	alice.Age = &age
	alice.Score = 120
	store.PutUser(*alice)
	store.PutUser(*testutil.NewTestUser(11, "Bob"))

	data, err := NewAdminService(store, store, nil, testutil.NewTestLogger()).ExportUsers(context.Background())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Chat ID", rows[0][0])
	assert.Equal(t, "10", rows[1][0])
	assert.Equal(t, "Alice", rows[1][3])
	assert.Equal(t, "30", rows[1][4])
	assert.Equal(t, "3", rows[1][13])
	assert.Equal(t, "Bob", rows[2][3])
}
