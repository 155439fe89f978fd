package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"record-ingest-backend/config"
)

func TestConnectWithRetry_NoRetriesByDefault(t *testing.T) {
	calls := 0
	boom := errors.New("connection refused")

	err := ConnectWithRetry(context.Background(), "TestStore", config.StoreConfig{}, func(ctx context.Context) error {
		calls++
		return boom
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestConnectWithRetry_RetriesUntilSuccess(t *testing.T) {
	connectInitialInterval = time.Millisecond
	connectMaxInterval = 2 * time.Millisecond
	t.Cleanup(func() {
		connectInitialInterval = 2 * time.Second
		connectMaxInterval = 15 * time.Second
	})

	calls := 0
	err := ConnectWithRetry(context.Background(), "TestStore", config.StoreConfig{ConnectRetries: 3}, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestConnectWithRetry_AttemptHasDeadline(t *testing.T) {
	err := ConnectWithRetry(context.Background(), "TestStore", config.StoreConfig{ConnectTimeout: time.Second}, func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return nil
	})
	require.NoError(t, err)
}
