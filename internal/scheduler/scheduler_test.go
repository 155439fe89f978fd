package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"

	"record-ingest-backend/config"
	"record-ingest-backend/internal/model"
)

type countingIngest struct {
	calls atomic.Int32
	ran   chan struct{}
}

func (c *countingIngest) ProcessFile(ctx context.Context) error {
	c.calls.Add(1)
	if c.ran != nil {
		c.ran <- struct{}{}
	}
	return nil
}

type stubStore struct {
	connectErr error
	connected  atomic.Bool
	closed     atomic.Bool
}

func (s *stubStore) Name() string { return "StubStore" }
func (s *stubStore) Connect(ctx context.Context) error {
	if s.connectErr != nil {
		return s.connectErr
	}
	s.connected.Store(true)
	return nil
}
func (s *stubStore) Connected() bool                                       { return s.connected.Load() }
func (s *stubStore) InsertMany(ctx context.Context, _ []model.Record) error { return nil }
func (s *stubStore) Close(ctx context.Context) error                       { s.closed.Store(true); return nil }

func TestNew_RejectsNonPositiveInterval(t *testing.T) {
	_, err := New(&countingIngest{}, 0, true)
	assert.Error(t, err)
}

func TestScheduler_RunsOnceOnStart(t *testing.T) {
	ingest := &countingIngest{ran: make(chan struct{}, 1)}
	s, err := New(ingest, 12*time.Hour, true)
	require.NoError(t, err)

	s.Start()
	select {
	case <-ingest.ran:
	case <-time.After(5 * time.Second):
		t.Fatal("initial ingestion run did not happen")
	}
	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, int32(1), ingest.calls.Load())
}

func TestScheduler_NoInitialRunWhenDisabled(t *testing.T) {
	ingest := &countingIngest{}
	s, err := New(ingest, 12*time.Hour, false)
	require.NoError(t, err)

	s.Start()
	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, int32(0), ingest.calls.Load())
}

func TestScheduler_StopBeforeStart(t *testing.T) {
	s, err := New(&countingIngest{}, time.Hour, true)
	require.NoError(t, err)
	assert.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_ActivateConnectFailureDisablesScheduling(t *testing.T) {
	ingest := &countingIngest{}
	s, err := New(ingest, time.Hour, true)
	require.NoError(t, err)

	s.activate(&stubStore{connectErr: errors.New("connection refused")})

	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	assert.False(t, started)
	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, int32(0), ingest.calls.Load())
}

func TestScheduler_ActivateStartsAfterConnect(t *testing.T) {
	ingest := &countingIngest{ran: make(chan struct{}, 1)}
	s, err := New(ingest, time.Hour, true)
	require.NoError(t, err)

	recordStore := &stubStore{}
	s.activate(recordStore)

	select {
	case <-ingest.ran:
	case <-time.After(5 * time.Second):
		t.Fatal("ingestion did not run after store connected")
	}
	assert.True(t, recordStore.Connected())
	require.NoError(t, s.Stop(context.Background()))
}

func TestNewScheduler_LifecycleLeavesStoreOpen(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	ingest := &countingIngest{ran: make(chan struct{}, 1)}
	recordStore := &stubStore{}
	cfg := &config.Config{Ingest: config.IngestConfig{Interval: time.Hour, RunOnStart: true}}

	_, err := NewScheduler(lc, cfg, recordStore, ingest)
	require.NoError(t, err)

	lc.RequireStart()
	select {
	case <-ingest.ran:
	case <-time.After(5 * time.Second):
		t.Fatal("ingestion did not run after lifecycle start")
	}
	lc.RequireStop()

	assert.True(t, recordStore.Connected())
	assert.False(t, recordStore.closed.Load(), "store is closed by its own provider hook")
}
