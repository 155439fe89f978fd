package service_test

import (
	"context"
	"sync"

	"record-ingest-backend/internal/model"
	"record-ingest-backend/internal/repository"
)

type fakeRecordStore struct {
	mu        sync.Mutex
	batches   [][]model.Record
	err       error
	connected bool
	// block, when set, holds InsertMany until it is closed.
	block   chan struct{}
	entered chan struct{}
}

var _ repository.RecordStore = (*fakeRecordStore)(nil)

func (f *fakeRecordStore) Name() string                      { return "FakeStore" }
func (f *fakeRecordStore) Connect(ctx context.Context) error { f.connected = true; return nil }
func (f *fakeRecordStore) Connected() bool                   { return f.connected }
func (f *fakeRecordStore) Close(ctx context.Context) error   { return nil }

func (f *fakeRecordStore) InsertMany(ctx context.Context, records []model.Record) error {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, records)
	return nil
}

func (f *fakeRecordStore) Batches() [][]model.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.batches
}

type fakePublisher struct {
	mu      sync.Mutex
	entries []model.LogEntry
}

func (p *fakePublisher) Publish(ctx context.Context, entry model.LogEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, entry)
}

func (p *fakePublisher) Close() error { return nil }
