package repository

import (
	"context"
	"errors"

	"record-ingest-backend/internal/model"
)

var ErrNotConnected = errors.New("store not connected")

// RecordStore persists records into a document store. InsertMany returns
// ErrNotConnected until Connect has succeeded.
type RecordStore interface {
	Name() string
	Connect(ctx context.Context) error
	Connected() bool
	InsertMany(ctx context.Context, records []model.Record) error
	Close(ctx context.Context) error
}
