package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"record-ingest-backend/internal/model"
	"record-ingest-backend/internal/service"
	"record-ingest-backend/internal/store"
)

func newRecordService(recordStore *fakeRecordStore) (service.RecordService, service.OutcomeService, *fakePublisher) {
	publisher := &fakePublisher{}
	outcomes := service.NewOutcomeService(store.NewInMemoryLogBuffer(), publisher)
	return service.NewRecordService(recordStore, outcomes), outcomes, publisher
}

func TestRecordService_InsertManySuccess(t *testing.T) {
	recordStore := &fakeRecordStore{}
	records, outcomes, publisher := newRecordService(recordStore)

	err := records.InsertMany(context.Background(), []model.Record{{"a": 1.0}})
	require.NoError(t, err)

	require.Len(t, recordStore.Batches(), 1)
	assert.Equal(t, []model.LogEntry{model.NewSuccessEntry("Data inserted into FakeStore")}, outcomes.List(""))
	assert.Equal(t, outcomes.List(""), publisher.entries)
}

func TestRecordService_InsertManyFailure(t *testing.T) {
	recordStore := &fakeRecordStore{err: errors.New("write conflict")}
	records, outcomes, _ := newRecordService(recordStore)

	err := records.InsertMany(context.Background(), []model.Record{{"a": 1.0}})
	require.Error(t, err)

	entries := outcomes.List("")
	require.Len(t, entries, 1)
	assert.Equal(t, model.LogTypeError, entries[0].Type)
	assert.Equal(t, "Error inserting data into FakeStore: write conflict", entries[0].Message)
	assert.Empty(t, recordStore.Batches())
}

func TestRecordService_StoreInfo(t *testing.T) {
	recordStore := &fakeRecordStore{}
	records, _, _ := newRecordService(recordStore)

	assert.Equal(t, "FakeStore", records.StoreName())
	assert.False(t, records.StoreConnected())
	require.NoError(t, recordStore.Connect(context.Background()))
	assert.True(t, records.StoreConnected())
}
