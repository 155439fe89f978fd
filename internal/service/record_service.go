package service

import (
	"context"
	"fmt"
	"time"

	"record-ingest-backend/internal/metrics"
	"record-ingest-backend/internal/model"
	"record-ingest-backend/internal/repository"
)

// RecordService inserts batches into the store and records exactly one
// outcome entry per call. Failures are not retried.
type RecordService interface {
	InsertMany(ctx context.Context, records []model.Record) error
	StoreName() string
	StoreConnected() bool
}

type recordService struct {
	recordStore repository.RecordStore
	outcomes    OutcomeService
}

func NewRecordService(recordStore repository.RecordStore, outcomes OutcomeService) RecordService {
	return &recordService{
		recordStore: recordStore,
		outcomes:    outcomes,
	}
}

func (s *recordService) InsertMany(ctx context.Context, records []model.Record) error {
	start := time.Now()
	err := s.recordStore.InsertMany(ctx, records)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.InsertDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	metrics.RecordsInserted.WithLabelValues(status).Add(float64(len(records)))

	if err != nil {
		s.outcomes.Record(ctx, model.NewErrorEntry(fmt.Sprintf("Error inserting data into %s: %v", s.recordStore.Name(), err)))
		return err
	}
	s.outcomes.Record(ctx, model.NewSuccessEntry("Data inserted into "+s.recordStore.Name()))
	return nil
}

func (s *recordService) StoreName() string {
	return s.recordStore.Name()
}

func (s *recordService) StoreConnected() bool {
	return s.recordStore.Connected()
}
