package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"record-ingest-backend/internal/kafka"
	"record-ingest-backend/internal/model"
	"record-ingest-backend/internal/store"
)

// OutcomeService owns the outcome log. Every recorded entry is appended to the
// buffer and mirrored to the publisher.
type OutcomeService interface {
	Record(ctx context.Context, entry model.LogEntry)
	List(entryType string) []model.LogEntry
}

type outcomeService struct {
	buffer    store.LogBuffer
	publisher kafka.OutcomePublisher
}

func NewOutcomeService(buffer store.LogBuffer, publisher kafka.OutcomePublisher) OutcomeService {
	return &outcomeService{
		buffer:    buffer,
		publisher: publisher,
	}
}

func (s *outcomeService) Record(ctx context.Context, entry model.LogEntry) {
	s.buffer.Append(entry)
	if entry.Type == model.LogTypeError {
		log.Warn().Str("type", entry.Type).Msg(entry.Message)
	} else {
		log.Info().Str("type", entry.Type).Msg(entry.Message)
	}
	s.publisher.Publish(context.WithoutCancel(ctx), entry)
}

func (s *outcomeService) List(entryType string) []model.LogEntry {
	entries := s.buffer.List(entryType)
	log.Debug().Str("type_filter", entryType).Int("count", len(entries)).Msg("Listing outcome log")
	return entries
}
