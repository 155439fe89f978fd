package kafka

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/encoding/json"
	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"

	"record-ingest-backend/config"
	"record-ingest-backend/internal/model"
)

// OutcomePublisher mirrors outcome entries to an external stream. Publish
// never blocks on the broker and never fails the caller.
type OutcomePublisher interface {
	Publish(ctx context.Context, entry model.LogEntry)
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaOutcomePublisher struct {
	writer messageWriter
	topic  string
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, model.LogEntry) {}
func (noopPublisher) Close() error                           { return nil }

func NewKafkaOutcomePublisher(lc fx.Lifecycle, cfg *config.Config) OutcomePublisher {
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.OutcomeTopic == "" {
		log.Info().Msg("Kafka brokers not configured, outcome publishing disabled")
		return noopPublisher{}
	}
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      cfg.Kafka.Brokers,
		Topic:        cfg.Kafka.OutcomeTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 500 * time.Millisecond,
		Async:        true,
	})
	writer.Completion = func(messages []kafka.Message, err error) {
		if err != nil {
			log.Error().Err(err).Int("message_count", len(messages)).Msg("Failed to write outcome messages to Kafka")
		}
	}
	p := newPublisher(writer, cfg.Kafka.OutcomeTopic)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Closing Kafka outcome publisher")
			return p.Close()
		},
	})
	log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.OutcomeTopic).Msg("Kafka outcome publisher initialized")
	return p
}

func newPublisher(writer messageWriter, topic string) *kafkaOutcomePublisher {
	return &kafkaOutcomePublisher{writer: writer, topic: topic}
}

func (p *kafkaOutcomePublisher) Publish(ctx context.Context, entry model.LogEntry) {
	value, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Interface("entry", entry).Msg("Failed to marshal outcome entry for Kafka")
		return
	}
	msg := kafka.Message{
		Key:   []byte(entry.Type),
		Value: value,
		Time:  time.Now().UTC(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Error().Err(err).Str("topic", p.topic).Msg("Failed to write outcome message to Kafka")
		return
	}
	log.Debug().Str("topic", p.topic).Str("type", entry.Type).Msg("Published outcome entry")
}

func (p *kafkaOutcomePublisher) Close() error {
	return p.writer.Close()
}
