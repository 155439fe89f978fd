package mongodb

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"record-ingest-backend/config"
	"record-ingest-backend/internal/model"
	"record-ingest-backend/internal/repository"
)

type mongoRecordStore struct {
	cfg        config.MongoDBConfig
	storeCfg   config.StoreConfig
	mu         sync.RWMutex
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoRecordStore(cfg *config.Config) repository.RecordStore {
	return &mongoRecordStore{
		cfg:      cfg.MongoDB,
		storeCfg: cfg.Store,
	}
}

func (s *mongoRecordStore) Name() string {
	return "MongoDB"
}

func (s *mongoRecordStore) Connect(ctx context.Context) error {
	return repository.ConnectWithRetry(ctx, s.Name(), s.storeCfg, func(ctx context.Context) error {
		opts := options.Client().ApplyURI(s.cfg.URI)
		if s.storeCfg.ConnectTimeout > 0 {
			opts.SetServerSelectionTimeout(s.storeCfg.ConnectTimeout)
		}
		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			return fmt.Errorf("mongo connect: %w", err)
		}
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(context.Background())
			return fmt.Errorf("mongo ping: %w", err)
		}

		s.mu.Lock()
		s.client = client
		s.collection = client.Database(s.cfg.Database).Collection(s.cfg.Collection)
		s.mu.Unlock()

		log.Info().Str("database", s.cfg.Database).Str("collection", s.cfg.Collection).Msg("Connected to MongoDB")
		return nil
	})
}

func (s *mongoRecordStore) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collection != nil
}

func (s *mongoRecordStore) InsertMany(ctx context.Context, records []model.Record) error {
	s.mu.RLock()
	collection := s.collection
	s.mu.RUnlock()
	if collection == nil {
		return repository.ErrNotConnected
	}
	if len(records) == 0 {
		return nil
	}

	docs := make([]interface{}, len(records))
	for i, record := range records {
		docs[i] = toDocument(record)
	}

	res, err := collection.InsertMany(ctx, docs)
	if err != nil {
		return err
	}
	log.Debug().Int("count", len(res.InsertedIDs)).Str("collection", s.cfg.Collection).Msg("Inserted records into MongoDB")
	return nil
}

func (s *mongoRecordStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	log.Info().Msg("Disconnecting from MongoDB...")
	err := s.client.Disconnect(ctx)
	s.client = nil
	s.collection = nil
	return err
}

// number is satisfied by json.Number from any decoder that keeps literals.
type number interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

// toDocument converts a decoded record into a BSON document. Integer literals
// become int32 when they fit and int64 otherwise; every other number becomes a
// double.
func toDocument(record model.Record) bson.M {
	doc := make(bson.M, len(record))
	for k, v := range record {
		doc[k] = toBSONValue(v)
	}
	return doc
}

func toBSONValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return toDocument(val)
	case model.Record:
		return toDocument(val)
	case []any:
		arr := make(bson.A, len(val))
		for i, item := range val {
			arr[i] = toBSONValue(item)
		}
		return arr
	case number:
		if i, err := val.Int64(); err == nil {
			if i >= math.MinInt32 && i <= math.MaxInt32 {
				return int32(i)
			}
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	default:
		return v
	}
}
