package postgres

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/encoding/json"

	"record-ingest-backend/config"
	"record-ingest-backend/internal/model"
	"record-ingest-backend/internal/repository"
)

const (
	defaultTableName = "records"
	colDocument      = "document"
	colInsertedAt    = "inserted_at"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type postgresRecordStore struct {
	cfg       config.PostgresConfig
	storeCfg  config.StoreConfig
	tableName string
	mu        sync.RWMutex
	pool      *pgxpool.Pool
}

func NewPostgresRecordStore(cfg *config.Config) (repository.RecordStore, error) {
	tableName := cfg.Postgres.Table
	if tableName == "" {
		tableName = defaultTableName
	}
	if !tableNamePattern.MatchString(tableName) {
		return nil, fmt.Errorf("invalid postgres table name %q", tableName)
	}
	return &postgresRecordStore{
		cfg:       cfg.Postgres,
		storeCfg:  cfg.Store,
		tableName: tableName,
	}, nil
}

func (s *postgresRecordStore) Name() string {
	return "PostgreSQL"
}

func (s *postgresRecordStore) Connect(ctx context.Context) error {
	poolConfig, err := pgxpool.ParseConfig(s.cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("Failed to parse PostgreSQL DSN")
		return fmt.Errorf("invalid PostgreSQL DSN: %w", err)
	}

	return repository.ConnectWithRetry(ctx, s.Name(), s.storeCfg, func(ctx context.Context) error {
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return fmt.Errorf("failed to create PostgreSQL pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return fmt.Errorf("failed to ping PostgreSQL: %w", err)
		}
		if err := s.ensureTable(ctx, pool); err != nil {
			pool.Close()
			return err
		}

		s.mu.Lock()
		s.pool = pool
		s.mu.Unlock()
		log.Info().Str("table", s.tableName).Msg("PostgreSQL connection pool created and verified.")
		return nil
	})
}

func (s *postgresRecordStore) ensureTable(ctx context.Context, pool *pgxpool.Pool) error {
	createTableSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			%s JSONB NOT NULL,
			%s TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		s.tableName, colDocument, colInsertedAt)

	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.tableName, err)
	}
	log.Info().Str("table", s.tableName).Msg("Ensured records table exists.")
	return nil
}

func (s *postgresRecordStore) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pool != nil
}

func (s *postgresRecordStore) InsertMany(ctx context.Context, records []model.Record) error {
	s.mu.RLock()
	pool := s.pool
	s.mu.RUnlock()
	if pool == nil {
		return repository.ErrNotConnected
	}
	if len(records) == 0 {
		return nil
	}

	rows, err := documentRows(records)
	if err != nil {
		return err
	}

	copyCount, err := pool.CopyFrom(ctx, pgx.Identifier{s.tableName}, []string{colDocument}, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("postgres copyfrom failed: %w", err)
	}
	if int(copyCount) != len(records) {
		log.Warn().Int64("inserted", copyCount).Int("expected", len(records)).Msg("PostgreSQL CopyFrom record count mismatch")
	} else {
		log.Debug().Int64("count", copyCount).Msg("Inserted records into PostgreSQL")
	}
	return nil
}

// documentRows encodes each record as a single JSONB column value.
func documentRows(records []model.Record) ([][]interface{}, error) {
	rows := make([][]interface{}, len(records))
	for i, record := range records {
		doc, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("marshal record %d: %w", i, err)
		}
		rows[i] = []interface{}{doc}
	}
	return rows, nil
}

func (s *postgresRecordStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pool != nil {
		log.Info().Msg("Closing PostgreSQL connection pool...")
		s.pool.Close()
		s.pool = nil
	}
	return nil
}
