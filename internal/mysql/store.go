package mysql

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/encoding/json"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"record-ingest-backend/config"
	"record-ingest-backend/internal/model"
	"record-ingest-backend/internal/repository"
)

const insertBatchSize = 500

// recordRow keeps each record as an opaque JSON document.
type recordRow struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Document  string    `gorm:"type:json;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (recordRow) TableName() string {
	return "records"
}

type mysqlRecordStore struct {
	cfg      config.MySQLConfig
	storeCfg config.StoreConfig
	mu       sync.RWMutex
	db       *gorm.DB
}

func NewMySQLRecordStore(cfg *config.Config) repository.RecordStore {
	return &mysqlRecordStore{
		cfg:      cfg.MySQL,
		storeCfg: cfg.Store,
	}
}

func (s *mysqlRecordStore) Name() string {
	return "MySQL"
}

func dsn(cfg config.MySQLConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
}

func (s *mysqlRecordStore) Connect(ctx context.Context) error {
	return repository.ConnectWithRetry(ctx, s.Name(), s.storeCfg, func(ctx context.Context) error {
		db, err := gorm.Open(mysql.Open(dsn(s.cfg)), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return fmt.Errorf("open mysql: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("mysql handle: %w", err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			return fmt.Errorf("ping mysql: %w", err)
		}
		if err := db.WithContext(ctx).AutoMigrate(&recordRow{}); err != nil {
			_ = sqlDB.Close()
			return fmt.Errorf("migrate records table: %w", err)
		}

		s.mu.Lock()
		s.db = db
		s.mu.Unlock()
		log.Info().Str("database", s.cfg.Name).Msg("Connected to MySQL")
		return nil
	})
}

func (s *mysqlRecordStore) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db != nil
}

func (s *mysqlRecordStore) InsertMany(ctx context.Context, records []model.Record) error {
	s.mu.RLock()
	db := s.db
	s.mu.RUnlock()
	if db == nil {
		return repository.ErrNotConnected
	}
	if len(records) == 0 {
		return nil
	}

	rows, err := toRows(records)
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).CreateInBatches(rows, insertBatchSize).Error; err != nil {
		return fmt.Errorf("mysql insert failed: %w", err)
	}
	log.Debug().Int("count", len(rows)).Msg("Inserted records into MySQL")
	return nil
}

func toRows(records []model.Record) ([]recordRow, error) {
	rows := make([]recordRow, len(records))
	for i, record := range records {
		doc, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("marshal record %d: %w", i, err)
		}
		rows[i] = recordRow{Document: string(doc)}
	}
	return rows, nil
}

func (s *mysqlRecordStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	s.db = nil
	if err != nil {
		return err
	}
	log.Info().Msg("Closing MySQL connection...")
	return sqlDB.Close()
}
