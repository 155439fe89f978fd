package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "public", cfg.Server.StaticDir)
	assert.Equal(t, "mongodb", cfg.Store.Driver)
	assert.Equal(t, 0, cfg.Store.ConnectRetries)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "sample_database", cfg.MongoDB.Database)
	assert.Equal(t, "sample_collection", cfg.MongoDB.Collection)
	assert.Equal(t, "data.json", cfg.Ingest.FilePath)
	assert.Equal(t, 12*time.Hour, cfg.Ingest.Interval)
	assert.True(t, cfg.Ingest.RunOnStart)
	assert.False(t, cfg.Ingest.TrackOffsets)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", " Postgres ")
	t.Setenv("INGEST_INTERVAL", "30m")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Ingest.Interval)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a"}, splitList(" a ,"))
}
