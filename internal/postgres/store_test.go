package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"record-ingest-backend/config"
	"record-ingest-backend/internal/model"
	"record-ingest-backend/internal/repository"
)

func TestNewPostgresRecordStore_TableName(t *testing.T) {
	_, err := NewPostgresRecordStore(&config.Config{Postgres: config.PostgresConfig{Table: "records; DROP TABLE x"}})
	assert.Error(t, err)

	s, err := NewPostgresRecordStore(&config.Config{})
	require.NoError(t, err)
	assert.Equal(t, defaultTableName, s.(*postgresRecordStore).tableName)
	assert.Equal(t, "PostgreSQL", s.Name())
}

func TestDocumentRows(t *testing.T) {
	rows, err := documentRows([]model.Record{{"k": "v"}, {}})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.JSONEq(t, `{"k":"v"}`, string(rows[0][0].([]byte)))
	assert.JSONEq(t, `{}`, string(rows[1][0].([]byte)))
}

func TestPostgresRecordStore_NotConnected(t *testing.T) {
	s, err := NewPostgresRecordStore(&config.Config{})
	require.NoError(t, err)
	assert.False(t, s.Connected())
	assert.ErrorIs(t, s.InsertMany(context.Background(), []model.Record{{}}), repository.ErrNotConnected)
}
