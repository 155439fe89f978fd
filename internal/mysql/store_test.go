package mysql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"record-ingest-backend/config"
	"record-ingest-backend/internal/model"
	"record-ingest-backend/internal/repository"
)

func TestDSN(t *testing.T) {
	got := dsn(config.MySQLConfig{User: "u", Password: "p", Host: "db", Port: "3306", Name: "sample_database"})
	assert.Equal(t, "u:p@tcp(db:3306)/sample_database?charset=utf8mb4&parseTime=True&loc=UTC", got)
}

func TestToRows(t *testing.T) {
	rows, err := toRows([]model.Record{{"a": []any{1.0, "x"}}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.JSONEq(t, `{"a":[1,"x"]}`, rows[0].Document)
}

func TestMySQLRecordStore_NotConnected(t *testing.T) {
	s := NewMySQLRecordStore(&config.Config{})
	assert.Equal(t, "MySQL", s.Name())
	assert.ErrorIs(t, s.InsertMany(context.Background(), []model.Record{{}}), repository.ErrNotConnected)
	assert.NoError(t, s.Close(context.Background()))
}
