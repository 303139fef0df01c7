package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"backoffice/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm/logger"
)

func TestDSN(t *testing.T) {
	pg, err := DSN(config.DatabaseConfig{Type: config.DBTypePostgres, Host: "db", Port: "5432", User: "u", Password: "p", Name: "bo", SSLMode: "disable"})
	require.NoError(t, err)
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=bo sslmode=disable TimeZone=UTC", pg)

	my, err := DSN(config.DatabaseConfig{Type: config.DBTypeMySQL, Host: "db", Port: "3306", User: "u", Password: "p", Name: "bo"})
	require.NoError(t, err)
	assert.Equal(t, "u:p@tcp(db:3306)/bo?charset=utf8mb4&parseTime=True&loc=UTC", my)

	_, err = DSN(config.DatabaseConfig{Type: "sqlite"})
	assert.Error(t, err)
}

func TestModelsCoverRolePermissionTables(t *testing.T) {
	assert.Len(t, Models(), 17)
}

func TestGormLoggerTrace(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewGormLogger(logger.Config{SlowThreshold: time.Second, LogLevel: logger.Warn, IgnoreRecordNotFoundError: true}, zap.New(core))
	fc := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(context.Background(), time.Now(), fc, logger.ErrRecordNotFound)
	l.Trace(context.Background(), time.Now(), fc, nil)
	assert.Equal(t, 0, logs.Len())

	l.Trace(context.Background(), time.Now(), fc, errors.New("boom"))
	l.Trace(context.Background(), time.Now().Add(-2*time.Second), fc, nil)
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "query failed", logs.All()[0].Message)
	assert.Equal(t, "slow query", logs.All()[1].Message)

	verbose := l.LogMode(logger.Info)
	verbose.Trace(context.Background(), time.Now(), fc, nil)
	assert.Equal(t, 3, logs.Len())
}
