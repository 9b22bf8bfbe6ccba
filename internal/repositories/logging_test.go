package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-credit-sum/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observeLogs(t *testing.T) *observer.ObservedLogs {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := logger.Log
	logger.Log = zap.New(core).Sugar()
	t.Cleanup(func() { logger.Log = prev })
	return logs
}

func TestLogQuery_Fields(t *testing.T) {
	logs := observeLogs(t)
	db, mock := newMockDB(t)
	userID := uuid.New()

	mock.ExpectQuery("UPDATE user_credits").
		WithArgs(userID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"credits"}).AddRow(4))

	_, err := NewCreditRepository(db, nil).Debit(context.Background(), userID, 1)
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "sql query", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Contains(t, fields["query"], "UPDATE user_credits SET")
	assert.EqualValues(t, 4, fields["result"])
	assert.Contains(t, fields, "args")
	assert.Contains(t, fields, "error")
}

func TestResetTokenRepository_LogFields(t *testing.T) {
	logs := observeLogs(t)

	// Nothing listens on port 1, so both calls fail fast and still log.
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
	defer rdb.Close()
	repo := NewResetTokenRepository(rdb, time.Minute)
	ctx := context.Background()

	assert.Error(t, repo.Save(ctx, "secret-token", uuid.New()))
	_, err := repo.Consume(ctx, "secret-token")
	assert.Error(t, err)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "redis set", entries[0].Message)
	assert.Equal(t, "redis getdel", entries[1].Message)
	for _, e := range entries {
		assert.Equal(t, zapcore.InfoLevel, e.Level)
		assert.Equal(t, "reset_password:***", e.ContextMap()["key"])
	}
	assert.Equal(t, time.Minute, entries[0].ContextMap()["ttl"])
}
