package databasemodule

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mantonx/reelbase/internal/database"
	"github.com/mantonx/reelbase/internal/testutil"
)

func countGenres(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&database.Genre{}).Count(&n).Error)
	return n
}

func TestWithTransactionCommits(t *testing.T) {
	db := testutil.NewTestDB(t)
	tm := NewTransactionManager(db)

	err := tm.WithTransaction(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&database.Genre{Name: "Noir"}).Error
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), countGenres(t, db))
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	db := testutil.NewTestDB(t)
	tm := NewTransactionManager(db)
	boom := errors.New("boom")

	err := tm.WithTransaction(context.Background(), func(tx *gorm.DB) error {
		require.NoError(t, tx.Create(&database.Genre{Name: "Noir"}).Error)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(0), countGenres(t, db))
}

func TestWithTransactionRollsBackOnPanic(t *testing.T) {
	db := testutil.NewTestDB(t)
	tm := NewTransactionManager(db)

	assert.Panics(t, func() {
		_ = tm.WithTransaction(context.Background(), func(tx *gorm.DB) error {
			require.NoError(t, tx.Create(&database.Genre{Name: "Noir"}).Error)
			panic("mid-mutation")
		})
	})
	assert.Equal(t, int64(0), countGenres(t, db))
}

func TestWithTransactionCancelledBeforeStart(t *testing.T) {
	db := testutil.NewTestDB(t)
	tm := NewTransactionManager(db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := tm.WithTransaction(ctx, func(tx *gorm.DB) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestWithTransactionHonoursCancellation(t *testing.T) {
	db := testutil.NewFileTestDB(t)
	tm := NewTransactionManager(db)

	ctx, cancel := context.WithCancel(context.Background())
	err := tm.WithTransaction(ctx, func(tx *gorm.DB) error {
		require.NoError(t, tx.Create(&database.Genre{Name: "Noir"}).Error)
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), countGenres(t, db))
}

func TestTransactionContextLifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	tm := NewTransactionManager(db)

	txCtx, err := tm.BeginTransaction(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, txCtx.IsActive())
	assert.Regexp(t, `^tx_[0-9a-f]{8}$`, txCtx.ID())

	require.NoError(t, txCtx.Commit())
	assert.False(t, txCtx.IsActive())
	assert.Error(t, txCtx.Commit())
	assert.Error(t, txCtx.Rollback())
}

func TestGetStats(t *testing.T) {
	tm := NewTransactionManager(testutil.NewTestDB(t))
	stats := tm.GetStats()
	assert.Contains(t, stats, "connection_stats")
}
