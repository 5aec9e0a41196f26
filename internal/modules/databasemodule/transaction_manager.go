// Package databasemodule holds database plumbing shared by the catalog:
// transaction boundaries and connection statistics.
package databasemodule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/mantonx/reelbase/internal/logger"
	"github.com/mantonx/reelbase/internal/utils"
)

// TransactionManager handles database transactions
type TransactionManager struct {
	db     *gorm.DB
	logger hclog.Logger
}

// TransactionContext wraps a transaction for safe handling
type TransactionContext struct {
	tx      *gorm.DB
	started time.Time
	id      string
	logger  hclog.Logger
}

// TransactionOptions defines options for database transactions
type TransactionOptions struct {
	Isolation sql.IsolationLevel
	ReadOnly  bool
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(db *gorm.DB) *TransactionManager {
	return &TransactionManager{
		db:     db,
		logger: logger.Named("tx"),
	}
}

// DB returns the non-transactional handle.
func (tm *TransactionManager) DB() *gorm.DB {
	return tm.db
}

// BeginTransaction starts a new database transaction bound to ctx. If ctx
// is cancelled before Commit the driver rolls the transaction back.
func (tm *TransactionManager) BeginTransaction(ctx context.Context, opts *TransactionOptions) (*TransactionContext, error) {
	var txOpts []*sql.TxOptions
	if opts != nil {
		txOpts = append(txOpts, &sql.TxOptions{Isolation: opts.Isolation, ReadOnly: opts.ReadOnly})
	}

	tx := tm.db.WithContext(ctx).Begin(txOpts...)
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	txCtx := &TransactionContext{
		tx:      tx,
		started: time.Now(),
		id:      "tx_" + utils.GenerateUUID()[:8],
		logger:  tm.logger,
	}

	tm.logger.Trace("started transaction", "tx", txCtx.id)
	return txCtx, nil
}

// Commit commits the transaction
func (tc *TransactionContext) Commit() error {
	if tc.tx == nil {
		return fmt.Errorf("transaction %s is no longer active", tc.id)
	}

	if err := tc.tx.Commit().Error; err != nil {
		tc.logger.Error("failed to commit transaction", "tx", tc.id, "error", err)
		tc.tx = nil
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	tc.logger.Trace("committed transaction", "tx", tc.id, "duration", time.Since(tc.started))
	tc.tx = nil
	return nil
}

// Rollback rolls back the transaction
func (tc *TransactionContext) Rollback() error {
	if tc.tx == nil {
		return fmt.Errorf("transaction %s is no longer active", tc.id)
	}

	err := tc.tx.Rollback().Error
	tc.tx = nil
	if err != nil && err != sql.ErrTxDone {
		tc.logger.Error("failed to rollback transaction", "tx", tc.id, "error", err)
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	tc.logger.Trace("rolled back transaction", "tx", tc.id, "duration", time.Since(tc.started))
	return nil
}

// DB returns the transaction database instance
func (tc *TransactionContext) DB() *gorm.DB {
	return tc.tx
}

// ID returns the transaction ID
func (tc *TransactionContext) ID() string {
	return tc.id
}

// IsActive checks if the transaction is still active
func (tc *TransactionContext) IsActive() bool {
	return tc.tx != nil
}

// WithTransaction runs fn inside a transaction. The transaction commits
// only if fn returns nil; an error or panic rolls everything back.
func (tm *TransactionManager) WithTransaction(ctx context.Context, fn func(*gorm.DB) error) error {
	return tm.WithTransactionOptions(ctx, nil, fn)
}

// WithTransactionOptions is WithTransaction with explicit isolation.
func (tm *TransactionManager) WithTransactionOptions(ctx context.Context, opts *TransactionOptions, fn func(*gorm.DB) error) error {
	txCtx, err := tm.BeginTransaction(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if txCtx.IsActive() {
			// fn panicked
			_ = txCtx.Rollback()
		}
	}()

	if err := fn(txCtx.DB()); err != nil {
		if rollbackErr := txCtx.Rollback(); rollbackErr != nil {
			tm.logger.Error("failed to rollback transaction after error", "tx", txCtx.ID(), "error", rollbackErr)
		}
		return err
	}

	if err := ctx.Err(); err != nil {
		_ = txCtx.Rollback()
		return err
	}

	return txCtx.Commit()
}

// GetStats returns connection pool statistics
func (tm *TransactionManager) GetStats() map[string]interface{} {
	stats := make(map[string]interface{})

	if sqlDB, err := tm.db.DB(); err == nil {
		dbStats := sqlDB.Stats()
		stats["connection_stats"] = map[string]interface{}{
			"open_connections": dbStats.OpenConnections,
			"in_use":           dbStats.InUse,
			"idle":             dbStats.Idle,
			"wait_count":       dbStats.WaitCount,
		}
	}

	return stats
}
