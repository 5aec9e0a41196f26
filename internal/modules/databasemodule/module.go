package databasemodule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mantonx/reelbase/internal/database"
	"github.com/mantonx/reelbase/internal/modules/modulemanager"
)

const (
	ModuleID   = "system.database"
	ModuleName = "Database Manager"
)

// Module owns the catalog schema and the shared transaction manager.
type Module struct {
	db *gorm.DB
	tm *TransactionManager
}

var (
	_ modulemanager.Module        = (*Module)(nil)
	_ modulemanager.HealthChecker = (*Module)(nil)
	_ modulemanager.Shutdowner    = (*Module)(nil)
)

func NewModule(db *gorm.DB) *Module {
	return &Module{db: db, tm: NewTransactionManager(db)}
}

func (m *Module) ID() string   { return ModuleID }
func (m *Module) Name() string { return ModuleName }
func (m *Module) Core() bool   { return true }

// Migrate creates or updates every catalog table.
func (m *Module) Migrate(db *gorm.DB) error {
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate catalog schema: %w", err)
	}
	return nil
}

func (m *Module) Init() error {
	if m.db == nil {
		return errors.New("database module has no connection")
	}
	return nil
}

// TransactionManager returns the manager shared by every module.
func (m *Module) TransactionManager() *TransactionManager {
	return m.tm
}

// HealthCheck pings the database and reports pool statistics.
func (m *Module) HealthCheck(ctx context.Context) modulemanager.HealthStatus {
	status := modulemanager.HealthStatus{
		Status:      modulemanager.HealthStateHealthy,
		LastChecked: time.Now(),
		Details:     m.tm.GetStats(),
	}

	sqlDB, err := m.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		status.Status = modulemanager.HealthStateUnhealthy
		status.Message = err.Error()
	}
	return status
}

// Shutdown closes the connection pool.
func (m *Module) Shutdown(ctx context.Context) error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
