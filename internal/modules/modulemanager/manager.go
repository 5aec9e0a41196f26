package modulemanager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/mantonx/reelbase/internal/logger"
)

// Manager manages module registration and initialization
type Manager struct {
	mu          sync.RWMutex
	modules     map[string]Module
	disabled    map[string]bool
	order       []Module
	initialized bool
	logger      hclog.Logger
}

func New() *Manager {
	return &Manager{
		modules:  make(map[string]Module),
		disabled: make(map[string]bool),
		logger:   logger.Named("modules"),
	}
}

// Register adds a module. Registering after LoadAll is an error.
func (m *Manager) Register(mod Module) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return fmt.Errorf("module %s registered after initialization", mod.ID())
	}
	if _, exists := m.modules[mod.ID()]; exists {
		return fmt.Errorf("module %s already registered", mod.ID())
	}

	m.modules[mod.ID()] = mod
	m.logger.Debug("module registered", "id", mod.ID(), "name", mod.Name())
	return nil
}

// Disable excludes a non-core module from LoadAll.
func (m *Manager) Disable(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mod, exists := m.modules[id]
	if !exists {
		return fmt.Errorf("module %s not registered", id)
	}
	if mod.Core() {
		return fmt.Errorf("cannot disable core module: %s", id)
	}
	m.disabled[id] = true
	return nil
}

// LoadAll migrates and initializes every enabled module in dependency order.
func (m *Manager) LoadAll(db *gorm.DB) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	enabled := make(map[string]Module, len(m.modules))
	for id, mod := range m.modules {
		if m.disabled[id] {
			m.logger.Warn("skipping disabled module", "id", id)
			continue
		}
		enabled[id] = mod
	}

	graph, err := buildDependencyGraph(enabled)
	if err != nil {
		return fmt.Errorf("failed to build dependency graph: %w", err)
	}
	order, err := graph.initializationOrder()
	if err != nil {
		return fmt.Errorf("failed to determine initialization order: %w", err)
	}

	for i, mod := range order {
		m.logger.Info("initializing module", "step", fmt.Sprintf("%d/%d", i+1, len(order)), "id", mod.ID())

		if err := mod.Migrate(db); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", mod.Name(), err)
		}
		if err := mod.Init(); err != nil {
			return fmt.Errorf("failed to initialize %s: %w", mod.Name(), err)
		}
	}

	m.order = order
	m.initialized = true
	return nil
}

// Modules returns the loaded modules in initialization order.
func (m *Manager) Modules() []Module {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Module, len(m.order))
	copy(out, m.order)
	return out
}

// Get returns a registered module by ID.
func (m *Manager) Get(id string) (Module, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mod, ok := m.modules[id]
	return mod, ok
}

// RegisterRoutes registers routes for all loaded modules that implement RouteRegistrar
func (m *Manager) RegisterRoutes(router *gin.Engine) {
	for _, mod := range m.Modules() {
		if rr, ok := mod.(RouteRegistrar); ok {
			m.logger.Debug("registering routes", "id", mod.ID())
			rr.RegisterRoutes(router)
		}
	}
}

// Health checks every loaded module. Modules without a health check are
// reported as unknown.
func (m *Manager) Health(ctx context.Context) map[string]HealthStatus {
	out := make(map[string]HealthStatus)
	for _, mod := range m.Modules() {
		hc, ok := mod.(HealthChecker)
		if !ok {
			out[mod.ID()] = HealthStatus{Status: HealthStateUnknown, LastChecked: time.Now()}
			continue
		}
		out[mod.ID()] = hc.HealthCheck(ctx)
	}
	return out
}

// Shutdown stops loaded modules in reverse initialization order. Every
// module is given the chance to stop; the errors are joined.
func (m *Manager) Shutdown(ctx context.Context) error {
	mods := m.Modules()
	var errs []error
	for i := len(mods) - 1; i >= 0; i-- {
		sd, ok := mods[i].(Shutdowner)
		if !ok {
			continue
		}
		if err := sd.Shutdown(ctx); err != nil {
			m.logger.Error("module shutdown failed", "id", mods[i].ID(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", mods[i].ID(), err))
		}
	}
	return errors.Join(errs...)
}
