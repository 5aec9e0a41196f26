// Package catalogmodule wires the movie and person catalog into the module
// system: repositories, services, the role registry and the HTTP routes.
package catalogmodule

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/mantonx/reelbase/internal/config"
	"github.com/mantonx/reelbase/internal/logger"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/api"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/core/query"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/core/repository"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/core/roles"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/service"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/types"
	"github.com/mantonx/reelbase/internal/modules/databasemodule"
	"github.com/mantonx/reelbase/internal/modules/modulemanager"
)

const (
	// ModuleID is the unique identifier for the catalog module
	ModuleID = "system.catalog"

	// ModuleName is the display name for the catalog module
	ModuleName = "Catalog Manager"
)

// Module implements the catalog as a module
type Module struct {
	tm     *databasemodule.TransactionManager
	opts   repository.Options
	logger hclog.Logger

	handler *api.Handler
}

var (
	_ modulemanager.Module             = (*Module)(nil)
	_ modulemanager.DependencyProvider = (*Module)(nil)
	_ modulemanager.RouteRegistrar     = (*Module)(nil)
	_ modulemanager.Shutdowner         = (*Module)(nil)
)

// NewModule creates the catalog module on top of the shared transaction
// manager.
func NewModule(tm *databasemodule.TransactionManager, cfg config.CatalogConfig) *Module {
	return &Module{
		tm: tm,
		opts: repository.Options{
			DefaultPageSize: cfg.DefaultPageSize,
			MaxPageSize:     cfg.MaxPageSize,
		},
		logger: logger.Named("catalog"),
	}
}

func (m *Module) ID() string   { return ModuleID }
func (m *Module) Name() string { return ModuleName }
func (m *Module) Core() bool   { return true }

// Dependencies returns module dependencies
func (m *Module) Dependencies() []string {
	return []string{databasemodule.ModuleID}
}

// Migrate is a no-op; the database module owns the schema.
func (m *Module) Migrate(db *gorm.DB) error {
	return nil
}

// Init builds the repositories, services and role registry.
func (m *Module) Init() error {
	if m.tm == nil {
		return errors.New("catalog module has no transaction manager")
	}
	m.logger.Info("initializing catalog module")

	port := query.NewGormPort(m.tm.DB())
	audit := func(entity types.EntityType) types.Observer {
		return service.AuditObserver(m.logger, entity)
	}

	registry := roles.NewRegistry(func(d roles.Descriptor) roles.Binding {
		repo := repository.NewPersonRepository(d, port, m.opts)
		return roles.Binding{Repository: repo, Service: service.NewPersonService(repo, m.opts)}
	})

	m.handler = &api.Handler{
		Movies:     service.NewMovieService(m.tm, port, m.opts, audit(types.EntityMovie)),
		Roles:      registry,
		People:     service.NewCatalogService(types.EntityPerson, m.tm, port, m.opts, service.PersonHooks(), audit(types.EntityPerson)),
		Genres:     service.NewCatalogService(types.EntityGenre, m.tm, port, m.opts, service.GenreHooks(), audit(types.EntityGenre)),
		Countries:  service.NewCatalogService(types.EntityCountry, m.tm, port, m.opts, service.CountryHooks(), audit(types.EntityCountry)),
		Ceremonies: service.NewCatalogService(types.EntityCeremony, m.tm, port, m.opts, service.CeremonyHooks(), audit(types.EntityCeremony)),
		Users:      service.NewCatalogService(types.EntityUser, m.tm, port, m.opts, service.UserHooks(), audit(types.EntityUser)),
		Awards:     service.NewAwardService(m.tm, port, m.opts, audit(types.EntityAward)),
	}

	m.logger.Info("catalog module initialized", "roles", len(registry.Roles()))
	return nil
}

// Handler returns the HTTP handler built by Init.
func (m *Module) Handler() *api.Handler {
	return m.handler
}

// RegisterRoutes registers HTTP routes
func (m *Module) RegisterRoutes(router *gin.Engine) {
	if m.handler == nil {
		m.logger.Warn("catalog routes requested before init")
		return
	}
	api.RegisterRoutes(router, m.handler)
}

// Shutdown gracefully shuts down the module
func (m *Module) Shutdown(ctx context.Context) error {
	m.logger.Info("catalog module shut down")
	return nil
}
