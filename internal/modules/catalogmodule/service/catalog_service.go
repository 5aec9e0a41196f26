// Package service exposes the catalog to transports. Services validate
// input, run writes in transactions and turn repository results into pages.
package service

import (
	"context"
	"errors"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/mantonx/reelbase/internal/logger"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/core/repository"
	catalogerrors "github.com/mantonx/reelbase/internal/modules/catalogmodule/errors"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/types"
	"github.com/mantonx/reelbase/internal/modules/databasemodule"
)

// Hooks adapts CatalogService to one model type.
type Hooks[T any] struct {
	// Validate checks and normalizes an entity before it is written.
	Validate func(item *T) error
	// ID returns the entity's identifier.
	ID func(item *T) string
}

// CatalogService serves the simple catalog entities: listing, lookup and
// creation. Genres, countries, ceremonies, users and people share it.
type CatalogService[T any] struct {
	entity    types.EntityType
	tm        *databasemodule.TransactionManager
	repo      *repository.EntityRepository[T]
	hooks     Hooks[T]
	observers []types.Observer
	logger    hclog.Logger
}

func NewCatalogService[T any](
	entity types.EntityType,
	tm *databasemodule.TransactionManager,
	port types.QueryPort,
	opts repository.Options,
	hooks Hooks[T],
	observers ...types.Observer,
) *CatalogService[T] {
	return &CatalogService[T]{
		entity:    entity,
		tm:        tm,
		repo:      repository.NewEntityRepository[T](entity, port, opts),
		hooks:     hooks,
		observers: observers,
		logger:    logger.Named(string(entity)),
	}
}

func (s *CatalogService[T]) Entity() types.EntityType {
	return s.entity
}

func (s *CatalogService[T]) List(ctx context.Context, c types.Criteria) (*types.Page[T], error) {
	return listPage(ctx, s.repo.Options(), c,
		func(c types.Criteria) ([]T, error) { return s.repo.List(ctx, c) },
		func(c types.Criteria) (int64, error) { return s.repo.Count(ctx, c) })
}

func (s *CatalogService[T]) Count(ctx context.Context, c types.Criteria) (int64, error) {
	return s.repo.Count(ctx, c)
}

func (s *CatalogService[T]) FindByIDs(ctx context.Context, ids []string) ([]T, error) {
	return s.repo.FindByIDs(ctx, ids)
}

func (s *CatalogService[T]) FindByName(ctx context.Context, term string) ([]T, error) {
	return s.repo.FindByName(ctx, term)
}

// Get returns one entity with its computed counts.
func (s *CatalogService[T]) Get(ctx context.Context, id string) (*T, error) {
	items, err := s.repo.FindByIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, catalogerrors.NotFound("get_"+string(s.entity), string(s.entity), id)
	}
	return &items[0], nil
}

// Create validates and inserts item.
func (s *CatalogService[T]) Create(ctx context.Context, item *T, observers ...types.Observer) error {
	op := "create_" + string(s.entity)

	if s.hooks.Validate != nil {
		if err := s.hooks.Validate(item); err != nil {
			return err
		}
	}

	err := s.tm.WithTransaction(ctx, func(tx *gorm.DB) error {
		return tx.WithContext(ctx).Create(item).Error
	})
	if err != nil {
		return translateWriteError(op, string(s.entity), err)
	}

	id := ""
	if s.hooks.ID != nil {
		id = s.hooks.ID(item)
	}
	s.logger.Debug("created", "id", id)
	notify(ctx, types.ActionCreate, id, s.observers, observers)
	return nil
}

// translateWriteError maps driver failures onto catalog errors.
func translateWriteError(op, entity string, err error) error {
	var cErr *catalogerrors.CatalogError
	switch {
	case errors.As(err, &cErr):
		return err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return catalogerrors.Conflict(op, "%s already exists", entity).WithEntity(entity)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return catalogerrors.ValidationError(op, "%s references a missing entity", entity).WithEntity(entity)
	default:
		return catalogerrors.DatabaseError(op, err).WithEntity(entity)
	}
}

func notify(ctx context.Context, action types.Action, id string, groups ...[]types.Observer) {
	for _, group := range groups {
		for _, o := range group {
			o(ctx, action, id)
		}
	}
}

// listPage runs a list and its count for the same criteria and wraps the
// result in a page.
func listPage[T any](
	ctx context.Context,
	opts repository.Options,
	c types.Criteria,
	list func(types.Criteria) ([]T, error),
	count func(types.Criteria) (int64, error),
) (*types.Page[T], error) {
	c, err := c.Normalize(opts.DefaultPageSize, opts.MaxPageSize)
	if err != nil {
		return nil, err
	}
	items, err := list(c)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	total, err := count(c)
	if err != nil {
		return nil, err
	}
	return types.NewPage(items, total, c.Page, c.Size), nil
}
