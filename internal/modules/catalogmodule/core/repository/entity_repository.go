// Package repository provides read access to catalog entities through the
// query port. One generic implementation serves every entity type; the
// allow-list row supplies the table, alias and permitted fields.
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/mantonx/reelbase/internal/modules/catalogmodule/core/allowlist"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/core/filters"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/types"
)

// Options bounds page sizes.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultOptions matches the shipped configuration.
func DefaultOptions() Options {
	return Options{DefaultPageSize: 20, MaxPageSize: 100}
}

// Scope is an extra condition ANDed onto the compiled criteria, such as
// "credited on this movie". Parameter names must start with "scope".
type Scope struct {
	Condition string
	Params    map[string]interface{}
}

// EntityRepository lists entities of type T.
type EntityRepository[T any] struct {
	entity      *allowlist.Entity
	port        types.QueryPort
	compiler    *filters.Compiler
	resolver    *filters.SortResolver
	opts        Options
	projections []string
}

// NewEntityRepository builds a repository for the allow-listed entity type.
func NewEntityRepository[T any](entityType types.EntityType, port types.QueryPort, opts Options) *EntityRepository[T] {
	entity := allowlist.MustLookup(entityType)
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = DefaultOptions().DefaultPageSize
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = DefaultOptions().MaxPageSize
	}
	return &EntityRepository[T]{
		entity:      entity,
		port:        port,
		compiler:    filters.NewCompiler(),
		resolver:    filters.NewSortResolver(),
		opts:        opts,
		projections: entity.ProjectionSQL(entity.Alias),
	}
}

// withProjections replaces the projection list; used by role overrides.
func (r *EntityRepository[T]) withProjections(projections []string) *EntityRepository[T] {
	clone := *r
	clone.projections = projections
	return &clone
}

func (r *EntityRepository[T]) Entity() *allowlist.Entity {
	return r.entity
}

func (r *EntityRepository[T]) Options() Options {
	return r.opts
}

// Prepare validates c and builds the list query without touching the
// store. Sort and paging errors surface here, before any I/O.
func (r *EntityRepository[T]) Prepare(c types.Criteria, scopes ...Scope) (types.Query, error) {
	c, err := c.Normalize(r.opts.DefaultPageSize, r.opts.MaxPageSize)
	if err != nil {
		return types.Query{}, err
	}

	order, err := r.resolver.Resolve(r.entity, r.entity.Alias, c.SortField, c.Direction)
	if err != nil {
		return types.Query{}, err
	}

	where, err := r.predicate(c, scopes)
	if err != nil {
		return types.Query{}, err
	}

	return types.Query{
		Table:       r.entity.Table,
		Alias:       r.entity.Alias,
		Projections: r.projections,
		Where:       where,
		Order:       order,
		Offset:      c.Offset(),
		Limit:       c.Size,
	}, nil
}

func (r *EntityRepository[T]) predicate(c types.Criteria, scopes []Scope) (types.Predicate, error) {
	where, err := r.compiler.Compile(r.entity, r.entity.Alias, c)
	if err != nil {
		return types.Predicate{}, err
	}
	for _, s := range scopes {
		where = where.And(s.Condition, s.Params)
	}
	return where, nil
}

// Count returns how many entities match c. Paging and sort are ignored.
func (r *EntityRepository[T]) Count(ctx context.Context, c types.Criteria, scopes ...Scope) (int64, error) {
	where, err := r.predicate(c, scopes)
	if err != nil {
		return 0, err
	}
	return r.port.Count(ctx, types.Query{
		Table: r.entity.Table,
		Alias: r.entity.Alias,
		Where: where,
	})
}

// List returns one page of entities matching c.
func (r *EntityRepository[T]) List(ctx context.Context, c types.Criteria, scopes ...Scope) ([]T, error) {
	q, err := r.Prepare(c, scopes...)
	if err != nil {
		return nil, err
	}

	var items []T
	if err := r.port.Execute(ctx, q, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// FindByIDs returns the entities with the given ids in default order.
// Unknown ids are skipped.
func (r *EntityRepository[T]) FindByIDs(ctx context.Context, ids []string, scopes ...Scope) ([]T, error) {
	ids = compact(ids)
	if len(ids) == 0 {
		return []T{}, nil
	}

	scopes = append([]Scope{{
		Condition: fmt.Sprintf("%s.%s IN @scopeIds", r.entity.Alias, r.entity.IDColumn),
		Params:    map[string]interface{}{"scopeIds": ids},
	}}, scopes...)
	return r.all(ctx, types.Criteria{}, scopes)
}

// FindByName returns up to one maximum-size page of entities whose search
// key contains term.
func (r *EntityRepository[T]) FindByName(ctx context.Context, term string, scopes ...Scope) ([]T, error) {
	if strings.TrimSpace(term) == "" {
		return []T{}, nil
	}
	return r.List(ctx, types.Criteria{Term: term, Size: r.opts.MaxPageSize}, scopes...)
}

// all runs an unpaged list in default order.
func (r *EntityRepository[T]) all(ctx context.Context, c types.Criteria, scopes []Scope) ([]T, error) {
	q, err := r.Prepare(c, scopes...)
	if err != nil {
		return nil, err
	}
	q.Offset, q.Limit = 0, 0

	var items []T
	if err := r.port.Execute(ctx, q, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func compact(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
