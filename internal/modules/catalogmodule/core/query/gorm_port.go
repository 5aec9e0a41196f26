// Package query runs compiled catalog queries through GORM.
package query

import (
	"context"
	"strings"

	"gorm.io/gorm"

	catalogerrors "github.com/mantonx/reelbase/internal/modules/catalogmodule/errors"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/types"
)

// GormPort implements types.QueryPort.
type GormPort struct {
	db *gorm.DB
}

func NewGormPort(db *gorm.DB) *GormPort {
	return &GormPort{db: db}
}

// WithTx returns a port bound to an open transaction.
func (p *GormPort) WithTx(tx *gorm.DB) *GormPort {
	return &GormPort{db: tx}
}

func (p *GormPort) base(ctx context.Context, q types.Query) *gorm.DB {
	tx := p.db.WithContext(ctx).Table(q.Table + " AS " + q.Alias)
	if where := q.Where.SQL(); where != "" {
		if len(q.Where.Params) > 0 {
			tx = tx.Where(where, q.Where.Params)
		} else {
			tx = tx.Where(where)
		}
	}
	return tx
}

// Execute selects the rows of q into dest, which must be a pointer to a
// slice of the entity model.
func (p *GormPort) Execute(ctx context.Context, q types.Query, dest interface{}) error {
	tx := p.base(ctx, q)

	selects := append([]string{q.Alias + ".*"}, q.Projections...)
	tx = tx.Select(strings.Join(selects, ", "))

	if q.Order.Column != "" {
		tx = tx.Order(q.Order.Clause())
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}

	if err := tx.Find(dest).Error; err != nil {
		return catalogerrors.DatabaseError("execute_query", err).WithEntity(q.Table)
	}
	return nil
}

// Count returns the number of rows matching q's predicate.
func (p *GormPort) Count(ctx context.Context, q types.Query) (int64, error) {
	var total int64
	if err := p.base(ctx, q).Count(&total).Error; err != nil {
		return 0, catalogerrors.DatabaseError("count_query", err).WithEntity(q.Table)
	}
	return total, nil
}
