// Package filters turns a types.Criteria into SQL pieces for one entity:
// a parameterized WHERE predicate and a validated ORDER BY.
package filters

import (
	"fmt"
	"strings"

	"github.com/mantonx/reelbase/internal/modules/catalogmodule/core/allowlist"
	catalogerrors "github.com/mantonx/reelbase/internal/modules/catalogmodule/errors"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/types"
	"github.com/mantonx/reelbase/internal/utils"
)

const opCompile = "compile_criteria"

// Compiler builds predicates. It holds no state; one value can serve every
// goroutine.
type Compiler struct{}

func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile emits one condition per criterion that is set, in a fixed order:
// term, date ranges (created, updated, released, born, died; from before
// to), then id sets (countries, genres, users, role types). Every value is
// bound by name. Criteria the entity does not support are rejected.
func (c *Compiler) Compile(entity *allowlist.Entity, alias string, criteria types.Criteria) (types.Predicate, error) {
	if entity == nil {
		return types.Predicate{}, catalogerrors.InvalidCriteria(opCompile, "no entity")
	}
	if alias == "" {
		alias = entity.Alias
	}

	b := &builder{
		entity: entity,
		alias:  alias,
		pred:   types.Predicate{Params: map[string]interface{}{}},
	}

	b.applyTerm(criteria.Term)

	b.applyRange(allowlist.RangeCreated, criteria.Created)
	b.applyRange(allowlist.RangeUpdated, criteria.Updated)
	b.applyRange(allowlist.RangeReleased, criteria.Released)
	b.applyRange(allowlist.RangeBorn, criteria.Born)
	b.applyRange(allowlist.RangeDied, criteria.Died)

	b.applySet(allowlist.SetCountries, criteria.CountryIDs)
	b.applySet(allowlist.SetGenres, criteria.GenreIDs)
	b.applySet(allowlist.SetUsers, criteria.UserIDs)
	b.applyRoleTypes(criteria.RoleTypes)

	if b.err != nil {
		return types.Predicate{}, b.err
	}
	return b.pred, nil
}

type builder struct {
	entity *allowlist.Entity
	alias  string
	pred   types.Predicate
	err    error
}

func (b *builder) col(column string) string {
	return b.alias + "." + column
}

func (b *builder) add(condition, param string, value interface{}) {
	b.pred.Conditions = append(b.pred.Conditions, condition)
	b.pred.Params[param] = value
}

func (b *builder) fail(format string, args ...interface{}) {
	if b.err == nil {
		b.err = catalogerrors.InvalidCriteria(opCompile, format, args...).WithEntity(string(b.entity.Type))
	}
}

func (b *builder) applyTerm(term string) {
	if strings.TrimSpace(term) == "" {
		return
	}
	if b.entity.SearchColumn == "" {
		b.fail("term search is not supported")
		return
	}
	b.add(fmt.Sprintf(`%s LIKE @term ESCAPE '\'`, b.col(b.entity.SearchColumn)), "term", utils.ContainsPattern(term))
}

func (b *builder) applyRange(field allowlist.RangeField, r types.DateRange) {
	if r.IsZero() {
		return
	}
	column, ok := b.entity.Ranges[field]
	if !ok {
		b.fail("%s range is not supported", field)
		return
	}

	if r.From != nil {
		param := string(field) + "From"
		b.add(fmt.Sprintf("%s >= @%s", b.col(column), param), param, *r.From)
	}
	if r.To != nil {
		param := string(field) + "To"
		b.add(fmt.Sprintf("%s <= @%s", b.col(column), param), param, *r.To)
	}
}

func (b *builder) applySet(field allowlist.SetField, ids []string) {
	if len(ids) == 0 {
		return
	}
	values, ok := distinct(ids)
	if !ok {
		b.fail("%s contains an empty id", field)
		return
	}
	b.setCondition(field, values)
}

func (b *builder) applyRoleTypes(tags []types.RoleType) {
	if len(tags) == 0 {
		return
	}
	raw := make([]string, len(tags))
	for i, t := range tags {
		if !t.Valid() {
			b.fail("unknown role type %q", t)
			return
		}
		raw[i] = string(t)
	}
	values, _ := distinct(raw)
	b.setCondition(allowlist.SetRoleTypes, values)
}

func (b *builder) setCondition(field allowlist.SetField, values []string) {
	filter, ok := b.entity.Sets[field]
	if !ok {
		b.fail("%s filter is not supported", field)
		return
	}

	param := string(field)
	if filter.Table == "" {
		b.add(fmt.Sprintf("%s IN @%s", b.col(filter.Column), param), param, values)
		return
	}
	b.add(fmt.Sprintf("EXISTS (SELECT 1 FROM %s j WHERE j.%s = %s AND j.%s IN @%s)",
		filter.Table, filter.OwnerColumn, b.col(b.entity.IDColumn), filter.ValueColumn, param), param, values)
}

// distinct copies ids without duplicates, keeping first-seen order. It
// reports false when an id is blank.
func distinct(ids []string) ([]string, bool) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, false
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, true
}
