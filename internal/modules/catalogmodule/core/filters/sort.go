package filters

import (
	"strings"

	"github.com/mantonx/reelbase/internal/modules/catalogmodule/core/allowlist"
	catalogerrors "github.com/mantonx/reelbase/internal/modules/catalogmodule/errors"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/types"
)

const opResolveSort = "resolve_sort"

// SortResolver validates sort requests against the allow-list.
type SortResolver struct{}

func NewSortResolver() *SortResolver {
	return &SortResolver{}
}

// Resolve maps a public field name to an ORDER BY. An empty field selects
// the entity default. Computed aggregates order by their projection alias;
// other names must be on the allow-list or resolution fails with
// ErrInvalidSortField. The identity column always breaks ties.
func (r *SortResolver) Resolve(entity *allowlist.Entity, alias, field string, direction types.Direction) (types.Sort, error) {
	if entity == nil {
		return types.Sort{}, catalogerrors.InvalidSortField(opResolveSort, field)
	}
	if alias == "" {
		alias = entity.Alias
	}

	switch direction {
	case "":
		direction = types.Ascending
	case types.Ascending, types.Descending:
	default:
		return types.Sort{}, catalogerrors.InvalidCriteria(opResolveSort, "direction %q", direction)
	}

	field = strings.TrimSpace(field)
	if field == "" {
		field = entity.DefaultSort
	}

	tieBreaker := alias + "." + entity.IDColumn

	if projection, ok := entity.ComputedAlias(field); ok {
		return types.Sort{
			Field:      field,
			Column:     projection,
			Direction:  direction,
			Computed:   true,
			TieBreaker: tieBreaker,
		}, nil
	}

	column, ok := entity.Column(field)
	if !ok {
		return types.Sort{}, catalogerrors.InvalidSortField(opResolveSort, field).WithEntity(string(entity.Type))
	}

	sort := types.Sort{
		Field:      field,
		Column:     alias + "." + column,
		Direction:  direction,
		TieBreaker: tieBreaker,
	}
	if column == entity.IDColumn {
		sort.TieBreaker = ""
	}
	return sort, nil
}
