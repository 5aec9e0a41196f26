package types

import (
	"math"
	"strings"
	"time"

	catalogerrors "github.com/mantonx/reelbase/internal/modules/catalogmodule/errors"
)

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "ASC"
	Descending Direction = "DESC"
)

// ParseDirection accepts asc/desc in any case; empty means ascending.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ASC", "ASCENDING":
		return Ascending, nil
	case "DESC", "DESCENDING":
		return Descending, nil
	default:
		return "", catalogerrors.InvalidCriteria("parse_direction", "direction %q", s)
	}
}

// DateRange is an inclusive interval; a nil bound leaves that side open.
type DateRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.From == nil && r.To == nil
}

// Criteria is the filter, sort and pagination request shared by every list
// operation. Zero-valued fields impose no constraint.
type Criteria struct {
	Term string `json:"term,omitempty"`

	Created  DateRange `json:"created,omitempty"`
	Updated  DateRange `json:"updated,omitempty"`
	Released DateRange `json:"released,omitempty"`
	Born     DateRange `json:"born,omitempty"`
	Died     DateRange `json:"died,omitempty"`

	CountryIDs []string   `json:"country_ids,omitempty"`
	GenreIDs   []string   `json:"genre_ids,omitempty"`
	UserIDs    []string   `json:"user_ids,omitempty"`
	RoleTypes  []RoleType `json:"role_types,omitempty"`

	SortField string    `json:"sort,omitempty"`
	Direction Direction `json:"direction,omitempty"`

	// Page is zero-based. Size 0 selects the configured default.
	Page int `json:"page"`
	Size int `json:"size"`
}

// ActiveFilters counts the optional filter fields that are set. Each range
// bound counts on its own.
func (c Criteria) ActiveFilters() int {
	n := 0
	if strings.TrimSpace(c.Term) != "" {
		n++
	}
	for _, r := range []DateRange{c.Created, c.Updated, c.Released, c.Born, c.Died} {
		if r.From != nil {
			n++
		}
		if r.To != nil {
			n++
		}
	}
	for _, l := range []int{len(c.CountryIDs), len(c.GenreIDs), len(c.UserIDs), len(c.RoleTypes)} {
		if l > 0 {
			n++
		}
	}
	return n
}

// Normalize validates paging and direction and fills in the default size.
func (c Criteria) Normalize(defaultSize, maxSize int) (Criteria, error) {
	const op = "normalize_criteria"

	if c.Page < 0 {
		return c, catalogerrors.InvalidCriteria(op, "page %d is negative", c.Page)
	}
	if c.Size < 0 {
		return c, catalogerrors.InvalidCriteria(op, "size %d is negative", c.Size)
	}
	if c.Size == 0 {
		c.Size = defaultSize
	}
	if maxSize > 0 && c.Size > maxSize {
		return c, catalogerrors.InvalidCriteria(op, "size %d exceeds maximum %d", c.Size, maxSize)
	}
	// Page*Size must not overflow into a negative offset
	if c.Size > 0 && c.Page > math.MaxInt/c.Size {
		return c, catalogerrors.InvalidCriteria(op, "page %d is out of range", c.Page)
	}

	switch c.Direction {
	case "":
		c.Direction = Ascending
	case Ascending, Descending:
	default:
		return c, catalogerrors.InvalidCriteria(op, "direction %q", c.Direction)
	}

	return c, nil
}

// Offset is the number of rows skipped before the requested page.
func (c Criteria) Offset() int {
	return c.Page * c.Size
}
