// Package allowlist is the static table of what each catalog entity lets
// callers sort and filter on. Field names are the public camelCase names;
// only the columns listed here can ever reach generated SQL.
package allowlist

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mantonx/reelbase/internal/modules/catalogmodule/types"
)

// RangeField names a date-range criterion.
type RangeField string

const (
	RangeCreated  RangeField = "created"
	RangeUpdated  RangeField = "updated"
	RangeReleased RangeField = "released"
	RangeBorn     RangeField = "born"
	RangeDied     RangeField = "died"
)

// SetField names an id-set criterion.
type SetField string

const (
	SetCountries SetField = "countryIds"
	SetGenres    SetField = "genreIds"
	SetUsers     SetField = "userIds"
	SetRoleTypes SetField = "roleTypes"
)

// SetFilter says how an id-set criterion reaches the entity. With Table set
// it is an EXISTS over a join table; otherwise Column is compared directly.
type SetFilter struct {
	Table       string
	OwnerColumn string
	ValueColumn string
	Column      string
}

// Entity is one row of the allow-list.
type Entity struct {
	Type         types.EntityType
	Table        string
	Alias        string
	IDColumn     string
	SearchColumn string
	DefaultSort  string

	// Fields maps public field names to columns.
	Fields map[string]string
	// Computed maps public aggregate names to projection aliases.
	Computed map[string]string
	// Projections maps projection aliases to SQL templates; %[1]s is the
	// entity alias.
	Projections map[string]string

	Ranges map[RangeField]string
	Sets   map[SetField]SetFilter
}

// Column returns the column behind a public field name.
func (e *Entity) Column(field string) (string, bool) {
	c, ok := e.Fields[field]
	return c, ok
}

// ComputedAlias returns the projection alias behind a computed field name.
func (e *Entity) ComputedAlias(field string) (string, bool) {
	a, ok := e.Computed[field]
	return a, ok
}

// FieldNames lists the sortable field names, computed ones included, sorted.
func (e *Entity) FieldNames() []string {
	names := make([]string, 0, len(e.Fields)+len(e.Computed))
	for name := range e.Fields {
		names = append(names, name)
	}
	for name := range e.Computed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProjectionSQL renders every projection for alias, in a stable order.
func (e *Entity) ProjectionSQL(alias string) []string {
	return e.ProjectionSQLWith(alias, nil)
}

// ProjectionSQLWith is ProjectionSQL with some projections replaced by
// already rendered SQL, keyed by projection alias.
func (e *Entity) ProjectionSQLWith(alias string, overrides map[string]string) []string {
	keys := make([]string, 0, len(e.Projections))
	for k := range e.Projections {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		expr, ok := overrides[k]
		if !ok {
			expr = fmt.Sprintf(e.Projections[k], alias)
		}
		out = append(out, expr+" AS "+k)
	}
	return out
}

// creditTables link people to movies, one table per credited role.
var creditTables = []string{
	"role_assignments",
	"movie_producers",
	"movie_directors",
	"movie_screenwriters",
	"movie_musicians",
	"movie_photographers",
	"movie_costumiers",
	"movie_decorators",
	"movie_editors",
	"movie_casters",
}

// anyCreditCount counts the distinct movies a person is credited on in any
// role.
func anyCreditCount() string {
	parts := make([]string, len(creditTables))
	for i, t := range creditTables {
		parts[i] = "SELECT movie_id, person_id FROM " + t
	}
	return "(SELECT COUNT(DISTINCT cr.movie_id) FROM (" + strings.Join(parts, " UNION ALL ") +
		") cr WHERE cr.person_id = %[1]s.id)"
}

var timestamps = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

func fields(extra map[string]string) map[string]string {
	out := map[string]string{"id": "id"}
	for k, v := range timestamps {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func baseRanges(extra map[RangeField]string) map[RangeField]string {
	out := map[RangeField]string{
		RangeCreated: "created_at",
		RangeUpdated: "updated_at",
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

var entities = map[types.EntityType]*Entity{
	types.EntityMovie: {
		Type:         types.EntityMovie,
		Table:        "movies",
		Alias:        "m",
		IDColumn:     "id",
		SearchColumn: "search_title",
		DefaultSort:  "title",
		Fields: fields(map[string]string{
			"title":         "title",
			"originalTitle": "original_title",
			"releaseDate":   "release_date",
			"runtime":       "runtime",
			"budget":        "budget",
			"boxOffice":     "box_office",
		}),
		Computed: map[string]string{"awardCount": "award_count"},
		Projections: map[string]string{
			"award_count": "(SELECT COUNT(*) FROM awards aw WHERE aw.movie_id = %[1]s.id)",
		},
		Ranges: baseRanges(map[RangeField]string{RangeReleased: "release_date"}),
		Sets: map[SetField]SetFilter{
			SetCountries: {Table: "movie_countries", OwnerColumn: "movie_id", ValueColumn: "country_id"},
			SetGenres:    {Table: "movie_genres", OwnerColumn: "movie_id", ValueColumn: "genre_id"},
			SetUsers:     {Column: "user_id"},
		},
	},
	types.EntityPerson: {
		Type:         types.EntityPerson,
		Table:        "people",
		Alias:        "p",
		IDColumn:     "id",
		SearchColumn: "search_name",
		DefaultSort:  "name",
		Fields: fields(map[string]string{
			"name":      "name",
			"birthDate": "birth_date",
			"deathDate": "death_date",
		}),
		Computed: map[string]string{
			"movieCount": "movie_count",
			"awardCount": "award_count",
		},
		// role-scoped repositories override movie_count with their own
		// credit table
		Projections: map[string]string{
			"award_count": "(SELECT COUNT(*) FROM awards aw WHERE aw.person_id = %[1]s.id)",
			"movie_count": anyCreditCount(),
		},
		Ranges: baseRanges(map[RangeField]string{
			RangeBorn: "birth_date",
			RangeDied: "death_date",
		}),
		Sets: map[SetField]SetFilter{
			SetCountries: {Table: "person_countries", OwnerColumn: "person_id", ValueColumn: "country_id"},
			SetRoleTypes: {Table: "person_role_types", OwnerColumn: "person_id", ValueColumn: "role_type"},
		},
	},
	types.EntityGenre: {
		Type:         types.EntityGenre,
		Table:        "genres",
		Alias:        "g",
		IDColumn:     "id",
		SearchColumn: "search_name",
		DefaultSort:  "name",
		Fields:       fields(map[string]string{"name": "name"}),
		Computed:     map[string]string{"movieCount": "movie_count"},
		Projections: map[string]string{
			"movie_count": "(SELECT COUNT(*) FROM movie_genres mg WHERE mg.genre_id = %[1]s.id)",
		},
		Ranges: baseRanges(nil),
	},
	types.EntityCountry: {
		Type:         types.EntityCountry,
		Table:        "countries",
		Alias:        "c",
		IDColumn:     "id",
		SearchColumn: "search_name",
		DefaultSort:  "name",
		Fields:       fields(map[string]string{"name": "name", "code": "code"}),
		Computed:     map[string]string{"movieCount": "movie_count"},
		Projections: map[string]string{
			"movie_count": "(SELECT COUNT(*) FROM movie_countries mc WHERE mc.country_id = %[1]s.id)",
		},
		Ranges: baseRanges(nil),
	},
	types.EntityAward: {
		Type:         types.EntityAward,
		Table:        "awards",
		Alias:        "a",
		IDColumn:     "id",
		SearchColumn: "search_name",
		DefaultSort:  "name",
		Fields:       fields(map[string]string{"name": "name", "year": "year"}),
		Ranges:       baseRanges(nil),
	},
	types.EntityCeremony: {
		Type:         types.EntityCeremony,
		Table:        "ceremonies",
		Alias:        "ce",
		IDColumn:     "id",
		SearchColumn: "search_name",
		DefaultSort:  "name",
		Fields:       fields(map[string]string{"name": "name", "year": "year"}),
		Computed:     map[string]string{"awardCount": "award_count"},
		Projections: map[string]string{
			"award_count": "(SELECT COUNT(*) FROM awards aw WHERE aw.ceremony_id = %[1]s.id)",
		},
		Ranges: baseRanges(nil),
	},
	types.EntityUser: {
		Type:         types.EntityUser,
		Table:        "users",
		Alias:        "u",
		IDColumn:     "id",
		SearchColumn: "search_name",
		DefaultSort:  "username",
		Fields:       fields(map[string]string{"username": "username", "email": "email"}),
		Computed:     map[string]string{"movieCount": "movie_count"},
		Projections: map[string]string{
			"movie_count": "(SELECT COUNT(*) FROM movies mv WHERE mv.user_id = %[1]s.id)",
		},
		Ranges: baseRanges(nil),
	},
}

// Lookup returns the allow-list row for an entity type. The returned value
// is shared and must not be modified.
func Lookup(t types.EntityType) (*Entity, bool) {
	e, ok := entities[t]
	return e, ok
}

// MustLookup is Lookup for entity types known at compile time.
func MustLookup(t types.EntityType) *Entity {
	e, ok := entities[t]
	if !ok {
		panic(fmt.Sprintf("allowlist: no entry for entity %q", t))
	}
	return e
}

// EntityTypes lists every entity with an allow-list row, sorted.
func EntityTypes() []types.EntityType {
	out := make([]types.EntityType, 0, len(entities))
	for t := range entities {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
