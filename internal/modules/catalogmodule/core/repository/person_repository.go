package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/mantonx/reelbase/internal/database"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/core/roles"
	catalogerrors "github.com/mantonx/reelbase/internal/modules/catalogmodule/errors"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/types"
)

// PersonRepository serves person queries for a single role. The role is
// carried by its descriptor; there is no per-role code.
type PersonRepository struct {
	descriptor roles.Descriptor
	people     *EntityRepository[database.Person]
	movies     *EntityRepository[database.Movie]
	roleScope  Scope
}

var _ types.PersonRepository = (*PersonRepository)(nil)

func NewPersonRepository(d roles.Descriptor, port types.QueryPort, opts Options) *PersonRepository {
	people := NewEntityRepository[database.Person](types.EntityPerson, port, opts)
	alias := people.Entity().Alias

	movieCount := "0"
	if d.HasCredits() {
		movieCount = fmt.Sprintf("(SELECT COUNT(DISTINCT cr.movie_id) FROM %s cr WHERE cr.person_id = %s.id)", d.CreditTable, alias)
	}
	projections := people.Entity().ProjectionSQLWith(alias, map[string]string{"movie_count": movieCount})

	return &PersonRepository{
		descriptor: d,
		people:     people.withProjections(projections),
		movies:     NewEntityRepository[database.Movie](types.EntityMovie, port, opts),
		roleScope: Scope{
			Condition: fmt.Sprintf("EXISTS (SELECT 1 FROM person_role_types rt WHERE rt.person_id = %s.id AND rt.role_type = @scopeRoleType)", alias),
			Params:    map[string]interface{}{"scopeRoleType": string(d.Tag)},
		},
	}
}

func (r *PersonRepository) Role() types.Role {
	return r.descriptor.Role
}

func (r *PersonRepository) Descriptor() roles.Descriptor {
	return r.descriptor
}

func (r *PersonRepository) Count(ctx context.Context, c types.Criteria) (int64, error) {
	return r.people.Count(ctx, c, r.roleScope)
}

func (r *PersonRepository) List(ctx context.Context, c types.Criteria) ([]database.Person, error) {
	return r.people.List(ctx, c, r.roleScope)
}

func (r *PersonRepository) FindByIDs(ctx context.Context, ids []string) ([]database.Person, error) {
	return r.people.FindByIDs(ctx, ids, r.roleScope)
}

func (r *PersonRepository) FindByName(ctx context.Context, term string) ([]database.Person, error) {
	return r.people.FindByName(ctx, term, r.roleScope)
}

// creditedOn scopes people to those credited in this role on a movie.
func (r *PersonRepository) creditedOn(op, movieID string) (Scope, error) {
	if !r.descriptor.HasCredits() {
		return Scope{}, catalogerrors.NotSupported(op, "role %s is not credited on movies", r.descriptor.Role)
	}
	if strings.TrimSpace(movieID) == "" {
		return Scope{}, catalogerrors.InvalidCriteria(op, "movie id is required")
	}
	return Scope{
		Condition: fmt.Sprintf("EXISTS (SELECT 1 FROM %s cr WHERE cr.person_id = %s.id AND cr.movie_id = @scopeMovieId)",
			r.descriptor.CreditTable, r.people.Entity().Alias),
		Params: map[string]interface{}{"scopeMovieId": movieID},
	}, nil
}

func (r *PersonRepository) CountByMovie(ctx context.Context, movieID string, c types.Criteria) (int64, error) {
	scope, err := r.creditedOn("count_by_movie", movieID)
	if err != nil {
		return 0, err
	}
	return r.people.Count(ctx, c, scope)
}

func (r *PersonRepository) ListByMovie(ctx context.Context, movieID string, c types.Criteria) ([]database.Person, error) {
	scope, err := r.creditedOn("list_by_movie", movieID)
	if err != nil {
		return nil, err
	}
	return r.people.List(ctx, c, scope)
}

func (r *PersonRepository) affiliatedWith(op, countryID string) (Scope, error) {
	if strings.TrimSpace(countryID) == "" {
		return Scope{}, catalogerrors.InvalidCriteria(op, "country id is required")
	}
	return Scope{
		Condition: fmt.Sprintf("EXISTS (SELECT 1 FROM person_countries pc WHERE pc.person_id = %s.id AND pc.country_id = @scopeCountryId)",
			r.people.Entity().Alias),
		Params: map[string]interface{}{"scopeCountryId": countryID},
	}, nil
}

func (r *PersonRepository) CountByCountry(ctx context.Context, countryID string, c types.Criteria) (int64, error) {
	scope, err := r.affiliatedWith("count_by_country", countryID)
	if err != nil {
		return 0, err
	}
	return r.people.Count(ctx, c, r.roleScope, scope)
}

func (r *PersonRepository) ListByCountry(ctx context.Context, countryID string, c types.Criteria) ([]database.Person, error) {
	scope, err := r.affiliatedWith("list_by_country", countryID)
	if err != nil {
		return nil, err
	}
	return r.people.List(ctx, c, r.roleScope, scope)
}

// Credits returns the movies the person is credited on in this role,
// ordered by title.
func (r *PersonRepository) Credits(ctx context.Context, personID string) ([]database.Movie, error) {
	const op = "person_credits"
	if !r.descriptor.HasCredits() {
		return nil, catalogerrors.NotSupported(op, "role %s is not credited on movies", r.descriptor.Role)
	}
	if strings.TrimSpace(personID) == "" {
		return nil, catalogerrors.InvalidCriteria(op, "person id is required")
	}

	scope := Scope{
		Condition: fmt.Sprintf("EXISTS (SELECT 1 FROM %s cr WHERE cr.movie_id = %s.id AND cr.person_id = @scopePersonId)",
			r.descriptor.CreditTable, r.movies.Entity().Alias),
		Params: map[string]interface{}{"scopePersonId": personID},
	}
	return r.movies.all(ctx, types.Criteria{}, []Scope{scope})
}
