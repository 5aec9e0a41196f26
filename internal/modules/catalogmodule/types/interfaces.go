package types

import (
	"context"

	"github.com/mantonx/reelbase/internal/database"
)

// PersonRepository answers person queries scoped to one role.
type PersonRepository interface {
	Role() Role
	Count(ctx context.Context, c Criteria) (int64, error)
	List(ctx context.Context, c Criteria) ([]database.Person, error)
	FindByIDs(ctx context.Context, ids []string) ([]database.Person, error)
	FindByName(ctx context.Context, term string) ([]database.Person, error)
	CountByMovie(ctx context.Context, movieID string, c Criteria) (int64, error)
	ListByMovie(ctx context.Context, movieID string, c Criteria) ([]database.Person, error)
	CountByCountry(ctx context.Context, countryID string, c Criteria) (int64, error)
	ListByCountry(ctx context.Context, countryID string, c Criteria) ([]database.Person, error)
	Credits(ctx context.Context, personID string) ([]database.Movie, error)
}

// PersonService is the role-scoped person API consumed by transports.
type PersonService interface {
	Role() Role
	Count(ctx context.Context, c Criteria) (int64, error)
	List(ctx context.Context, c Criteria) (*Page[database.Person], error)
	FindByIDs(ctx context.Context, ids []string) ([]database.Person, error)
	FindByName(ctx context.Context, term string) ([]database.Person, error)
	CountByMovie(ctx context.Context, movieID string, c Criteria) (int64, error)
	ListByMovie(ctx context.Context, movieID string, c Criteria) (*Page[database.Person], error)
	CountByCountry(ctx context.Context, countryID string, c Criteria) (int64, error)
	ListByCountry(ctx context.Context, countryID string, c Criteria) (*Page[database.Person], error)
	Credits(ctx context.Context, personID string) ([]database.Movie, error)
}
