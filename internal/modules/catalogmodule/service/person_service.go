package service

import (
	"context"

	"github.com/mantonx/reelbase/internal/database"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/core/repository"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/types"
)

// personService implements types.PersonService for one role. The registry
// builds one per role around that role's repository.
type personService struct {
	repo types.PersonRepository
	opts repository.Options
}

// NewPersonService wraps a role-scoped person repository.
func NewPersonService(repo types.PersonRepository, opts repository.Options) types.PersonService {
	return &personService{repo: repo, opts: opts}
}

func (s *personService) Role() types.Role {
	return s.repo.Role()
}

func (s *personService) Count(ctx context.Context, c types.Criteria) (int64, error) {
	return s.repo.Count(ctx, c)
}

func (s *personService) List(ctx context.Context, c types.Criteria) (*types.Page[database.Person], error) {
	return listPage(ctx, s.opts, c,
		func(c types.Criteria) ([]database.Person, error) { return s.repo.List(ctx, c) },
		func(c types.Criteria) (int64, error) { return s.repo.Count(ctx, c) })
}

func (s *personService) FindByIDs(ctx context.Context, ids []string) ([]database.Person, error) {
	return s.repo.FindByIDs(ctx, ids)
}

func (s *personService) FindByName(ctx context.Context, term string) ([]database.Person, error) {
	return s.repo.FindByName(ctx, term)
}

func (s *personService) CountByMovie(ctx context.Context, movieID string, c types.Criteria) (int64, error) {
	return s.repo.CountByMovie(ctx, movieID, c)
}

func (s *personService) ListByMovie(ctx context.Context, movieID string, c types.Criteria) (*types.Page[database.Person], error) {
	return listPage(ctx, s.opts, c,
		func(c types.Criteria) ([]database.Person, error) { return s.repo.ListByMovie(ctx, movieID, c) },
		func(c types.Criteria) (int64, error) { return s.repo.CountByMovie(ctx, movieID, c) })
}

func (s *personService) CountByCountry(ctx context.Context, countryID string, c types.Criteria) (int64, error) {
	return s.repo.CountByCountry(ctx, countryID, c)
}

func (s *personService) ListByCountry(ctx context.Context, countryID string, c types.Criteria) (*types.Page[database.Person], error) {
	return listPage(ctx, s.opts, c,
		func(c types.Criteria) ([]database.Person, error) { return s.repo.ListByCountry(ctx, countryID, c) },
		func(c types.Criteria) (int64, error) { return s.repo.CountByCountry(ctx, countryID, c) })
}

func (s *personService) Credits(ctx context.Context, personID string) ([]database.Movie, error) {
	return s.repo.Credits(ctx, personID)
}
