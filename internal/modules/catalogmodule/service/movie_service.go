package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mantonx/reelbase/internal/database"
	"github.com/mantonx/reelbase/internal/logger"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/core/aggregate"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/core/repository"
	catalogerrors "github.com/mantonx/reelbase/internal/modules/catalogmodule/errors"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/types"
	"github.com/mantonx/reelbase/internal/modules/databasemodule"
)

// MovieInput carries the scalar fields of a movie.
type MovieInput struct {
	Title         string     `json:"title" binding:"required"`
	OriginalTitle string     `json:"original_title"`
	Synopsis      string     `json:"synopsis"`
	ReleaseDate   *time.Time `json:"release_date"`
	Runtime       *int       `json:"runtime"`
	Budget        *int64     `json:"budget"`
	BoxOffice     *int64     `json:"box_office"`
	Poster        *string    `json:"poster"`
	UserID        *string    `json:"user_id"`
}

func (in *MovieInput) validate(op string) error {
	in.Title = strings.TrimSpace(in.Title)
	in.OriginalTitle = strings.TrimSpace(in.OriginalTitle)
	if err := required(op, "title", in.Title); err != nil {
		return err
	}
	if in.Runtime != nil && *in.Runtime < 0 {
		return catalogerrors.ValidationError(op, "runtime is negative").WithField("runtime")
	}
	if in.Budget != nil && *in.Budget < 0 {
		return catalogerrors.ValidationError(op, "budget is negative").WithField("budget")
	}
	if in.BoxOffice != nil && *in.BoxOffice < 0 {
		return catalogerrors.ValidationError(op, "box office is negative").WithField("box_office")
	}
	if in.Poster != nil && strings.TrimSpace(*in.Poster) == "" {
		in.Poster = nil
	}
	if in.UserID != nil && strings.TrimSpace(*in.UserID) == "" {
		in.UserID = nil
	}
	return nil
}

func (in MovieInput) apply(m *database.Movie) {
	m.Title = in.Title
	m.OriginalTitle = in.OriginalTitle
	m.Synopsis = in.Synopsis
	m.ReleaseDate = in.ReleaseDate
	m.Runtime = in.Runtime
	m.Budget = in.Budget
	m.BoxOffice = in.BoxOffice
	m.Poster = in.Poster
	m.UserID = in.UserID
}

// MovieService is the movie API: listing, scalar CRUD and relationship
// management through the aggregate store.
type MovieService struct {
	tm        *databasemodule.TransactionManager
	repo      *repository.EntityRepository[database.Movie]
	store     *aggregate.Store
	observers []types.Observer
	logger    hclog.Logger
}

// NewMovieService wires the movie repository and aggregate store. The
// observers run after every committed change, before per-call observers.
func NewMovieService(tm *databasemodule.TransactionManager, port types.QueryPort, opts repository.Options, observers ...types.Observer) *MovieService {
	return &MovieService{
		tm:        tm,
		repo:      repository.NewEntityRepository[database.Movie](types.EntityMovie, port, opts),
		store:     aggregate.NewStore(tm, observers...),
		observers: observers,
		logger:    logger.Named("movies"),
	}
}

func (s *MovieService) List(ctx context.Context, c types.Criteria) (*types.Page[database.Movie], error) {
	return listPage(ctx, s.repo.Options(), c,
		func(c types.Criteria) ([]database.Movie, error) { return s.repo.List(ctx, c) },
		func(c types.Criteria) (int64, error) { return s.repo.Count(ctx, c) })
}

func (s *MovieService) Count(ctx context.Context, c types.Criteria) (int64, error) {
	return s.repo.Count(ctx, c)
}

func (s *MovieService) FindByIDs(ctx context.Context, ids []string) ([]database.Movie, error) {
	return s.repo.FindByIDs(ctx, ids)
}

func (s *MovieService) FindByName(ctx context.Context, term string) ([]database.Movie, error) {
	return s.repo.FindByName(ctx, term)
}

// Get returns a movie with every relationship set loaded.
func (s *MovieService) Get(ctx context.Context, id string) (*database.Movie, error) {
	const op = "get_movie"

	var movie database.Movie
	err := s.tm.DB().WithContext(ctx).
		Preload("Producers").
		Preload("Directors").
		Preload("Screenwriters").
		Preload("Musicians").
		Preload("Photographers").
		Preload("Costumiers").
		Preload("Decorators").
		Preload("Editors").
		Preload("Casters").
		Preload("Genres").
		Preload("Countries").
		Preload("Awards.Ceremony").
		Preload("RoleAssignments.Person").
		First(&movie, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalogerrors.NotFound(op, "movie", id)
		}
		return nil, catalogerrors.DatabaseError(op, err).WithID(id)
	}
	movie.AwardCount = int64(len(movie.Awards))
	return &movie, nil
}

// Create inserts a movie. Title plus original title must be unique, as
// must the poster.
func (s *MovieService) Create(ctx context.Context, in MovieInput, observers ...types.Observer) (*database.Movie, error) {
	const op = "create_movie"

	if err := in.validate(op); err != nil {
		return nil, err
	}

	var movie database.Movie
	in.apply(&movie)

	err := s.tm.WithTransaction(ctx, func(tx *gorm.DB) error {
		tx = tx.WithContext(ctx)
		if err := s.checkWrite(tx, op, "", in); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(&movie).Error
	})
	if err != nil {
		return nil, translateWriteError(op, "movie", err)
	}

	s.logger.Debug("movie created", "id", movie.ID, "title", movie.Title)
	notify(ctx, types.ActionCreate, movie.ID, s.observers, observers)
	return &movie, nil
}

// Update replaces the scalar fields of a movie. Relationship sets are left
// alone.
func (s *MovieService) Update(ctx context.Context, id string, in MovieInput, observers ...types.Observer) (*database.Movie, error) {
	const op = "update_movie"

	if err := in.validate(op); err != nil {
		return nil, err
	}

	var movie database.Movie
	err := s.tm.WithTransaction(ctx, func(tx *gorm.DB) error {
		tx = tx.WithContext(ctx)
		if err := tx.First(&movie, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return catalogerrors.NotFound(op, "movie", id)
			}
			return err
		}
		if err := s.checkWrite(tx, op, id, in); err != nil {
			return err
		}
		in.apply(&movie)
		return tx.Omit(clause.Associations).Save(&movie).Error
	})
	if err != nil {
		return nil, translateWriteError(op, "movie", err)
	}

	notify(ctx, types.ActionUpdate, movie.ID, s.observers, observers)
	return &movie, nil
}

// checkWrite enforces uniqueness and the user reference before a write.
// self is the id of the movie being updated, empty on create.
func (s *MovieService) checkWrite(tx *gorm.DB, op, self string, in MovieInput) error {
	dup := tx.Model(&database.Movie{}).Where("title = ? AND original_title = ?", in.Title, in.OriginalTitle)
	if self != "" {
		dup = dup.Where("id <> ?", self)
	}
	var n int64
	if err := dup.Count(&n).Error; err != nil {
		return catalogerrors.DatabaseError(op, err)
	}
	if n > 0 {
		return catalogerrors.Conflict(op, "movie %q (%q) already exists", in.Title, in.OriginalTitle).WithField("title")
	}

	if in.Poster != nil {
		q := tx.Model(&database.Movie{}).Where("poster = ?", *in.Poster)
		if self != "" {
			q = q.Where("id <> ?", self)
		}
		if err := q.Count(&n).Error; err != nil {
			return catalogerrors.DatabaseError(op, err)
		}
		if n > 0 {
			return catalogerrors.Conflict(op, "poster is used by another movie").WithField("poster")
		}
	}

	if in.UserID != nil {
		if err := exists(tx, op, &database.User{}, "user", *in.UserID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the movie, its cast and its awards in one transaction.
// People, genres and countries are only detached.
func (s *MovieService) Delete(ctx context.Context, id string, observers ...types.Observer) error {
	return s.store.Delete(ctx, id, observers...)
}

// Relations loads the movie's relationship sets for editing.
func (s *MovieService) Relations(ctx context.Context, id string) (*aggregate.Relations, error) {
	return s.store.Load(ctx, id)
}

// CommitRelations writes an edited relations handle.
func (s *MovieService) CommitRelations(ctx context.Context, rel *aggregate.Relations, observers ...types.Observer) error {
	return s.store.Commit(ctx, rel, observers...)
}

// UpdateRelations loads, edits and commits in one transaction.
func (s *MovieService) UpdateRelations(ctx context.Context, id string, fn func(*aggregate.Relations) error, observers ...types.Observer) (*aggregate.Relations, error) {
	return s.store.Update(ctx, id, fn, observers...)
}
