package service

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/mantonx/reelbase/internal/database"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/core/repository"
	catalogerrors "github.com/mantonx/reelbase/internal/modules/catalogmodule/errors"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/types"
	"github.com/mantonx/reelbase/internal/modules/databasemodule"
)

// AwardService lists awards and creates person awards. Movie awards are
// normally managed through the movie's relations; Create accepts either
// owner but never both.
type AwardService struct {
	*CatalogService[database.Award]
}

func NewAwardService(tm *databasemodule.TransactionManager, port types.QueryPort, opts repository.Options, observers ...types.Observer) *AwardService {
	hooks := Hooks[database.Award]{
		Validate: validateAward,
		ID:       func(a *database.Award) string { return a.ID },
	}
	return &AwardService{CatalogService: NewCatalogService(types.EntityAward, tm, port, opts, hooks, observers...)}
}

func validateAward(a *database.Award) error {
	const op = "create_award"

	a.Name = strings.TrimSpace(a.Name)
	if err := required(op, "name", a.Name); err != nil {
		return err
	}
	if err := positive(op, "year", a.Year); err != nil {
		return err
	}

	hasMovie := a.MovieID != nil && *a.MovieID != ""
	hasPerson := a.PersonID != nil && *a.PersonID != ""
	if hasMovie == hasPerson {
		return catalogerrors.ValidationError(op, "award must belong to exactly one of a movie or a person").WithField("owner")
	}
	return nil
}

// Create validates the award, checks that its owner and ceremony exist and
// inserts it.
func (s *AwardService) Create(ctx context.Context, award *database.Award, observers ...types.Observer) error {
	const op = "create_award"

	if err := validateAward(award); err != nil {
		return err
	}

	err := s.tm.WithTransaction(ctx, func(tx *gorm.DB) error {
		tx = tx.WithContext(ctx)
		if award.MovieID != nil {
			if err := exists(tx, op, &database.Movie{}, "movie", *award.MovieID); err != nil {
				return err
			}
		}
		if award.PersonID != nil {
			if err := exists(tx, op, &database.Person{}, "person", *award.PersonID); err != nil {
				return err
			}
		}
		if award.CeremonyID != nil {
			if err := exists(tx, op, &database.Ceremony{}, "ceremony", *award.CeremonyID); err != nil {
				return err
			}
		}
		return tx.Create(award).Error
	})
	if err != nil {
		return translateWriteError(op, "award", err)
	}

	notify(ctx, types.ActionCreate, award.ID, s.observers, observers)
	return nil
}

func exists(tx *gorm.DB, op string, model interface{}, entity, id string) error {
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return catalogerrors.DatabaseError(op, err)
	}
	if n == 0 {
		return catalogerrors.NotFound(op, entity, id)
	}
	return nil
}
