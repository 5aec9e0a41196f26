package aggregate

import (
	"context"
	"time"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mantonx/reelbase/internal/database"
	"github.com/mantonx/reelbase/internal/logger"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/core/roles"
	catalogerrors "github.com/mantonx/reelbase/internal/modules/catalogmodule/errors"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/types"
	"github.com/mantonx/reelbase/internal/modules/databasemodule"
)

// Join-row shapes written with Table(<join table>).
type crewRow struct {
	MovieID  string
	PersonID string
}

type genreRow struct {
	MovieID string
	GenreID string
}

type countryRow struct {
	MovieID   string
	CountryID string
}

// Store loads and commits movie relationship sets.
type Store struct {
	tm        *databasemodule.TransactionManager
	observers []types.Observer
	logger    hclog.Logger
	now       func() time.Time
}

// NewStore builds a store; observers run after every successful commit.
func NewStore(tm *databasemodule.TransactionManager, observers ...types.Observer) *Store {
	return &Store{
		tm:        tm,
		observers: observers,
		logger:    logger.Named("aggregate"),
		now:       time.Now,
	}
}

// Load materializes every relationship set of a movie.
func (s *Store) Load(ctx context.Context, movieID string) (*Relations, error) {
	return s.load(ctx, s.tm.DB(), movieID)
}

// Commit writes the handle's changes in one transaction. A poisoned handle
// is rejected before any I/O. On success the handle is rebased so it can
// be mutated and committed again.
func (s *Store) Commit(ctx context.Context, rel *Relations, observers ...types.Observer) error {
	if rel == nil {
		return catalogerrors.ValidationError("commit_relations", "no relations handle")
	}
	if rel.err != nil {
		return rel.err
	}

	var changed bool
	err := s.tm.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		changed, err = s.apply(ctx, tx, rel)
		return err
	})
	if err != nil {
		return err
	}

	s.finish(ctx, rel, changed, observers)
	return nil
}

// Update loads the movie's relations, passes them to fn and commits the
// result, all in one transaction. If fn returns an error or poisons the
// handle nothing is written.
func (s *Store) Update(ctx context.Context, movieID string, fn func(*Relations) error, observers ...types.Observer) (*Relations, error) {
	var (
		rel     *Relations
		changed bool
	)
	err := s.tm.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		rel, err = s.load(ctx, tx, movieID)
		if err != nil {
			return err
		}
		if err := fn(rel); err != nil {
			return err
		}
		if rel.err != nil {
			return rel.err
		}
		changed, err = s.apply(ctx, tx, rel)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.finish(ctx, rel, changed, observers)
	return rel, nil
}

// Delete removes a movie with its owned rows (role assignments, awards)
// and detaches it from people, genres and countries.
func (s *Store) Delete(ctx context.Context, movieID string, observers ...types.Observer) error {
	const op = "delete_movie"

	err := s.tm.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.requireMovie(ctx, tx, op, movieID); err != nil {
			return err
		}

		for _, table := range joinTables() {
			if err := tx.Exec("DELETE FROM "+table+" WHERE movie_id = ?", movieID).Error; err != nil {
				return catalogerrors.DatabaseError(op, err).WithID(movieID)
			}
		}
		if err := tx.Where("movie_id = ?", movieID).Delete(&database.RoleAssignment{}).Error; err != nil {
			return catalogerrors.DatabaseError(op, err).WithID(movieID)
		}
		if err := tx.Where("movie_id = ?", movieID).Delete(&database.Award{}).Error; err != nil {
			return catalogerrors.DatabaseError(op, err).WithID(movieID)
		}
		if err := tx.Where("id = ?", movieID).Delete(&database.Movie{}).Error; err != nil {
			return catalogerrors.DatabaseError(op, err).WithID(movieID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notify(ctx, types.ActionDelete, movieID, observers)
	return nil
}

func (s *Store) finish(ctx context.Context, rel *Relations, changed bool, observers []types.Observer) {
	rel.loaded = rel.current.clone()
	if !changed {
		return
	}
	s.logger.Debug("movie relations committed", "movie_id", rel.movieID)
	s.notify(ctx, types.ActionRelations, rel.movieID, observers)
}

func (s *Store) notify(ctx context.Context, action types.Action, id string, extra []types.Observer) {
	for _, o := range s.observers {
		o(ctx, action, id)
	}
	for _, o := range extra {
		o(ctx, action, id)
	}
}

// joinTables lists every join table keyed by movie_id.
func joinTables() []string {
	var tables []string
	for _, set := range roles.CrewSets() {
		d, _ := roles.ForCrewSet(set)
		tables = append(tables, d.CreditTable)
	}
	return append(tables, "movie_genres", "movie_countries")
}

func (s *Store) requireMovie(ctx context.Context, db *gorm.DB, op, movieID string) error {
	var n int64
	if err := db.WithContext(ctx).Model(&database.Movie{}).Where("id = ?", movieID).Count(&n).Error; err != nil {
		return catalogerrors.DatabaseError(op, err).WithID(movieID)
	}
	if n == 0 {
		return catalogerrors.NotFound(op, "movie", movieID)
	}
	return nil
}

func (s *Store) load(ctx context.Context, db *gorm.DB, movieID string) (*Relations, error) {
	const op = "load_relations"

	db = db.WithContext(ctx)
	if err := s.requireMovie(ctx, db, op, movieID); err != nil {
		return nil, err
	}

	st := newState()
	for _, set := range roles.CrewSets() {
		d, _ := roles.ForCrewSet(set)
		var ids []string
		if err := db.Table(d.CreditTable).Where("movie_id = ?", movieID).Pluck("person_id", &ids).Error; err != nil {
			return nil, catalogerrors.DatabaseError(op, err).WithID(movieID)
		}
		st.crew[set] = newIDSet(ids...)
	}

	var genreIDs, countryIDs []string
	if err := db.Table("movie_genres").Where("movie_id = ?", movieID).Pluck("genre_id", &genreIDs).Error; err != nil {
		return nil, catalogerrors.DatabaseError(op, err).WithID(movieID)
	}
	if err := db.Table("movie_countries").Where("movie_id = ?", movieID).Pluck("country_id", &countryIDs).Error; err != nil {
		return nil, catalogerrors.DatabaseError(op, err).WithID(movieID)
	}
	st.genres = newIDSet(genreIDs...)
	st.countries = newIDSet(countryIDs...)

	var awards []database.Award
	if err := db.Where("movie_id = ?", movieID).Find(&awards).Error; err != nil {
		return nil, catalogerrors.DatabaseError(op, err).WithID(movieID)
	}
	for _, a := range awards {
		st.awards[a.ID] = a
	}

	var assignments []database.RoleAssignment
	if err := db.Where("movie_id = ?", movieID).Find(&assignments).Error; err != nil {
		return nil, catalogerrors.DatabaseError(op, err).WithID(movieID)
	}
	for _, a := range assignments {
		st.assignments[a.ID] = a
	}

	return newRelations(movieID, st), nil
}

// diff is the write set of one commit.
type diff struct {
	crewAdded       map[types.CrewSet][]string
	crewRemoved     map[types.CrewSet][]string
	genresAdded     []string
	genresRemoved   []string
	countriesAdded  []string
	countriesRemove []string
	awardsAdded     []database.Award
	awardsRemoved   []string
	castAdded       []database.RoleAssignment
	castRemoved     []string
}

func (d diff) empty() bool {
	for _, ids := range d.crewAdded {
		if len(ids) > 0 {
			return false
		}
	}
	for _, ids := range d.crewRemoved {
		if len(ids) > 0 {
			return false
		}
	}
	return len(d.genresAdded)+len(d.genresRemoved)+len(d.countriesAdded)+len(d.countriesRemove)+
		len(d.awardsAdded)+len(d.awardsRemoved)+len(d.castAdded)+len(d.castRemoved) == 0
}

func computeDiff(rel *Relations) diff {
	d := diff{
		crewAdded:   make(map[types.CrewSet][]string),
		crewRemoved: make(map[types.CrewSet][]string),
	}
	for _, set := range roles.CrewSets() {
		d.crewAdded[set] = rel.current.crew[set].minus(rel.loaded.crew[set])
		d.crewRemoved[set] = rel.loaded.crew[set].minus(rel.current.crew[set])
	}
	d.genresAdded = rel.current.genres.minus(rel.loaded.genres)
	d.genresRemoved = rel.loaded.genres.minus(rel.current.genres)
	d.countriesAdded = rel.current.countries.minus(rel.loaded.countries)
	d.countriesRemove = rel.loaded.countries.minus(rel.current.countries)

	for _, a := range rel.Awards() {
		if _, ok := rel.loaded.awards[a.ID]; !ok {
			d.awardsAdded = append(d.awardsAdded, a)
		}
	}
	for id := range rel.loaded.awards {
		if _, ok := rel.current.awards[id]; !ok {
			d.awardsRemoved = append(d.awardsRemoved, id)
		}
	}
	for _, a := range rel.RoleAssignments() {
		if _, ok := rel.loaded.assignments[a.ID]; !ok {
			d.castAdded = append(d.castAdded, a)
		}
	}
	for id := range rel.loaded.assignments {
		if _, ok := rel.current.assignments[id]; !ok {
			d.castRemoved = append(d.castRemoved, id)
		}
	}
	return d
}

// apply writes the diff inside tx. It validates every reference first so
// a missing person, genre, country or ceremony aborts before any write.
func (s *Store) apply(ctx context.Context, tx *gorm.DB, rel *Relations) (bool, error) {
	const op = "commit_relations"

	d := computeDiff(rel)
	if d.empty() {
		return false, nil
	}

	tx = tx.WithContext(ctx)
	movieID := rel.movieID

	if err := s.requireMovie(ctx, tx, op, movieID); err != nil {
		return false, err
	}
	if err := s.validateReferences(tx, op, d); err != nil {
		return false, err
	}

	tags := make(map[database.PersonRoleType]struct{})

	for _, set := range roles.CrewSets() {
		desc, _ := roles.ForCrewSet(set)

		if removed := d.crewRemoved[set]; len(removed) > 0 {
			if err := tx.Exec("DELETE FROM "+desc.CreditTable+" WHERE movie_id = ? AND person_id IN ?", movieID, removed).Error; err != nil {
				return false, catalogerrors.DatabaseError(op, err).WithID(movieID)
			}
		}
		if added := d.crewAdded[set]; len(added) > 0 {
			rows := make([]crewRow, len(added))
			for i, personID := range added {
				rows[i] = crewRow{MovieID: movieID, PersonID: personID}
				tags[database.PersonRoleType{PersonID: personID, RoleType: string(desc.Tag)}] = struct{}{}
			}
			if err := tx.Table(desc.CreditTable).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
				return false, catalogerrors.DatabaseError(op, err).WithID(movieID)
			}
		}
	}

	if len(d.genresRemoved) > 0 {
		if err := tx.Exec("DELETE FROM movie_genres WHERE movie_id = ? AND genre_id IN ?", movieID, d.genresRemoved).Error; err != nil {
			return false, catalogerrors.DatabaseError(op, err).WithID(movieID)
		}
	}
	if len(d.genresAdded) > 0 {
		rows := make([]genreRow, len(d.genresAdded))
		for i, id := range d.genresAdded {
			rows[i] = genreRow{MovieID: movieID, GenreID: id}
		}
		if err := tx.Table("movie_genres").Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
			return false, catalogerrors.DatabaseError(op, err).WithID(movieID)
		}
	}

	if len(d.countriesRemove) > 0 {
		if err := tx.Exec("DELETE FROM movie_countries WHERE movie_id = ? AND country_id IN ?", movieID, d.countriesRemove).Error; err != nil {
			return false, catalogerrors.DatabaseError(op, err).WithID(movieID)
		}
	}
	if len(d.countriesAdded) > 0 {
		rows := make([]countryRow, len(d.countriesAdded))
		for i, id := range d.countriesAdded {
			rows[i] = countryRow{MovieID: movieID, CountryID: id}
		}
		if err := tx.Table("movie_countries").Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
			return false, catalogerrors.DatabaseError(op, err).WithID(movieID)
		}
	}

	if len(d.awardsRemoved) > 0 {
		if err := tx.Where("movie_id = ? AND id IN ?", movieID, d.awardsRemoved).Delete(&database.Award{}).Error; err != nil {
			return false, catalogerrors.DatabaseError(op, err).WithID(movieID)
		}
	}
	if len(d.awardsAdded) > 0 {
		if err := tx.Create(&d.awardsAdded).Error; err != nil {
			return false, catalogerrors.DatabaseError(op, err).WithID(movieID)
		}
	}

	if len(d.castRemoved) > 0 {
		if err := tx.Where("movie_id = ? AND id IN ?", movieID, d.castRemoved).Delete(&database.RoleAssignment{}).Error; err != nil {
			return false, catalogerrors.DatabaseError(op, err).WithID(movieID)
		}
	}
	if len(d.castAdded) > 0 {
		for _, a := range d.castAdded {
			tags[database.PersonRoleType{PersonID: a.PersonID, RoleType: string(types.RoleTypeActor)}] = struct{}{}
		}
		if err := tx.Create(&d.castAdded).Error; err != nil {
			return false, catalogerrors.DatabaseError(op, err).WithID(movieID)
		}
	}

	if len(tags) > 0 {
		rows := make([]database.PersonRoleType, 0, len(tags))
		for t := range tags {
			rows = append(rows, t)
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
			return false, catalogerrors.DatabaseError(op, err).WithID(movieID)
		}
	}

	// relationship sets are part of the movie's mutable state
	if err := tx.Model(&database.Movie{}).Where("id = ?", movieID).UpdateColumn("updated_at", s.now()).Error; err != nil {
		return false, catalogerrors.DatabaseError(op, err).WithID(movieID)
	}

	return true, nil
}

func (s *Store) validateReferences(tx *gorm.DB, op string, d diff) error {
	people := newIDSet()
	for _, ids := range d.crewAdded {
		for _, id := range ids {
			people[id] = struct{}{}
		}
	}
	for _, a := range d.castAdded {
		people[a.PersonID] = struct{}{}
	}

	ceremonies := newIDSet()
	for _, a := range d.awardsAdded {
		if a.CeremonyID != nil {
			ceremonies[*a.CeremonyID] = struct{}{}
		}
	}

	checks := []struct {
		entity string
		model  interface{}
		ids    []string
	}{
		{"person", &database.Person{}, people.sorted()},
		{"genre", &database.Genre{}, d.genresAdded},
		{"country", &database.Country{}, d.countriesAdded},
		{"ceremony", &database.Ceremony{}, ceremonies.sorted()},
	}

	for _, c := range checks {
		if len(c.ids) == 0 {
			continue
		}
		var found []string
		if err := tx.Model(c.model).Where("id IN ?", c.ids).Pluck("id", &found).Error; err != nil {
			return catalogerrors.DatabaseError(op, err)
		}
		if missing := newIDSet(c.ids...).minus(newIDSet(found...)); len(missing) > 0 {
			return catalogerrors.NotFound(op, c.entity, missing[0])
		}
	}
	return nil
}
