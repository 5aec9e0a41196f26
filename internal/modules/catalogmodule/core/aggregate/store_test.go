package aggregate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mantonx/reelbase/internal/database"
	catalogerrors "github.com/mantonx/reelbase/internal/modules/catalogmodule/errors"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/types"
	"github.com/mantonx/reelbase/internal/modules/databasemodule"
	"github.com/mantonx/reelbase/internal/testutil"
)

type fixture struct {
	db     *gorm.DB
	store  *Store
	movie  database.Movie
	alice  database.Person
	bob    database.Person
	noir   database.Genre
	france database.Country
	events []types.Action
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	f := &fixture{
		db:     db,
		movie:  database.Movie{Title: "Seven"},
		alice:  database.Person{Name: "Alice"},
		bob:    database.Person{Name: "Bob"},
		noir:   database.Genre{Name: "Noir"},
		france: database.Country{Name: "France"},
	}
	require.NoError(t, db.Create(&f.movie).Error)
	require.NoError(t, db.Create(&f.alice).Error)
	require.NoError(t, db.Create(&f.bob).Error)
	require.NoError(t, db.Create(&f.noir).Error)
	require.NoError(t, db.Create(&f.france).Error)

	f.store = NewStore(databasemodule.NewTransactionManager(db), func(_ context.Context, action types.Action, _ string) {
		f.events = append(f.events, action)
	})
	return f
}

func (f *fixture) load(t *testing.T) *Relations {
	t.Helper()
	rel, err := f.store.Load(context.Background(), f.movie.ID)
	require.NoError(t, err)
	return rel
}

func (f *fixture) count(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Table(table).Count(&n).Error)
	return n
}

func (f *fixture) tags(t *testing.T, personID string) []string {
	t.Helper()
	var tags []string
	require.NoError(t, f.db.Model(&database.PersonRoleType{}).
		Where("person_id = ?", personID).Order("role_type").Pluck("role_type", &tags).Error)
	return tags
}

func TestLoadMissingMovie(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, catalogerrors.ErrNotFound)
}

func TestReplaceCrewIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rel := f.load(t)
	require.NoError(t, rel.ReplaceCrew(types.CrewDirectors, []string{f.alice.ID, f.bob.ID}))
	require.NoError(t, f.store.Commit(ctx, rel))

	rel = f.load(t)
	require.NoError(t, rel.ReplaceCrew(types.CrewDirectors, []string{f.bob.ID, f.alice.ID}))
	require.NoError(t, f.store.Commit(ctx, rel))

	assert.ElementsMatch(t, []string{f.alice.ID, f.bob.ID}, f.load(t).Crew(types.CrewDirectors))
	assert.Equal(t, int64(2), f.count(t, "movie_directors"))
	// the second commit changed nothing
	assert.Equal(t, []types.Action{types.ActionRelations}, f.events)
}

func TestAddAndRemoveAreIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rel := f.load(t)
	require.NoError(t, rel.AddGenre(f.noir.ID))
	require.NoError(t, rel.AddGenre(f.noir.ID))
	require.NoError(t, rel.RemoveCountry(f.france.ID))
	require.NoError(t, f.store.Commit(ctx, rel))

	assert.Equal(t, []string{f.noir.ID}, f.load(t).Genres())
	assert.Empty(t, f.load(t).Countries())
	assert.Equal(t, int64(1), f.count(t, "movie_genres"))
}

func TestReplaceThenRemoveLeavesRest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rel := f.load(t)
	require.NoError(t, rel.ReplaceCrew(types.CrewProducers, []string{f.alice.ID, f.bob.ID}))
	require.NoError(t, f.store.Commit(ctx, rel))

	// the handle is rebased after a commit and can be reused
	require.NoError(t, rel.RemoveCrew(types.CrewProducers, f.alice.ID))
	require.NoError(t, f.store.Commit(ctx, rel))

	assert.Equal(t, []string{f.bob.ID}, f.load(t).Crew(types.CrewProducers))
}

func TestCommitTagsCreditedPeople(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	character := "Detective Mills"

	rel := f.load(t)
	require.NoError(t, rel.AddCrew(types.CrewDirectors, f.alice.ID))
	_, err := rel.AddRoleAssignment(AssignmentInput{PersonID: f.bob.ID, CharacterName: &character})
	require.NoError(t, err)
	require.NoError(t, f.store.Commit(ctx, rel))

	assert.Equal(t, []string{string(types.RoleTypeDirector)}, f.tags(t, f.alice.ID))
	assert.Equal(t, []string{string(types.RoleTypeActor)}, f.tags(t, f.bob.ID))

	// removing the credit keeps the tag
	rel = f.load(t)
	require.NoError(t, rel.RemoveCrew(types.CrewDirectors, f.alice.ID))
	require.NoError(t, f.store.Commit(ctx, rel))
	assert.Equal(t, []string{string(types.RoleTypeDirector)}, f.tags(t, f.alice.ID))
}

func TestCommitBumpsUpdatedAt(t *testing.T) {
	f := newFixture(t)
	stamp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	f.store.now = func() time.Time { return stamp }

	rel := f.load(t)
	require.NoError(t, rel.AddCountry(f.france.ID))
	require.NoError(t, f.store.Commit(context.Background(), rel))

	var movie database.Movie
	require.NoError(t, f.db.First(&movie, "id = ?", f.movie.ID).Error)
	assert.WithinDuration(t, stamp, movie.UpdatedAt, time.Second)
}

func TestPoisonedHandleWritesNothing(t *testing.T) {
	f := newFixture(t)
	empty := "  "

	rel := f.load(t)
	require.NoError(t, rel.AddGenre(f.noir.ID))
	_, err := rel.AddRoleAssignment(AssignmentInput{PersonID: f.bob.ID, CharacterName: &empty})
	require.Error(t, err)
	assert.ErrorIs(t, err, catalogerrors.ErrInvalidInput)
	assert.Equal(t, "character_name", err.(*catalogerrors.CatalogError).Field)

	// later mutators report the same failure
	assert.Equal(t, err, rel.AddCountry(f.france.ID))

	assert.Equal(t, err, f.store.Commit(context.Background(), rel))
	assert.Empty(t, f.load(t).Genres())
	assert.Empty(t, f.events)
}

func TestMissingReferenceAbortsCommit(t *testing.T) {
	f := newFixture(t)

	rel := f.load(t)
	require.NoError(t, rel.AddGenre(f.noir.ID))
	require.NoError(t, rel.AddCrew(types.CrewEditors, "no-such-person"))

	err := f.store.Commit(context.Background(), rel)
	assert.ErrorIs(t, err, catalogerrors.ErrNotFound)
	assert.Equal(t, "no-such-person", err.(*catalogerrors.CatalogError).ID)

	assert.Zero(t, f.count(t, "movie_genres"))
	assert.Zero(t, f.count(t, "movie_editors"))
	assert.Empty(t, f.events)
}

func TestAwardsKeepIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	year := 1996

	rel := f.load(t)
	first, err := rel.AddAward(AwardInput{Name: "Best Editing", Year: &year})
	require.NoError(t, err)
	again, err := rel.AddAward(AwardInput{Name: "best editing", Year: &year})
	require.NoError(t, err)
	assert.Equal(t, first, again)
	require.NoError(t, f.store.Commit(ctx, rel))

	rel = f.load(t)
	require.Len(t, rel.Awards(), 1)
	require.NoError(t, rel.ReplaceAwards([]AwardInput{{Name: "Best Editing", Year: &year}, {Name: "Best Score"}}))
	require.NoError(t, f.store.Commit(ctx, rel))

	awards := f.load(t).Awards()
	require.Len(t, awards, 2)
	assert.Equal(t, first, awards[0].ID)
	assert.Equal(t, f.movie.ID, *awards[1].MovieID)
}

func TestAwardRejectsUnknownCeremony(t *testing.T) {
	f := newFixture(t)
	ceremony := "missing-ceremony"

	rel := f.load(t)
	_, err := rel.AddAward(AwardInput{Name: "Palme d'Or", CeremonyID: &ceremony})
	require.NoError(t, err)

	err = f.store.Commit(context.Background(), rel)
	assert.ErrorIs(t, err, catalogerrors.ErrNotFound)
	assert.Zero(t, f.count(t, "awards"))
}

func TestUpdateRunsInOneTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := f.store.Update(ctx, f.movie.ID, func(rel *Relations) error {
		if err := rel.AddGenre(f.noir.ID); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, f.count(t, "movie_genres"))

	rel, err := f.store.Update(ctx, f.movie.ID, func(rel *Relations) error {
		return rel.ReplaceGenres([]string{f.noir.ID})
	})
	require.NoError(t, err)
	assert.Equal(t, []string{f.noir.ID}, rel.Genres())
	assert.Equal(t, int64(1), f.count(t, "movie_genres"))
	assert.Equal(t, []types.Action{types.ActionRelations}, f.events)
}

func TestDeleteRemovesOwnedRowsOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rel := f.load(t)
	require.NoError(t, rel.AddCrew(types.CrewDirectors, f.alice.ID))
	require.NoError(t, rel.AddGenre(f.noir.ID))
	_, err := rel.AddRoleAssignment(AssignmentInput{PersonID: f.bob.ID})
	require.NoError(t, err)
	_, err = rel.AddAward(AwardInput{Name: "Best Picture"})
	require.NoError(t, err)
	require.NoError(t, f.store.Commit(ctx, rel))

	require.NoError(t, f.store.Delete(ctx, f.movie.ID))

	assert.Zero(t, f.count(t, "movies"))
	assert.Zero(t, f.count(t, "movie_directors"))
	assert.Zero(t, f.count(t, "movie_genres"))
	assert.Zero(t, f.count(t, "role_assignments"))
	assert.Zero(t, f.count(t, "awards"))
	assert.Equal(t, int64(2), f.count(t, "people"))
	assert.Equal(t, int64(1), f.count(t, "genres"))
	assert.Equal(t, types.ActionDelete, f.events[len(f.events)-1])

	assert.ErrorIs(t, f.store.Delete(ctx, f.movie.ID), catalogerrors.ErrNotFound)
}
