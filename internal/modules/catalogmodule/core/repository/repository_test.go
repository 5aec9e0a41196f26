package repository

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mantonx/reelbase/internal/database"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/core/query"
	catalogerrors "github.com/mantonx/reelbase/internal/modules/catalogmodule/errors"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/types"
	"github.com/mantonx/reelbase/internal/testutil"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func intPtr(v int) *int {
	return &v
}

func newMovieRepository(t *testing.T) (*gorm.DB, *EntityRepository[database.Movie]) {
	t.Helper()
	db := testutil.NewTestDB(t)
	return db, NewEntityRepository[database.Movie](types.EntityMovie, query.NewGormPort(db), DefaultOptions())
}

func titles(movies []database.Movie) []string {
	out := make([]string, len(movies))
	for i, m := range movies {
		out[i] = m.Title
	}
	return out
}

func TestListFiltersByReleaseDate(t *testing.T) {
	db, repo := newMovieRepository(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&database.Movie{Title: "Seven", ReleaseDate: date(1995, time.September, 22)}).Error)
	require.NoError(t, db.Create(&database.Movie{Title: "Se7en Remake", ReleaseDate: date(1985, time.January, 1)}).Error)
	require.NoError(t, db.Create(&database.Movie{Title: "Undated"}).Error)

	c := types.Criteria{Released: types.DateRange{From: date(1990, time.January, 1)}}

	movies, err := repo.List(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, []string{"Seven"}, titles(movies))

	n, err := repo.Count(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestInvertedRangeMatchesNothing(t *testing.T) {
	db, repo := newMovieRepository(t)
	require.NoError(t, db.Create(&database.Movie{Title: "Seven", ReleaseDate: date(1995, time.September, 22)}).Error)

	movies, err := repo.List(context.Background(), types.Criteria{
		Released: types.DateRange{From: date(2000, time.January, 1), To: date(1990, time.January, 1)},
	})
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestSearchIgnoresCaseAndAccents(t *testing.T) {
	db, repo := newMovieRepository(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&database.Movie{Title: "Amélie", OriginalTitle: "Le Fabuleux Destin d'Amélie Poulain"}).Error)
	require.NoError(t, db.Create(&database.Movie{Title: "Heat"}).Error)
	require.NoError(t, db.Create(&database.Movie{Title: "100% Arabica"}).Error)

	movies, err := repo.FindByName(ctx, "AMELIE")
	require.NoError(t, err)
	assert.Equal(t, []string{"Amélie"}, titles(movies))

	movies, err = repo.FindByName(ctx, "destin")
	require.NoError(t, err)
	assert.Equal(t, []string{"Amélie"}, titles(movies))

	// wildcard characters in the term match literally
	movies, err = repo.FindByName(ctx, "0%")
	require.NoError(t, err)
	assert.Equal(t, []string{"100% Arabica"}, titles(movies))

	movies, err = repo.FindByName(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestPaginationIsDeterministicOnTies(t *testing.T) {
	db, repo := newMovieRepository(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, db.Create(&database.Movie{Title: fmt.Sprintf("Movie %d", i), Runtime: intPtr(120)}).Error)
	}

	var seen []string
	for page := 0; page < 3; page++ {
		movies, err := repo.List(ctx, types.Criteria{SortField: "runtime", Page: page, Size: 2})
		require.NoError(t, err)
		for _, m := range movies {
			seen = append(seen, m.ID)
		}
	}
	require.Len(t, seen, 5)
	assert.IsIncreasing(t, seen)

	again, err := repo.List(ctx, types.Criteria{SortField: "runtime", Page: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, seen[2:4], []string{again[0].ID, again[1].ID})
}

func TestSortPutsNullsLast(t *testing.T) {
	db, repo := newMovieRepository(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&database.Movie{Title: "Short", Runtime: intPtr(80)}).Error)
	require.NoError(t, db.Create(&database.Movie{Title: "Unknown"}).Error)
	require.NoError(t, db.Create(&database.Movie{Title: "Long", Runtime: intPtr(200)}).Error)

	asc, err := repo.List(ctx, types.Criteria{SortField: "runtime"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Short", "Long", "Unknown"}, titles(asc))

	desc, err := repo.List(ctx, types.Criteria{SortField: "runtime", Direction: types.Descending})
	require.NoError(t, err)
	assert.Equal(t, []string{"Long", "Short", "Unknown"}, titles(desc))
}

func TestSortByComputedField(t *testing.T) {
	db, repo := newMovieRepository(t)
	ctx := context.Background()

	heat := database.Movie{Title: "Heat"}
	seven := database.Movie{Title: "Seven"}
	require.NoError(t, db.Create(&heat).Error)
	require.NoError(t, db.Create(&seven).Error)
	for _, name := range []string{"Best Editing", "Best Score"} {
		require.NoError(t, db.Create(&database.Award{Name: name, MovieID: &seven.ID}).Error)
	}

	movies, err := repo.List(ctx, types.Criteria{SortField: "awardCount", Direction: types.Descending})
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, "Seven", movies[0].Title)
	assert.Equal(t, int64(2), movies[0].AwardCount)
	assert.Equal(t, int64(0), movies[1].AwardCount)
}

func TestNarrowingNeverGrowsResults(t *testing.T) {
	db, repo := newMovieRepository(t)
	ctx := context.Background()

	noir := database.Genre{Name: "Noir"}
	require.NoError(t, db.Create(&noir).Error)
	for i, title := range []string{"Night Moves", "Night Train", "Day Trip"} {
		m := database.Movie{Title: title, ReleaseDate: date(1970+i*10, time.June, 1)}
		require.NoError(t, db.Create(&m).Error)
		if i == 0 {
			require.NoError(t, db.Exec("INSERT INTO movie_genres (movie_id, genre_id) VALUES (?, ?)", m.ID, noir.ID).Error)
		}
	}

	steps := []types.Criteria{
		{},
		{Term: "night"},
		{Term: "night", Released: types.DateRange{To: date(1985, time.January, 1)}},
		{Term: "night", Released: types.DateRange{To: date(1985, time.January, 1)}, GenreIDs: []string{noir.ID}},
	}
	want := []int64{3, 2, 2, 1}

	prev := int64(-1)
	for i, c := range steps {
		n, err := repo.Count(ctx, c)
		require.NoError(t, err)
		assert.Equal(t, want[i], n, "step %d", i)
		if prev >= 0 {
			assert.LessOrEqual(t, n, prev)
		}
		prev = n
	}
}

func TestFindByIDsSkipsUnknown(t *testing.T) {
	db, repo := newMovieRepository(t)

	heat := database.Movie{Title: "Heat"}
	require.NoError(t, db.Create(&heat).Error)

	movies, err := repo.FindByIDs(context.Background(), []string{heat.ID, "missing", heat.ID, ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"Heat"}, titles(movies))

	movies, err = repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestListRejectsBadRequests(t *testing.T) {
	_, repo := newMovieRepository(t)
	ctx := context.Background()

	_, err := repo.List(ctx, types.Criteria{SortField: "password"})
	assert.ErrorIs(t, err, catalogerrors.ErrInvalidSortField)

	_, err = repo.List(ctx, types.Criteria{Size: 1000})
	assert.ErrorIs(t, err, catalogerrors.ErrInvalidCriteria)

	_, err = repo.List(ctx, types.Criteria{Born: types.DateRange{From: date(1950, time.January, 1)}})
	assert.ErrorIs(t, err, catalogerrors.ErrInvalidCriteria)
}

func TestInvalidSortIssuesNoQuery(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewEntityRepository[database.Movie](types.EntityMovie, query.NewGormPort(db), DefaultOptions())

	_, err := repo.List(context.Background(), types.Criteria{SortField: "title; DROP TABLE movies"})
	assert.ErrorIs(t, err, catalogerrors.ErrInvalidSortField)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrepareBuildsQuery(t *testing.T) {
	_, repo := newMovieRepository(t)

	q, err := repo.Prepare(types.Criteria{Term: "heat", Page: 2, Size: 10},
		Scope{Condition: "m.user_id = @scopeUser", Params: map[string]interface{}{"scopeUser": "u1"}})
	require.NoError(t, err)

	assert.Equal(t, "movies", q.Table)
	assert.Equal(t, "m", q.Alias)
	assert.Equal(t, 20, q.Offset)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, "title", q.Order.Field)
	assert.Len(t, q.Where.Conditions, 2)
	assert.Equal(t, "u1", q.Where.Params["scopeUser"])
	assert.Equal(t, "%heat%", q.Where.Params["term"])
}

func TestListRejectsOverflowingPage(t *testing.T) {
	db, repo := newMovieRepository(t)
	require.NoError(t, db.Create(&database.Movie{Title: "Seven"}).Error)

	_, err := repo.List(context.Background(), types.Criteria{Page: math.MaxInt / 10, Size: 20})
	assert.ErrorIs(t, err, catalogerrors.ErrInvalidCriteria)
}
