package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mantonx/reelbase/internal/database"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/core/allowlist"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/core/filters"
	catalogerrors "github.com/mantonx/reelbase/internal/modules/catalogmodule/errors"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/types"
	"github.com/mantonx/reelbase/internal/testutil"
)

func movieQuery(t *testing.T, c types.Criteria) types.Query {
	t.Helper()
	movie := allowlist.MustLookup(types.EntityMovie)

	pred, err := filters.NewCompiler().Compile(movie, "m", c)
	require.NoError(t, err)
	sort, err := filters.NewSortResolver().Resolve(movie, "m", c.SortField, c.Direction)
	require.NoError(t, err)

	return types.Query{
		Table:       movie.Table,
		Alias:       "m",
		Projections: movie.ProjectionSQL("m"),
		Where:       pred,
		Order:       sort,
		Offset:      40,
		Limit:       20,
	}
}

func TestExecuteBindsNamedParameters(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	port := NewGormPort(db)

	q := movieQuery(t, types.Criteria{Term: "Seven"})

	rows := sqlmock.NewRows([]string{"id", "title", "award_count"}).
		AddRow("m-1", "Seven", 2)
	mock.ExpectQuery(`SELECT m\.\*, \(SELECT COUNT\(\*\) FROM awards aw WHERE aw\.movie_id = m\.id\) AS award_count ` +
		`FROM movies AS m WHERE \(m\.search_title LIKE \$1 ESCAPE '\\'\) ` +
		`ORDER BY m\.title IS NULL, m\.title ASC, m\.id ASC LIMIT`).
		WillReturnRows(rows)

	var movies []database.Movie
	require.NoError(t, port.Execute(context.Background(), q, &movies))

	require.Len(t, movies, 1)
	assert.Equal(t, "Seven", movies[0].Title)
	assert.Equal(t, int64(2), movies[0].AwardCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountUsesPredicateOnly(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	port := NewGormPort(db)

	from := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	q := movieQuery(t, types.Criteria{Released: types.DateRange{From: &from}})

	mock.ExpectQuery(`SELECT count\(\*\) FROM movies AS m WHERE \(m\.release_date >= \$1\)`).
		WithArgs(from).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	total, err := port.Count(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorageErrorsPassThrough(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	port := NewGormPort(db)

	boom := errors.New("connection reset by peer")
	mock.ExpectQuery(`SELECT count\(\*\) FROM movies AS m`).WillReturnError(boom)

	_, err := port.Count(context.Background(), movieQuery(t, types.Criteria{}))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, catalogerrors.ErrorTypeDatabase, catalogerrors.GetType(err))
}

func TestCancelledContextIssuesNoRows(t *testing.T) {
	db, _ := testutil.NewMockDB(t)
	port := NewGormPort(db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var movies []database.Movie
	err := port.Execute(ctx, movieQuery(t, types.Criteria{}), &movies)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, movies)
}
