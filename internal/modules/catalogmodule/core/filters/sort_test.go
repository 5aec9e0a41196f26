package filters

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mantonx/reelbase/internal/modules/catalogmodule/core/allowlist"
	catalogerrors "github.com/mantonx/reelbase/internal/modules/catalogmodule/errors"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/types"
)

func TestResolveEveryAllowListedField(t *testing.T) {
	resolver := NewSortResolver()

	for _, et := range allowlist.EntityTypes() {
		entity := allowlist.MustLookup(et)
		for _, field := range entity.FieldNames() {
			for _, dir := range []types.Direction{types.Ascending, types.Descending} {
				t.Run(fmt.Sprintf("%s/%s/%s", et, field, dir), func(t *testing.T) {
					sort, err := resolver.Resolve(entity, "", field, dir)
					require.NoError(t, err)
					assert.Equal(t, dir, sort.Direction)
					assert.Equal(t, field, sort.Field)
					assert.Contains(t, sort.Clause(), " "+string(dir))
				})
			}
		}
	}
}

func TestResolveRejectsUnknownFields(t *testing.T) {
	resolver := NewSortResolver()
	movie := allowlist.MustLookup(types.EntityMovie)

	for _, field := range []string{
		"unknownField",
		"search_title",
		"title; DROP TABLE movies",
		"m.title",
		"birthDate",
		"movieCount",
		"Title",
	} {
		_, err := resolver.Resolve(movie, "m", field, types.Ascending)
		require.Error(t, err, field)
		assert.ErrorIs(t, err, catalogerrors.ErrInvalidSortField, field)
	}
}

func TestResolveOrdinaryFieldSortsNullsLastWithTieBreak(t *testing.T) {
	sort, err := NewSortResolver().Resolve(allowlist.MustLookup(types.EntityMovie), "m", "releaseDate", types.Descending)
	require.NoError(t, err)
	assert.Equal(t, "m.release_date IS NULL, m.release_date DESC, m.id ASC", sort.Clause())
}

func TestResolveComputedAlias(t *testing.T) {
	sort, err := NewSortResolver().Resolve(allowlist.MustLookup(types.EntityPerson), "p", "movieCount", types.Descending)
	require.NoError(t, err)
	assert.True(t, sort.Computed)
	assert.Equal(t, "movie_count DESC, p.id ASC", sort.Clause())
}

func TestResolveIdentityHasNoTieBreak(t *testing.T) {
	sort, err := NewSortResolver().Resolve(allowlist.MustLookup(types.EntityGenre), "g", "id", types.Ascending)
	require.NoError(t, err)
	assert.Equal(t, "g.id IS NULL, g.id ASC", sort.Clause())
}

func TestResolveDefaults(t *testing.T) {
	sort, err := NewSortResolver().Resolve(allowlist.MustLookup(types.EntityUser), "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "username", sort.Field)
	assert.Equal(t, types.Ascending, sort.Direction)
	assert.Equal(t, "u.username IS NULL, u.username ASC, u.id ASC", sort.Clause())
}

func TestResolveRejectsBadDirection(t *testing.T) {
	_, err := NewSortResolver().Resolve(allowlist.MustLookup(types.EntityMovie), "m", "title", "sideways")
	assert.ErrorIs(t, err, catalogerrors.ErrInvalidCriteria)
}

func TestResolveConcurrentUse(t *testing.T) {
	resolver := NewSortResolver()
	compiler := NewCompiler()
	movie := allowlist.MustLookup(types.EntityMovie)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := resolver.Resolve(movie, "m", "title", types.Descending)
			assert.NoError(t, err)
			_, err = compiler.Compile(movie, "m", types.Criteria{Term: fmt.Sprintf("t%d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
}
