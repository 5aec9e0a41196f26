package allowlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mantonx/reelbase/internal/modules/catalogmodule/types"
)

func TestEveryComputedFieldHasProjection(t *testing.T) {
	for _, et := range EntityTypes() {
		e := MustLookup(et)
		for field, alias := range e.Computed {
			_, ok := e.Projections[alias]
			assert.True(t, ok, "%s.%s has no projection %q", et, field, alias)
		}
	}
}

func TestProjectionSQLWithOverrides(t *testing.T) {
	person := MustLookup(types.EntityPerson)

	plain := person.ProjectionSQL("p")
	require.Len(t, plain, 2)
	assert.Equal(t, "(SELECT COUNT(*) FROM awards aw WHERE aw.person_id = p.id) AS award_count", plain[0])
	assert.Contains(t, plain[1], "movie_directors")
	assert.Contains(t, plain[1], "cr.person_id = p.id")

	scoped := person.ProjectionSQLWith("p", map[string]string{"movie_count": "0"})
	assert.Equal(t, plain[0], scoped[0])
	assert.Equal(t, "0 AS movie_count", scoped[1])
}
