package aggregate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mantonx/reelbase/internal/database"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/types"
	"github.com/mantonx/reelbase/internal/modules/databasemodule"
)

func TestReconcileAddsAndPrunesTags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reconciler := NewReconciler(databasemodule.NewTransactionManager(f.db))

	// a credit written behind the store's back has no tag yet
	require.NoError(t, f.db.Exec("INSERT INTO movie_directors (movie_id, person_id) VALUES (?, ?)", f.movie.ID, f.alice.ID).Error)
	// stale crew tag and a tag-only role
	require.NoError(t, f.db.Create(&[]database.PersonRoleType{
		{PersonID: f.bob.ID, RoleType: string(types.RoleTypeEditor)},
		{PersonID: f.bob.ID, RoleType: string(types.RoleTypeStuntman)},
	}).Error)

	result, err := reconciler.Reconcile(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Added[types.RoleTypeDirector])
	assert.Empty(t, result.Removed)
	assert.Equal(t, []string{string(types.RoleTypeDirector)}, f.tags(t, f.alice.ID))
	assert.Equal(t, []string{string(types.RoleTypeEditor), string(types.RoleTypeStuntman)}, f.tags(t, f.bob.ID))

	result, err = reconciler.Reconcile(ctx, true)
	require.NoError(t, err)
	added, removed := result.Total()
	assert.Zero(t, added)
	assert.Equal(t, int64(1), removed)
	assert.Equal(t, int64(1), result.Removed[types.RoleTypeEditor])
	assert.Equal(t, []string{string(types.RoleTypeStuntman)}, f.tags(t, f.bob.ID))
	assert.Equal(t, []string{string(types.RoleTypeDirector)}, f.tags(t, f.alice.ID))
}

func TestReconcileTagsCastFromAssignments(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Create(&database.RoleAssignment{MovieID: f.movie.ID, PersonID: f.bob.ID}).Error)

	result, err := NewReconciler(databasemodule.NewTransactionManager(f.db)).Reconcile(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Added[types.RoleTypeActor])
	assert.Equal(t, []string{string(types.RoleTypeActor)}, f.tags(t, f.bob.ID))
}
