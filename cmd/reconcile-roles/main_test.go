package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mantonx/reelbase/internal/config"
	"github.com/mantonx/reelbase/internal/database"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/types"
)

// seedDatabase writes a director credit with no matching tag and a stale
// editor tag into a fresh sqlite file.
func seedDatabase(t *testing.T) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "reelbase.db")
	t.Setenv("DATABASE_TYPE", "sqlite")
	t.Setenv("REELBASE_DATABASE_PATH", path)
	t.Setenv("LOG_LEVEL", "error")

	cfg := config.DefaultConfig()
	cfg.Database.Path = path
	db, err := database.Open(cfg.Database)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	movie := database.Movie{Title: "Seven"}
	person := database.Person{Name: "David Fincher"}
	require.NoError(t, db.Create(&movie).Error)
	require.NoError(t, db.Create(&person).Error)
	require.NoError(t, db.Exec("INSERT INTO movie_directors (movie_id, person_id) VALUES (?, ?)", movie.ID, person.ID).Error)
	require.NoError(t, db.Create(&database.PersonRoleType{PersonID: person.ID, RoleType: string(types.RoleTypeEditor)}).Error)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestRunReportsAddedTags(t *testing.T) {
	seedDatabase(t)

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), nil, &stdout, &stderr))

	assert.Contains(t, stdout.String(), "DIRECTOR")
	assert.Contains(t, stdout.String(), "1 tags added, 0 removed")
	assert.NotContains(t, stdout.String(), "EDITOR")
}

func TestRunPrunesStaleTags(t *testing.T) {
	seedDatabase(t)

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-prune"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "EDITOR")
	assert.Contains(t, stdout.String(), "1 tags added, 1 removed")

	stdout.Reset()
	require.NoError(t, run(context.Background(), []string{"-prune"}, &stdout, &stderr))
	assert.Equal(t, "0 tags added, 0 removed\n", stdout.String())
}

func TestRunRejectsUnknownFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Error(t, run(context.Background(), []string{"-bogus"}, &stdout, &stderr))
	assert.Empty(t, stdout.String())
}
