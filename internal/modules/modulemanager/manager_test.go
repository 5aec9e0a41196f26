package modulemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeModule struct {
	id      string
	core    bool
	deps    []string
	initErr error
	trail   *[]string
}

func (f *fakeModule) ID() string { return f.id }
func (f *fakeModule) Name() string { return "fake " + f.id }
func (f *fakeModule) Core() bool { return f.core }
func (f *fakeModule) Dependencies() []string { return f.deps }
func (f *fakeModule) Migrate(db *gorm.DB) error { return nil }

func (f *fakeModule) Init() error {
	*f.trail = append(*f.trail, "init:"+f.id)
	return f.initErr
}

func (f *fakeModule) Shutdown(ctx context.Context) error {
	*f.trail = append(*f.trail, "stop:"+f.id)
	return nil
}

func (f *fakeModule) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{Status: HealthStateHealthy, LastChecked: time.Now()}
}

func TestLoadAllFollowsDependencies(t *testing.T) {
	var trail []string
	m := New()
	require.NoError(t, m.Register(&fakeModule{id: "catalog", deps: []string{"database"}, trail: &trail}))
	require.NoError(t, m.Register(&fakeModule{id: "database", core: true, trail: &trail}))
	require.NoError(t, m.Register(&fakeModule{id: "audit", deps: []string{"catalog"}, trail: &trail}))

	require.NoError(t, m.LoadAll(nil))
	assert.Equal(t, []string{"init:database", "init:catalog", "init:audit"}, trail)

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, []string{"stop:audit", "stop:catalog", "stop:database"}, trail[3:])

	assert.Error(t, m.Register(&fakeModule{id: "late", trail: &trail}))
}

func TestLoadAllRejectsBadGraphs(t *testing.T) {
	var trail []string

	m := New()
	require.NoError(t, m.Register(&fakeModule{id: "a", deps: []string{"b"}, trail: &trail}))
	require.NoError(t, m.Register(&fakeModule{id: "b", deps: []string{"a"}, trail: &trail}))
	assert.ErrorContains(t, m.LoadAll(nil), "circular dependency")

	m = New()
	require.NoError(t, m.Register(&fakeModule{id: "a", deps: []string{"missing"}, trail: &trail}))
	assert.ErrorContains(t, m.LoadAll(nil), "non-existent module missing")
	assert.Empty(t, trail)
}

func TestLoadAllStopsOnInitError(t *testing.T) {
	var trail []string
	boom := errors.New("boom")

	m := New()
	require.NoError(t, m.Register(&fakeModule{id: "a", initErr: boom, trail: &trail}))
	assert.ErrorIs(t, m.LoadAll(nil), boom)
}

func TestDisable(t *testing.T) {
	var trail []string
	m := New()
	require.NoError(t, m.Register(&fakeModule{id: "core", core: true, trail: &trail}))
	require.NoError(t, m.Register(&fakeModule{id: "extra", trail: &trail}))

	assert.Error(t, m.Disable("core"))
	assert.Error(t, m.Disable("missing"))
	require.NoError(t, m.Disable("extra"))

	require.NoError(t, m.LoadAll(nil))
	assert.Equal(t, []string{"init:core"}, trail)
	assert.Len(t, m.Modules(), 1)
}

func TestHealth(t *testing.T) {
	var trail []string
	m := New()
	require.NoError(t, m.Register(&fakeModule{id: "checked", trail: &trail}))
	require.NoError(t, m.LoadAll(nil))

	health := m.Health(context.Background())
	assert.Equal(t, HealthStateHealthy, health["checked"].Status)
}
