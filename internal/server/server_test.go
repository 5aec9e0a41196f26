package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mantonx/reelbase/internal/config"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule"
	"github.com/mantonx/reelbase/internal/modules/databasemodule"
	"github.com/mantonx/reelbase/internal/modules/modulemanager"
	"github.com/mantonx/reelbase/internal/testutil"
)

func newServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Server.Mode = "test"

	db := testutil.NewTestDB(t)
	dbModule := databasemodule.NewModule(db)

	modules := modulemanager.New()
	require.NoError(t, modules.Register(catalogmodule.NewModule(dbModule.TransactionManager(), cfg.Catalog)))
	require.NoError(t, modules.Register(dbModule))
	require.NoError(t, modules.LoadAll(db))

	s, err := New(cfg.Server, modules)
	require.NoError(t, err)
	return s
}

func get(t *testing.T, s *Server, path string) (int, map[string]json.RawMessage) {
	t.Helper()
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestHealthReportsModules(t *testing.T) {
	s := newServer(t)

	code, body := get(t, s, "/api/health")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `"healthy"`, string(body["status"]))

	var modules map[string]modulemanager.HealthStatus
	require.NoError(t, json.Unmarshal(body["modules"], &modules))
	assert.Contains(t, modules, databasemodule.ModuleID)
}

func TestRouteDiscoveryIncludesModuleRoutes(t *testing.T) {
	s := newServer(t)

	code, body := get(t, s, "/api")
	require.Equal(t, http.StatusOK, code)

	var routes []struct {
		Method string `json:"method"`
		Path   string `json:"path"`
	}
	require.NoError(t, json.Unmarshal(body["data"], &routes))
	assert.Contains(t, routes, struct {
		Method string `json:"method"`
		Path   string `json:"path"`
	}{http.MethodGet, "/api/persons/:role"})
}

func TestUnhealthyAfterShutdown(t *testing.T) {
	s := newServer(t)
	require.NoError(t, s.modules.Shutdown(context.Background()))

	code, body := get(t, s, "/api/health")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.JSONEq(t, `"unhealthy"`, string(body["status"]))
}
