package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mantonx/reelbase/internal/database"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/core/roles"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/types"
)

type mockPersonService struct {
	mock.Mock
	role types.Role
}

func (m *mockPersonService) Role() types.Role { return m.role }

func (m *mockPersonService) Count(ctx context.Context, c types.Criteria) (int64, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPersonService) List(ctx context.Context, c types.Criteria) (*types.Page[database.Person], error) {
	args := m.Called(ctx, c)
	return args.Get(0).(*types.Page[database.Person]), args.Error(1)
}

func (m *mockPersonService) FindByIDs(ctx context.Context, ids []string) ([]database.Person, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]database.Person), args.Error(1)
}

func (m *mockPersonService) FindByName(ctx context.Context, term string) ([]database.Person, error) {
	args := m.Called(ctx, term)
	return args.Get(0).([]database.Person), args.Error(1)
}

func (m *mockPersonService) CountByMovie(ctx context.Context, movieID string, c types.Criteria) (int64, error) {
	args := m.Called(ctx, movieID, c)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPersonService) ListByMovie(ctx context.Context, movieID string, c types.Criteria) (*types.Page[database.Person], error) {
	args := m.Called(ctx, movieID, c)
	return args.Get(0).(*types.Page[database.Person]), args.Error(1)
}

func (m *mockPersonService) CountByCountry(ctx context.Context, countryID string, c types.Criteria) (int64, error) {
	args := m.Called(ctx, countryID, c)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPersonService) ListByCountry(ctx context.Context, countryID string, c types.Criteria) (*types.Page[database.Person], error) {
	args := m.Called(ctx, countryID, c)
	return args.Get(0).(*types.Page[database.Person]), args.Error(1)
}

func (m *mockPersonService) Credits(ctx context.Context, personID string) ([]database.Movie, error) {
	args := m.Called(ctx, personID)
	return args.Get(0).([]database.Movie), args.Error(1)
}

func mockedRouter(t *testing.T) (*gin.Engine, *mockPersonService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	actors := &mockPersonService{role: types.RoleActor}
	registry := roles.NewRegistry(func(d roles.Descriptor) roles.Binding {
		if d.Role == types.RoleActor {
			return roles.Binding{Service: actors}
		}
		return roles.Binding{Service: &mockPersonService{role: d.Role}}
	})

	router := gin.New()
	h := &Handler{Roles: registry}
	router.GET("/api/persons/:role", h.ListPersons)
	router.GET("/api/persons/:role/by-ids", h.PersonsByIDs)
	t.Cleanup(func() { actors.AssertExpectations(t) })
	return router, actors
}

func TestListPersonsBindsCriteria(t *testing.T) {
	router, actors := mockedRouter(t)

	born := time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC)
	actors.On("List", mock.Anything, mock.MatchedBy(func(c types.Criteria) bool {
		return c.Term == "pitt" &&
			c.Born.From != nil && c.Born.From.Equal(born) &&
			c.Born.To == nil &&
			assert.ObjectsAreEqual([]string{"fr", "us", "de"}, c.CountryIDs) &&
			assert.ObjectsAreEqual([]types.RoleType{types.RoleTypeProducer}, c.RoleTypes) &&
			c.SortField == "name" && c.Direction == types.Descending &&
			c.Page == 2 && c.Size == 5
	})).Return(types.NewPage([]database.Person{{Name: "Brad Pitt"}}, 11, 2, 5), nil).Once()

	w := httptest.NewRecorder()
	url := "/api/persons/actor?term=pitt&bornFrom=1960-01-01&countryIds=fr,us&countryIds=de" +
		"&roleTypes=producer&sort=name&direction=desc&page=2&size=5"
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Brad Pitt")
}

func TestListPersonsRejectsBadNumbers(t *testing.T) {
	router, _ := mockedRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/persons/actor?page=two", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CRITERIA")
}

func TestPersonsByIDsSplitsLists(t *testing.T) {
	router, actors := mockedRouter(t)

	actors.On("FindByIDs", mock.Anything, []string{"a", "b", "c"}).Return([]database.Person{}, nil).Once()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/persons/actor/by-ids?ids=a,b&ids=+c+", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
