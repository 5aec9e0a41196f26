// Package api serves the catalog over HTTP. Handlers only bind requests
// and render results; every rule lives in the services.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mantonx/reelbase/internal/api"
	"github.com/mantonx/reelbase/internal/database"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/core/aggregate"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/core/roles"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/service"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/types"
)

// Handler holds the services behind the catalog routes.
type Handler struct {
	Movies     *service.MovieService
	Roles      *roles.Registry
	People     *service.CatalogService[database.Person]
	Genres     *service.CatalogService[database.Genre]
	Countries  *service.CatalogService[database.Country]
	Ceremonies *service.CatalogService[database.Ceremony]
	Users      *service.CatalogService[database.User]
	Awards     *service.AwardService
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// =============================================================================
// MOVIES
// =============================================================================

func (h *Handler) ListMovies(c *gin.Context) {
	crit, err := bindCriteria(c)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	page, err := h.Movies.List(c.Request.Context(), crit)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, page)
}

func (h *Handler) CountMovies(c *gin.Context) {
	crit, err := bindCriteria(c)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	n, err := h.Movies.Count(c.Request.Context(), crit)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"count": n})
}

func (h *Handler) SearchMovies(c *gin.Context) {
	movies, err := h.Movies.FindByName(c.Request.Context(), c.Query("term"))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, movies)
}

func (h *Handler) GetMovie(c *gin.Context) {
	movie, err := h.Movies.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, movie)
}

func (h *Handler) CreateMovie(c *gin.Context) {
	var in service.MovieInput
	if err := c.ShouldBindJSON(&in); err != nil {
		api.RespondWithValidationError(c, "create_movie", err.Error())
		return
	}
	movie, err := h.Movies.Create(c.Request.Context(), in)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	respond(c, http.StatusCreated, movie)
}

func (h *Handler) UpdateMovie(c *gin.Context) {
	var in service.MovieInput
	if err := c.ShouldBindJSON(&in); err != nil {
		api.RespondWithValidationError(c, "update_movie", err.Error())
		return
	}
	movie, err := h.Movies.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, movie)
}

func (h *Handler) DeleteMovie(c *gin.Context) {
	if err := h.Movies.Delete(c.Request.Context(), c.Param("id")); err != nil {
		api.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// =============================================================================
// MOVIE RELATIONS
// =============================================================================

// relationsView is the JSON form of a movie's relationship sets.
type relationsView struct {
	MovieID         string                     `json:"movie_id"`
	Crew            map[types.CrewSet][]string `json:"crew"`
	Genres          []string                   `json:"genres"`
	Countries       []string                   `json:"countries"`
	Awards          []database.Award           `json:"awards"`
	RoleAssignments []database.RoleAssignment  `json:"role_assignments"`
}

func viewOf(rel *aggregate.Relations) relationsView {
	v := relationsView{
		MovieID:         rel.MovieID(),
		Crew:            make(map[types.CrewSet][]string),
		Genres:          rel.Genres(),
		Countries:       rel.Countries(),
		Awards:          rel.Awards(),
		RoleAssignments: rel.RoleAssignments(),
	}
	for _, set := range roles.CrewSets() {
		v.Crew[set] = rel.Crew(set)
	}
	return v
}

// editRelations applies fn to the movie's relations in one transaction and
// renders the result.
func (h *Handler) editRelations(c *gin.Context, fn func(*aggregate.Relations) error) {
	rel, err := h.Movies.UpdateRelations(c.Request.Context(), c.Param("id"), fn)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, viewOf(rel))
}

type idsBody struct {
	IDs []string `json:"ids"`
}

type idBody struct {
	ID string `json:"id" binding:"required"`
}

func bindBody(c *gin.Context, op string, body interface{}) bool {
	if err := c.ShouldBindJSON(body); err != nil {
		api.RespondWithValidationError(c, op, err.Error())
		return false
	}
	return true
}

func (h *Handler) GetRelations(c *gin.Context) {
	rel, err := h.Movies.Relations(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, viewOf(rel))
}

func (h *Handler) ReplaceCrew(c *gin.Context) {
	var body idsBody
	if !bindBody(c, "replace_crew", &body) {
		return
	}
	set := types.CrewSet(c.Param("set"))
	h.editRelations(c, func(rel *aggregate.Relations) error { return rel.ReplaceCrew(set, body.IDs) })
}

func (h *Handler) AddCrew(c *gin.Context) {
	var body idBody
	if !bindBody(c, "add_crew", &body) {
		return
	}
	set := types.CrewSet(c.Param("set"))
	h.editRelations(c, func(rel *aggregate.Relations) error { return rel.AddCrew(set, body.ID) })
}

func (h *Handler) RemoveCrew(c *gin.Context) {
	set := types.CrewSet(c.Param("set"))
	h.editRelations(c, func(rel *aggregate.Relations) error { return rel.RemoveCrew(set, c.Param("memberId")) })
}

func (h *Handler) ReplaceGenres(c *gin.Context) {
	var body idsBody
	if !bindBody(c, "replace_genres", &body) {
		return
	}
	h.editRelations(c, func(rel *aggregate.Relations) error { return rel.ReplaceGenres(body.IDs) })
}

func (h *Handler) AddGenre(c *gin.Context) {
	var body idBody
	if !bindBody(c, "add_genre", &body) {
		return
	}
	h.editRelations(c, func(rel *aggregate.Relations) error { return rel.AddGenre(body.ID) })
}

func (h *Handler) RemoveGenre(c *gin.Context) {
	h.editRelations(c, func(rel *aggregate.Relations) error { return rel.RemoveGenre(c.Param("memberId")) })
}

func (h *Handler) ReplaceCountries(c *gin.Context) {
	var body idsBody
	if !bindBody(c, "replace_countries", &body) {
		return
	}
	h.editRelations(c, func(rel *aggregate.Relations) error { return rel.ReplaceCountries(body.IDs) })
}

func (h *Handler) AddCountry(c *gin.Context) {
	var body idBody
	if !bindBody(c, "add_country", &body) {
		return
	}
	h.editRelations(c, func(rel *aggregate.Relations) error { return rel.AddCountry(body.ID) })
}

func (h *Handler) RemoveCountry(c *gin.Context) {
	h.editRelations(c, func(rel *aggregate.Relations) error { return rel.RemoveCountry(c.Param("memberId")) })
}

func (h *Handler) ReplaceAwards(c *gin.Context) {
	var body struct {
		Awards []aggregate.AwardInput `json:"awards"`
	}
	if !bindBody(c, "replace_awards", &body) {
		return
	}
	h.editRelations(c, func(rel *aggregate.Relations) error { return rel.ReplaceAwards(body.Awards) })
}

func (h *Handler) AddAward(c *gin.Context) {
	var body aggregate.AwardInput
	if !bindBody(c, "add_award", &body) {
		return
	}
	h.editRelations(c, func(rel *aggregate.Relations) error {
		_, err := rel.AddAward(body)
		return err
	})
}

func (h *Handler) RemoveAward(c *gin.Context) {
	h.editRelations(c, func(rel *aggregate.Relations) error { return rel.RemoveAward(c.Param("memberId")) })
}

func (h *Handler) ReplaceCast(c *gin.Context) {
	var body struct {
		RoleAssignments []aggregate.AssignmentInput `json:"role_assignments"`
	}
	if !bindBody(c, "replace_role_assignments", &body) {
		return
	}
	h.editRelations(c, func(rel *aggregate.Relations) error { return rel.ReplaceRoleAssignments(body.RoleAssignments) })
}

func (h *Handler) AddCast(c *gin.Context) {
	var body aggregate.AssignmentInput
	if !bindBody(c, "add_role_assignment", &body) {
		return
	}
	h.editRelations(c, func(rel *aggregate.Relations) error {
		_, err := rel.AddRoleAssignment(body)
		return err
	})
}

func (h *Handler) RemoveCast(c *gin.Context) {
	h.editRelations(c, func(rel *aggregate.Relations) error { return rel.RemoveRoleAssignment(c.Param("memberId")) })
}

// =============================================================================
// PERSONS BY ROLE
// =============================================================================

func (h *Handler) roleService(c *gin.Context) (types.PersonService, bool) {
	svc, err := h.Roles.Service(types.Role(c.Param("role")))
	if err != nil {
		api.RespondWithError(c, err)
		return nil, false
	}
	return svc, true
}

func (h *Handler) ListPersons(c *gin.Context) {
	svc, ok := h.roleService(c)
	if !ok {
		return
	}
	crit, err := bindCriteria(c)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	page, err := svc.List(c.Request.Context(), crit)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, page)
}

func (h *Handler) CountPersons(c *gin.Context) {
	svc, ok := h.roleService(c)
	if !ok {
		return
	}
	crit, err := bindCriteria(c)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	n, err := svc.Count(c.Request.Context(), crit)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"count": n})
}

func (h *Handler) SearchPersons(c *gin.Context) {
	svc, ok := h.roleService(c)
	if !ok {
		return
	}
	people, err := svc.FindByName(c.Request.Context(), c.Query("term"))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, people)
}

func (h *Handler) PersonsByIDs(c *gin.Context) {
	svc, ok := h.roleService(c)
	if !ok {
		return
	}
	people, err := svc.FindByIDs(c.Request.Context(), splitIDs(c.QueryArray("ids")))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, people)
}

func (h *Handler) PersonCredits(c *gin.Context) {
	svc, ok := h.roleService(c)
	if !ok {
		return
	}
	movies, err := svc.Credits(c.Request.Context(), c.Param("personId"))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, movies)
}

func (h *Handler) MoviePersons(c *gin.Context) {
	svc, ok := h.roleService(c)
	if !ok {
		return
	}
	crit, err := bindCriteria(c)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	page, err := svc.ListByMovie(c.Request.Context(), c.Param("id"), crit)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, page)
}

func (h *Handler) CountryPersons(c *gin.Context) {
	svc, ok := h.roleService(c)
	if !ok {
		return
	}
	crit, err := bindCriteria(c)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	page, err := svc.ListByCountry(c.Request.Context(), c.Param("id"), crit)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, page)
}

// =============================================================================
// SIMPLE ENTITIES
// =============================================================================

// entityRoutes serves list, count, search, get and create for one of the
// simple catalog entities.
type entityRoutes[T any] struct {
	svc    *service.CatalogService[T]
	create func(c *gin.Context, item *T) error
}

func (e entityRoutes[T]) list(c *gin.Context) {
	crit, err := bindCriteria(c)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	page, err := e.svc.List(c.Request.Context(), crit)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, page)
}

func (e entityRoutes[T]) count(c *gin.Context) {
	crit, err := bindCriteria(c)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	n, err := e.svc.Count(c.Request.Context(), crit)
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"count": n})
}

func (e entityRoutes[T]) search(c *gin.Context) {
	items, err := e.svc.FindByName(c.Request.Context(), c.Query("term"))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, items)
}

func (e entityRoutes[T]) get(c *gin.Context) {
	item, err := e.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.RespondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, item)
}

func (e entityRoutes[T]) post(c *gin.Context) {
	var item T
	if !bindBody(c, "create_"+string(e.svc.Entity()), &item) {
		return
	}
	create := e.create
	if create == nil {
		create = func(c *gin.Context, item *T) error { return e.svc.Create(c.Request.Context(), item) }
	}
	if err := create(c, &item); err != nil {
		api.RespondWithError(c, err)
		return
	}
	respond(c, http.StatusCreated, item)
}

func (e entityRoutes[T]) register(group *gin.RouterGroup) {
	group.GET("", e.list)
	group.GET("/count", e.count)
	group.GET("/search", e.search)
	group.GET("/:id", e.get)
	group.POST("", e.post)
}
