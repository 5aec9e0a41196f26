package api

import (
	"github.com/gin-gonic/gin"

	"github.com/mantonx/reelbase/internal/database"
)

// RegisterRoutes registers all catalog routes
func RegisterRoutes(router *gin.Engine, h *Handler) {
	// Movie endpoints
	movies := router.Group("/api/movies")
	{
		movies.GET("", h.ListMovies)
		movies.GET("/count", h.CountMovies)
		movies.GET("/search", h.SearchMovies)
		movies.GET("/:id", h.GetMovie)
		movies.POST("", h.CreateMovie)
		movies.PUT("/:id", h.UpdateMovie)
		movies.DELETE("/:id", h.DeleteMovie)

		movies.GET("/:id/relations", h.GetRelations)

		movies.PUT("/:id/crew/:set", h.ReplaceCrew)
		movies.POST("/:id/crew/:set", h.AddCrew)
		movies.DELETE("/:id/crew/:set/:memberId", h.RemoveCrew)

		movies.PUT("/:id/genres", h.ReplaceGenres)
		movies.POST("/:id/genres", h.AddGenre)
		movies.DELETE("/:id/genres/:memberId", h.RemoveGenre)

		movies.PUT("/:id/countries", h.ReplaceCountries)
		movies.POST("/:id/countries", h.AddCountry)
		movies.DELETE("/:id/countries/:memberId", h.RemoveCountry)

		movies.PUT("/:id/awards", h.ReplaceAwards)
		movies.POST("/:id/awards", h.AddAward)
		movies.DELETE("/:id/awards/:memberId", h.RemoveAward)

		movies.PUT("/:id/cast", h.ReplaceCast)
		movies.POST("/:id/cast", h.AddCast)
		movies.DELETE("/:id/cast/:memberId", h.RemoveCast)

		movies.GET("/:id/persons/:role", h.MoviePersons)
	}

	// Role-scoped person endpoints
	persons := router.Group("/api/persons/:role")
	{
		persons.GET("", h.ListPersons)
		persons.GET("/count", h.CountPersons)
		persons.GET("/search", h.SearchPersons)
		persons.GET("/by-ids", h.PersonsByIDs)
		persons.GET("/:personId/credits", h.PersonCredits)
	}

	// Unscoped catalog entities
	entityRoutes[database.Person]{svc: h.People}.register(router.Group("/api/people"))
	entityRoutes[database.Genre]{svc: h.Genres}.register(router.Group("/api/genres"))
	entityRoutes[database.Ceremony]{svc: h.Ceremonies}.register(router.Group("/api/ceremonies"))
	entityRoutes[database.User]{svc: h.Users}.register(router.Group("/api/users"))

	countries := router.Group("/api/countries")
	entityRoutes[database.Country]{svc: h.Countries}.register(countries)
	countries.GET("/:id/persons/:role", h.CountryPersons)

	awards := router.Group("/api/awards")
	entityRoutes[database.Award]{
		svc: h.Awards.CatalogService,
		create: func(c *gin.Context, award *database.Award) error {
			return h.Awards.Create(c.Request.Context(), award)
		},
	}.register(awards)
}
