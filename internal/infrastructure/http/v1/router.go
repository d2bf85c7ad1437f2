// Package v1 wires the HTTP API.
package v1

import (
	"github.com/gin-gonic/gin"

	"dcolumn/internal/config"
	"dcolumn/internal/infrastructure/http/v1/handlers"
	"dcolumn/internal/infrastructure/http/v1/middleware"
	"dcolumn/pkg/logger"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Health      *handlers.HealthHandler
	Auth        *handlers.AuthHandler
	Columns     *handlers.DynamicColumnHandler
	Collections *handlers.CollectionHandler
	Books       *handlers.BooksHandler
	Validator   middleware.JWTValidator
}

// NewRouter builds the gin engine with the full middleware chain and all
// v1 routes.
func NewRouter(cfg *config.Config, log *logger.Logger, h Handlers) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(log))
	router.Use(middleware.ErrorHandler())

	health := router.Group("/health")
	{
		health.GET("/live", h.Health.Live)
		health.GET("/ready", h.Health.Ready)
	}

	api := router.Group("/api/v1")

	api.POST("/auth/login", h.Auth.Login)

	protected := api.Group("")
	if !cfg.InactivateAPIAuth {
		protected.Use(middleware.Auth(h.Validator))
	}
	{
		protected.GET("/auth/me", h.Auth.Me)

		// Display context endpoint polled by form front ends.
		protected.GET("/collections/context/:name", h.Collections.Context)
		protected.GET("/collections/choices/:name", h.Collections.Choices)

		collections := protected.Group("/collections")
		{
			collections.GET("", h.Collections.List)
			collections.POST("", h.Collections.Create)
			collections.GET("/:id", h.Collections.Get)
			collections.PUT("/:id", h.Collections.Update)
			collections.DELETE("/:id", h.Collections.Delete)
		}

		columns := protected.Group("/dynamic-columns")
		{
			columns.GET("", h.Columns.List)
			columns.POST("", h.Columns.Create)
			columns.GET("/meta/value-types", h.Columns.ValueTypes)
			columns.GET("/meta/relations", h.Columns.Relations)
			columns.GET("/:id", h.Columns.Get)
			columns.PUT("/:id", h.Columns.Update)
			columns.DELETE("/:id", h.Columns.Delete)
		}

		books := protected.Group("/books")
		{
			books.GET("", h.Books.List)
			books.POST("", h.Books.Create)
			books.GET("/:id", h.Books.Get)
			books.PUT("/:id", h.Books.Update)
			books.DELETE("/:id", h.Books.Delete)
		}

		protected.GET("/authors", h.Books.ListAuthors)
		protected.POST("/authors", h.Books.CreateAuthor)
		protected.GET("/publishers", h.Books.ListPublishers)
		protected.POST("/publishers", h.Books.CreatePublisher)
		protected.GET("/promotions", h.Books.ListPromotions)
		protected.POST("/promotions", h.Books.CreatePromotion)

		admin := protected.Group("")
		admin.Use(middleware.AdminOnly())
		{
			admin.POST("/auth/register", h.Auth.Register)
		}
	}

	return router
}
