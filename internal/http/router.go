package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	var search SearchActivity
	if cfg.Search != nil {
		search = cfg.Search
	}
	health := NewHealthController(cfg.Database, search, cfg.Version)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	if cfg.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// Search screen endpoints
	if cfg.Search != nil {
		searchController := NewSearchController(cfg.Search)
		router.POST("/api/search/actions", searchController.Dispatch)
		router.GET("/api/search/state", searchController.GetState)
		router.GET("/api/search/stream", searchController.Stream)
	}

	// Book detail and favourites endpoints
	if cfg.Books != nil {
		booksController := NewBooksController(cfg.Books, cfg.Selection, cfg.Search, cfg.DetailTimeout)
		router.GET("/api/books/:id", booksController.GetDetail)
		router.GET("/api/books/:id/description", booksController.GetDescription)

		if cfg.Covers != nil {
			coversController := NewCoversController(booksController, cfg.Covers)
			router.GET("/api/books/:id/cover", coversController.GetCover)
		}

		favouritesController := NewFavouritesController(cfg.Books)
		router.GET("/api/favourites", favouritesController.ListFavourites)
		router.POST("/api/favourites", favouritesController.AddFavourite)
		router.DELETE("/api/favourites/:id", favouritesController.RemoveFavourite)
	}

	// Task management endpoints
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient, cfg.BackfillScheduler)
		router.GET("/api/tasks/types", tasksController.ListTaskTypes)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
		router.POST("/api/tasks/:type/run", tasksController.RunTask)
	}

	return router
}
