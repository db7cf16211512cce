package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookpedia/internal/covers"
	"github.com/mrlokans/bookpedia/internal/entities"
)

type CoversController struct {
	books *BooksController
	cache *covers.Cache
}

func NewCoversController(books *BooksController, cache *covers.Cache) *CoversController {
	return &CoversController{
		books: books,
		cache: cache,
	}
}

// GetCover serves the cover image of a book known to the application.
// GET /api/books/:id/cover
func (cc *CoversController) GetCover(c *gin.Context) {
	id, ok := parseWorkIDParam(c, "id")
	if !ok {
		return
	}

	book := cc.books.lookupBook(id)
	if book == nil {
		book = cc.favourite(c.Request.Context(), id)
	}
	if book == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "book not found"})
		return
	}

	if c.Query("refresh") == "true" {
		if err := cc.cache.InvalidateCover(id); err != nil {
			log.Printf("[COVERS] Failed to invalidate cover for %s: %v", id, err)
		}
	}

	path, err := cc.cache.GetCover(c.Request.Context(), id, book.ImageURL)
	if errors.Is(err, covers.ErrNoCover) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no cover available"})
		return
	}
	if err != nil {
		log.Printf("[COVERS] Failed to fetch cover for %s: %v", id, err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "failed to fetch cover"})
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.File(path)
}

func (cc *CoversController) favourite(ctx context.Context, id string) *entities.Book {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for _, b := range <-cc.books.repo.ObserveFavorites(ctx) {
		if b.ID == id {
			return &b
		}
	}
	return nil
}
