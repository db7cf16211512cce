package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookpedia/internal/entities"
	"github.com/mrlokans/bookpedia/internal/result"
)

type FavouritesController struct {
	repo BookRepository
}

func NewFavouritesController(repo BookRepository) *FavouritesController {
	return &FavouritesController{repo: repo}
}

// ListFavourites returns the current favourites, oldest first.
// GET /api/favourites
func (fc *FavouritesController) ListFavourites(c *gin.Context) {
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	favourites, ok := <-fc.repo.ObserveFavorites(ctx)
	if !ok {
		c.Status(499)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"favourites": favourites,
		"count":      len(favourites),
	})
}

// AddFavourite stores the posted book as a favourite.
// POST /api/favourites
func (fc *FavouritesController) AddFavourite(c *gin.Context) {
	var book entities.Book
	if err := c.ShouldBindJSON(&book); err != nil {
		respondBadRequest(c, "invalid book: "+err.Error())
		return
	}
	if !entities.IsWorkID(book.ID) {
		respondBadRequest(c, "book id must be a work key like OL45804W")
		return
	}

	fc.repo.AddFavorite(c.Request.Context(), book).
		OnSuccess(func(struct{}) {
			respondCreated(c, gin.H{"message": "favourite added", "book": book})
		}).
		OnError(func(e result.LocalError) {
			respondDataError(c, e)
		})
}

// RemoveFavourite removes a book from favourites. Unknown ids succeed too.
// DELETE /api/favourites/:id
func (fc *FavouritesController) RemoveFavourite(c *gin.Context) {
	id, ok := parseWorkIDParam(c, "id")
	if !ok {
		return
	}

	fc.repo.RemoveFavorite(c.Request.Context(), id)
	respondSuccess(c, "favourite removed")
}
