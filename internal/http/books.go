package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookpedia/internal/bookdetail"
	"github.com/mrlokans/bookpedia/internal/booklist"
	"github.com/mrlokans/bookpedia/internal/entities"
	"github.com/mrlokans/bookpedia/internal/result"
)

const defaultDetailTimeout = 25 * time.Second

// BookRepository defines the repository operations used by the book and
// favourites endpoints.
type BookRepository interface {
	GetDescription(ctx context.Context, id string) (result.Result[*string, result.DataError], error)
	ObserveFavorites(ctx context.Context) <-chan []entities.Book
	IsFavorite(ctx context.Context, id string) <-chan bool
	AddFavorite(ctx context.Context, book entities.Book) result.Empty[result.LocalError]
	RemoveFavorite(ctx context.Context, id string)
}

// DescriptionResponse is the body of GET /api/books/:id/description.
type DescriptionResponse struct {
	ID          string  `json:"id"`
	Description *string `json:"description"`
}

type BooksController struct {
	repo      BookRepository
	selection *bookdetail.Selection
	search    *booklist.Controller
	timeout   time.Duration
}

func NewBooksController(repo BookRepository, selection *bookdetail.Selection, search *booklist.Controller, timeout time.Duration) *BooksController {
	if timeout <= 0 {
		timeout = defaultDetailTimeout
	}
	return &BooksController{
		repo:      repo,
		selection: selection,
		search:    search,
		timeout:   timeout,
	}
}

// GetDescription returns the description of a work, local favourites first.
// GET /api/books/:id/description
func (bc *BooksController) GetDescription(c *gin.Context) {
	id, ok := parseWorkIDParam(c, "id")
	if !ok {
		return
	}

	res, err := bc.repo.GetDescription(c.Request.Context(), id)
	if err != nil {
		// Client went away.
		c.Status(499)
		return
	}

	res.OnSuccess(func(description *string) {
		c.JSON(http.StatusOK, DescriptionResponse{ID: id, Description: description})
	}).OnError(func(e result.DataError) {
		respondDataError(c, e)
	})
}

// GetDetail runs the detail view for one book and returns its settled state.
// GET /api/books/:id
func (bc *BooksController) GetDetail(c *gin.Context) {
	id, ok := parseWorkIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), bc.timeout)
	defer cancel()

	detail := bookdetail.NewController(bc.repo, id)
	defer detail.Close()

	book := bc.lookupBook(id)
	if book == nil {
		book = &entities.Book{ID: id, Authors: []string{}, Languages: []string{}}
	}
	detail.Dispatch(bookdetail.SelectedBookChanged{Book: *book})

	favourite, ok := <-bc.repo.IsFavorite(ctx, id)
	if !ok {
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: "timed out loading book"})
		return
	}

	for state := range detail.Observe(ctx) {
		if !state.IsLoading && state.IsFavorite == favourite {
			c.JSON(http.StatusOK, state)
			return
		}
	}
	c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: "timed out loading book"})
}

// lookupBook finds what is already known about a book: the current selection,
// then search results, then favourites.
func (bc *BooksController) lookupBook(id string) *entities.Book {
	if bc.selection != nil {
		if b := bc.selection.Current(); b != nil && b.ID == id {
			return b
		}
	}
	if bc.search == nil {
		return nil
	}
	state := bc.search.State()
	for _, list := range [][]entities.Book{state.SearchResults, state.FavoriteBooks} {
		for i := range list {
			if list[i].ID == id {
				b := list[i]
				return &b
			}
		}
	}
	return nil
}
