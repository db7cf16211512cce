package http

import (
	"context"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookpedia/internal/entities"
	"github.com/mrlokans/bookpedia/internal/result"
	"github.com/mrlokans/bookpedia/internal/stream"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeBooks is an in-memory repository for handler tests.
type fakeBooks struct {
	mu           sync.Mutex
	descriptions map[string]result.Result[*string, result.DataError]
	addFailure   bool
	favs         *stream.Subject[[]entities.Book]
}

func newFakeBooks() *fakeBooks {
	return &fakeBooks{
		descriptions: map[string]result.Result[*string, result.DataError]{},
		favs:         stream.NewSubject([]entities.Book{}),
	}
}

func (f *fakeBooks) Search(_ context.Context, query string) (result.Result[[]entities.Book, result.RemoteError], error) {
	return result.Success[[]entities.Book, result.RemoteError]([]entities.Book{{ID: "OL-" + query, Title: query}}), nil
}

func (f *fakeBooks) GetDescription(_ context.Context, id string) (result.Result[*string, result.DataError], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.descriptions[id]; ok {
		return r, nil
	}
	return result.Success[*string, result.DataError](nil), nil
}

func (f *fakeBooks) ObserveFavorites(ctx context.Context) <-chan []entities.Book {
	return f.favs.Subscribe(ctx)
}

func (f *fakeBooks) IsFavorite(ctx context.Context, id string) <-chan bool {
	return stream.Distinct(ctx, stream.Map(ctx, f.ObserveFavorites(ctx), func(books []entities.Book) bool {
		for _, b := range books {
			if b.ID == id {
				return true
			}
		}
		return false
	}))
}

func (f *fakeBooks) AddFavorite(_ context.Context, book entities.Book) result.Empty[result.LocalError] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addFailure {
		return result.Failure[struct{}](result.ErrDiskFull)
	}
	f.favs.Update(func(books []entities.Book) []entities.Book {
		next := make([]entities.Book, 0, len(books)+1)
		for _, b := range books {
			if b.ID != book.ID {
				next = append(next, b)
			}
		}
		return append(next, book)
	})
	return result.Done[result.LocalError]()
}

func (f *fakeBooks) RemoveFavorite(_ context.Context, id string) {
	f.favs.Update(func(books []entities.Book) []entities.Book {
		next := make([]entities.Book, 0, len(books))
		for _, b := range books {
			if b.ID != id {
				next = append(next, b)
			}
		}
		return next
	})
}

func strPtr(s string) *string { return &s }
