// Package books combines the OpenLibrary source and the local favourites store
// into the single repository the controllers talk to.
//
// Remote failures come back as result.RemoteError values. Cancellation of the
// caller's context is returned separately as a plain error so callers can tell
// "superseded" apart from "failed".
package books

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/mrlokans/bookpedia/internal/entities"
	"github.com/mrlokans/bookpedia/internal/metadata"
	"github.com/mrlokans/bookpedia/internal/result"
	"github.com/mrlokans/bookpedia/internal/stream"
)

const DefaultCoversBaseURL = "https://covers.openlibrary.org"

// RemoteSource is the remote catalog.
type RemoteSource interface {
	Search(ctx context.Context, query string, limit *int) (result.Result[metadata.SearchResponse, result.RemoteError], error)
	GetWork(ctx context.Context, workID string) (result.Result[metadata.Work, result.RemoteError], error)
}

// FavoritesStore is the local favourites persistence.
type FavoritesStore interface {
	Get(ctx context.Context, id string) (*entities.FavoriteBook, error)
	ObserveAll(ctx context.Context) <-chan []entities.FavoriteBook
	Upsert(ctx context.Context, fav entities.FavoriteBook) error
	Delete(ctx context.Context, id string) error
}

// DescriptionBackfiller schedules fetching a description for a favourite saved
// without one.
type DescriptionBackfiller interface {
	EnqueueDescriptionBackfill(ctx context.Context, id string) error
}

type Repository struct {
	remote        RemoteSource
	store         FavoritesStore
	coversBaseURL string
	searchLimit   *int
	backfill      DescriptionBackfiller
}

type Option func(*Repository)

// WithCoversBaseURL overrides the cover image host.
func WithCoversBaseURL(baseURL string) Option {
	return func(r *Repository) {
		if baseURL != "" {
			r.coversBaseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithSearchLimit caps the number of search results. Zero or less leaves the
// limit to the server.
func WithSearchLimit(limit int) Option {
	return func(r *Repository) {
		if limit > 0 {
			r.searchLimit = &limit
		} else {
			r.searchLimit = nil
		}
	}
}

// WithBackfill enables description backfill for favourites added without one.
func WithBackfill(b DescriptionBackfiller) Option {
	return func(r *Repository) {
		r.backfill = b
	}
}

func NewRepository(remote RemoteSource, store FavoritesStore, opts ...Option) *Repository {
	r := &Repository{
		remote:        remote,
		store:         store,
		coversBaseURL: DefaultCoversBaseURL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Search runs a catalog search and maps every document to a Book, keeping the
// server order.
func (r *Repository) Search(ctx context.Context, query string) (result.Result[[]entities.Book, result.RemoteError], error) {
	res, err := r.remote.Search(ctx, query, r.searchLimit)
	if err != nil {
		return result.Result[[]entities.Book, result.RemoteError]{}, err
	}

	return result.Map(res, func(resp metadata.SearchResponse) []entities.Book {
		out := make([]entities.Book, 0, len(resp.Docs))
		for _, doc := range resp.Docs {
			out = append(out, r.toBook(doc))
		}
		return out
	}), nil
}

// GetDescription returns the description of a work. A favourite's stored
// description wins, even when it is nil: the network is only used for books
// that are not favourites.
func (r *Repository) GetDescription(ctx context.Context, id string) (result.Result[*string, result.DataError], error) {
	fav, err := r.store.Get(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return result.Result[*string, result.DataError]{}, ctx.Err()
		}
		log.Printf("[FAVOURITES] Failed to read favourite %s: %v", id, err)
		return result.Failure[*string, result.DataError](result.ErrLocalUnknown), nil
	}
	if fav != nil {
		return result.Success[*string, result.DataError](fav.Description), nil
	}

	res, err := r.remote.GetWork(ctx, id)
	if err != nil {
		return result.Result[*string, result.DataError]{}, err
	}
	described := result.Map(res, func(w metadata.Work) *string {
		return w.Description.Value
	})
	return result.Widen(described), nil
}

// ObserveFavorites streams the favourites as Books, current snapshot first.
func (r *Repository) ObserveFavorites(ctx context.Context) <-chan []entities.Book {
	return stream.Map(ctx, r.store.ObserveAll(ctx), func(favs []entities.FavoriteBook) []entities.Book {
		out := make([]entities.Book, len(favs))
		for i, f := range favs {
			out[i] = f.Book()
		}
		return out
	})
}

// IsFavorite streams whether id is among the favourites. Only changes are
// emitted after the first value.
func (r *Repository) IsFavorite(ctx context.Context, id string) <-chan bool {
	contains := stream.Map(ctx, r.ObserveFavorites(ctx), func(books []entities.Book) bool {
		for _, b := range books {
			if b.ID == id {
				return true
			}
		}
		return false
	})
	return stream.Distinct(ctx, contains)
}

// AddFavorite saves the book as a favourite, replacing any stored copy.
func (r *Repository) AddFavorite(ctx context.Context, book entities.Book) result.Empty[result.LocalError] {
	if err := r.store.Upsert(ctx, entities.NewFavoriteBook(book)); err != nil {
		log.Printf("[FAVOURITES] Failed to save favourite %s: %v", book.ID, err)
		return result.Failure[struct{}](result.ErrDiskFull)
	}

	if book.Description == nil && r.backfill != nil {
		if err := r.backfill.EnqueueDescriptionBackfill(ctx, book.ID); err != nil {
			log.Printf("[FAVOURITES] Failed to schedule description backfill for %s: %v", book.ID, err)
		}
	}

	return result.Done[result.LocalError]()
}

// RemoveFavorite deletes the favourite. Failures are only logged.
func (r *Repository) RemoveFavorite(ctx context.Context, id string) {
	if err := r.store.Delete(ctx, id); err != nil {
		log.Printf("[FAVOURITES] Failed to remove favourite %s: %v", id, err)
	}
}

func (r *Repository) toBook(doc metadata.SearchedBook) entities.Book {
	book := entities.Book{
		ID:            workID(doc.Key),
		Title:         doc.Title,
		ImageURL:      r.coverURL(doc),
		Authors:       nonNil(doc.AuthorNames),
		Languages:     nonNil(doc.Languages),
		AverageRating: doc.RatingsAverage,
		RatingCount:   doc.RatingsCount,
		NumPages:      doc.NumPagesMedian,
	}
	if doc.FirstPublishYear != nil {
		year := strconv.Itoa(*doc.FirstPublishYear)
		book.FirstPublishYear = &year
	}
	if doc.EditionCount != nil {
		book.NumEditions = *doc.EditionCount
	}
	return book
}

// coverURL prefers the edition cover. Without either key the id segment is
// rendered as "null", which the covers host answers with its placeholder.
func (r *Repository) coverURL(doc metadata.SearchedBook) string {
	if doc.CoverEditionKey != nil {
		return fmt.Sprintf("%s/b/olid/%s-L.jpg", r.coversBaseURL, *doc.CoverEditionKey)
	}
	coverID := "null"
	if doc.CoverID != nil {
		coverID = strconv.Itoa(*doc.CoverID)
	}
	return fmt.Sprintf("%s/b/id/%s-L.jpg", r.coversBaseURL, coverID)
}

// workID strips the path from a work key: "/works/OL123W" becomes "OL123W".
func workID(key string) string {
	return key[strings.LastIndex(key, "/")+1:]
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
