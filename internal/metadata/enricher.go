package metadata

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrlokans/bookpedia/internal/entities"
	"github.com/mrlokans/bookpedia/internal/result"
)

// ErrFavouriteMissing is returned when the favourite was removed before backfill ran.
var ErrFavouriteMissing = errors.New("favourite no longer stored")

// WorkProvider defines the remote lookup used for enrichment.
type WorkProvider interface {
	GetWork(ctx context.Context, workID string) (result.Result[Work, result.RemoteError], error)
}

// DescriptionStore defines the favourites operations used for enrichment.
type DescriptionStore interface {
	Get(ctx context.Context, id string) (*entities.FavoriteBook, error)
	SetDescription(ctx context.Context, id string, description string) error
	ListMissingDescription(ctx context.Context) ([]entities.FavoriteBook, error)
}

// BackfillResult describes the outcome of one backfill.
type BackfillResult struct {
	ID      string `json:"id"`
	Updated bool   `json:"updated"`
	Reason  string `json:"reason,omitempty"`
}

// Enricher fills in descriptions for favourites that were saved without one.
// A stored description is never replaced: local data stays authoritative.
type Enricher struct {
	provider WorkProvider
	store    DescriptionStore
}

// NewEnricher creates a new Enricher.
func NewEnricher(provider WorkProvider, store DescriptionStore) *Enricher {
	return &Enricher{
		provider: provider,
		store:    store,
	}
}

// BackfillDescription fetches the work description for a favourite that has none.
func (e *Enricher) BackfillDescription(ctx context.Context, id string) (*BackfillResult, error) {
	fav, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get favourite: %w", err)
	}
	if fav == nil {
		return nil, fmt.Errorf("%w: %s", ErrFavouriteMissing, id)
	}
	if fav.Description != nil {
		return &BackfillResult{ID: id, Reason: "already has description"}, nil
	}

	res, err := e.provider.GetWork(ctx, id)
	if err != nil {
		return nil, err
	}
	work, err := res.Unwrap()
	if err != nil {
		return nil, fmt.Errorf("fetch work %s: %w", id, err)
	}
	if work.Description.Value == nil {
		return &BackfillResult{ID: id, Reason: "work has no description"}, nil
	}

	if err := e.store.SetDescription(ctx, id, *work.Description.Value); err != nil {
		return nil, fmt.Errorf("store description: %w", err)
	}
	return &BackfillResult{ID: id, Updated: true}, nil
}

// PendingIDs returns the favourites still missing a description.
func (e *Enricher) PendingIDs(ctx context.Context) ([]string, error) {
	favs, err := e.store.ListMissingDescription(ctx)
	if err != nil {
		return nil, fmt.Errorf("list favourites: %w", err)
	}
	ids := make([]string, 0, len(favs))
	for _, f := range favs {
		ids = append(ids, f.ID)
	}
	return ids, nil
}
