package metadata

import (
	"context"
	"errors"
	"testing"

	"github.com/mrlokans/bookpedia/internal/entities"
	"github.com/mrlokans/bookpedia/internal/result"
)

type mockWorkProvider struct {
	work  result.Result[Work, result.RemoteError]
	err   error
	calls int
}

func (m *mockWorkProvider) GetWork(ctx context.Context, workID string) (result.Result[Work, result.RemoteError], error) {
	m.calls++
	return m.work, m.err
}

type mockDescriptionStore struct {
	favs      map[string]*entities.FavoriteBook
	getError  error
	setError  error
	described map[string]string
}

func (m *mockDescriptionStore) Get(ctx context.Context, id string) (*entities.FavoriteBook, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	return m.favs[id], nil
}

func (m *mockDescriptionStore) SetDescription(ctx context.Context, id string, description string) error {
	if m.setError != nil {
		return m.setError
	}
	if m.described == nil {
		m.described = make(map[string]string)
	}
	m.described[id] = description
	return nil
}

func (m *mockDescriptionStore) ListMissingDescription(ctx context.Context) ([]entities.FavoriteBook, error) {
	var out []entities.FavoriteBook
	for _, f := range m.favs {
		if f.Description == nil {
			out = append(out, *f)
		}
	}
	return out, nil
}

func strPtr(s string) *string { return &s }

func TestBackfillDescription_StoresRemoteDescription(t *testing.T) {
	store := &mockDescriptionStore{favs: map[string]*entities.FavoriteBook{
		"OL1W": {ID: "OL1W", Title: "Dune"},
	}}
	provider := &mockWorkProvider{
		work: result.Success[Work, result.RemoteError](Work{Description: Description{Value: strPtr("Spice.")}}),
	}

	res, err := NewEnricher(provider, store).BackfillDescription(context.Background(), "OL1W")
	if err != nil {
		t.Fatalf("BackfillDescription failed: %v", err)
	}
	if !res.Updated {
		t.Errorf("expected description to be updated")
	}
	if store.described["OL1W"] != "Spice." {
		t.Errorf("expected stored description 'Spice.', got %q", store.described["OL1W"])
	}
}

func TestBackfillDescription_KeepsStoredDescription(t *testing.T) {
	store := &mockDescriptionStore{favs: map[string]*entities.FavoriteBook{
		"OL1W": {ID: "OL1W", Description: strPtr("local")},
	}}
	provider := &mockWorkProvider{}

	res, err := NewEnricher(provider, store).BackfillDescription(context.Background(), "OL1W")
	if err != nil {
		t.Fatalf("BackfillDescription failed: %v", err)
	}
	if res.Updated {
		t.Errorf("expected no update for stored description")
	}
	if provider.calls != 0 {
		t.Errorf("expected no remote call, got %d", provider.calls)
	}
}

func TestBackfillDescription_MissingFavourite(t *testing.T) {
	store := &mockDescriptionStore{favs: map[string]*entities.FavoriteBook{}}

	_, err := NewEnricher(&mockWorkProvider{}, store).BackfillDescription(context.Background(), "OL9W")
	if !errors.Is(err, ErrFavouriteMissing) {
		t.Errorf("expected ErrFavouriteMissing, got %v", err)
	}
}

func TestBackfillDescription_RemoteFailure(t *testing.T) {
	store := &mockDescriptionStore{favs: map[string]*entities.FavoriteBook{
		"OL1W": {ID: "OL1W"},
	}}
	provider := &mockWorkProvider{work: result.Failure[Work](result.ErrTooManyRequests)}

	_, err := NewEnricher(provider, store).BackfillDescription(context.Background(), "OL1W")
	if !errors.Is(err, result.ErrTooManyRequests) {
		t.Errorf("expected ErrTooManyRequests, got %v", err)
	}
	if len(store.described) != 0 {
		t.Errorf("expected nothing stored on failure")
	}
}

func TestBackfillDescription_NoRemoteDescription(t *testing.T) {
	store := &mockDescriptionStore{favs: map[string]*entities.FavoriteBook{
		"OL1W": {ID: "OL1W"},
	}}
	provider := &mockWorkProvider{work: result.Success[Work, result.RemoteError](Work{})}

	res, err := NewEnricher(provider, store).BackfillDescription(context.Background(), "OL1W")
	if err != nil {
		t.Fatalf("BackfillDescription failed: %v", err)
	}
	if res.Updated {
		t.Errorf("expected no update without a remote description")
	}
}

func TestPendingIDs(t *testing.T) {
	store := &mockDescriptionStore{favs: map[string]*entities.FavoriteBook{
		"OL1W": {ID: "OL1W"},
		"OL2W": {ID: "OL2W", Description: strPtr("done")},
	}}

	ids, err := NewEnricher(&mockWorkProvider{}, store).PendingIDs(context.Background())
	if err != nil {
		t.Fatalf("PendingIDs failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "OL1W" {
		t.Errorf("expected [OL1W], got %v", ids)
	}
}
