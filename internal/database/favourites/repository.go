// Package favourites is the local favourite books store.
//
// It is the only source of truth for "is favourite" and for descriptions of
// favourited books. Besides point reads and writes it publishes a snapshot of all
// favourites after every committed change.
//
// # Usage
//
//	repo, err := favourites.NewRepository(db)
//	updates := repo.ObserveAll(ctx) // current snapshot first
//	err = repo.Upsert(ctx, entities.NewFavoriteBook(book))
package favourites

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookpedia/internal/entities"
	"github.com/mrlokans/bookpedia/internal/metrics"
	"github.com/mrlokans/bookpedia/internal/stream"
)

// ErrStorageFull is returned when SQLite reports that the disk or database is full.
var ErrStorageFull = errors.New("favourites storage is full")

// Columns replaced on upsert. created_at is kept so ordering survives re-saves.
var upsertColumns = []string{
	"title", "image_url", "authors", "description", "languages", "first_publish_year",
	"ratings_average", "ratings_count", "num_pages_median", "num_editions", "updated_at",
}

// Repository handles all favourites database operations.
type Repository struct {
	db *gorm.DB

	// writeMu serializes mutations with their snapshot reload so published
	// snapshots follow commit order.
	writeMu  sync.Mutex
	snapshot *stream.Subject[[]entities.FavoriteBook]
}

// NewRepository creates a favourites repository and loads the initial snapshot.
func NewRepository(db *gorm.DB) (*Repository, error) {
	r := &Repository{db: db}

	favs, err := r.GetAll(context.Background())
	if err != nil {
		return nil, fmt.Errorf("load favourites: %w", err)
	}
	r.snapshot = stream.NewSubject(favs)
	metrics.SetFavourites(len(favs))

	return r, nil
}

// Get returns the favourite with the given id, or nil when it is not stored.
func (r *Repository) Get(ctx context.Context, id string) (*entities.FavoriteBook, error) {
	var fav entities.FavoriteBook
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&fav).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fav, nil
}

// GetAll returns every favourite in the order they were first saved.
func (r *Repository) GetAll(ctx context.Context) ([]entities.FavoriteBook, error) {
	return loadAll(r.db.WithContext(ctx))
}

// ObserveAll emits the current snapshot immediately and a fresh one after every
// change. The channel is closed when ctx is done.
func (r *Repository) ObserveAll(ctx context.Context) <-chan []entities.FavoriteBook {
	return r.snapshot.Subscribe(ctx)
}

// Upsert inserts the favourite or replaces the stored one with the same id.
func (r *Repository) Upsert(ctx context.Context, fav entities.FavoriteBook) error {
	return r.write(ctx, func(tx *gorm.DB) (bool, error) {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).Create(&fav).Error
		return err == nil, err
	})
}

// Delete removes the favourite. Deleting an id that is not stored is a no-op.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.write(ctx, func(tx *gorm.DB) (bool, error) {
		res := tx.Where("id = ?", id).Delete(&entities.FavoriteBook{})
		return res.RowsAffected > 0, res.Error
	})
}

// SetDescription stores a description for a favourite that has none yet.
func (r *Repository) SetDescription(ctx context.Context, id string, description string) error {
	return r.write(ctx, func(tx *gorm.DB) (bool, error) {
		res := tx.Model(&entities.FavoriteBook{}).
			Where("id = ? AND description IS NULL", id).
			Update("description", description)
		return res.RowsAffected > 0, res.Error
	})
}

// ListMissingDescription returns favourites saved without a description.
func (r *Repository) ListMissingDescription(ctx context.Context) ([]entities.FavoriteBook, error) {
	var favs []entities.FavoriteBook
	err := r.db.WithContext(ctx).
		Where("description IS NULL").
		Order("created_at ASC, id ASC").
		Find(&favs).Error
	return favs, err
}

// Count returns the number of favourites.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.FavoriteBook{}).Count(&count).Error
	return count, err
}

// write runs apply and, when it changed anything, reloads the snapshot in the
// same transaction. Either both commit or neither does; the snapshot is only
// published after commit.
func (r *Repository) write(ctx context.Context, apply func(tx *gorm.DB) (bool, error)) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	var favs []entities.FavoriteBook
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		changed, err = apply(tx)
		if err != nil || !changed {
			return err
		}
		favs, err = loadAll(tx)
		if err != nil {
			return fmt.Errorf("reload favourites: %w", err)
		}
		return nil
	})
	if err != nil {
		return classify(err)
	}
	if !changed {
		return nil
	}

	r.snapshot.Publish(favs)
	metrics.SetFavourites(len(favs))
	return nil
}

func loadAll(db *gorm.DB) ([]entities.FavoriteBook, error) {
	favs := []entities.FavoriteBook{}
	err := db.Order("created_at ASC, id ASC").Find(&favs).Error
	return favs, err
}

func classify(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrFull {
		return fmt.Errorf("%w: %v", ErrStorageFull, err)
	}
	return err
}
