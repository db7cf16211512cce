package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookpedia/internal/metadata"
)

// BackfillDescriptionTask fetches the description of one favourite saved without one.
type BackfillDescriptionTask struct {
	ID string `json:"id"`
}

// Config returns the queue configuration for description backfill tasks.
func (t BackfillDescriptionTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "backfill_description",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// BackfillDescriptionProcessor creates a processor function for BackfillDescriptionTask.
func BackfillDescriptionProcessor(enricher *metadata.Enricher) backlite.QueueProcessor[BackfillDescriptionTask] {
	return func(ctx context.Context, task BackfillDescriptionTask) error {
		if enricher == nil {
			return fmt.Errorf("enricher not configured")
		}

		result, err := enricher.BackfillDescription(ctx, task.ID)
		if errors.Is(err, metadata.ErrFavouriteMissing) {
			log.Printf("[TASK] Favourite %s was removed before backfill, skipping", task.ID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("backfill description %s: %w", task.ID, err)
		}

		if result.Updated {
			log.Printf("[TASK] Stored description for %s", task.ID)
		} else {
			log.Printf("[TASK] No description stored for %s: %s", task.ID, result.Reason)
		}
		return nil
	}
}

// NewBackfillDescriptionQueue creates a backlite queue for description backfill tasks.
func NewBackfillDescriptionQueue(enricher *metadata.Enricher) backlite.Queue {
	return backlite.NewQueue(BackfillDescriptionProcessor(enricher))
}

// BackfillPendingTask backfills every favourite still missing a description.
type BackfillPendingTask struct{}

// Config returns the queue configuration for the pending sweep.
func (t BackfillPendingTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "backfill_pending",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     30 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// BackfillPendingProcessor walks the pending favourites sequentially. One
// failure does not stop the sweep.
func BackfillPendingProcessor(enricher *metadata.Enricher) backlite.QueueProcessor[BackfillPendingTask] {
	return func(ctx context.Context, _ BackfillPendingTask) error {
		if enricher == nil {
			return fmt.Errorf("enricher not configured")
		}

		ids, err := enricher.PendingIDs(ctx)
		if err != nil {
			return err
		}

		var updated, skipped, failed int
		for _, id := range ids {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			result, err := enricher.BackfillDescription(ctx, id)
			switch {
			case err != nil:
				failed++
				log.Printf("[TASK] Backfill of %s failed: %v", id, err)
			case result.Updated:
				updated++
			default:
				skipped++
			}
		}

		log.Printf("[TASK] Backfill complete: %d pending, %d updated, %d skipped, %d failed",
			len(ids), updated, skipped, failed)
		return nil
	}
}

// NewBackfillPendingQueue creates a backlite queue for the pending sweep.
func NewBackfillPendingQueue(enricher *metadata.Enricher) backlite.Queue {
	return backlite.NewQueue(BackfillPendingProcessor(enricher))
}
