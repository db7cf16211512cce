package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
)

// Client runs description backfills in the background. Queued work lives in
// its own SQLite file so a long backfill never holds locks on favourites.
type Client struct {
	queue   *backlite.Client
	db      *sql.DB
	workers int

	mu      sync.RWMutex
	running bool
}

// QueueDBPath derives the queue database path from the favourites database,
// e.g. data/bookpedia.db -> data/bookpedia-tasks.db.
func QueueDBPath(favouritesDBPath string) string {
	ext := filepath.Ext(favouritesDBPath)
	return strings.TrimSuffix(favouritesDBPath, ext) + "-tasks" + ext
}

// NewClient opens (or creates) the queue database next to favouritesDBPath
// and installs the backlite schema.
func NewClient(favouritesDBPath string, cfg Config) (*Client, error) {
	dsn := QueueDBPath(favouritesDBPath) + "?_journal=WAL&_timeout=5000&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open task queue database: %w", err)
	}

	// Each worker holds a connection while a backfill runs.
	db.SetMaxOpenConns(cfg.Workers + 5)
	db.SetMaxIdleConns(cfg.Workers + 2)
	db.SetConnMaxLifetime(time.Hour)

	queue, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          queueLogger{},
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create task queue: %w", err)
	}
	if err := queue.Install(); err != nil {
		db.Close()
		return nil, fmt.Errorf("install task queue schema: %w", err)
	}

	return &Client{queue: queue, db: db, workers: cfg.Workers}, nil
}

// Register adds queues. Call it before Start; backlite ignores later queues.
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.queue.Register(q)
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.mu.Unlock()

	log.Printf("[TASK] Backfill workers started (%d)", c.workers)
	c.queue.Start(ctx)
}

// Stop waits for in-flight backfills until ctx is done. It reports whether
// every worker finished in time.
func (c *Client) Stop(ctx context.Context) bool {
	c.mu.RLock()
	running := c.running
	c.mu.RUnlock()
	if !running {
		return true
	}

	log.Println("[TASK] Stopping backfill workers...")
	drained := c.queue.Stop(ctx)
	if drained {
		log.Println("[TASK] Backfill workers stopped")
	} else {
		log.Println("[TASK] Backfill workers stopped before draining; unfinished backfills resume on next start")
	}
	return drained
}

// Close closes the queue database. Stop the workers first.
func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Add starts an operation to enqueue arbitrary tasks.
func (c *Client) Add(tasks ...backlite.Task) *backlite.TaskAddOp {
	return c.queue.Add(tasks...)
}

// Status looks up a queued or finished task.
func (c *Client) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return c.queue.Status(ctx, taskID)
}

// RunDescriptionBackfill queues a description lookup for one favourite and
// returns the task ID.
func (c *Client) RunDescriptionBackfill(ctx context.Context, id string) (string, error) {
	taskID, err := c.enqueue(ctx, BackfillDescriptionTask{ID: id})
	if err != nil {
		return "", fmt.Errorf("enqueue description backfill for %s: %w", id, err)
	}
	log.Printf("[TASK] Queued description backfill for %s (task %s)", id, taskID)
	return taskID, nil
}

// EnqueueDescriptionBackfill is RunDescriptionBackfill for callers that do not
// track the task.
func (c *Client) EnqueueDescriptionBackfill(ctx context.Context, id string) error {
	_, err := c.RunDescriptionBackfill(ctx, id)
	return err
}

// EnqueuePendingBackfill queues a sweep over every favourite still missing a
// description.
func (c *Client) EnqueuePendingBackfill(ctx context.Context) (string, error) {
	taskID, err := c.enqueue(ctx, BackfillPendingTask{})
	if err != nil {
		return "", fmt.Errorf("enqueue pending backfill: %w", err)
	}
	return taskID, nil
}

func (c *Client) enqueue(ctx context.Context, task backlite.Task) (string, error) {
	ids, err := c.queue.Add(task).Ctx(ctx).Save()
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("no task id returned")
	}
	return ids[0], nil
}

// queueLogger routes backlite's own messages into the [TASK] log stream.
type queueLogger struct{}

func (queueLogger) Info(message string, params ...any) {
	log.Printf("[TASK] "+message, params...)
}

func (queueLogger) Error(message string, params ...any) {
	log.Printf("[TASK ERROR] "+message, params...)
}
