package http

import (
	"time"

	"github.com/mrlokans/bookpedia/internal/bookdetail"
	"github.com/mrlokans/bookpedia/internal/booklist"
	"github.com/mrlokans/bookpedia/internal/covers"
	"github.com/mrlokans/bookpedia/internal/database"
	"github.com/mrlokans/bookpedia/internal/scheduler"
	"github.com/mrlokans/bookpedia/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Books    BookRepository

	// Screen controllers
	Search    *booklist.Controller
	Selection *bookdetail.Selection

	// DetailTimeout bounds how long GET /api/books/:id waits for the description.
	DetailTimeout time.Duration

	// Application info
	Version string

	// Cover image cache (optional)
	Covers *covers.Cache

	// Task queue client and backfill scheduler (optional)
	TaskClient        *tasks.Client
	BackfillScheduler *scheduler.BackfillScheduler

	// Expose Prometheus metrics on /metrics
	MetricsEnabled bool
}
