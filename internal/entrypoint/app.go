package entrypoint

import (
	"fmt"
	"log"
	"net/http"

	"github.com/mrlokans/bookpedia/internal/books"
	"github.com/mrlokans/bookpedia/internal/config"
	"github.com/mrlokans/bookpedia/internal/database"
	"github.com/mrlokans/bookpedia/internal/database/favourites"
	"github.com/mrlokans/bookpedia/internal/fetch"
	"github.com/mrlokans/bookpedia/internal/metadata"
	"github.com/mrlokans/bookpedia/internal/tasks"
)

// AppOptions selects the optional parts of the application.
type AppOptions struct {
	// Tasks opens the backfill task queue. Without it favourites added without a
	// description keep none until the next run with tasks enabled.
	Tasks bool
	// QuietDatabase disables SQL warnings, for interactive CLI output.
	QuietDatabase bool
}

// App holds the wired data layer shared by the server and the CLI.
type App struct {
	DB         *database.Database
	HTTPClient *http.Client
	Favourites *favourites.Repository
	Catalog    *metadata.OpenLibraryClient
	Books      *books.Repository
	Enricher   *metadata.Enricher
	Tasks      *tasks.Client
}

// NewApp opens the database and builds the repository stack.
func NewApp(cfg *config.Config, opts AppOptions) (*App, error) {
	open := database.NewDatabase
	if opts.QuietDatabase {
		open = database.NewSilentDatabase
	}
	db, err := open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	favs, err := favourites.NewRepository(db.DB)
	if err != nil {
		db.Close()
		return nil, err
	}

	httpClient := fetch.NewHTTPClient(fetch.ClientOptions{
		RequestTimeout:    cfg.OpenLibrary.RequestTimeout,
		ConnectTimeout:    cfg.OpenLibrary.ConnectTimeout,
		RequestsPerSecond: cfg.OpenLibrary.RequestsPerSecond,
		Verbose:           cfg.OpenLibrary.LogRequests,
	})
	catalog := metadata.NewOpenLibraryClient(httpClient, cfg.OpenLibrary.BaseURL, cfg.OpenLibrary.UserAgent)
	enricher := metadata.NewEnricher(catalog, favs)

	app := &App{
		DB:         db,
		HTTPClient: httpClient,
		Favourites: favs,
		Catalog:    catalog,
		Enricher:   enricher,
	}

	repoOpts := []books.Option{
		books.WithCoversBaseURL(cfg.OpenLibrary.CoversBaseURL),
		books.WithSearchLimit(cfg.OpenLibrary.SearchLimit),
	}

	if opts.Tasks {
		taskClient, err := tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize task queue: %w", err)
		}
		taskClient.Register(
			tasks.NewBackfillDescriptionQueue(enricher),
			tasks.NewBackfillPendingQueue(enricher),
		)
		app.Tasks = taskClient
		repoOpts = append(repoOpts, books.WithBackfill(taskClient))
	}

	app.Books = books.NewRepository(catalog, favs, repoOpts...)
	return app, nil
}

// Close releases the task queue and database connections.
func (a *App) Close() {
	if a.Tasks != nil {
		if err := a.Tasks.Close(); err != nil {
			log.Printf("Error closing task client: %v", err)
		}
	}
	if err := a.DB.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}
