package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookpedia/internal/bookdetail"
	"github.com/mrlokans/bookpedia/internal/booklist"
	"github.com/mrlokans/bookpedia/internal/config"
	"github.com/mrlokans/bookpedia/internal/covers"
	"github.com/mrlokans/bookpedia/internal/entities"
	http_controllers "github.com/mrlokans/bookpedia/internal/http"
	"github.com/mrlokans/bookpedia/internal/metrics"
	"github.com/mrlokans/bookpedia/internal/scheduler"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) default sends syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Bookpedia v%s", version)

	if cfg.Metrics.Enabled {
		metrics.Register()
	}

	app, err := NewApp(cfg, AppOptions{Tasks: cfg.Tasks.Enabled})
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Close()

	// Start task workers in background
	var taskCtxCancel context.CancelFunc
	var backfillScheduler *scheduler.BackfillScheduler
	if app.Tasks != nil {
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go app.Tasks.Start(taskCtx)

		backfillScheduler = scheduler.NewBackfillScheduler(app.Tasks, cfg.Backfill.Schedule, cfg.Backfill.Enabled)
		if err := backfillScheduler.Start(taskCtx); err != nil {
			log.Printf("Failed to start backfill scheduler: %v", err)
		}
	}

	selection := bookdetail.NewSelection()
	searchOpts := []booklist.Option{
		booklist.WithDebounce(cfg.Search.Debounce),
		booklist.WithGracePeriod(cfg.Search.GracePeriod),
		booklist.WithInitialQuery(cfg.Search.InitialQuery),
		booklist.WithMinQueryLength(cfg.Search.MinQueryLength),
		booklist.WithNavigator(func(book entities.Book) { selection.Select(&book) }),
	}
	if cfg.Metrics.Enabled {
		searchOpts = append(searchOpts, booklist.WithMetrics())
	}
	search := booklist.NewController(app.Books, searchOpts...)

	var coverCache *covers.Cache
	if cfg.Covers.Enabled {
		coverCache, err = covers.NewCache(cfg.Covers.CacheDir, cfg.OpenLibrary.CoversBaseURL, app.HTTPClient, cfg.OpenLibrary.UserAgent)
		if err != nil {
			log.Printf("Cover cache disabled: %v", err)
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Database:          app.DB,
		Books:             app.Books,
		Search:            search,
		Selection:         selection,
		DetailTimeout:     cfg.OpenLibrary.RequestTimeout + 5*time.Second,
		Version:           version,
		Covers:            coverCache,
		TaskClient:        app.Tasks,
		BackfillScheduler: backfillScheduler,
		MetricsEnabled:    cfg.Metrics.Enabled,
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		search.Close()
		if backfillScheduler != nil {
			backfillScheduler.Stop()
		}
		if app.Tasks != nil && taskCtxCancel != nil {
			app.Tasks.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
