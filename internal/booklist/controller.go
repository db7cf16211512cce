// Package booklist drives the search screen: a debounced, cancellable catalog
// search plus a live view of the favourites.
//
// The Controller owns a QueryState. Actions mutate it synchronously; searching
// and favourites observation run in background goroutines that only exist while
// someone observes the state. When the last observer leaves, the work keeps
// running for a grace period so a quick re-subscribe does not restart it.
//
// # Search rules
//
// After the query has been stable for the debounce window:
//
//	blank          -> results fall back to the last successful result set, error cleared
//	shorter than 2 -> nothing happens
//	otherwise      -> the in-flight search (if any) is cancelled and a new one starts
//
// Only the newest search may change the state. A cancelled or superseded search
// completes silently.
package booklist

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mrlokans/bookpedia/internal/entities"
	"github.com/mrlokans/bookpedia/internal/metrics"
	"github.com/mrlokans/bookpedia/internal/result"
	"github.com/mrlokans/bookpedia/internal/stream"
)

// Repository is the subset of the books repository the controller needs.
type Repository interface {
	Search(ctx context.Context, query string) (result.Result[[]entities.Book, result.RemoteError], error)
	ObserveFavorites(ctx context.Context) <-chan []entities.Book
}

type Controller struct {
	repo           Repository
	debounce       time.Duration
	grace          time.Duration
	initialQuery   string
	minQueryLength int
	navigate       Navigator
	recordMetrics  bool

	state *stream.Subject[QueryState]

	mu        sync.Mutex
	closed    bool
	observers int
	runCtx    context.Context
	runCancel context.CancelFunc
	teardown  *time.Timer
	// lifecycle invalidates pending teardown timers on every attach and detach.
	lifecycle uint64

	generation   uint64
	searchCancel context.CancelFunc
	// cached holds the results of the latest successful search.
	cached []entities.Book
	// settled is the last query whose evaluation finished without error. It seeds
	// duplicate suppression so re-activation does not repeat a finished search.
	settled    string
	hasSettled bool
}

func NewController(repo Repository, opts ...Option) *Controller {
	c := &Controller{
		repo:           repo,
		debounce:       DefaultDebounce,
		grace:          DefaultGracePeriod,
		initialQuery:   DefaultInitialQuery,
		minQueryLength: DefaultMinQueryLength,
		cached:         []entities.Book{},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.state = stream.NewSubject(QueryState{
		SearchQuery:   c.initialQuery,
		SearchResults: []entities.Book{},
		FavoriteBooks: []entities.Book{},
	})
	return c
}

// State returns the current state without subscribing.
func (c *Controller) State() QueryState {
	return c.state.Value()
}

// Observe streams the state, current value first, until ctx is done. The first
// observer activates the controller.
func (c *Controller) Observe(ctx context.Context) <-chan QueryState {
	ch := c.state.Subscribe(ctx)
	c.attach()
	go func() {
		<-ctx.Done()
		c.detach()
	}()
	return ch
}

// Active reports whether search and favourites observation are running.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runCancel != nil
}

// Dispatch applies an action. Query and tab changes are visible in State as soon
// as Dispatch returns.
func (c *Controller) Dispatch(action Action) {
	switch a := action.(type) {
	case QueryChanged:
		c.state.Update(func(s QueryState) QueryState {
			s.SearchQuery = a.Query
			return s
		})
	case TabSelected:
		c.state.Update(func(s QueryState) QueryState {
			s.SelectedTab = a.Index
			return s
		})
	case BookClicked:
		if c.navigate != nil {
			c.navigate(a.Book)
		}
	default:
		log.Printf("[SEARCH] Ignoring unknown action %T", action)
	}
}

// Close stops all background work immediately. Observers keep their channels
// until their own contexts end, but the state no longer changes on its own.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.teardown != nil {
		c.teardown.Stop()
		c.teardown = nil
	}
	c.deactivateLocked()
}

func (c *Controller) attach() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.observers++
	c.lifecycle++
	if c.teardown != nil {
		c.teardown.Stop()
		c.teardown = nil
	}
	if c.closed || c.runCancel != nil {
		return
	}

	c.runCtx, c.runCancel = context.WithCancel(context.Background())
	go c.watchQuery(c.runCtx)
	go c.watchFavorites(c.runCtx)
}

func (c *Controller) detach() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.observers--
	c.lifecycle++
	if c.observers > 0 || c.runCancel == nil {
		return
	}

	seq := c.lifecycle
	c.teardown = time.AfterFunc(c.grace, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if seq != c.lifecycle || c.observers > 0 {
			return
		}
		c.teardown = nil
		c.deactivateLocked()
	})
}

func (c *Controller) deactivateLocked() {
	if c.runCancel == nil {
		return
	}
	c.runCancel()
	c.runCancel = nil
	c.runCtx = nil

	if c.searchCancel != nil {
		c.cancelSearchLocked()
		c.state.Update(func(s QueryState) QueryState {
			s.IsLoading = false
			return s
		})
	}
}

func (c *Controller) cancelSearchLocked() {
	c.searchCancel()
	c.searchCancel = nil
	c.generation++
	if c.recordMetrics {
		metrics.IncSearchCanceled()
	}
}

// watchQuery suppresses repeated queries and debounces the rest.
func (c *Controller) watchQuery(ctx context.Context) {
	queries := stream.Map(ctx, c.state.Subscribe(ctx), func(s QueryState) string {
		return s.SearchQuery
	})

	c.mu.Lock()
	last, seen := c.settled, c.hasSettled
	c.mu.Unlock()

	timer := time.NewTimer(c.debounce)
	timer.Stop()
	defer timer.Stop()

	var pending string
	for {
		select {
		case <-ctx.Done():
			return
		case q, ok := <-queries:
			if !ok {
				return
			}
			if seen && q == last {
				continue
			}
			last, seen = q, true
			pending = q
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(c.debounce)
		case <-timer.C:
			c.evaluate(ctx, pending)
		}
	}
}

func (c *Controller) evaluate(ctx context.Context, query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctx.Err() != nil {
		return
	}

	switch {
	case strings.TrimSpace(query) == "":
		cached := c.cached
		c.state.Update(func(s QueryState) QueryState {
			s.SearchResults = cached
			s.ErrorMessage = nil
			return s
		})
		c.settleLocked(query)
	case utf8.RuneCountInString(query) < c.minQueryLength:
		c.settleLocked(query)
	default:
		c.startSearchLocked(ctx, query)
	}
}

func (c *Controller) settleLocked(query string) {
	c.settled, c.hasSettled = query, true
}

func (c *Controller) startSearchLocked(ctx context.Context, query string) {
	if c.searchCancel != nil {
		c.cancelSearchLocked()
	}
	c.generation++
	gen := c.generation

	searchCtx, cancel := context.WithCancel(ctx)
	c.searchCancel = cancel
	c.state.Update(func(s QueryState) QueryState {
		s.IsLoading = true
		return s
	})
	if c.recordMetrics {
		metrics.IncSearchStarted()
	}

	go c.search(searchCtx, gen, query)
}

func (c *Controller) search(ctx context.Context, gen uint64, query string) {
	res, err := c.repo.Search(ctx, query)

	c.mu.Lock()
	defer c.mu.Unlock()

	// Superseded, torn down, or cancelled: leave the state alone.
	if err != nil || ctx.Err() != nil || gen != c.generation {
		return
	}
	c.searchCancel()
	c.searchCancel = nil

	res.OnSuccess(func(books []entities.Book) {
		c.cached = books
		c.settleLocked(query)
		c.state.Update(func(s QueryState) QueryState {
			s.SearchResults = books
			s.ErrorMessage = nil
			s.IsLoading = false
			return s
		})
		if c.recordMetrics {
			metrics.IncSearchSucceeded()
		}
	}).OnError(func(e result.RemoteError) {
		log.Printf("[SEARCH] Search for %q failed: %v", query, e)
		msg := result.ToUIText(e)
		c.hasSettled = false
		c.state.Update(func(s QueryState) QueryState {
			s.SearchResults = []entities.Book{}
			s.ErrorMessage = &msg
			s.IsLoading = false
			return s
		})
		if c.recordMetrics {
			metrics.IncSearchFailed()
		}
	})
}

// watchFavorites mirrors the favourites into the state. It is independent of
// search activity.
func (c *Controller) watchFavorites(ctx context.Context) {
	for favs := range c.repo.ObserveFavorites(ctx) {
		c.state.Update(func(s QueryState) QueryState {
			s.FavoriteBooks = favs
			return s
		})
	}
}
