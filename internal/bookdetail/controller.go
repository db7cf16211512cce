// Package bookdetail drives the detail view of a single book: its description
// and whether it is a favourite.
//
// Like the search controller, work starts when the first observer arrives and
// stops a grace period after the last one leaves.
package bookdetail

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/mrlokans/bookpedia/internal/entities"
	"github.com/mrlokans/bookpedia/internal/result"
	"github.com/mrlokans/bookpedia/internal/stream"
)

const DefaultGracePeriod = 5 * time.Second

// State is what the detail view renders.
type State struct {
	Book       *entities.Book `json:"book"`
	IsLoading  bool           `json:"is_loading"`
	IsFavorite bool           `json:"is_favorite"`
}

type Action interface {
	isAction()
}

// SelectedBookChanged sets the book shown.
type SelectedBookChanged struct {
	Book entities.Book `json:"book"`
}

// FavoriteClicked toggles the favourite flag of the shown book.
type FavoriteClicked struct{}

// BackClicked leaves the detail view.
type BackClicked struct{}

func (SelectedBookChanged) isAction() {}
func (FavoriteClicked) isAction()     {}
func (BackClicked) isAction()         {}

type Repository interface {
	GetDescription(ctx context.Context, id string) (result.Result[*string, result.DataError], error)
	IsFavorite(ctx context.Context, id string) <-chan bool
	AddFavorite(ctx context.Context, book entities.Book) result.Empty[result.LocalError]
	RemoveFavorite(ctx context.Context, id string)
}

type Option func(*Controller)

func WithGracePeriod(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.grace = d
		}
	}
}

// WithBack sets the callback for BackClicked.
func WithBack(back func()) Option {
	return func(c *Controller) {
		c.back = back
	}
}

type Controller struct {
	repo   Repository
	bookID string
	grace  time.Duration
	back   func()

	state *stream.Subject[State]

	mu        sync.Mutex
	observers int
	runCancel context.CancelFunc
	teardown  *time.Timer
	lifecycle uint64
	// fetched keeps a description that arrived before any book was selected.
	fetched    *string
	hasFetched bool
}

// NewController creates the controller for the work bookID.
func NewController(repo Repository, bookID string, opts ...Option) *Controller {
	c := &Controller{
		repo:   repo,
		bookID: bookID,
		grace:  DefaultGracePeriod,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state = stream.NewSubject(State{IsLoading: true})
	return c
}

func (c *Controller) State() State {
	return c.state.Value()
}

// Observe streams the state until ctx is done, activating the controller on the
// first observer.
func (c *Controller) Observe(ctx context.Context) <-chan State {
	ch := c.state.Subscribe(ctx)
	c.attach()
	go func() {
		<-ctx.Done()
		c.detach()
	}()
	return ch
}

// Dispatch applies an action. FavoriteClicked has reached the store when
// Dispatch returns.
func (c *Controller) Dispatch(action Action) {
	switch a := action.(type) {
	case SelectedBookChanged:
		c.mu.Lock()
		book := a.Book
		if book.Description == nil && c.hasFetched {
			book.Description = c.fetched
		}
		c.state.Update(func(s State) State {
			s.Book = &book
			return s
		})
		c.mu.Unlock()
	case FavoriteClicked:
		c.toggleFavorite()
	case BackClicked:
		if c.back != nil {
			c.back()
		}
	default:
		log.Printf("[DETAIL] Ignoring unknown action %T", action)
	}
}

// Close stops background work immediately.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.teardown != nil {
		c.teardown.Stop()
		c.teardown = nil
	}
	if c.runCancel != nil {
		c.runCancel()
		c.runCancel = nil
	}
}

func (c *Controller) toggleFavorite() {
	ctx := context.Background()
	s := c.state.Value()

	if s.IsFavorite {
		c.repo.RemoveFavorite(ctx, c.bookID)
		return
	}
	if s.Book == nil {
		return
	}
	c.repo.AddFavorite(ctx, *s.Book).OnError(func(e result.LocalError) {
		log.Printf("[DETAIL] Failed to add %s to favourites: %v", c.bookID, e)
	})
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
	if c.runCancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.runCancel = cancel
	go c.fetchDescription(ctx)
	go c.watchFavorite(ctx)
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
		if seq != c.lifecycle || c.observers > 0 || c.runCancel == nil {
			return
		}
		c.teardown = nil
		c.runCancel()
		c.runCancel = nil
	})
}

// Active reports whether background work is running.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runCancel != nil
}

func (c *Controller) fetchDescription(ctx context.Context) {
	res, err := c.repo.GetDescription(ctx, c.bookID)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ctx.Err() != nil {
		return
	}

	res.OnSuccess(func(description *string) {
		c.fetched, c.hasFetched = description, true
		c.state.Update(func(s State) State {
			if s.Book != nil {
				book := *s.Book
				book.Description = description
				s.Book = &book
			}
			s.IsLoading = false
			return s
		})
	}).OnError(func(e result.DataError) {
		log.Printf("[DETAIL] Failed to load description for %s: %v", c.bookID, e)
		c.state.Update(func(s State) State {
			s.IsLoading = false
			return s
		})
	})
}

func (c *Controller) watchFavorite(ctx context.Context) {
	for fav := range c.repo.IsFavorite(ctx, c.bookID) {
		c.state.Update(func(s State) State {
			s.IsFavorite = fav
			return s
		})
	}
}
