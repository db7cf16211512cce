package booklist

import (
	"time"

	"github.com/mrlokans/bookpedia/internal/entities"
)

const (
	DefaultDebounce       = 500 * time.Millisecond
	DefaultGracePeriod    = 5 * time.Second
	DefaultInitialQuery   = "Kotlin"
	DefaultMinQueryLength = 2
)

// Navigator receives clicked books.
type Navigator func(book entities.Book)

type Option func(*Controller)

// WithDebounce sets how long the query must stay unchanged before it is evaluated.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithGracePeriod sets how long work keeps running after the last observer leaves.
func WithGracePeriod(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.grace = d
		}
	}
}

// WithInitialQuery sets the query searched on first activation.
func WithInitialQuery(q string) Option {
	return func(c *Controller) {
		c.initialQuery = q
	}
}

// WithMinQueryLength sets the shortest query, in characters, that triggers a search.
func WithMinQueryLength(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.minQueryLength = n
		}
	}
}

func WithNavigator(n Navigator) Option {
	return func(c *Controller) {
		c.navigate = n
	}
}

// WithMetrics records search outcomes in the process metrics.
func WithMetrics() Option {
	return func(c *Controller) {
		c.recordMetrics = true
	}
}
