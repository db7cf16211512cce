package bookdetail

import (
	"context"

	"github.com/mrlokans/bookpedia/internal/entities"
	"github.com/mrlokans/bookpedia/internal/stream"
)

// Selection hands the book clicked in the list over to the detail view.
type Selection struct {
	book *stream.Subject[*entities.Book]
}

func NewSelection() *Selection {
	return &Selection{book: stream.NewSubject[*entities.Book](nil)}
}

// Select stores book as the current selection. Nil clears it.
func (s *Selection) Select(book *entities.Book) {
	if book != nil {
		b := *book
		book = &b
	}
	s.book.Publish(book)
}

// Current returns the selected book, or nil.
func (s *Selection) Current() *entities.Book {
	return s.book.Value()
}

// Observe streams the selection, current value first.
func (s *Selection) Observe(ctx context.Context) <-chan *entities.Book {
	return s.book.Subscribe(ctx)
}
