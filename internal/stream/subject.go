// Package stream implements a replaying state holder with channel subscriptions.
//
// A Subject always has a current value. Subscribers receive that value right away
// and every later one. Delivery is conflated: a reader that falls behind skips
// intermediate values and always sees the latest, so publishers never block.
package stream

import (
	"context"
	"sync"
)

// Subject holds a current value and fans it out to subscribers.
type Subject[T any] struct {
	mu    sync.Mutex
	value T
	subs  map[*subscription[T]]struct{}
}

type subscription[T any] struct {
	ch chan T
}

// NewSubject creates a subject holding initial.
func NewSubject[T any](initial T) *Subject[T] {
	return &Subject[T]{
		value: initial,
		subs:  make(map[*subscription[T]]struct{}),
	}
}

// Value returns the current value.
func (s *Subject[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Publish replaces the current value and notifies subscribers.
func (s *Subject[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(v)
}

// Update atomically derives the next value from the current one.
func (s *Subject[T]) Update(f func(T) T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := f(s.value)
	s.set(next)
	return next
}

func (s *Subject[T]) set(v T) {
	s.value = v
	for sub := range s.subs {
		sub.offer(v)
	}
}

// Subscribe returns a channel that receives the current value followed by every
// update. The channel is closed once ctx is done.
func (s *Subject[T]) Subscribe(ctx context.Context) <-chan T {
	sub := &subscription[T]{ch: make(chan T, 1)}

	s.mu.Lock()
	sub.ch <- s.value
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, sub)
		close(sub.ch)
		s.mu.Unlock()
	}()

	return sub.ch
}

// Subscribers returns the number of open subscriptions.
func (s *Subject[T]) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// offer replaces any value the reader has not consumed yet. Only called with the
// subject lock held, so there is a single writer per channel.
func (sub *subscription[T]) offer(v T) {
	select {
	case sub.ch <- v:
		return
	default:
	}
	select {
	case <-sub.ch:
	default:
	}
	select {
	case sub.ch <- v:
	default:
	}
}
