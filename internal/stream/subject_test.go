package stream

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func TestSubject_ReplaysCurrentValue(t *testing.T) {
	s := NewSubject(1)
	s.Publish(2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := s.Subscribe(ctx)
	assert.Equal(t, 2, receive(t, ch))

	s.Publish(3)
	assert.Equal(t, 3, receive(t, ch))
}

func TestSubject_ConflatesSlowReaders(t *testing.T) {
	s := NewSubject(0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := s.Subscribe(ctx)
	for i := 1; i <= 10; i++ {
		s.Publish(i)
	}

	assert.Equal(t, 10, receive(t, ch))
	assert.Equal(t, 10, s.Value())
}

func TestSubject_Update(t *testing.T) {
	s := NewSubject([]string{"a"})

	next := s.Update(func(v []string) []string {
		return append(append([]string{}, v...), "b")
	})

	assert.Equal(t, []string{"a", "b"}, next)
	assert.Equal(t, []string{"a", "b"}, s.Value())
}

func TestSubject_ClosesOnCancel(t *testing.T) {
	s := NewSubject("x")

	ctx, cancel := context.WithCancel(context.Background())
	ch := s.Subscribe(ctx)
	assert.Equal(t, "x", receive(t, ch))
	assert.Equal(t, 1, s.Subscribers())

	cancel()

	assert.Eventually(t, func() bool {
		_, ok := <-ch
		return !ok
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, s.Subscribers())
}

func TestMapAndDistinct(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan int)
	out := Distinct(ctx, Map(ctx, in, func(v int) bool { return v%2 == 0 }))

	go func() {
		for _, v := range []int{2, 4, 3, 5, 6} {
			in <- v
		}
		close(in)
	}()

	var got []bool
	for v := range out {
		got = append(got, v)
	}
	assert.Equal(t, []bool{true, false, true}, got)
}
