// Package result provides the success/failure container used on every data path
// that can fail in an expected way (network, local storage).
//
// A Result holds either a value or an error, never both. Expected failures are
// carried as values of the closed DataError taxonomy instead of being returned
// through the plain error channel, which is reserved for cancellation and
// programming mistakes.
package result

// Result is an immutable tagged union of Success(value) or Failure(err).
type Result[T any, E error] struct {
	value T
	err   E
	ok    bool
}

// Empty is a Result that carries no value on success.
type Empty[E error] = Result[struct{}, E]

// Success wraps a value.
func Success[T any, E error](value T) Result[T, E] {
	return Result[T, E]{value: value, ok: true}
}

// Failure wraps an error.
func Failure[T any, E error](err E) Result[T, E] {
	return Result[T, E]{err: err}
}

// Done is the successful Empty result.
func Done[E error]() Empty[E] {
	return Success[struct{}, E](struct{}{})
}

// IsSuccess reports whether the result holds a value.
func (r Result[T, E]) IsSuccess() bool {
	return r.ok
}

// Get returns the value and true on success, the zero value and false otherwise.
func (r Result[T, E]) Get() (T, bool) {
	return r.value, r.ok
}

// Err returns the error and true on failure.
func (r Result[T, E]) Err() (E, bool) {
	return r.err, !r.ok
}

// OnSuccess calls f with the value when the result is a success and returns r unchanged.
func (r Result[T, E]) OnSuccess(f func(T)) Result[T, E] {
	if r.ok {
		f(r.value)
	}
	return r
}

// OnError calls f with the error when the result is a failure and returns r unchanged.
func (r Result[T, E]) OnError(f func(E)) Result[T, E] {
	if !r.ok {
		f(r.err)
	}
	return r
}

// Unwrap converts the result into a conventional (value, error) pair.
func (r Result[T, E]) Unwrap() (T, error) {
	if r.ok {
		return r.value, nil
	}
	return r.value, r.err
}

// Map applies f to the value of a successful result. Failures pass through unchanged.
func Map[T, U any, E error](r Result[T, E], f func(T) U) Result[U, E] {
	if !r.ok {
		return Failure[U](r.err)
	}
	return Success[U, E](f(r.value))
}

// Widen converts the error family of r to DataError so that remote and local
// failures can be returned from the same operation.
func Widen[T any, E DataError](r Result[T, E]) Result[T, DataError] {
	if !r.ok {
		return Failure[T, DataError](r.err)
	}
	return Success[T, DataError](r.value)
}
