package result

import "fmt"

// DataError is implemented by RemoteError and LocalError only.
type DataError interface {
	error
	dataError()
}

// RemoteError enumerates failures of calls to the remote catalog.
type RemoteError int

const (
	ErrRequestTimeout RemoteError = iota + 1
	ErrTooManyRequests
	ErrNoInternet
	ErrSerialization
	ErrRemoteUnknown
)

func (e RemoteError) Error() string {
	switch e {
	case ErrRequestTimeout:
		return "remote: request timeout"
	case ErrTooManyRequests:
		return "remote: too many requests"
	case ErrNoInternet:
		return "remote: no internet"
	case ErrSerialization:
		return "remote: serialization"
	case ErrRemoteUnknown:
		return "remote: unknown"
	default:
		return fmt.Sprintf("remote: error(%d)", int(e))
	}
}

func (RemoteError) dataError() {}

// LocalError enumerates failures of the local favourites store.
type LocalError int

const (
	ErrDiskFull LocalError = iota + 1
	ErrLocalUnknown
)

func (e LocalError) Error() string {
	switch e {
	case ErrDiskFull:
		return "local: disk full"
	case ErrLocalUnknown:
		return "local: unknown"
	default:
		return fmt.Sprintf("local: error(%d)", int(e))
	}
}

func (LocalError) dataError() {}
