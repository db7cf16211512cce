// Package fetch is the single place where transport failures and HTTP status
// codes are translated into result.RemoteError. Nothing above it looks at raw
// responses or network errors.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/mrlokans/bookpedia/internal/result"
)

// Perform issues one HTTP request bound to ctx.
type Perform func(ctx context.Context) (*http.Response, error)

// Call executes perform and decodes a 2xx JSON body into T.
//
// Expected failures come back inside the Result. The error return is non-nil only
// when ctx itself was canceled or expired; callers must propagate it and must not
// treat it as a data error.
func Call[T any](ctx context.Context, perform Perform) (result.Result[T, result.RemoteError], error) {
	resp, err := perform(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result.Result[T, result.RemoteError]{}, ctxErr
		}
		return result.Failure[T](classifyTransportError(err)), nil
	}
	defer resp.Body.Close()

	res := responseToResult[T](resp)
	if !res.IsSuccess() {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result.Result[T, result.RemoteError]{}, ctxErr
		}
	}
	return res, nil
}

func responseToResult[T any](resp *http.Response) result.Result[T, result.RemoteError] {
	switch code := resp.StatusCode; {
	case code >= 200 && code <= 299:
		var body T
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return result.Failure[T](result.ErrSerialization)
		}
		return result.Success[T, result.RemoteError](body)
	case code == http.StatusRequestTimeout:
		return result.Failure[T](result.ErrRequestTimeout)
	case code == http.StatusTooManyRequests:
		return result.Failure[T](result.ErrTooManyRequests)
	case code >= 500 && code <= 599:
		return result.Failure[T](result.ErrRemoteUnknown)
	default:
		return result.Failure[T](result.ErrRemoteUnknown)
	}
}

func classifyTransportError(err error) result.RemoteError {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return result.ErrNoInternet
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return result.ErrRequestTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return result.ErrRequestTimeout
	}

	// Refused or unreachable host: the address could not be connected to at all.
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return result.ErrNoInternet
	}

	return result.ErrRemoteUnknown
}
