package fetch

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookpedia/internal/result"
)

type payload struct {
	Name string `json:"name"`
}

func get(client *http.Client, url string) Perform {
	return func(ctx context.Context) (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		return client.Do(req)
	}
}

func requireFailure(t *testing.T, res result.Result[payload, result.RemoteError], want result.RemoteError) {
	t.Helper()
	got, failed := res.Err()
	require.True(t, failed, "expected failure %v", want)
	assert.Equal(t, want, got)
}

func TestCall_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   result.RemoteError
	}{
		{"request timeout", http.StatusRequestTimeout, "", result.ErrRequestTimeout},
		{"too many requests", http.StatusTooManyRequests, "", result.ErrTooManyRequests},
		{"service unavailable", http.StatusServiceUnavailable, "", result.ErrRemoteUnknown},
		{"internal error", http.StatusInternalServerError, "", result.ErrRemoteUnknown},
		{"not found", http.StatusNotFound, "", result.ErrRemoteUnknown},
		{"bad body", http.StatusOK, "{not json", result.ErrSerialization},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			res, err := Call[payload](context.Background(), get(server.Client(), server.URL))
			require.NoError(t, err)
			requireFailure(t, res, tt.want)
		})
	}
}

func TestCall_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"name":"dune","extra":1}`))
	}))
	defer server.Close()

	res, err := Call[payload](context.Background(), get(server.Client(), server.URL))
	require.NoError(t, err)

	v, ok := res.Get()
	require.True(t, ok)
	assert.Equal(t, "dune", v.Name)
}

func TestCall_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	res, err := Call[payload](context.Background(), get(&http.Client{Timeout: time.Second}, "http://"+addr))
	require.NoError(t, err)
	requireFailure(t, res, result.ErrNoInternet)
}

func TestCall_DNSFailure(t *testing.T) {
	perform := func(ctx context.Context) (*http.Response, error) {
		return nil, &net.DNSError{Err: "no such host", Name: "openlibrary.invalid", IsNotFound: true}
	}

	res, err := Call[payload](context.Background(), perform)
	require.NoError(t, err)
	requireFailure(t, res, result.ErrNoInternet)
}

func TestCall_ClientTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := &http.Client{Timeout: 50 * time.Millisecond}
	res, err := Call[payload](context.Background(), get(client, server.URL))
	require.NoError(t, err)
	requireFailure(t, res, result.ErrRequestTimeout)
}

func TestCall_OtherTransportError(t *testing.T) {
	perform := func(ctx context.Context) (*http.Response, error) {
		return nil, errors.New("tls: handshake failure")
	}

	res, err := Call[payload](context.Background(), perform)
	require.NoError(t, err)
	requireFailure(t, res, result.ErrRemoteUnknown)
}

func TestCall_CancellationPropagates(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := Call[payload](ctx, get(server.Client(), server.URL))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewHTTPClient_RateLimitHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"x"}`))
	}))
	defer server.Close()

	client := NewHTTPClient(ClientOptions{
		RequestTimeout:    time.Second,
		ConnectTimeout:    time.Second,
		RequestsPerSecond: 0.001,
	})

	res, err := Call[payload](context.Background(), get(client, server.URL))
	require.NoError(t, err)
	assert.True(t, res.IsSuccess())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Call[payload](ctx, get(client, server.URL))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewHTTPClient_RateLimitPastDeadlineIsTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"x"}`))
	}))
	defer server.Close()

	client := NewHTTPClient(ClientOptions{
		RequestTimeout:    time.Second,
		ConnectTimeout:    time.Second,
		RequestsPerSecond: 0.001,
	})

	res, err := Call[payload](context.Background(), get(client, server.URL))
	require.NoError(t, err)
	assert.True(t, res.IsSuccess())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	res, err = Call[payload](ctx, get(client, server.URL))
	require.NoError(t, err)
	requireFailure(t, res, result.ErrRequestTimeout)
}
