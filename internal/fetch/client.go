package fetch

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// ClientOptions configures the shared catalog HTTP client.
type ClientOptions struct {
	RequestTimeout    time.Duration
	ConnectTimeout    time.Duration
	RequestsPerSecond float64
	Verbose           bool
}

// NewHTTPClient creates the client every catalog request goes through.
func NewHTTPClient(opts ClientOptions) *http.Client {
	base := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   opts.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   opts.ConnectTimeout,
		ResponseHeaderTimeout: opts.ConnectTimeout,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
	}

	var transport http.RoundTripper = base
	if opts.RequestsPerSecond > 0 {
		transport = &rateLimitedTransport{
			next:    transport,
			limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		}
	}
	if opts.Verbose {
		transport = &loggingTransport{next: transport}
	}

	return &http.Client{
		Timeout:   opts.RequestTimeout,
		Transport: transport,
	}
}

type rateLimitedTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		// Wait fails early when the next token lands after the deadline.
		if req.Context().Err() == nil {
			return nil, fmt.Errorf("rate limit: %w", context.DeadlineExceeded)
		}
		return nil, err
	}
	return t.next.RoundTrip(req)
}

type loggingTransport struct {
	next http.RoundTripper
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		log.Printf("[HTTP] %s %s failed after %v: %v", req.Method, req.URL.Redacted(), time.Since(start), err)
		return nil, err
	}
	log.Printf("[HTTP] %s %s -> %d (%v)", req.Method, req.URL.Redacted(), resp.StatusCode, time.Since(start))
	return resp, nil
}
