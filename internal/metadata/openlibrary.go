package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mrlokans/bookpedia/internal/fetch"
	"github.com/mrlokans/bookpedia/internal/metrics"
	"github.com/mrlokans/bookpedia/internal/result"
)

// SearchFields is the projection requested from search.json.
const SearchFields = "key,title,author_name,author_key,cover_edition_key,cover_i,ratings_average,ratings_count,first_publish_year,language,number_of_pages_median,edition_count"

// OpenLibraryClient is the remote catalog source. It owns request building and
// response decoding and keeps no state between calls.
type OpenLibraryClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewOpenLibraryClient creates a client against baseURL (normally https://openlibrary.org).
func NewOpenLibraryClient(httpClient *http.Client, baseURL, userAgent string) *OpenLibraryClient {
	return &OpenLibraryClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		userAgent:  userAgent,
	}
}

// Search queries search.json. A nil limit leaves the page size to the server.
func (c *OpenLibraryClient) Search(ctx context.Context, query string, limit *int) (result.Result[SearchResponse, result.RemoteError], error) {
	params := url.Values{}
	params.Set("q", query)
	if limit != nil {
		params.Set("limit", strconv.Itoa(*limit))
	}
	params.Set("language", "eng")
	params.Set("fields", SearchFields)

	searchURL := fmt.Sprintf("%s/search.json?%s", c.baseURL, params.Encode())
	return observe("search", func() (result.Result[SearchResponse, result.RemoteError], error) {
		return fetch.Call[SearchResponse](ctx, c.get(searchURL))
	})
}

// GetWork fetches /works/{id}.json. workID is the bare key, e.g. "OL45804W".
func (c *OpenLibraryClient) GetWork(ctx context.Context, workID string) (result.Result[Work, result.RemoteError], error) {
	workURL := fmt.Sprintf("%s/works/%s.json", c.baseURL, url.PathEscape(workID))
	return observe("work", func() (result.Result[Work, result.RemoteError], error) {
		return fetch.Call[Work](ctx, c.get(workURL))
	})
}

func (c *OpenLibraryClient) get(rawURL string) fetch.Perform {
	return func(ctx context.Context) (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")
		return c.httpClient.Do(req)
	}
}

func observe[T any](endpoint string, call func() (result.Result[T, result.RemoteError], error)) (result.Result[T, result.RemoteError], error) {
	start := time.Now()
	res, err := call()

	outcome := "ok"
	if err != nil {
		outcome = "canceled"
	} else if e, failed := res.Err(); failed {
		outcome = e.Error()
	}
	metrics.ObserveRemoteCall(endpoint, outcome, time.Since(start))

	return res, err
}
