package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookpedia/internal/bookdetail"
	"github.com/mrlokans/bookpedia/internal/booklist"
	"github.com/mrlokans/bookpedia/internal/entities"
)

func setupSearchRouter(t *testing.T) (*booklist.Controller, *bookdetail.Selection, http.Handler) {
	t.Helper()

	books := newFakeBooks()
	selection := bookdetail.NewSelection()
	search := booklist.NewController(books,
		booklist.WithDebounce(10*time.Millisecond),
		booklist.WithGracePeriod(50*time.Millisecond),
		booklist.WithNavigator(func(b entities.Book) { selection.Select(&b) }),
	)
	t.Cleanup(search.Close)

	router := NewRouter(RouterConfig{
		Books:     books,
		Search:    search,
		Selection: selection,
	})
	return search, selection, router
}

func postAction(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/search/actions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestSearchController_Dispatch(t *testing.T) {
	t.Run("query change is applied immediately", func(t *testing.T) {
		_, _, router := setupSearchRouter(t)

		w := postAction(t, router, `{"type":"query_changed","query":"dune"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var state booklist.QueryState
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
		assert.Equal(t, "dune", state.SearchQuery)
	})

	t.Run("tab selection", func(t *testing.T) {
		search, _, router := setupSearchRouter(t)

		w := postAction(t, router, `{"type":"tab_selected","index":1}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, search.State().SelectedTab)
	})

	t.Run("book click selects the book", func(t *testing.T) {
		_, selection, router := setupSearchRouter(t)

		w := postAction(t, router, `{"type":"book_clicked","book":{"id":"OL1W","title":"Dune"}}`)
		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, selection.Current())
		assert.Equal(t, "Dune", selection.Current().Title)
	})

	t.Run("rejects malformed actions", func(t *testing.T) {
		_, _, router := setupSearchRouter(t)

		for _, body := range []string{
			`{}`,
			`{"type":"query_changed"}`,
			`{"type":"tab_selected","index":-1}`,
			`{"type":"book_clicked","book":{}}`,
			`{"type":"explode"}`,
			`not json`,
		} {
			w := postAction(t, router, body)
			assert.Equal(t, http.StatusBadRequest, w.Code, body)
		}
	})
}

func TestSearchController_GetStateDoesNotActivate(t *testing.T) {
	search, _, router := setupSearchRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/search/state", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var state booklist.QueryState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, "Kotlin", state.SearchQuery)
	assert.False(t, search.Active())
}

func TestSearchController_Stream(t *testing.T) {
	search, _, router := setupSearchRouter(t)
	server := httptest.NewServer(router)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, "GET", server.URL+"/api/search/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")
	assert.Len(t, resp.Header.Get("X-Stream-ID"), 26)

	// Read events until the initial search result arrives.
	found := make(chan booklist.QueryState, 1)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			var state booklist.QueryState
			if json.Unmarshal([]byte(strings.TrimPrefix(line, "data:")), &state) != nil {
				continue
			}
			if len(state.SearchResults) > 0 {
				found <- state
				return
			}
		}
	}()

	select {
	case state := <-found:
		assert.Equal(t, "Kotlin", state.SearchResults[0].Title)
	case <-time.After(3 * time.Second):
		t.Fatal("no search results streamed")
	}
	assert.True(t, search.Active())

	cancel()
	assert.Eventually(t, func() bool { return !search.Active() }, 2*time.Second, 10*time.Millisecond)
}
