package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookpedia/internal/entities"
)

type favouritesList struct {
	Favourites []entities.Book `json:"favourites"`
	Count      int             `json:"count"`
}

func listFavourites(t *testing.T, router http.Handler) favouritesList {
	t.Helper()
	w := get(router, "/api/favourites")
	require.Equal(t, http.StatusOK, w.Code)

	var list favouritesList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	return list
}

func postFavourite(router http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/favourites", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestFavouritesController(t *testing.T) {
	books := newFakeBooks()
	router := NewRouter(RouterConfig{Books: books})

	assert.Equal(t, 0, listFavourites(t, router).Count)

	w := postFavourite(router, `{"id":"OL1W","title":"Dune","authors":["Frank Herbert"]}`)
	require.Equal(t, http.StatusCreated, w.Code)

	list := listFavourites(t, router)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "Dune", list.Favourites[0].Title)

	w = httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/favourites/OL1W", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 0, listFavourites(t, router).Count)
}

func TestFavouritesController_Validation(t *testing.T) {
	router := NewRouter(RouterConfig{Books: newFakeBooks()})

	assert.Equal(t, http.StatusBadRequest, postFavourite(router, `{"title":"No id"}`).Code)
	assert.Equal(t, http.StatusBadRequest, postFavourite(router, `nope`).Code)
	assert.Equal(t, http.StatusBadRequest, postFavourite(router, `{"id":"../etc"}`).Code)
	assert.Equal(t, http.StatusBadRequest, postFavourite(router, `{"id":"/works/OL1W"}`).Code)
}

func TestFavouritesController_StorageFull(t *testing.T) {
	books := newFakeBooks()
	books.addFailure = true
	router := NewRouter(RouterConfig{Books: books})

	w := postFavourite(router, `{"id":"OL1W"}`)
	assert.Equal(t, http.StatusInsufficientStorage, w.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "error_disk_full", response.Code)
}
