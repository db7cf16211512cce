package entrypoint

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookpedia/internal/config"
	"github.com/mrlokans/bookpedia/internal/entities"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"key":"/works/OL1W","title":"Dune","description":"Spice."}`))
	}))
	t.Cleanup(server.Close)

	cfg := config.NewConfig()
	cfg.Database.Path = filepath.Join(t.TempDir(), "bookpedia.db")
	cfg.OpenLibrary.BaseURL = server.URL
	cfg.OpenLibrary.RequestsPerSecond = 0
	return cfg
}

func TestNewApp_WithoutTasks(t *testing.T) {
	app, err := NewApp(testConfig(t), AppOptions{QuietDatabase: true})
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.Tasks)
	assert.NotNil(t, app.Books)
	assert.NotNil(t, app.HTTPClient)
	require.NoError(t, app.DB.Ping())
}

func TestNewApp_BackfillsFavouriteWithoutDescription(t *testing.T) {
	app, err := NewApp(testConfig(t), AppOptions{Tasks: true, QuietDatabase: true})
	require.NoError(t, err)
	defer app.Close()
	require.NotNil(t, app.Tasks)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go app.Tasks.Start(ctx)
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer stopCancel()
		app.Tasks.Stop(stopCtx)
	}()

	added := app.Books.AddFavorite(ctx, entities.Book{ID: "OL1W", Title: "Dune"})
	require.True(t, added.IsSuccess())

	assert.Eventually(t, func() bool {
		fav, err := app.Favourites.Get(ctx, "OL1W")
		return err == nil && fav != nil && fav.Description != nil && *fav.Description == "Spice."
	}, 10*time.Second, 50*time.Millisecond)
}
