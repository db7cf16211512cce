package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8190), cfg.HTTP.Port)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, DefaultOpenLibraryBaseURL, cfg.OpenLibrary.BaseURL)
	assert.Equal(t, 20*time.Second, cfg.OpenLibrary.RequestTimeout)
	assert.Equal(t, 20*time.Second, cfg.OpenLibrary.ConnectTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, 5*time.Second, cfg.Search.GracePeriod)
	assert.Equal(t, "Kotlin", cfg.Search.InitialQuery)
	assert.Equal(t, 2, cfg.Search.MinQueryLength)
	assert.Equal(t, "0 * * * *", cfg.Backfill.Schedule)
	assert.True(t, cfg.Covers.Enabled)
	assert.Equal(t, DefaultCoversCacheDir, cfg.Covers.CacheDir)
	assert.False(t, cfg.OpenLibrary.LogRequests)
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SEARCH_DEBOUNCE", "250ms")
	t.Setenv("DATABASE_PATH", "/tmp/favourites.db")
	t.Setenv("OPENLIBRARY_SEARCH_LIMIT", "20")
	t.Setenv("COVERS_ENABLED", "false")

	cfg := NewConfig()

	assert.Equal(t, 250*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, "/tmp/favourites.db", cfg.Database.Path)
	assert.Equal(t, 20, cfg.OpenLibrary.SearchLimit)
	assert.False(t, cfg.Covers.Enabled)
}
