package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		OpenLibrary
		Search
		Tasks
		Backfill
		Metrics
		Covers
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	OpenLibrary struct {
		BaseURL           string
		CoversBaseURL     string
		UserAgent         string
		RequestTimeout    time.Duration // Whole request budget, including reading the body
		ConnectTimeout    time.Duration // Dial and socket budget
		RequestsPerSecond float64       // 0 disables client side rate limiting
		SearchLimit       int           // 0 leaves the limit to the server
		LogRequests       bool
	}
	Search struct {
		Debounce       time.Duration
		GracePeriod    time.Duration // How long streams stay alive after the last subscriber leaves
		InitialQuery   string
		MinQueryLength int // In characters
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Backfill struct {
		Enabled  bool
		Schedule string // Cron format: "0 * * * *" = hourly
	}
	Metrics struct {
		Enabled bool
	}
	Covers struct {
		Enabled  bool
		CacheDir string
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// OpenLibrary defaults
	v.SetDefault("openlibrary_base_url", DefaultOpenLibraryBaseURL)
	v.SetDefault("openlibrary_covers_base_url", DefaultCoversBaseURL)
	v.SetDefault("openlibrary_user_agent", DefaultUserAgent)
	v.SetDefault("openlibrary_request_timeout", "20s")
	v.SetDefault("openlibrary_connect_timeout", "20s")
	v.SetDefault("openlibrary_requests_per_second", 5)
	v.SetDefault("openlibrary_search_limit", 0)
	v.SetDefault("openlibrary_log_requests", false)

	// Search controller defaults
	v.SetDefault("search_debounce", "500ms")
	v.SetDefault("search_grace_period", "5s")
	v.SetDefault("search_initial_query", "Kotlin")
	v.SetDefault("search_min_query_length", 2)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("backfill_enabled", true)
	v.SetDefault("backfill_schedule", "0 * * * *") // Hourly at :00

	v.SetDefault("metrics_enabled", true)

	v.SetDefault("covers_enabled", true)
	v.SetDefault("covers_cache_dir", DefaultCoversCacheDir)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		OpenLibrary: OpenLibrary{
			BaseURL:           v.GetString("OPENLIBRARY_BASE_URL"),
			CoversBaseURL:     v.GetString("OPENLIBRARY_COVERS_BASE_URL"),
			UserAgent:         v.GetString("OPENLIBRARY_USER_AGENT"),
			RequestTimeout:    v.GetDuration("OPENLIBRARY_REQUEST_TIMEOUT"),
			ConnectTimeout:    v.GetDuration("OPENLIBRARY_CONNECT_TIMEOUT"),
			RequestsPerSecond: v.GetFloat64("OPENLIBRARY_REQUESTS_PER_SECOND"),
			SearchLimit:       v.GetInt("OPENLIBRARY_SEARCH_LIMIT"),
			LogRequests:       v.GetBool("OPENLIBRARY_LOG_REQUESTS"),
		},
		Search: Search{
			Debounce:       v.GetDuration("SEARCH_DEBOUNCE"),
			GracePeriod:    v.GetDuration("SEARCH_GRACE_PERIOD"),
			InitialQuery:   v.GetString("SEARCH_INITIAL_QUERY"),
			MinQueryLength: v.GetInt("SEARCH_MIN_QUERY_LENGTH"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Backfill: Backfill{
			Enabled:  v.GetBool("BACKFILL_ENABLED"),
			Schedule: v.GetString("BACKFILL_SCHEDULE"),
		},
		Metrics: Metrics{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
		Covers: Covers{
			Enabled:  v.GetBool("COVERS_ENABLED"),
			CacheDir: v.GetString("COVERS_CACHE_DIR"),
		},
	}
}
