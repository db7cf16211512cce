package config

const (
	// DefaultDatabasePath is the default path for the favourites database
	DefaultDatabasePath = "./bookpedia.db"

	// DefaultCoversCacheDir is where downloaded cover images are kept
	DefaultCoversCacheDir = "./covers"

	DefaultOpenLibraryBaseURL = "https://openlibrary.org"
	DefaultCoversBaseURL      = "https://covers.openlibrary.org"
	DefaultUserAgent          = "Bookpedia/1.0 (https://github.com/mrlokans/bookpedia)"
)
