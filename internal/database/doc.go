// Package database provides the data access layer for the application.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup and migrations
//	└── favourites/      # Favourite books store with change notifications
//
// # Usage
//
//	db, err := database.NewDatabase("./bookpedia.db")
//	favs, err := favourites.NewRepository(db.DB)
//
//	// Current snapshot now, then one snapshot per committed change
//	for snapshot := range favs.ObserveAll(ctx) { ... }
package database
