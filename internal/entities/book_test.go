package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFavoriteBookRoundTrip(t *testing.T) {
	desc := "A desert planet."
	year := "1965"
	rating := 4.3
	count := 1200
	pages := 412

	book := Book{
		ID:               "OL893415W",
		Title:            "Dune",
		ImageURL:         "https://covers.openlibrary.org/b/olid/OL1M-L.jpg",
		Authors:          []string{"Frank Herbert"},
		Description:      &desc,
		Languages:        []string{"eng"},
		FirstPublishYear: &year,
		AverageRating:    &rating,
		RatingCount:      &count,
		NumPages:         &pages,
		NumEditions:      87,
	}

	assert.Equal(t, book, NewFavoriteBook(book).Book())
}

func TestFavoriteBook_NilSlicesBecomeEmpty(t *testing.T) {
	got := FavoriteBook{ID: "OL1W", Title: "Untitled"}.Book()

	assert.NotNil(t, got.Authors)
	assert.Empty(t, got.Authors)
	assert.NotNil(t, got.Languages)
}

func TestIsWorkID(t *testing.T) {
	for _, id := range []string{"OL1W", "OL45804W"} {
		assert.True(t, IsWorkID(id), id)
	}
	for _, id := range []string{"", "OL1M", "/works/OL1W", "OL*W", "OL1W/../x", "ol1w", "OLW"} {
		assert.False(t, IsWorkID(id), id)
	}
}
