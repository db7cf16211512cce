package entities

import (
	"regexp"
	"time"
)

var workIDPattern = regexp.MustCompile(`^OL\d+W$`)

// IsWorkID reports whether id has the shape of a bare work key, e.g. "OL45804W".
func IsWorkID(id string) bool {
	return workIDPattern.MatchString(id)
}

// Book is a catalog work as the application sees it.
// ID is the bare work key ("OL123W"), never the "/works/" path.
type Book struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	ImageURL         string   `json:"image_url"`
	Authors          []string `json:"authors"`
	Description      *string  `json:"description,omitempty"`
	Languages        []string `json:"languages"`
	FirstPublishYear *string  `json:"first_publish_year,omitempty"`
	AverageRating    *float64 `json:"average_rating,omitempty"`
	RatingCount      *int     `json:"rating_count,omitempty"`
	NumPages         *int     `json:"num_pages,omitempty"`
	NumEditions      int      `json:"num_editions"`
}

// FavoriteBook is the persisted projection of a Book. A row existing for an ID
// is what makes that book a favourite.
type FavoriteBook struct {
	ID               string    `gorm:"primaryKey;size:64" json:"id"`
	Title            string    `gorm:"size:512" json:"title"`
	ImageURL         string    `gorm:"size:512" json:"image_url"`
	Authors          []string  `gorm:"serializer:json" json:"authors"`
	Description      *string   `json:"description,omitempty"`
	Languages        []string  `gorm:"serializer:json" json:"languages"`
	FirstPublishYear *string   `gorm:"size:16" json:"first_publish_year,omitempty"`
	RatingsAverage   *float64  `json:"ratings_average,omitempty"`
	RatingsCount     *int      `json:"ratings_count,omitempty"`
	NumPagesMedian   *int      `json:"num_pages_median,omitempty"`
	NumEditions      int       `json:"num_editions"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewFavoriteBook projects a Book into its stored form.
func NewFavoriteBook(b Book) FavoriteBook {
	return FavoriteBook{
		ID:               b.ID,
		Title:            b.Title,
		ImageURL:         b.ImageURL,
		Authors:          nonNil(b.Authors),
		Description:      b.Description,
		Languages:        nonNil(b.Languages),
		FirstPublishYear: b.FirstPublishYear,
		RatingsAverage:   b.AverageRating,
		RatingsCount:     b.RatingCount,
		NumPagesMedian:   b.NumPages,
		NumEditions:      b.NumEditions,
	}
}

// Book converts the stored record back into a Book.
func (f FavoriteBook) Book() Book {
	return Book{
		ID:               f.ID,
		Title:            f.Title,
		ImageURL:         f.ImageURL,
		Authors:          nonNil(f.Authors),
		Description:      f.Description,
		Languages:        nonNil(f.Languages),
		FirstPublishYear: f.FirstPublishYear,
		AverageRating:    f.RatingsAverage,
		RatingCount:      f.RatingsCount,
		NumPages:         f.NumPagesMedian,
		NumEditions:      f.NumEditions,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
