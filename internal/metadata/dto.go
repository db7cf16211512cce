package metadata

import (
	"bytes"
	"encoding/json"
)

// SearchResponse is the body of search.json. Docs keep the server order.
type SearchResponse struct {
	NumFound int            `json:"numFound"`
	Docs     []SearchedBook `json:"docs"`
}

// SearchedBook is one search.json document restricted to SearchFields.
type SearchedBook struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	Languages        []string `json:"language"`
	CoverID          *int     `json:"cover_i"`
	AuthorKeys       []string `json:"author_key"`
	AuthorNames      []string `json:"author_name"`
	CoverEditionKey  *string  `json:"cover_edition_key"`
	FirstPublishYear *int     `json:"first_publish_year"`
	RatingsAverage   *float64 `json:"ratings_average"`
	RatingsCount     *int     `json:"ratings_count"`
	NumPagesMedian   *int     `json:"number_of_pages_median"`
	EditionCount     *int     `json:"edition_count"`
}

// Work is the body of /works/{id}.json.
type Work struct {
	Key         string      `json:"key"`
	Title       string      `json:"title"`
	Description Description `json:"description"`
}

// Description is the work description, which the API sends either as a plain
// string or as {"type": "/type/text", "value": "..."}.
type Description struct {
	Value *string
}

// UnmarshalJSON tries the object shape first, then a plain string. Any other
// shape decodes to an absent description without failing the enclosing record.
func (d *Description) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	var obj struct {
		Value *string `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		d.Value = obj.Value
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		d.Value = &s
		return nil
	}

	d.Value = nil
	return nil
}

// MarshalJSON writes the description back as a plain string or null.
func (d Description) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Value)
}
