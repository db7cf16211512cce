package booklist

import (
	"github.com/mrlokans/bookpedia/internal/entities"
	"github.com/mrlokans/bookpedia/internal/result"
)

// QueryState is everything the search screen renders.
type QueryState struct {
	SearchQuery   string          `json:"search_query"`
	SearchResults []entities.Book `json:"search_results"`
	FavoriteBooks []entities.Book `json:"favorite_books"`
	IsLoading     bool            `json:"is_loading"`
	SelectedTab   int             `json:"selected_tab"`
	ErrorMessage  *result.UIText  `json:"error_message,omitempty"`
}

// Action is a user intent sent to the Controller.
type Action interface {
	isAction()
}

// QueryChanged replaces the search text.
type QueryChanged struct {
	Query string `json:"query"`
}

// TabSelected switches between the results and favourites tabs.
type TabSelected struct {
	Index int `json:"index"`
}

// BookClicked opens a book. It never changes QueryState.
type BookClicked struct {
	Book entities.Book `json:"book"`
}

func (QueryChanged) isAction() {}
func (TabSelected) isAction()  {}
func (BookClicked) isAction()  {}
