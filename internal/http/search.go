package http

import (
	"context"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/mrlokans/bookpedia/internal/booklist"
	"github.com/mrlokans/bookpedia/internal/entities"
)

// Action types accepted by POST /api/search/actions.
const (
	ActionQueryChanged = "query_changed"
	ActionTabSelected  = "tab_selected"
	ActionBookClicked  = "book_clicked"
)

// ActionRequest is the body of POST /api/search/actions.
type ActionRequest struct {
	Type  string         `json:"type" binding:"required"`
	Query *string        `json:"query,omitempty"`
	Index *int           `json:"index,omitempty"`
	Book  *entities.Book `json:"book,omitempty"`
}

// SearchController exposes the search screen over HTTP.
type SearchController struct {
	controller *booklist.Controller
}

func NewSearchController(controller *booklist.Controller) *SearchController {
	return &SearchController{controller: controller}
}

// Dispatch handles POST /api/search/actions and answers with the state right
// after the action was applied.
func (sc *SearchController) Dispatch(c *gin.Context) {
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid action: "+err.Error())
		return
	}

	action, ok := toAction(req)
	if !ok {
		respondBadRequest(c, "invalid action: "+req.Type)
		return
	}

	sc.controller.Dispatch(action)
	c.JSON(http.StatusOK, sc.controller.State())
}

func toAction(req ActionRequest) (booklist.Action, bool) {
	switch req.Type {
	case ActionQueryChanged:
		if req.Query == nil {
			return nil, false
		}
		return booklist.QueryChanged{Query: *req.Query}, true
	case ActionTabSelected:
		if req.Index == nil || *req.Index < 0 {
			return nil, false
		}
		return booklist.TabSelected{Index: *req.Index}, true
	case ActionBookClicked:
		if req.Book == nil || req.Book.ID == "" {
			return nil, false
		}
		return booklist.BookClicked{Book: *req.Book}, true
	default:
		return nil, false
	}
}

// GetState handles GET /api/search/state. It does not activate the controller.
func (sc *SearchController) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, sc.controller.State())
}

// Stream handles GET /api/search/stream as server-sent events. Each connection
// counts as an observer for as long as it stays open.
func (sc *SearchController) Stream(c *gin.Context) {
	streamID := ulid.Make().String()
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	updates := sc.controller.Observe(ctx)
	log.Printf("[SEARCH] Stream %s connected", streamID)
	defer log.Printf("[SEARCH] Stream %s closed", streamID)

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Stream-ID", streamID)
	c.Stream(func(w io.Writer) bool {
		select {
		case state, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("state", state)
			return true
		case <-ctx.Done():
			return false
		}
	})
}
