package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookpedia/internal/database"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// SearchActivity reports whether the search controller currently runs its
// background work.
type SearchActivity interface {
	Active() bool
}

type HealthController struct {
	db      *database.Database
	search  SearchActivity
	version string
}

func NewHealthController(db *database.Database, search SearchActivity, version string) *HealthController {
	return &HealthController{
		db:      db,
		search:  search,
		version: version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	// Check database connectivity
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	// Idle is normal: search work only runs while someone observes it.
	if h.search != nil {
		if h.search.Active() {
			checks["search"] = "active"
		} else {
			checks["search"] = "idle"
		}
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
