package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookpedia/internal/entities"
	"github.com/mrlokans/bookpedia/internal/result"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondDataError translates an expected data-path failure. The message is the
// localizable UI text, the code its key.
func respondDataError(c *gin.Context, err result.DataError) {
	text := result.ToUIText(err)
	c.JSON(dataErrorStatus(err), ErrorResponse{Error: text.String(), Code: text.Key})
}

func dataErrorStatus(err result.DataError) int {
	var remote result.RemoteError
	if errors.As(err, &remote) {
		switch remote {
		case result.ErrRequestTimeout:
			return http.StatusGatewayTimeout
		case result.ErrTooManyRequests:
			return http.StatusTooManyRequests
		case result.ErrNoInternet:
			return http.StatusServiceUnavailable
		default:
			return http.StatusBadGateway
		}
	}
	var local result.LocalError
	if errors.As(err, &local) && local == result.ErrDiskFull {
		return http.StatusInsufficientStorage
	}
	return http.StatusInternalServerError
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// --- Parameter Parsing ---

// parseWorkIDParam extracts a work key from URL parameters. "/works/OL1W" style
// keys are not accepted here, only the bare key.
func parseWorkIDParam(c *gin.Context, paramName string) (string, bool) {
	id := c.Param(paramName)
	if !entities.IsWorkID(id) {
		respondBadRequest(c, "invalid "+paramName)
		return "", false
	}
	return id, true
}
