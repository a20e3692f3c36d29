package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hardbound/bookshelf/internal/catalogue"
)

// DefaultPageSize is used when a search request omits the size parameter.
const DefaultPageSize = 20

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
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

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error
// response. The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondCatalogueError maps a domain error onto the matching HTTP status.
// Falls through to 500 for anything outside the taxonomy.
func respondCatalogueError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, catalogue.ErrBookNotFound):
		respondNotFound(c, "book")
	case errors.Is(err, catalogue.ErrReaderNotFound):
		respondNotFound(c, "user")
	case errors.Is(err, catalogue.ErrBookMetadataNotFound):
		respondNotFound(c, "book metadata")
	case errors.Is(err, catalogue.ErrInvalidPageRequest):
		respondBadRequest(c, "invalid page request")
	case errors.Is(err, catalogue.ErrInvalidISBN):
		respondBadRequest(c, "isbn must be 10 or 13 characters")
	case errors.Is(err, catalogue.ErrDuplicateISBN):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, catalogue.ErrDuplicateUsername):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, catalogue.ErrProviderUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "metadata provider unavailable"})
	default:
		respondInternalError(c, err, context)
	}
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL
// parameters. Responds with a 400 error and returns 0, false on failure.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parsePageParams reads the page/size query parameters with defaults.
// Non-numeric values get a 400; range validation happens in the repository.
func parsePageParams(c *gin.Context) (page, size int, ok bool) {
	page, ok = parseIntQuery(c, "page", 0)
	if !ok {
		return 0, 0, false
	}
	size, ok = parseIntQuery(c, "size", DefaultPageSize)
	if !ok {
		return 0, 0, false
	}
	return page, size, true
}

// parseIntQuery parses an optional integer query parameter with a default.
func parseIntQuery(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		respondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

// parseOptionalIntQuery parses an optional integer query parameter,
// returning nil when the parameter is absent or blank.
func parseOptionalIntQuery(c *gin.Context, name string) (*int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		respondBadRequest(c, "invalid "+name)
		return nil, false
	}
	return &v, true
}
