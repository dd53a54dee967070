package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/duograph/duograph"
	"github.com/duograph/duograph/pkg/server/dto"
)

// SearchHandler handles hybrid retrieval requests
type SearchHandler struct {
	client duograph.Duograph
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(client duograph.Duograph) *SearchHandler {
	return &SearchHandler{client: client}
}

// Search handles POST /search. The response carries the vector and graph
// collections side by side, never merged.
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	ctx, cancel := contextWithTimeout(c, 30*time.Second)
	defer cancel()

	results, err := h.client.Retrieve(ctx, req.Query, &duograph.RetrieveOptions{
		Subject: req.Subject,
		Limit:   req.Limit,
	})
	if err != nil {
		var validationErr *duograph.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "search_failed", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, results)
}
