package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/duograph/duograph"
	"github.com/duograph/duograph/pkg/server/dto"
)

// RepairHandler exposes the journal of unresolved lifecycle operations.
type RepairHandler struct {
	client duograph.Duograph
}

// NewRepairHandler creates a new repair handler
func NewRepairHandler(client duograph.Duograph) *RepairHandler {
	return &RepairHandler{client: client}
}

// List handles GET /repairs
func (h *RepairHandler) List(c *gin.Context) {
	entries, err := h.client.PendingRepairs()
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "repair_list_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": entries, "total": len(entries)})
}

// Repair handles POST /repairs/:id
func (h *RepairHandler) Repair(c *gin.Context) {
	id := c.Param("id")

	ctx, cancel := contextWithTimeout(c, 60*time.Second)
	defer cancel()

	if err := h.client.RepairDocument(ctx, id); err != nil {
		if errors.Is(err, duograph.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "not_found",
				Message: "no unresolved operation for document " + id,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "repair_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}
