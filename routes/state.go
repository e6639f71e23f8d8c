package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterStateRoutes registers the persistence maintenance routes
func RegisterStateRoutes(router *gin.RouterGroup, h *Handler) {
	state := router.Group("/state")
	{
		state.POST("/flush", h.flushState)
		state.POST("/reload", h.reloadState)
	}
}

// flushState retries saving state after a storage failure
func (h *Handler) flushState(c *gin.Context) {
	if err := h.Marketplace.Flush(c.Request.Context()); err != nil {
		respondError(c, err, nil)
		return
	}
	respondOK(c, http.StatusOK, nil, "State saved")
}

func (h *Handler) reloadState(c *gin.Context) {
	if err := h.Marketplace.Reload(c.Request.Context()); err != nil {
		respondError(c, err, nil)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"dirty": h.Marketplace.Dirty()}, "State reloaded")
}
