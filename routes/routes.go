package routes

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"juaconnect-server/middleware"
	"juaconnect-server/models"
	"juaconnect-server/services"
	"juaconnect-server/websocket"
)

// Handler serves the marketplace API
type Handler struct {
	Marketplace *services.Marketplace
	Hub         *websocket.Hub
	Upgrader    *gorillaws.Upgrader
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, h *Handler) {
	router.GET("/health", h.health)

	apiV1 := router.Group("/api/v1")
	apiV1.Use(middleware.IdentityMiddleware())
	{
		apiV1.GET("/categories", getServiceCategories)

		RegisterServiceRequestRoutes(apiV1, h)
		RegisterArtisanRoutes(apiV1, h)
		RegisterNotificationRoutes(apiV1, h)
		RegisterStateRoutes(apiV1, h)

		if h.Hub != nil {
			apiV1.GET("/ws", h.serveWebSocket)
		}
	}
}

func (h *Handler) health(c *gin.Context) {
	clients := 0
	if h.Hub != nil {
		clients = h.Hub.ClientCount()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"dirty":   h.Marketplace.Dirty(),
		"clients": clients,
	})
}

// getServiceCategories returns the fixed list of service categories
func getServiceCategories(c *gin.Context) {
	respondOK(c, http.StatusOK, models.ServiceCategories, "")
}

// serveWebSocket upgrades the dashboard connection. Browsers cannot set
// headers on a WebSocket handshake so the role comes from the query.
func (h *Handler) serveWebSocket(c *gin.Context) {
	role := c.Query("role")
	if role == "" {
		role = c.GetString(middleware.ContextRoleKey)
	}
	websocket.ServeWebSocket(h.Hub, h.Upgrader, c.Writer, c.Request, role)
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		respondError(c, &services.ValidationError{Field: param, Message: "must be a positive integer"}, nil)
		return 0, false
	}
	return uint(id), true
}

// parseStatuses reads a comma separated status filter
func parseStatuses(c *gin.Context) ([]models.ServiceRequestStatus, bool) {
	var statuses []models.ServiceRequestStatus
	for _, part := range strings.Split(c.Query("status"), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		status := models.ServiceRequestStatus(strings.ToLower(part))
		if !status.IsValid() {
			respondError(c, &services.ValidationError{Field: "status", Message: "unknown status " + strconv.Quote(part)}, nil)
			return nil, false
		}
		statuses = append(statuses, status)
	}
	return statuses, true
}
