package routes

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"juaconnect-server/middleware"
	"juaconnect-server/models"
	"juaconnect-server/services"
)

// RegisterServiceRequestRoutes registers the request lifecycle routes
func RegisterServiceRequestRoutes(router *gin.RouterGroup, h *Handler) {
	router.GET("/requests/:id", h.getServiceRequest)

	client := router.Group("/client")
	client.Use(middleware.RequireRole(models.RoleClient, true))
	{
		client.POST("/requests", h.createServiceRequest)
		client.GET("/requests", h.getMyRequests)
		client.PUT("/requests/:id", h.cancelRequest)
		client.POST("/bookings", h.bookArtisanDirect)
	}

	artisan := router.Group("/artisan/requests")
	artisan.Use(middleware.RequireRole(models.RoleArtisan, true))
	{
		artisan.GET("/available", h.getAvailableRequests)
		artisan.GET("/assigned", h.getAssignedRequests)
		artisan.POST("/:id/accept", h.acceptRequest)
		artisan.POST("/:id/reject", h.rejectRequest)
		artisan.POST("/:id/start", h.startWork)
		artisan.POST("/:id/complete", h.completeWork)
	}
}

func (h *Handler) getServiceRequest(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	request, err := h.Marketplace.Requests.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	respondOK(c, http.StatusOK, request, "")
}

func (h *Handler) createServiceRequest(c *gin.Context) {
	var req models.ServiceRequestCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	req.Client, _ = middleware.GetParty(c)

	request, err := h.Marketplace.Requests.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, request)
		return
	}
	respondOK(c, http.StatusCreated, request, "Service request created successfully")
}

func (h *Handler) getMyRequests(c *gin.Context) {
	statuses, ok := parseStatuses(c)
	if !ok {
		return
	}
	client, _ := middleware.GetParty(c)
	requests, err := h.Marketplace.Requests.ListMine(c.Request.Context(), client, statuses...)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	respondOK(c, http.StatusOK, requests, "")
}

func (h *Handler) cancelRequest(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body models.ServiceRequestUpdate
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		respondBindError(c, err)
		return
	}
	if body.Status != "" && body.Status != models.RequestStatusCancelled {
		respondError(c, &services.ValidationError{Field: "status", Message: "only cancelled is supported"}, nil)
		return
	}
	client, _ := middleware.GetParty(c)
	request, err := h.Marketplace.Requests.Cancel(c.Request.Context(), id, client)
	if err != nil {
		respondError(c, err, request)
		return
	}
	respondOK(c, http.StatusOK, request, "Request cancelled")
}

func (h *Handler) bookArtisanDirect(c *gin.Context) {
	var req models.DirectBookingCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	req.Client, _ = middleware.GetParty(c)

	request, err := h.Marketplace.Directory.BookDirect(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, request)
		return
	}
	respondOK(c, http.StatusCreated, request, "Booking request sent successfully")
}

func (h *Handler) getAvailableRequests(c *gin.Context) {
	requests, err := h.Marketplace.Requests.ListAvailable(c.Request.Context())
	if err != nil {
		respondError(c, err, nil)
		return
	}
	respondOK(c, http.StatusOK, requests, "")
}

func (h *Handler) getAssignedRequests(c *gin.Context) {
	statuses, ok := parseStatuses(c)
	if !ok {
		return
	}
	artisan, _ := middleware.GetParty(c)
	requests, err := h.Marketplace.Requests.ListAssignedTo(c.Request.Context(), artisan, statuses...)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	respondOK(c, http.StatusOK, requests, "")
}

func (h *Handler) acceptRequest(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	artisan, _ := middleware.GetParty(c)
	request, err := h.Marketplace.Requests.Accept(c.Request.Context(), id, artisan)
	if err != nil {
		respondError(c, err, request)
		return
	}
	respondOK(c, http.StatusOK, request, "Request accepted")
}

func (h *Handler) rejectRequest(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	request, err := h.Marketplace.Requests.Reject(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, request)
		return
	}
	respondOK(c, http.StatusOK, request, "Request rejected")
}

func (h *Handler) startWork(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body models.StartWork
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		respondBindError(c, err)
		return
	}
	request, err := h.Marketplace.Requests.Start(c.Request.Context(), id, body.TotalAmount)
	if err != nil {
		respondError(c, err, request)
		return
	}
	respondOK(c, http.StatusOK, request, "Work started")
}

func (h *Handler) completeWork(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	request, err := h.Marketplace.Requests.Complete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, request)
		return
	}
	respondOK(c, http.StatusOK, request, "Job completed")
}
