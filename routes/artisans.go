package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"juaconnect-server/middleware"
	"juaconnect-server/models"
)

// RegisterArtisanRoutes registers the artisan directory and profile routes
func RegisterArtisanRoutes(router *gin.RouterGroup, h *Handler) {
	artisans := router.Group("/artisans")
	{
		artisans.GET("", h.searchArtisans)
		artisans.GET("/:id", h.getArtisan)
	}

	profile := router.Group("/artisan/profile")
	profile.Use(middleware.RequireRole(models.RoleArtisan, true))
	{
		profile.GET("", h.getMyArtisanProfile)
		profile.PUT("", h.updateArtisanProfile)
	}
}

func (h *Handler) searchArtisans(c *gin.Context) {
	artisans, err := h.Marketplace.Directory.Search(c.Request.Context(), c.Query("service_category"), c.Query("location"))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	respondOK(c, http.StatusOK, artisans, "")
}

func (h *Handler) getArtisan(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	artisan, err := h.Marketplace.Directory.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	respondOK(c, http.StatusOK, artisan, "")
}

func (h *Handler) getMyArtisanProfile(c *gin.Context) {
	party, _ := middleware.GetParty(c)
	profile, err := h.Marketplace.Directory.Profile(c.Request.Context(), party)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	respondOK(c, http.StatusOK, profile, "")
}

// updateArtisanProfile saves the caller's profile. The identity headers
// fill in a missing username or email.
func (h *Handler) updateArtisanProfile(c *gin.Context) {
	var profile models.ArtisanProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		respondBindError(c, err)
		return
	}
	party, _ := middleware.GetParty(c)
	if profile.Email == "" {
		profile.Email = party.Email
	}
	if profile.Username == "" {
		profile.Username = party.Name
	}

	saved, err := h.Marketplace.Directory.UpsertProfile(c.Request.Context(), profile)
	if err != nil {
		respondError(c, err, saved)
		return
	}
	respondOK(c, http.StatusOK, saved, "Profile updated successfully")
}
