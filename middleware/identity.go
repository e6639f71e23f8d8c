package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"juaconnect-server/models"
)

// Identity headers sent by the dashboard. They name the caller, they do
// not authenticate it.
const (
	HeaderUserRole  = "X-User-Role"
	HeaderUserName  = "X-User-Name"
	HeaderUserEmail = "X-User-Email"
	HeaderRequestID = "X-Request-ID"
)

// Context keys
const (
	ContextRoleKey      = "user_role"
	ContextPartyKey     = "user_party"
	ContextRequestIDKey = "request_id"
)

// IdentityMiddleware reads the identity headers into the context
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderUserRole)))
		if role != "" {
			c.Set(ContextRoleKey, role)
		}
		party := models.Party{
			Name:  strings.TrimSpace(c.GetHeader(HeaderUserName)),
			Email: strings.TrimSpace(c.GetHeader(HeaderUserEmail)),
		}
		if party.Key() != "" {
			c.Set(ContextPartyKey, party)
		}
		c.Next()
	}
}

// RequireRole aborts with identity_required unless the caller declared role.
// When withParty is set the caller must also be named.
func RequireRole(role models.Role, withParty bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if models.Role(c.GetString(ContextRoleKey)) != role {
			abortIdentity(c, "This endpoint requires the "+string(role)+" role ("+HeaderUserRole+" header)")
			return
		}
		if _, ok := GetParty(c); withParty && !ok {
			abortIdentity(c, "Missing "+HeaderUserName+" or "+HeaderUserEmail+" header")
			return
		}
		c.Next()
	}
}

// GetRole returns the caller's declared role
func GetRole(c *gin.Context) (models.Role, bool) {
	role := models.Role(c.GetString(ContextRoleKey))
	return role, role.IsValid()
}

// GetParty returns the caller's name and email
func GetParty(c *gin.Context) (models.Party, bool) {
	value, exists := c.Get(ContextPartyKey)
	if !exists {
		return models.Party{}, false
	}
	party, ok := value.(models.Party)
	return party, ok
}

// RequestIDMiddleware propagates or assigns a request id
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(ContextRequestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func abortIdentity(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   "identity_required",
		"message": message,
	})
}
