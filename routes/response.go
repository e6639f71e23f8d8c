package routes

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"juaconnect-server/models"
	"juaconnect-server/services"
)

func respondOK(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, models.Envelope{Success: true, Data: data, Message: message})
}

// respondError maps a service error to its status code and envelope. A
// storage failure still carries data because the change was applied in
// memory.
func respondError(c *gin.Context, err error, data interface{}) {
	var (
		validationErr *services.ValidationError
		notFoundErr   *services.NotFoundError
		transitionErr *services.InvalidTransitionError
		storageErr    *services.StorageError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, models.Envelope{Error: models.ErrorKindValidation, Message: err.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, models.Envelope{Error: models.ErrorKindNotFound, Message: err.Error()})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, models.Envelope{Error: models.ErrorKindInvalidTransition, Message: err.Error()})
	case errors.As(err, &storageErr):
		log.Printf("❌ %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusServiceUnavailable, models.Envelope{
			Data:    data,
			Error:   models.ErrorKindStorage,
			Message: "Change applied but not saved; retry with POST /api/v1/state/flush",
		})
	default:
		log.Printf("❌ %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, models.Envelope{Error: models.ErrorKindInternal, Message: "Internal server error"})
	}
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.Envelope{Error: models.ErrorKindValidation, Message: "Invalid request body: " + err.Error()})
}

func respondIdentityRequired(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.Envelope{Error: models.ErrorKindIdentityRequired, Message: message})
}
