package handlers

import (
	"errors"
	"log"
	"net/http"

	"colorrush/services"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps domain errors onto HTTP responses. Store and
// upstream failures are logged and collapsed into a generic message;
// nothing internal leaks to the client and nothing panics the process.
func respondServiceError(c *gin.Context, err error, generic string) {
	switch {
	case errors.Is(err, services.ErrInvalidAddress),
		errors.Is(err, services.ErrInvalidScore),
		errors.Is(err, services.ErrNotJoined):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNoActiveRound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Printf("%s: %v", generic, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": generic})
	}
}
