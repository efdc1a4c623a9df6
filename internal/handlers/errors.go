package handlers

import (
	"errors"
	"net/http"

	"github.com/birlikkoshan/todo-api/internal/service"

	"github.com/gin-gonic/gin"
)

// writeError maps service errors to HTTP statuses. Unknown errors become a
// generic 500 and are attached to the gin context for the access log.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
}
