package httpapi

import (
	"errors"
	"net/http"

	"myforum/internal/core/apperr"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// respondError نگاشت خطاهای دامنه به کد HTTP
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var validation *apperr.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": validation.Fields})
	case apperr.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperr.IsForbidden(err):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case apperr.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// postIDParam parses :id. A malformed id cannot name a stored post, so it is
// reported as not found.
func postIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "post " + c.Param("id") + " not found"})
		return uuid.Nil, false
	}
	return id, true
}
