package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/armory/internal/domain/apperrors"
	"github.com/mamadbah2/armory/internal/domain/models"
)

const actorKey = "armory.actor"

// SetActor stores the authenticated actor in the request context.
func SetActor(c *gin.Context, actor models.Actor) {
	c.Set(actorKey, actor)
}

// ActorFrom retrieves the authenticated actor set by the auth middleware.
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}

// writeError maps the error taxonomy onto HTTP statuses: validation 400,
// authorization 403, store unavailable 503, anything else 500.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case apperrors.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperrors.IsAuthorization(err):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case apperrors.IsUnavailable(err):
		logger.Error("store unavailable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage temporarily unavailable"})
	default:
		logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// mustActor aborts with 401 when no actor was attached to the request.
func mustActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing actor"})
		return models.Actor{}, false
	}
	return actor, true
}
