package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/armory/internal/config"
	"github.com/mamadbah2/armory/internal/domain/models"
	"github.com/mamadbah2/armory/internal/server/handlers"
)

// ledgerClaims is the claim set issued by the external auth service.
type ledgerClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
	Base string `json:"base"`
}

// BearerAuth validates the Authorization header and attaches the resulting
// actor to the request. Tokens are issued elsewhere; this middleware only
// verifies them.
func BearerAuth(cfg config.AuthConfig, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	secret := []byte(cfg.JWTSecret)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		actor, err := parseActor(token, secret)
		if err != nil {
			logger.Warn("token rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		handlers.SetActor(c, actor)
		c.Next()
	}
}

func parseActor(token string, secret []byte) (models.Actor, error) {
	var claims ledgerClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return models.Actor{}, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return models.Actor{}, fmt.Errorf("token is not valid")
	}

	role, ok := models.ParseRole(claims.Role)
	if !ok {
		return models.Actor{}, fmt.Errorf("unknown role %q", claims.Role)
	}

	actor := models.Actor{Name: claims.Subject, Role: role}
	if claims.Base != "" {
		baseID, err := primitive.ObjectIDFromHex(claims.Base)
		if err != nil {
			return models.Actor{}, fmt.Errorf("malformed base claim %q", claims.Base)
		}
		actor.Base = baseID
	}
	return actor, nil
}
