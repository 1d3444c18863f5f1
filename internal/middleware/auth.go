package middleware

import (
	"net/http"
	"strings"

	"crosschain-hub/internal/apperrors"
	"crosschain-hub/internal/handlers"
	"crosschain-hub/internal/types"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthMiddleware JWT caller identity
type AuthMiddleware struct {
	logger *logrus.Logger
	secret []byte
}

// NewAuthMiddleware creates the JWT middleware
func NewAuthMiddleware(logger *logrus.Logger, secret string) *AuthMiddleware {
	return &AuthMiddleware{
		logger: logger,
		secret: []byte(secret),
	}
}

// RequireAuth rejects requests without a valid bearer token
func (a *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			a.logger.WithFields(logrus.Fields{
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Warn("JWT auth failed - missing or malformed Authorization header")
			a.reject(c, "Authorization header must be in format: Bearer <token>")
			return
		}

		identity, err := a.identityFromToken(tokenString)
		if err != nil {
			a.logger.WithFields(logrus.Fields{
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
				"error":  err.Error(),
			}).Warn("JWT auth failed - token rejected")
			a.reject(c, "Invalid or expired token")
			return
		}

		c.Set(handlers.IdentityKey, identity)
		a.logger.WithFields(logrus.Fields{
			"path":     c.Request.URL.Path,
			"identity": identity.Hex(),
		}).Debug("JWT auth succeeded")
		c.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present.
// The token may also be passed as ?token= for websocket upgrades.
func (a *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			tokenString = c.Query("token")
		}
		if tokenString != "" {
			if identity, err := a.identityFromToken(tokenString); err == nil {
				c.Set(handlers.IdentityKey, identity)
			}
		}
		c.Next()
	}
}

func (a *AuthMiddleware) identityFromToken(tokenString string) (types.Address, error) {
	claims, err := handlers.ValidateJWTToken(tokenString, a.secret)
	if err != nil {
		return types.Address{}, err
	}
	return types.ParseAddress(claims.Identity)
}

func (a *AuthMiddleware) reject(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   string(apperrors.CodeUnauthenticated),
		"message": message,
	})
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}
