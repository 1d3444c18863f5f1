package middleware

import (
	"net/http"
	"strconv"

	"crosschain-hub/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsAllowHeaders = "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization, Cache-Control, Accept, " + AdminTOTPHeader
)

// CORS applies the configured origin whitelist. No origins configured means "*".
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	allowAll := len(cfg.AllowedOrigins) == 0
	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = 3600
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowAll:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && allowed[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			if cfg.AllowCredentials {
				c.Header("Access-Control-Allow-Credentials", "true")
			}
		case origin != "":
			logrus.WithFields(logrus.Fields{
				"request_origin": origin,
				"path":           c.Request.URL.Path,
				"method":         c.Request.Method,
			}).Warn("CORS: origin not in whitelist")
		}

		c.Header("Access-Control-Allow-Methods", corsAllowMethods)
		c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
		c.Header("Access-Control-Max-Age", strconv.Itoa(maxAge))

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
