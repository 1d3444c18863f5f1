package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"
	"github.com/sirupsen/logrus"
)

// AdminTOTPHeader carries the admin one-time code
const AdminTOTPHeader = "X-Admin-TOTP"

// AdminAuthMiddleware second factor for admin routes
type AdminAuthMiddleware struct {
	logger *logrus.Logger
	secret string
}

// NewAdminAuthMiddleware creates the admin second-factor middleware.
// An empty secret disables the check.
func NewAdminAuthMiddleware(logger *logrus.Logger, totpSecret string) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{
		logger: logger,
		secret: totpSecret,
	}
}

// RequireTOTP validates the X-Admin-TOTP code when a secret is configured
func (a *AdminAuthMiddleware) RequireTOTP() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.secret == "" {
			c.Next()
			return
		}

		code := c.GetHeader(AdminTOTPHeader)
		if code == "" || !totp.Validate(code, a.secret) {
			a.logger.WithFields(logrus.Fields{
				"path":      c.Request.URL.Path,
				"method":    c.Request.Method,
				"client_ip": c.ClientIP(),
				"has_code":  code != "",
			}).Warn("Admin auth failed - invalid one-time code")

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "INVALID_TOTP",
				"message": "A valid " + AdminTOTPHeader + " code is required",
			})
			return
		}
		c.Next()
	}
}
