package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// LocalhostOnly allows loopback callers plus a configured IP/CIDR whitelist
type LocalhostOnly struct {
	logger   *logrus.Logger
	exact    []net.IP
	networks []*net.IPNet
}

// NewLocalhostOnly parses allowedIPs once; invalid entries are logged and skipped
func NewLocalhostOnly(logger *logrus.Logger, allowedIPs []string) *LocalhostOnly {
	l := &LocalhostOnly{logger: logger}
	for _, allowed := range allowedIPs {
		allowed = strings.TrimSpace(allowed)
		if allowed == "" {
			continue
		}
		if strings.Contains(allowed, "/") {
			_, ipNet, err := net.ParseCIDR(allowed)
			if err != nil {
				logger.WithFields(logrus.Fields{
					"allowed": allowed,
					"error":   err.Error(),
				}).Warn("Invalid CIDR in allowedIPs")
				continue
			}
			l.networks = append(l.networks, ipNet)
			continue
		}
		ip := net.ParseIP(allowed)
		if ip == nil {
			logger.WithField("allowed", allowed).Warn("Invalid IP in allowedIPs")
			continue
		}
		l.exact = append(l.exact, ip)
	}
	return l
}

// Restrict rejects callers outside the whitelist with 403
func (l *LocalhostOnly) Restrict() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if !l.isAllowedIP(clientIP) {
			l.logger.WithFields(logrus.Fields{
				"client_ip":  clientIP,
				"path":       c.Request.URL.Path,
				"method":     c.Request.Method,
				"user_agent": c.GetHeader("User-Agent"),
			}).Warn("Reject non-whitelisted access to admin API")

			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "IP_NOT_ALLOWED",
				"message": "This API is only accessible from allowed IP addresses",
			})
			return
		}
		c.Next()
	}
}

func (l *LocalhostOnly) isAllowedIP(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	if parsed.IsLoopback() {
		return true
	}
	for _, allowed := range l.exact {
		if allowed.Equal(parsed) {
			return true
		}
	}
	for _, network := range l.networks {
		if network.Contains(parsed) {
			return true
		}
	}
	return false
}
