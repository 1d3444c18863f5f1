package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PingHandler GET /ping
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// HealthChecker optional dependency probe
type HealthChecker interface {
	IsConnected() bool
}

// HealthCheckHandler GET /health
// db is required; bus may be nil when NATS is not configured.
func HealthCheckHandler(db *gorm.DB, bus HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		checks := gin.H{}

		dbStatus := "ok"
		if sqlDB, err := db.DB(); err != nil {
			dbStatus = err.Error()
		} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			dbStatus = err.Error()
		}
		if dbStatus != "ok" {
			status = http.StatusServiceUnavailable
		}
		checks["database"] = dbStatus

		if bus != nil {
			if bus.IsConnected() {
				checks["nats"] = "ok"
			} else {
				checks["nats"] = "disconnected"
			}
		}

		c.JSON(status, gin.H{
			"status":    http.StatusText(status),
			"service":   "crosschain-hub",
			"checks":    checks,
			"timestamp": time.Now().Unix(),
		})
	}
}
