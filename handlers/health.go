package handlers

import (
	"net/http"

	"hustlr/utils"

	"github.com/gin-gonic/gin"
)

// Health reports the latest snapshot of the health monitor.
func Health(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": http.StatusText(code), "checks": status})
}
