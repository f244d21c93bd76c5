package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"visa-portal/internal/common/database"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": s.deps.ServiceName})
}

// ready pings every wired backend. The portal degrades to fallback content
// without them, so an unconfigured backend does not fail readiness.
func (s *Server) ready(c *gin.Context) {
	status, healthy := database.CheckAll(c.Request.Context(), 2*time.Second, s.deps.Backends)

	code := http.StatusOK
	state := "ready"
	if !healthy {
		code = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(code, gin.H{"status": state, "backends": status})
}
