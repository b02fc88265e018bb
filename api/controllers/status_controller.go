package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hyeonkim-dev/docintake/registry"
	"github.com/hyeonkim-dev/docintake/tool"
)

type StatusController struct {
	registry  registry.Registry
	startedAt time.Time
}

func NewStatusController(reg registry.Registry) *StatusController {
	return &StatusController{registry: reg, startedAt: time.Now()}
}

// HandleStatus reports service health and the number of live WebSocket
// connections.
// GET /api/intake/v1/status
func (ctrl *StatusController) HandleStatus(c *gin.Context) {
	conns, err := ctrl.registry.List(c.Request.Context())
	if err != nil {
		tool.DefaultLogger.Errorf("[Status] Failed to list connections: %v", err)
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to read connection registry"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"activeConnections": len(conns),
		"uptimeSeconds":     int(time.Since(ctrl.startedAt).Seconds()),
	})
}
