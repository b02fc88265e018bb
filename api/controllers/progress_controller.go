package controllers

import (
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	"github.com/hyeonkim-dev/docintake/api/middlewares"
	"github.com/hyeonkim-dev/docintake/intake"
	"github.com/hyeonkim-dev/docintake/tool"
	"github.com/hyeonkim-dev/docintake/types"
)

type ProgressController struct {
	broker *intake.ProgressBroker
}

func NewProgressController(broker *intake.ProgressBroker) *ProgressController {
	return &ProgressController{broker: broker}
}

// HandleProgress streams progress events for the caller's batch uploads as
// server-sent events. The stream stays open until the client disconnects;
// upload completion does not end it, so one stream can cover several batches.
// GET /api/intake/v1/progress
func (ctrl *ProgressController) HandleProgress(c *gin.Context) {
	subscriberKey := c.GetString(middlewares.ContextUserID)

	events, cancel := ctrl.broker.Subscribe(subscriberKey)
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	tool.DefaultLogger.Infof("[Progress] Stream opened for %s", subscriberKey)
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case event, ok := <-events:
			if !ok {
				return false
			}
			writeSSE(w, event)
			return true
		}
	})
	tool.DefaultLogger.Infof("[Progress] Stream closed for %s", subscriberKey)
}

func writeSSE(w io.Writer, event *types.ProgressEvent) {
	payload, err := sonic.Marshal(event)
	if err != nil {
		tool.DefaultLogger.Errorf("[Progress] Failed to encode event: %v", err)
		return
	}
	_, _ = w.Write([]byte("data: "))
	_, _ = w.Write(payload)
	_, _ = w.Write([]byte("\n\n"))
}
