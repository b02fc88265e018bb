package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/hyeonkim-dev/docintake/intake"
	"github.com/hyeonkim-dev/docintake/tool"
	"github.com/hyeonkim-dev/docintake/types"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // browser clients connect from arbitrary origins
	},
}

type WSController struct {
	hub    *intake.Hub
	router *intake.Router
	limits types.LimitsConfig
}

func NewWSController(hub *intake.Hub, router *intake.Router, limits types.LimitsConfig) *WSController {
	return &WSController{hub: hub, router: router, limits: limits}
}

// HandleConnect upgrades the request to WebSocket, registers the connection
// and dispatches inbound messages until the client disconnects or a terminal
// event closes the socket. A pump goroutine keeps reading the socket while a
// message is being handled, so a client disconnect cancels the connection
// context mid-job; dispatch itself stays synchronous, keeping files inside
// one job in order.
func (ctrl *WSController) HandleConnect(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		tool.DefaultLogger.Errorf("[WS] Upgrade failed: %v", err)
		return
	}

	connectionID := tool.GenerateRandomUUID()
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	if err := ctrl.hub.Register(ctx, connectionID, ws); err != nil {
		tool.DefaultLogger.Errorf("[WS] Register failed: %v", err)
		_ = ws.Close()
		return
	}
	defer func() {
		if err := ctrl.hub.Unregister(context.WithoutCancel(ctx), connectionID); err != nil {
			tool.DefaultLogger.Errorf("[WS] Unregister failed: %v", err)
		}
		_ = ws.Close()
	}()

	msgs := make(chan []byte)
	go func() {
		defer cancel()
		defer close(msgs)
		for {
			_, raw, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					tool.DefaultLogger.Warnf("[WS] Connection %s closed unexpectedly: %v", connectionID, err)
				}
				return
			}
			select {
			case msgs <- raw:
			case <-ctx.Done():
				return
			}
		}
	}()

	mps := ctrl.limits.MessagesPerSecond
	if mps <= 0 {
		mps = 5
	}
	limiter := rate.NewLimiter(rate.Limit(mps), int(mps)+1)

	for raw := range msgs {
		if !limiter.Allow() {
			event := types.NewProgressEvent(types.EventError, "")
			event.Message = "Too many messages, slow down"
			if err := ctrl.hub.Send(ctx, connectionID, event); err != nil {
				tool.DefaultLogger.Debugf("[WS] Rate limit notice to %s failed: %v", connectionID, err)
			}
			continue
		}
		ctrl.router.HandleMessage(ctx, connectionID, raw)
	}
}
