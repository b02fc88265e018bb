package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/hyeonkim-dev/docintake/registry"
	"github.com/hyeonkim-dev/docintake/tool"
	"github.com/hyeonkim-dev/docintake/types"
)

// ErrNotifyDelivery marks a failed push to a closed or unknown connection.
// Callers treat delivery as best-effort and never let this abort a job.
var ErrNotifyDelivery = errors.New("notify delivery failed")

// Notifier pushes progress events to the connection a job originated from
// and can force-close that connection after a terminal event.
type Notifier interface {
	Send(ctx context.Context, connectionID string, event *types.ProgressEvent) error
	Close(connectionID string) error
}

// conn wraps a WebSocket connection with a write mutex; gorilla allows only
// one concurrent writer.
type conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

// Hub holds live WebSocket connections keyed by connection id and keeps the
// durable connection registry in sync with them.
type Hub struct {
	mu       sync.RWMutex
	conns    map[string]*conn
	registry registry.Registry
}

var _ Notifier = (*Hub)(nil)

func NewHub(reg registry.Registry) *Hub {
	return &Hub{
		conns:    make(map[string]*conn),
		registry: reg,
	}
}

// Register adds a connection to the hub and inserts its registry record.
func (h *Hub) Register(ctx context.Context, connectionID string, ws *websocket.Conn) error {
	if err := h.registry.Connect(ctx, connectionID); err != nil {
		return fmt.Errorf("failed to register connection %s: %w", connectionID, err)
	}
	h.mu.Lock()
	h.conns[connectionID] = &conn{ws: ws}
	h.mu.Unlock()
	tool.DefaultLogger.Infof("[Hub] Connected: %s", connectionID)
	return nil
}

// Unregister removes the connection and deletes its registry record.
// Idempotent: unregistering an unknown id is a no-op.
func (h *Hub) Unregister(ctx context.Context, connectionID string) error {
	h.mu.Lock()
	delete(h.conns, connectionID)
	h.mu.Unlock()
	if err := h.registry.Disconnect(ctx, connectionID); err != nil {
		return fmt.Errorf("failed to unregister connection %s: %w", connectionID, err)
	}
	tool.DefaultLogger.Infof("[Hub] Disconnected: %s", connectionID)
	return nil
}

// Send serializes the event and pushes it over the connection.
func (h *Hub) Send(_ context.Context, connectionID string, event *types.ProgressEvent) error {
	h.mu.RLock()
	c, ok := h.conns[connectionID]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: unknown connection %s", ErrNotifyDelivery, connectionID)
	}
	payload, err := sonic.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrNotifyDelivery, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("%w: %v", ErrNotifyDelivery, err)
	}
	return nil
}

// Close force-terminates the channel after a terminal event. The read loop
// notices the closed socket and unregisters the connection.
func (h *Hub) Close(connectionID string) error {
	h.mu.RLock()
	c, ok := h.conns[connectionID]
	h.mu.RUnlock()
	if !ok {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "job completed"))
	return c.ws.Close()
}

// Broadcast pushes an event to every live connection. Kept as a capability
// for server-wide announcements; delivery is best-effort per connection.
func (h *Hub) Broadcast(ctx context.Context, event *types.ProgressEvent) {
	h.mu.RLock()
	ids := make([]string, 0, len(h.conns))
	for id := range h.conns {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	for _, id := range ids {
		if err := h.Send(ctx, id, event); err != nil {
			tool.DefaultLogger.Debugf("[Hub] Broadcast to %s failed: %v", id, err)
		}
	}
}
