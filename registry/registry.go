// Package registry persists one record per active WebSocket connection.
package registry

import "context"

// Connection is a single live real-time session.
type Connection struct {
	ConnectionID string `json:"connectionId"`
	Timestamp    int64  `json:"timestamp"`
}

// Registry stores connection records. Connect inserts, Disconnect deletes by
// id (absence of the key is not an error), List returns all current records
// for potential broadcast.
type Registry interface {
	Connect(ctx context.Context, connectionID string) error
	Disconnect(ctx context.Context, connectionID string) error
	List(ctx context.Context) ([]Connection, error)
}
