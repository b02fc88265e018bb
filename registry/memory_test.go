package registry

import (
	"context"
	"testing"
)

func TestMemoryRegistryConnectDisconnect(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()

	if err := reg.Connect(ctx, "conn-1"); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	if err := reg.Connect(ctx, "conn-2"); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	conns, err := reg.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(conns) != 2 {
		t.Errorf("expected 2 connections, got %d", len(conns))
	}
	for _, c := range conns {
		if c.Timestamp == 0 {
			t.Errorf("connection %s has no timestamp", c.ConnectionID)
		}
	}

	if err := reg.Disconnect(ctx, "conn-1"); err != nil {
		t.Fatalf("disconnect failed: %v", err)
	}
	conns, _ = reg.List(ctx)
	if len(conns) != 1 || conns[0].ConnectionID != "conn-2" {
		t.Errorf("expected only conn-2 to remain, got %v", conns)
	}
}

func TestMemoryRegistryDisconnectUnknownIsNoop(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()

	if err := reg.Disconnect(ctx, "never-connected"); err != nil {
		t.Errorf("disconnecting an unknown id must not error, got %v", err)
	}

	// Repeated disconnects of the same id stay silent too.
	_ = reg.Connect(ctx, "conn-1")
	_ = reg.Disconnect(ctx, "conn-1")
	if err := reg.Disconnect(ctx, "conn-1"); err != nil {
		t.Errorf("second disconnect must be a no-op, got %v", err)
	}
}

func TestMemoryRegistryReconnectReplacesRecord(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()

	_ = reg.Connect(ctx, "conn-1")
	_ = reg.Connect(ctx, "conn-1")

	conns, _ := reg.List(ctx)
	if len(conns) != 1 {
		t.Errorf("reconnect with the same id must not duplicate records, got %d", len(conns))
	}
}
