package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

const (
	connKeyPrefix = "docintake:conn:"
	connSetKey    = "docintake:conns"

	// Stale-connection guard: records expire if the disconnect event is lost
	// (e.g. the process died mid-session).
	connTTL = 24 * time.Hour
)

// RedisRegistry stores connection records in Redis so multiple service nodes
// can see each other's connections.
type RedisRegistry struct {
	client *redis.Client
}

var _ Registry = (*RedisRegistry)(nil)

func NewRedisRegistry(client *redis.Client) *RedisRegistry {
	return &RedisRegistry{client: client}
}

func (r *RedisRegistry) Connect(ctx context.Context, connectionID string) error {
	record := Connection{
		ConnectionID: connectionID,
		Timestamp:    time.Now().UnixMilli(),
	}
	payload, err := sonic.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode connection record: %w", err)
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, connKeyPrefix+connectionID, payload, connTTL)
	pipe.SAdd(ctx, connSetKey, connectionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store connection %s: %w", connectionID, err)
	}
	return nil
}

func (r *RedisRegistry) Disconnect(ctx context.Context, connectionID string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, connKeyPrefix+connectionID)
	pipe.SRem(ctx, connSetKey, connectionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete connection %s: %w", connectionID, err)
	}
	return nil
}

func (r *RedisRegistry) List(ctx context.Context) ([]Connection, error) {
	ids, err := r.client.SMembers(ctx, connSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	out := make([]Connection, 0, len(ids))
	for _, id := range ids {
		payload, err := r.client.Get(ctx, connKeyPrefix+id).Bytes()
		if err == redis.Nil {
			// Record expired but the set entry survived; clean it up.
			r.client.SRem(ctx, connSetKey, id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read connection %s: %w", id, err)
		}
		var c Connection
		if err := sonic.Unmarshal(payload, &c); err != nil {
			return nil, fmt.Errorf("failed to decode connection %s: %w", id, err)
		}
		out = append(out, c)
	}
	return out, nil
}
