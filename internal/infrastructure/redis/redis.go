package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/begintolern/linkmint-core/internal/config"
	"github.com/redis/go-redis/v9"
)

func NewClient(cfg *config.PayoutConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis %s: %w", cfg.Redis.Addr, err)
	}
	return client, nil
}

// HeartbeatMarker dedups the daily ops heartbeat across watchdog replicas.
// SetNX makes exactly one caller per UTC day the sender; the TTL keeps the
// keyspace from accumulating.
type HeartbeatMarker struct {
	Client *redis.Client
}

func NewHeartbeatMarker(client *redis.Client) *HeartbeatMarker {
	return &HeartbeatMarker{Client: client}
}

func (m *HeartbeatMarker) MarkSent(day string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	key := fmt.Sprintf("ops:heartbeat:%s", day)
	return m.Client.SetNX(ctx, key, "1", 48*time.Hour).Result()
}
