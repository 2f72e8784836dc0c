// Package mirror fans relayed lines out to a Redis pub/sub channel so other
// consumers can follow the same stream. PUBLISH stores nothing; subscribers
// that are not connected simply miss lines.
package mirror

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matst80/logrelay/internal/obs"
)

const DefaultChannel = "logrelay"

// publisher is the subset of *redis.Client the mirror needs.
type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

type Redis struct {
	client  publisher
	channel string
	timeout time.Duration
}

// NewRedis connects to addr and verifies the server answers PING.
func NewRedis(addr, password string, db int, channel string) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	obs.Info("mirror.redis", obs.Fields{"addr": addr, "db": db, "channel": channelOrDefault(channel)})
	return newRedis(rdb, channel), nil
}

func newRedis(p publisher, channel string) *Redis {
	return &Redis{client: p, channel: channelOrDefault(channel), timeout: time.Second}
}

func channelOrDefault(c string) string {
	if c == "" {
		return DefaultChannel
	}
	return c
}

// MirrorLine publishes one line. A slow Redis is cut off after the mirror
// timeout so it cannot stall the stream for long.
func (r *Redis) MirrorLine(ctx context.Context, line string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.client.Publish(ctx, r.channel, line).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", r.channel, err)
	}
	return nil
}

func (r *Redis) Close() error { return r.client.Close() }
