package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/muurk/klfgate/internal/logging"
)

// DefaultRedisChannel is the Pub/Sub channel events are published to.
const DefaultRedisChannel = "klfgate:notifications"

// RedisOptions configures a RedisPublisher.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Channel  string
	Queue    int // pending events before new ones are dropped
}

// RedisPublisher publishes encoded events to a Redis channel from a
// background worker so that bus handlers never block on the network.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
	queue   chan []byte
}

// NewRedisPublisher creates a publisher. No connection is made until Run.
func NewRedisPublisher(opts RedisOptions) *RedisPublisher {
	if opts.Channel == "" {
		opts.Channel = DefaultRedisChannel
	}
	if opts.Queue <= 0 {
		opts.Queue = 256
	}
	return &RedisPublisher{
		rdb: redis.NewClient(&redis.Options{
			Addr:         opts.Addr,
			Password:     opts.Password,
			DB:           opts.DB,
			DialTimeout:  2 * time.Second,
			WriteTimeout: 2 * time.Second,
		}),
		channel: opts.Channel,
		queue:   make(chan []byte, opts.Queue),
	}
}

// Ping checks that Redis is reachable.
func (p *RedisPublisher) Ping(ctx context.Context) error {
	if err := p.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Publish queues data for publishing. It reports false when the queue is
// full and the event was dropped.
func (p *RedisPublisher) Publish(data []byte) bool {
	select {
	case p.queue <- data:
		return true
	default:
		return false
	}
}

// Run publishes queued events until ctx is done.
func (p *RedisPublisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-p.queue:
			if err := p.rdb.Publish(ctx, p.channel, data).Err(); err != nil && ctx.Err() == nil {
				logging.Warn("Redis publish failed",
					zap.String("channel", p.channel),
					zap.Error(err),
				)
			}
		}
	}
}

// Close releases the Redis connection pool.
func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}
