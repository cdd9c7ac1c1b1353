package notify

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/i474232898/weather-notifier/internal/weather"
)

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisSink publishes each dataset on a Redis pub/sub channel.
type RedisSink struct {
	client  redisPublisher
	closer  func() error
	channel string
}

// NewRedisSink returns a sink publishing to channel on the server at addr.
func NewRedisSink(addr, channel string) *RedisSink {
	c := redis.NewClient(&redis.Options{Addr: addr})
	sink := newRedisSink(c, channel)
	sink.closer = c.Close
	return sink
}

func newRedisSink(client redisPublisher, channel string) *RedisSink {
	return &RedisSink{client: client, channel: channel}
}

func (r *RedisSink) Emit(ctx context.Context, ds weather.Dataset) error {
	payload, err := encode(ds)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish to %s: %w", r.channel, err)
	}
	return nil
}

func (r *RedisSink) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer()
}
