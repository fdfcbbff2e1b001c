package broadcast

import (
	"context"
	"strings"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const channelPattern = "game-*"

// RedisPublisher publishes events on the redis channel of the session code so every
// server instance running a Relay sees them.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev Event) error {
	msg, err := Encode(ev)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, Channel(ev.Code), msg).Err()
}

// Sink receives frames relayed from redis.
type Sink interface {
	Deliver(code string, msg []byte)
}

// Relay forwards every game channel message to sink until ctx is cancelled.
// ready, when non-nil, is closed once the subscription is confirmed.
func Relay(ctx context.Context, rdb *redis.Client, sink Sink, logger *zap.Logger, ready chan<- struct{}) error {
	pubsub := rdb.PSubscribe(ctx, channelPattern)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		logger.Error("Failed to subscribe to game channels", zap.Error(err))
		return err
	}
	if ready != nil {
		close(ready)
	}
	logger.Info("Relaying game channels", zap.String("pattern", channelPattern))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			code := strings.TrimPrefix(msg.Channel, "game-")
			sink.Deliver(code, []byte(msg.Payload))
		}
	}
}
