// internal/notification/realtime.go
// Redis pub/sub relay so every API instance can reach a user's websocket

package notification

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/imadgeboyega/covenant-backend/internal/common/logger"
)

// ChannelPrefix prefixes the per-user pub/sub channel
const ChannelPrefix = "notifications:"

// UserChannel returns the pub/sub channel for a user
func UserChannel(userID string) string {
	return ChannelPrefix + userID
}

// RedisPublisher publishes events for the websocket hubs to pick up
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Name() string { return "realtime" }

func (p *RedisPublisher) Dispatch(ctx context.Context, ev Event) error {
	if p.client == nil {
		return ErrNotConfigured
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, UserChannel(ev.UserID), data).Err()
}

// Relay forwards events published on the per-user channels into the local
// hub until ctx is cancelled.
func (h *Hub) Relay(ctx context.Context, client *redis.Client) error {
	pubsub := client.PSubscribe(ctx, ChannelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	logger.Info().Str("pattern", ChannelPrefix+"*").Msg("realtime relay subscribed")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logger.Warn().Err(err).Str("channel", msg.Channel).Msg("dropping malformed realtime message")
				continue
			}
			if ev.UserID == "" {
				ev.UserID = strings.TrimPrefix(msg.Channel, ChannelPrefix)
			}
			if err := h.Dispatch(ctx, ev); err != nil {
				return nil
			}
		}
	}
}
