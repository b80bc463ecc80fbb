// Package live provides transports for near-real-time message broadcast
// between the connected participants of a conversation. Topics are canonical
// conversation keys; payloads are the persisted message records.
package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/skillswaphq/skillswap-chat/internal/chat"
)

const topicPrefix = "chat:conv:"

// RedisChannel broadcasts messages over Redis Pub/Sub. One long-lived
// client is shared by every session in the process; each subscription owns
// its own PubSub connection and receive loop.
type RedisChannel struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisChannel(client *redis.Client, logger *slog.Logger) *RedisChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisChannel{client: client, logger: logger}
}

func (c *RedisChannel) Publish(ctx context.Context, topic string, m chat.Message) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, topicPrefix+topic, payload).Err()
}

func (c *RedisChannel) Subscribe(ctx context.Context, topic string, h chat.LiveHandler) (chat.Subscription, error) {
	ps := c.client.Subscribe(ctx, topicPrefix+topic)

	// Block until the server confirms the subscription, so a message
	// published right after Subscribe returns cannot be missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	go func() {
		for msg := range ps.Channel() {
			var m chat.Message
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				c.logger.Warn("dropping undecodable live payload", "topic", topic, "error", err)
				continue
			}
			h(m)
		}
	}()

	return &redisSubscription{ps: ps}, nil
}

type redisSubscription struct {
	ps   *redis.PubSub
	once sync.Once
	err  error
}

func (s *redisSubscription) Close() error {
	s.once.Do(func() {
		s.err = s.ps.Close()
	})
	return s.err
}
