package live

import (
	"context"
	"log/slog"
	"sync"

	"github.com/skillswaphq/skillswap-chat/internal/chat"
)

// MemoryChannel is an in-process Channel for tests and single-node
// deployments. Delivery is synchronous: Publish invokes every subscriber
// handler before returning, so all subscribers of a topic observe the same
// order for messages published from one goroutine.
type MemoryChannel struct {
	mu     sync.RWMutex
	topics map[string]map[uint64]chat.LiveHandler
	nextID uint64
	closed bool
	logger *slog.Logger
}

func NewMemoryChannel(logger *slog.Logger) *MemoryChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryChannel{
		topics: make(map[string]map[uint64]chat.LiveHandler),
		logger: logger,
	}
}

func (c *MemoryChannel) Publish(_ context.Context, topic string, m chat.Message) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		c.logger.Warn("publish on closed channel", "topic", topic)
		return nil
	}
	handlers := make([]chat.LiveHandler, 0, len(c.topics[topic]))
	for _, h := range c.topics[topic] {
		handlers = append(handlers, h)
	}
	c.mu.RUnlock()

	for _, h := range handlers {
		h(m)
	}
	return nil
}

func (c *MemoryChannel) Subscribe(_ context.Context, topic string, h chat.LiveHandler) (chat.Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.topics[topic] == nil {
		c.topics[topic] = make(map[uint64]chat.LiveHandler)
	}
	c.nextID++
	id := c.nextID
	c.topics[topic][id] = h
	return &memorySubscription{channel: c, topic: topic, id: id}, nil
}

// Close drops all subscriptions; later publishes are logged and discarded.
func (c *MemoryChannel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.topics = make(map[string]map[uint64]chat.LiveHandler)
}

type memorySubscription struct {
	channel *MemoryChannel
	topic   string
	id      uint64
	once    sync.Once
}

func (s *memorySubscription) Close() error {
	s.once.Do(func() {
		s.channel.mu.Lock()
		defer s.channel.mu.Unlock()
		if handlers := s.channel.topics[s.topic]; handlers != nil {
			delete(handlers, s.id)
			if len(handlers) == 0 {
				delete(s.channel.topics, s.topic)
			}
		}
	})
	return nil
}
