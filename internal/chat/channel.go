package chat

import "context"

// LiveHandler receives messages broadcast on a subscribed topic.
type LiveHandler func(Message)

// Subscription is a handle to one topic subscription. Close is idempotent;
// after it returns no further deliveries reach the handler.
type Subscription interface {
	Close() error
}

// Channel is the live transport connecting the connected participants of a
// conversation. Topics are canonical conversation keys, so both sides of a
// pair always subscribe to the identical topic.
type Channel interface {
	Subscribe(ctx context.Context, topic string, h LiveHandler) (Subscription, error)
	Publish(ctx context.Context, topic string, m Message) error
}

// Deliverer carries an outbound message toward persistence and broadcast.
// Implementations may be synchronous (Exchange) or queue-backed (the
// rabbitmq publisher); the session engine treats both as fire-and-forget.
type Deliverer interface {
	Deliver(ctx context.Context, m Message) error
}

// HistoryStore is the read side of the durable message store.
type HistoryStore interface {
	History(ctx context.Context, conversationID string) ([]Message, error)
}

// ProfileDirectory resolves a user id to a human display name. Lookups are
// best effort; callers fall back to the raw id.
type ProfileDirectory interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}
