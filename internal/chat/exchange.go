package chat

import (
	"context"
	"fmt"
)

// Exchange is the server half of the live channel: it persists an outbound
// message (the store assigns id and timestamp) and then broadcasts the
// persisted form to every subscriber of the conversation topic, the sender
// included. The delivery worker calls this for queued messages; tests and
// single-node deployments use it directly as the session Deliverer.
type Exchange struct {
	repo    *Repo
	channel Channel
}

func NewExchange(repo *Repo, channel Channel) *Exchange {
	return &Exchange{repo: repo, channel: channel}
}

func (e *Exchange) Deliver(ctx context.Context, m Message) error {
	if _, err := e.repo.EnsureConversation(ctx, m.SenderID, m.RecipientID); err != nil {
		return fmt.Errorf("ensure conversation: %w", err)
	}
	if err := e.repo.Append(ctx, &m); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	if err := e.channel.Publish(ctx, m.ConversationID, m); err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}
