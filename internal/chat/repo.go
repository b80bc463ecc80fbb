package chat

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Repo is the gateway to the durable message store.
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// EnsureConversation returns the persisted record for the pair, creating it
// on first contact. Safe to race: the unique index on conversation_id makes
// the losing insert fall back to a read.
func (r *Repo) EnsureConversation(ctx context.Context, userA, userB string) (*Conversation, error) {
	key, err := Key(userA, userB)
	if err != nil {
		return nil, err
	}

	var conv Conversation
	err = r.db.WithContext(ctx).Where("conversation_id = ?", key).First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Store participants in key order so the row is identical no matter
	// which side created it.
	a, b := userA, userB
	if b < a {
		a, b = b, a
	}
	conv = Conversation{ConversationID: key, UserA: a, UserB: b}
	if err := r.db.WithContext(ctx).Create(&conv).Error; err != nil {
		var existing Conversation
		if getErr := r.db.WithContext(ctx).Where("conversation_id = ?", key).First(&existing).Error; getErr == nil {
			return &existing, nil
		}
		return nil, err
	}
	return &conv, nil
}

// History returns every message of a conversation, oldest first. Ties on
// timestamp keep insert order via the id column.
func (r *Repo) History(ctx context.Context, conversationID string) ([]Message, error) {
	var msgs []Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("timestamp ASC, id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// Append persists a message. The store assigns the message id and the
// timestamp here, at persist time, so ordering never depends on sender
// clocks. The passed message is updated in place with both.
func (r *Repo) Append(ctx context.Context, m *Message) error {
	if m.MessageID == "" {
		id, err := NewMessageID()
		if err != nil {
			return err
		}
		m.MessageID = id
	}
	m.Timestamp = time.Now().UTC()
	return r.db.WithContext(ctx).Create(m).Error
}

// ListConversations returns every conversation the user participates in,
// in creation order, together with each conversation's newest message
// (nil for threads nobody has written to yet).
func (r *Repo) ListConversations(ctx context.Context, userID string) ([]Conversation, map[string]*Message, error) {
	var convs []Conversation
	if err := r.db.WithContext(ctx).
		Where("user_a = ? OR user_b = ?", userID, userID).
		Order("id ASC").
		Find(&convs).Error; err != nil {
		return nil, nil, err
	}
	if len(convs) == 0 {
		return convs, map[string]*Message{}, nil
	}

	ids := make([]string, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.ConversationID)
	}

	var msgs []Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id IN ?", ids).
		Order("timestamp ASC, id ASC").
		Find(&msgs).Error; err != nil {
		return nil, nil, err
	}

	last := make(map[string]*Message, len(convs))
	for i := range msgs {
		last[msgs[i].ConversationID] = &msgs[i]
	}
	return convs, last, nil
}

func (r *Repo) CreateDocument(ctx context.Context, d *DocumentTransfer) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *Repo) DocumentsSent(ctx context.Context, userID string) ([]DocumentTransfer, error) {
	var docs []DocumentTransfer
	if err := r.db.WithContext(ctx).
		Where("sender_id = ?", userID).
		Order("id DESC").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *Repo) DocumentsReceived(ctx context.Context, userID string) ([]DocumentTransfer, error) {
	var docs []DocumentTransfer
	if err := r.db.WithContext(ctx).
		Where("recipient_id = ?", userID).
		Order("id DESC").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}
