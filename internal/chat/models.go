package chat

import "time"

// Conversation is the persisted record of a two-party thread. It exists as
// soon as either participant opens the thread, even before any message is
// sent, so the dashboard can list empty conversations.
type Conversation struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	ConversationID string    `gorm:"type:varchar(191);uniqueIndex;not null" json:"conversation_id"`
	UserA          string    `gorm:"type:varchar(64);index;not null" json:"-"`
	UserB          string    `gorm:"type:varchar(64);index;not null" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Conversation) TableName() string { return "chat_conversations" }

type Message struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	MessageID      string    `gorm:"type:varchar(26);uniqueIndex;not null" json:"message_id"`
	ConversationID string    `gorm:"type:varchar(191);index;not null" json:"conversation_id"`
	SenderID       string    `gorm:"type:varchar(64);index;not null" json:"sender_uid"`
	RecipientID    string    `gorm:"type:varchar(64);index;not null" json:"recipient_uid"`
	Text           string    `gorm:"type:text;not null" json:"text"`
	FileURL        *string   `gorm:"type:varchar(512)" json:"file_url,omitempty"`
	FileName       *string   `gorm:"type:varchar(255)" json:"file_name,omitempty"`
	Timestamp      time.Time `gorm:"index;not null" json:"timestamp"`
}

func (Message) TableName() string { return "chat_messages" }

// Equivalent reports whether two messages describe the same send. The live
// channel may echo a message the history fetch already returned; an
// exact-field match on sender, recipient, text and timestamp identifies it.
func (m Message) Equivalent(o Message) bool {
	return m.SenderID == o.SenderID &&
		m.RecipientID == o.RecipientID &&
		m.Text == o.Text &&
		m.Timestamp.Equal(o.Timestamp)
}

// DocumentTransfer records a file shared between two users. It is a separate
// channel from the message timeline; the dashboard reads it alongside the
// conversation list. The file bytes live in external storage.
type DocumentTransfer struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	FileName    string    `gorm:"type:varchar(255);not null" json:"file_name"`
	FileURL     string    `gorm:"type:varchar(512);not null" json:"file_url"`
	SenderID    string    `gorm:"type:varchar(64);index;not null" json:"sender_uid"`
	RecipientID string    `gorm:"type:varchar(64);index;not null" json:"recipient_uid"`
	CreatedAt   time.Time `json:"created_at"`
}

func (DocumentTransfer) TableName() string { return "document_transfers" }

// ConversationSummary is one row of the dashboard chat list.
type ConversationSummary struct {
	ConversationID string   `json:"conversation_id"`
	OtherUserID    string   `json:"other_user_uid"`
	OtherUserName  string   `json:"other_user_name"`
	LastMessage    *Message `json:"last_message,omitempty"`

	createdOrder uint64 // creation order, for stable sorting of empty threads
}
