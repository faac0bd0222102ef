package chat

import "time"

// Message is one persisted chat utterance. RecipientID is null exactly when
// the message is addressed to the assistant (IsAI set); a peer message always
// carries a recipient. The ledger is append-only: rows are never updated or
// deleted.
type Message struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SenderID    uint64    `gorm:"index:idx_chat_msg_sender;not null" json:"sender_id"`
	RecipientID *uint64   `gorm:"index:idx_chat_msg_recipient" json:"recipient_id"`
	IsAI        bool      `gorm:"not null;default:false" json:"is_ai"`
	Body        string    `gorm:"type:text;not null" json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Message) TableName() string { return "chat_messages" }
