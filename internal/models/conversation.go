package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Conversation describes a chat between a brand and a creator.
type Conversation struct {
	ID        uuid.UUID `db:"id" json:"id"`
	BrandID   uuid.UUID `db:"brand_id" json:"brand_id"`
	CreatorID uuid.UUID `db:"creator_id" json:"creator_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// IsParticipant reports whether userID belongs to the conversation.
func (c *Conversation) IsParticipant(userID uuid.UUID) bool {
	return userID == c.BrandID || userID == c.CreatorID
}

// Message describes a chat message.
type Message struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	ConversationID uuid.UUID  `db:"conversation_id" json:"conversation_id"`
	AuthorID       uuid.UUID  `db:"author_id" json:"author_id"`
	Content        string     `db:"content" json:"content"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Notification describes an event delivered to a user.
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
