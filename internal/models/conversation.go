package models

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Message struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	ConversationID uuid.UUID     `json:"conversation_id" db:"conversation_id"`
	Role           string        `json:"role" db:"role"`
	Content        string        `json:"content" db:"content"`
	Products       []Product     `json:"products,omitempty"`
	StyleProfile   *StyleProfile `json:"style_profile,omitempty"`
	GuideID        *uuid.UUID    `json:"guide_id,omitempty" db:"guide_id"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
