package models

import (
	"time"

	"github.com/google/uuid"
)

// StyleProfile is the structured result of analyzing a user's style request.
// It is produced once per conversation turn and never mutated afterwards.
type StyleProfile struct {
	ID         uuid.UUID `json:"id" db:"id"`
	MessageID  uuid.UUID `json:"message_id" db:"message_id"`
	Aesthetics []string  `json:"aesthetics"`
	Colors     []string  `json:"colors"`
	Textures   []string  `json:"textures"`
	Mood       []string  `json:"mood"`
	Keywords   []string  `json:"keywords"`
	Budget     *float64  `json:"budget,omitempty"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// IsEmpty reports whether the profile carries no usable attributes.
func (p StyleProfile) IsEmpty() bool {
	return len(p.Aesthetics) == 0 && len(p.Colors) == 0 &&
		len(p.Textures) == 0 && len(p.Mood) == 0 && len(p.Keywords) == 0
}

// SearchTerms returns the terms used for catalog queries, keywords first.
func (p StyleProfile) SearchTerms() []string {
	terms := make([]string, 0, len(p.Keywords)+len(p.Aesthetics))
	terms = append(terms, p.Keywords...)
	terms = append(terms, p.Aesthetics...)
	return terms
}
