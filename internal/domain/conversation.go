package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	ConversationDirect = "direct"
	ConversationGroup  = "group"
)

// Conversation holds membership and the last-activity marker. Participants
// are kept in creation order: for groups the creator is always first, for
// direct conversations the requester comes before the other user.
type Conversation struct {
	ID            uuid.UUID   `json:"id"`
	Name          *string     `json:"name,omitempty"`
	Type          string      `json:"type"`
	Participants  []uuid.UUID `json:"participants"`
	CreatedBy     uuid.UUID   `json:"created_by"`
	LastMessageAt *time.Time  `json:"last_message_at,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

// HasParticipant reports whether userID is a member of the conversation.
// Every conversation-scoped read or write goes through this check.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// DirectKey returns the canonical key for the unordered pair (a, b). Direct
// conversations carry this key under a unique index, so two racing creates
// for the same pair cannot both insert.
func DirectKey(a, b uuid.UUID) string {
	if a.String() > b.String() {
		a, b = b, a
	}
	return a.String() + ":" + b.String()
}

// ConversationDetail is a conversation enriched for listing: each member
// resolved to a profile-augmented record plus the most recent message.
type ConversationDetail struct {
	Conversation
	Members     []UserWithProfile `json:"members"`
	LastMessage *Message          `json:"last_message,omitempty"`
}
