package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	MessageText       = "text"
	MessageAttachment = "attachment"
)

// Message is an append-only ledger entry. Exactly one of Content or the
// attachment fields is populated, matching Type. Messages are never edited,
// deleted, or moved to another conversation.
type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	Type           string    `json:"type"`
	Content        *string   `json:"content,omitempty"`
	AttachmentRef  *string   `json:"attachment_ref,omitempty"`
	AttachmentName *string   `json:"attachment_name,omitempty"`
	AttachmentType *string   `json:"attachment_type,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// MessageDetail is a message enriched for reads: the sender resolved to a
// profile-augmented record and, for attachments, a freshly signed download
// URL. The URL is never stored; it is minted on every read because signed
// URLs expire.
type MessageDetail struct {
	Message
	Sender        UserWithProfile `json:"sender"`
	AttachmentURL *string         `json:"attachment_url,omitempty"`
}
