package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/parley-chat/parley/internal/domain"
)

// ErrDuplicate is returned when an insert hits a uniqueness constraint
// (one profile per user, one direct conversation per pair). Callers treat
// it as "someone else got there first" and re-read.
var ErrDuplicate = errors.New("duplicate record")

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

type ProfileRepository interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	Create(ctx context.Context, profile *domain.Profile) error
	Update(ctx context.Context, profile *domain.Profile) error
}

type ConversationRepository interface {
	Create(ctx context.Context, conv *domain.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error)
	GetDirectByKey(ctx context.Context, key string) (*domain.Conversation, error)
	ListByParticipant(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error)
}

type MessageRepository interface {
	// Append inserts the message and advances the conversation's
	// last-message timestamp in the same transaction.
	Append(ctx context.Context, msg *domain.Message) error
	ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error)
	LatestByConversation(ctx context.Context, conversationID uuid.UUID) (*domain.Message, error)
}
