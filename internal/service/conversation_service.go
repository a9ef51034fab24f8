package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/parley-chat/parley/internal/domain"
	"github.com/parley-chat/parley/internal/metrics"
	"github.com/parley-chat/parley/internal/repository"
	"golang.org/x/sync/errgroup"
)

// enrichConcurrency bounds the fan-out of per-item lookups during list
// enrichment.
const enrichConcurrency = 8

type ConversationService struct {
	convRepo    repository.ConversationRepository
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
}

func NewConversationService(
	convRepo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
) *ConversationService {
	return &ConversationService{
		convRepo:    convRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		profileRepo: profileRepo,
	}
}

// List returns the requester's conversations, each enriched with resolved
// member profiles and the most recent message, ordered by last activity.
// Anonymous callers get an empty list, not an error.
func (s *ConversationService) List(ctx context.Context, requesterID uuid.UUID) ([]domain.ConversationDetail, error) {
	if requesterID == uuid.Nil {
		return []domain.ConversationDetail{}, nil
	}

	convs, err := s.convRepo.ListByParticipant(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	details := make([]domain.ConversationDetail, len(convs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)
	for i, conv := range convs {
		g.Go(func() error {
			detail, err := s.enrich(ctx, conv)
			if err != nil {
				return err
			}
			details[i] = *detail
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return details, nil
}

// CreateDirect returns the id of the direct conversation between the
// requester and the other user, creating it if absent. Idempotent per
// unordered pair: the unique index on the canonical pair key guarantees at
// most one survives a racing double-create.
func (s *ConversationService) CreateDirect(ctx context.Context, requesterID, otherID uuid.UUID) (uuid.UUID, error) {
	if requesterID == uuid.Nil {
		return uuid.Nil, ErrUnauthenticated
	}
	if otherID == requesterID {
		return uuid.Nil, ErrSelfConversation
	}

	other, err := s.userRepo.GetByID(ctx, otherID)
	if err != nil {
		return uuid.Nil, err
	}
	if other == nil {
		return uuid.Nil, ErrNotFound
	}

	key := domain.DirectKey(requesterID, otherID)
	existing, err := s.convRepo.GetDirectByKey(ctx, key)
	if err != nil {
		return uuid.Nil, err
	}
	if existing != nil {
		return existing.ID, nil
	}

	conv := &domain.Conversation{
		ID:           uuid.New(),
		Type:         domain.ConversationDirect,
		Participants: []uuid.UUID{requesterID, otherID},
		CreatedBy:    requesterID,
		CreatedAt:    time.Now(),
	}
	err = s.convRepo.Create(ctx, conv)
	if errors.Is(err, repository.ErrDuplicate) {
		// Lost the race; the winner's conversation is the one to return.
		existing, err = s.convRepo.GetDirectByKey(ctx, key)
		if err != nil {
			return uuid.Nil, err
		}
		if existing == nil {
			return uuid.Nil, fmt.Errorf("direct conversation vanished after duplicate insert for key %s", key)
		}
		return existing.ID, nil
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("creating direct conversation: %w", err)
	}

	metrics.ConversationsCreated.WithLabelValues(domain.ConversationDirect).Inc()
	return conv.ID, nil
}

// CreateGroup creates a group conversation with the requester first in the
// participant list. Groups are never deduplicated: identical membership sets
// coexist as distinct conversations.
func (s *ConversationService) CreateGroup(ctx context.Context, requesterID uuid.UUID, name string, memberIDs []uuid.UUID) (uuid.UUID, error) {
	if requesterID == uuid.Nil {
		return uuid.Nil, ErrUnauthenticated
	}

	// Requester always first; repeated member ids collapse to one seat.
	participants := make([]uuid.UUID, 0, len(memberIDs)+1)
	seen := map[uuid.UUID]struct{}{requesterID: {}}
	participants = append(participants, requesterID)
	for _, id := range memberIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		participants = append(participants, id)
	}

	conv := &domain.Conversation{
		ID:           uuid.New(),
		Name:         &name,
		Type:         domain.ConversationGroup,
		Participants: participants,
		CreatedBy:    requesterID,
		CreatedAt:    time.Now(),
	}
	if err := s.convRepo.Create(ctx, conv); err != nil {
		return uuid.Nil, fmt.Errorf("creating group conversation: %w", err)
	}

	metrics.ConversationsCreated.WithLabelValues(domain.ConversationGroup).Inc()
	return conv.ID, nil
}

// Get fetches a conversation without an authorization check. Callers gate
// access themselves.
func (s *ConversationService) Get(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	return s.convRepo.GetByID(ctx, id)
}

func (s *ConversationService) enrich(ctx context.Context, conv domain.Conversation) (*domain.ConversationDetail, error) {
	members := make([]domain.UserWithProfile, 0, len(conv.Participants))
	for _, userID := range conv.Participants {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			continue
		}
		profile, err := s.profileRepo.GetByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		resolved := ResolveProfile(*user, profile)
		members = append(members, domain.UserWithProfile{User: *user, Profile: &resolved})
	}

	last, err := s.messageRepo.LatestByConversation(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	return &domain.ConversationDetail{
		Conversation: conv,
		Members:      members,
		LastMessage:  last,
	}, nil
}
