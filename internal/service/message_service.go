package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/parley-chat/parley/internal/blob"
	"github.com/parley-chat/parley/internal/domain"
	"github.com/parley-chat/parley/internal/metrics"
	"github.com/parley-chat/parley/internal/repository"
	"golang.org/x/sync/errgroup"
)

type MessageService struct {
	convRepo    repository.ConversationRepository
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	blobs       blob.Store
}

func NewMessageService(
	convRepo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	blobs blob.Store,
) *MessageService {
	return &MessageService{
		convRepo:    convRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		profileRepo: profileRepo,
		blobs:       blobs,
	}
}

// List returns the conversation's messages in creation order, each enriched
// with the sender's resolved profile and, for attachments, a fresh download
// URL. Anonymous callers, unknown conversations, and non-participants all
// get an empty list.
func (s *MessageService) List(ctx context.Context, requesterID, conversationID uuid.UUID) ([]domain.MessageDetail, error) {
	if requesterID == uuid.Nil {
		return []domain.MessageDetail{}, nil
	}

	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil || !conv.HasParticipant(requesterID) {
		return []domain.MessageDetail{}, nil
	}

	messages, err := s.messageRepo.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	details := make([]domain.MessageDetail, len(messages))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)
	for i, msg := range messages {
		g.Go(func() error {
			detail, err := s.enrich(ctx, msg)
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

// AppendText inserts a text message. The message row and the conversation's
// last-message timestamp advance atomically; a rejected check produces zero
// mutations.
func (s *MessageService) AppendText(ctx context.Context, requesterID, conversationID uuid.UUID, content string) (uuid.UUID, error) {
	if err := s.gate(ctx, requesterID, conversationID); err != nil {
		return uuid.Nil, err
	}

	msg := &domain.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       requesterID,
		Type:           domain.MessageText,
		Content:        &content,
		CreatedAt:      time.Now(),
	}
	if err := s.messageRepo.Append(ctx, msg); err != nil {
		return uuid.Nil, fmt.Errorf("appending text message: %w", err)
	}

	metrics.MessagesAppended.WithLabelValues(domain.MessageText).Inc()
	return msg.ID, nil
}

// AppendAttachment inserts an attachment message referencing previously
// uploaded bytes. Same authorization and atomicity contract as AppendText.
func (s *MessageService) AppendAttachment(ctx context.Context, requesterID, conversationID uuid.UUID, ref, name, mimeType string) (uuid.UUID, error) {
	if err := s.gate(ctx, requesterID, conversationID); err != nil {
		return uuid.Nil, err
	}

	msg := &domain.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       requesterID,
		Type:           domain.MessageAttachment,
		AttachmentRef:  &ref,
		AttachmentName: &name,
		AttachmentType: &mimeType,
		CreatedAt:      time.Now(),
	}
	if err := s.messageRepo.Append(ctx, msg); err != nil {
		return uuid.Nil, fmt.Errorf("appending attachment message: %w", err)
	}

	metrics.MessagesAppended.WithLabelValues(domain.MessageAttachment).Inc()
	return msg.ID, nil
}

// RequestUploadSlot hands out a pre-authorized upload target so attachment
// bytes go straight to the blob store, never through the message write path.
func (s *MessageService) RequestUploadSlot(ctx context.Context, requesterID uuid.UUID) (*blob.UploadSlot, error) {
	if requesterID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	return s.blobs.IssueUploadSlot(ctx)
}

// gate is the write-path participant check: anonymous fails with
// Unauthenticated, everything else that isn't a participant of an existing
// conversation fails with Unauthorized. An unknown conversation is reported
// the same as a forbidden one.
func (s *MessageService) gate(ctx context.Context, requesterID, conversationID uuid.UUID) error {
	if requesterID == uuid.Nil {
		return ErrUnauthenticated
	}
	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if conv == nil || !conv.HasParticipant(requesterID) {
		return ErrUnauthorized
	}
	return nil
}

func (s *MessageService) enrich(ctx context.Context, msg domain.Message) (*domain.MessageDetail, error) {
	sender, err := s.userRepo.GetByID(ctx, msg.SenderID)
	if err != nil {
		return nil, err
	}
	if sender == nil {
		sender = &domain.User{ID: msg.SenderID}
	}
	profile, err := s.profileRepo.GetByUser(ctx, msg.SenderID)
	if err != nil {
		return nil, err
	}
	resolved := ResolveProfile(*sender, profile)

	detail := &domain.MessageDetail{
		Message: msg,
		Sender:  domain.UserWithProfile{User: *sender, Profile: &resolved},
	}

	if msg.Type == domain.MessageAttachment && msg.AttachmentRef != nil {
		url, err := s.blobs.ResolveURL(ctx, *msg.AttachmentRef)
		switch {
		case err == nil:
			detail.AttachmentURL = &url
		case errors.Is(err, blob.ErrNotFound):
			// Bytes gone from the store; the message still lists, just
			// without a download URL.
		default:
			return nil, err
		}
	}
	return detail, nil
}
