package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/parley-chat/parley/internal/domain"
	"github.com/parley-chat/parley/internal/repository"
)

type UserService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
}

func NewUserService(userRepo repository.UserRepository, profileRepo repository.ProfileRepository) *UserService {
	return &UserService{userRepo: userRepo, profileRepo: profileRepo}
}

// Current returns the requester with their stored profile. Profile stays nil
// until EnsureProfile has run; anonymous callers get nil, not an error.
func (s *UserService) Current(ctx context.Context, requesterID uuid.UUID) (*domain.UserWithProfile, error) {
	if requesterID == uuid.Nil {
		return nil, nil
	}
	user, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil || user == nil {
		return nil, err
	}
	profile, err := s.profileRepo.GetByUser(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return &domain.UserWithProfile{User: *user, Profile: profile}, nil
}

// EnsureProfile creates the requester's profile if absent and returns its
// id. Idempotent: a second call, or a racing one that hits the per-user
// unique index, returns the existing profile's id.
func (s *UserService) EnsureProfile(ctx context.Context, requesterID uuid.UUID) (uuid.UUID, error) {
	if requesterID == uuid.Nil {
		return uuid.Nil, ErrUnauthenticated
	}
	user, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return uuid.Nil, err
	}
	if user == nil {
		return uuid.Nil, ErrNotFound
	}

	existing, err := s.profileRepo.GetByUser(ctx, requesterID)
	if err != nil {
		return uuid.Nil, err
	}
	if existing != nil {
		return existing.ID, nil
	}

	profile := &domain.Profile{
		ID:          uuid.New(),
		UserID:      requesterID,
		DisplayName: fallbackDisplayName(user.Email),
		Status:      domain.StatusOnline,
		LastSeen:    time.Now(),
	}
	err = s.profileRepo.Create(ctx, profile)
	if errors.Is(err, repository.ErrDuplicate) {
		existing, err = s.profileRepo.GetByUser(ctx, requesterID)
		if err != nil {
			return uuid.Nil, err
		}
		if existing == nil {
			return uuid.Nil, fmt.Errorf("profile vanished after duplicate insert for user %s", requesterID)
		}
		return existing.ID, nil
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("creating profile: %w", err)
	}
	return profile.ID, nil
}

// ListOthers returns every user except the requester, each with a resolved
// profile. Anonymous callers get an empty list.
func (s *UserService) ListOthers(ctx context.Context, requesterID uuid.UUID) ([]domain.UserWithProfile, error) {
	if requesterID == uuid.Nil {
		return []domain.UserWithProfile{}, nil
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.UserWithProfile, 0, len(users))
	for _, user := range users {
		if user.ID == requesterID {
			continue
		}
		profile, err := s.profileRepo.GetByUser(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		resolved := ResolveProfile(user, profile)
		out = append(out, domain.UserWithProfile{User: user, Profile: &resolved})
	}
	return out, nil
}

// UpdateStatus sets the requester's presence and refreshes last-seen. A
// missing profile is a silent no-op: presence pings from clients that never
// created one are not an error.
func (s *UserService) UpdateStatus(ctx context.Context, requesterID uuid.UUID, status string) error {
	if requesterID == uuid.Nil {
		return ErrUnauthenticated
	}
	profile, err := s.profileRepo.GetByUser(ctx, requesterID)
	if err != nil {
		return err
	}
	if profile == nil {
		return nil
	}

	profile.Status = status
	profile.LastSeen = time.Now()
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return fmt.Errorf("updating status: %w", err)
	}
	return nil
}

// UpdateDisplayName renames the requester, creating the profile first if it
// does not exist yet.
func (s *UserService) UpdateDisplayName(ctx context.Context, requesterID uuid.UUID, name string) error {
	if requesterID == uuid.Nil {
		return ErrUnauthenticated
	}
	profile, err := s.profileRepo.GetByUser(ctx, requesterID)
	if err != nil {
		return err
	}

	if profile == nil {
		profile = &domain.Profile{
			ID:          uuid.New(),
			UserID:      requesterID,
			DisplayName: name,
			Status:      domain.StatusOnline,
			LastSeen:    time.Now(),
		}
		if err := s.profileRepo.Create(ctx, profile); err != nil && !errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("creating profile: %w", err)
		}
		return nil
	}

	profile.DisplayName = name
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return fmt.Errorf("updating display name: %w", err)
	}
	return nil
}
