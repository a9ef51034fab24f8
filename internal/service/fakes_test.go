package service

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parley-chat/parley/internal/blob"
	"github.com/parley-chat/parley/internal/domain"
	"github.com/parley-chat/parley/internal/repository"
)

// memStore implements the four repository interfaces in memory, mirroring
// the storage semantics the postgres layer provides: unique direct keys,
// atomic append plus timestamp advance, activity-ordered listing.
type memStore struct {
	mu         sync.Mutex
	users      map[uuid.UUID]domain.User
	profiles   map[uuid.UUID]domain.Profile // keyed by user id
	convs      map[uuid.UUID]domain.Conversation
	directKeys map[string]uuid.UUID
	msgs       map[uuid.UUID][]domain.Message

	// beforeConvCreate runs once at the next Create call, letting tests
	// wedge a competing insert into the check-then-act window.
	beforeConvCreate func()
}

func newMemStore() *memStore {
	return &memStore{
		users:      make(map[uuid.UUID]domain.User),
		profiles:   make(map[uuid.UUID]domain.Profile),
		convs:      make(map[uuid.UUID]domain.Conversation),
		directKeys: make(map[string]uuid.UUID),
		msgs:       make(map[uuid.UUID][]domain.Message),
	}
}

func (s *memStore) addUser(email string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.users[id] = domain.User{ID: id, Email: email, CreatedAt: time.Now()}
	return id
}

// UserRepository

func (s *memStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (s *memStore) List(ctx context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

// ProfileRepository

func (s *memStore) GetByUser(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.profiles[userID]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *memStore) Create(ctx context.Context, profile *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[profile.UserID]; ok {
		return repository.ErrDuplicate
	}
	s.profiles[profile.UserID] = *profile
	return nil
}

func (s *memStore) Update(ctx context.Context, profile *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.UserID] = *profile
	return nil
}

// ConversationRepository (method names avoid clashing with the user/profile
// sides, so the fake is wrapped per interface below)

type memConvRepo struct{ *memStore }

func (s memConvRepo) Create(ctx context.Context, conv *domain.Conversation) error {
	if s.beforeConvCreate != nil {
		hook := s.beforeConvCreate
		s.memStore.beforeConvCreate = nil
		hook()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv.Type == domain.ConversationDirect {
		key := domain.DirectKey(conv.Participants[0], conv.Participants[1])
		if _, ok := s.directKeys[key]; ok {
			return repository.ErrDuplicate
		}
		s.directKeys[key] = conv.ID
	}
	c := *conv
	c.Participants = append([]uuid.UUID(nil), conv.Participants...)
	s.convs[conv.ID] = c
	return nil
}

func (s memConvRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.convs[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (s memConvRepo) GetDirectByKey(ctx context.Context, key string) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.directKeys[key]
	if !ok {
		return nil, nil
	}
	c := s.convs[id]
	return &c, nil
}

func (s memConvRepo) ListByParticipant(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var convs []domain.Conversation
	for _, c := range s.convs {
		if (&c).HasParticipant(userID) {
			convs = append(convs, c)
		}
	}
	sort.SliceStable(convs, func(i, j int) bool {
		a, b := convs[i].LastMessageAt, convs[j].LastMessageAt
		switch {
		case a != nil && b != nil:
			return a.After(*b)
		case a != nil:
			return true
		case b != nil:
			return false
		default:
			return convs[i].CreatedAt.After(convs[j].CreatedAt)
		}
	})
	return convs, nil
}

// MessageRepository

type memMessageRepo struct{ *memStore }

func (s memMessageRepo) Append(ctx context.Context, msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs[msg.ConversationID] = append(s.msgs[msg.ConversationID], *msg)
	conv := s.convs[msg.ConversationID]
	if conv.LastMessageAt == nil || msg.CreatedAt.After(*conv.LastMessageAt) {
		ts := msg.CreatedAt
		conv.LastMessageAt = &ts
		s.convs[msg.ConversationID] = conv
	}
	return nil
}

func (s memMessageRepo) ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Message(nil), s.msgs[conversationID]...), nil
}

func (s memMessageRepo) LatestByConversation(ctx context.Context, conversationID uuid.UUID) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.msgs[conversationID]
	if len(msgs) == 0 {
		return nil, nil
	}
	m := msgs[len(msgs)-1]
	return &m, nil
}

// stubBlob satisfies blob.Store with canned signed URLs.
type stubBlob struct {
	missing map[string]bool
}

func (b *stubBlob) IssueUploadSlot(ctx context.Context) (*blob.UploadSlot, error) {
	return &blob.UploadSlot{
		URL:       "https://files.test/api/v1/uploads?token=stub",
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil
}

func (b *stubBlob) Save(ctx context.Context, token, contentType string, r io.Reader) (string, error) {
	return uuid.NewString(), nil
}

func (b *stubBlob) Open(ctx context.Context, ref, token string) (io.ReadCloser, string, error) {
	return nil, "", blob.ErrNotFound
}

func (b *stubBlob) ResolveURL(ctx context.Context, ref string) (string, error) {
	if b.missing[ref] {
		return "", blob.ErrNotFound
	}
	return "https://files.test/api/v1/attachments/" + ref + "?token=stub", nil
}

func newTestServices(store *memStore) (*ConversationService, *MessageService, *UserService, *stubBlob) {
	blobs := &stubBlob{missing: make(map[string]bool)}
	convRepo := memConvRepo{store}
	msgRepo := memMessageRepo{store}
	convs := NewConversationService(convRepo, msgRepo, store, store)
	msgs := NewMessageService(convRepo, msgRepo, store, store, blobs)
	users := NewUserService(store, store)
	return convs, msgs, users, blobs
}
