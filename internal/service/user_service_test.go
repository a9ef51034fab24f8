package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/parley-chat/parley/internal/domain"
)

func TestResolveProfile_Fallback(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		wantName string
	}{
		{"email prefix", "alice@example.com", "alice"},
		{"no at sign", "alice", "alice"},
		{"empty email", "", "User"},
		{"leading at sign", "@example.com", "User"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := domain.User{ID: uuid.New(), Email: tt.email}
			got := ResolveProfile(user, nil)
			if got.DisplayName != tt.wantName {
				t.Errorf("DisplayName = %q, want %q", got.DisplayName, tt.wantName)
			}
			if got.Status != domain.StatusOffline {
				t.Errorf("Status = %q, want %q", got.Status, domain.StatusOffline)
			}
			if got.UserID != user.ID {
				t.Errorf("UserID = %v, want %v", got.UserID, user.ID)
			}
		})
	}
}

func TestResolveProfile_StoredWins(t *testing.T) {
	user := domain.User{ID: uuid.New(), Email: "alice@example.com"}
	stored := &domain.Profile{
		ID:          uuid.New(),
		UserID:      user.ID,
		DisplayName: "Alice L.",
		Status:      domain.StatusAway,
		LastSeen:    time.Now().Add(-time.Hour),
	}

	got := ResolveProfile(user, stored)
	if got != *stored {
		t.Errorf("ResolveProfile() = %+v, want stored profile %+v", got, *stored)
	}
}

func TestEnsureProfile_Idempotent(t *testing.T) {
	store := newMemStore()
	_, _, users, _ := newTestServices(store)
	ctx := context.Background()

	alice := store.addUser("alice@example.com")

	first, err := users.EnsureProfile(ctx, alice)
	if err != nil {
		t.Fatalf("EnsureProfile() error = %v", err)
	}
	second, err := users.EnsureProfile(ctx, alice)
	if err != nil {
		t.Fatalf("EnsureProfile() error = %v", err)
	}
	if first != second {
		t.Errorf("EnsureProfile() returned %v then %v, want same id", first, second)
	}

	p := store.profiles[alice]
	if p.DisplayName != "alice" {
		t.Errorf("DisplayName = %q, want alice", p.DisplayName)
	}
	if p.Status != domain.StatusOnline {
		t.Errorf("initial Status = %q, want %q", p.Status, domain.StatusOnline)
	}
}

func TestEnsureProfile_Errors(t *testing.T) {
	store := newMemStore()
	_, _, users, _ := newTestServices(store)
	ctx := context.Background()

	if _, err := users.EnsureProfile(ctx, uuid.Nil); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("EnsureProfile(anonymous) error = %v, want %v", err, ErrUnauthenticated)
	}
	if _, err := users.EnsureProfile(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("EnsureProfile(unknown user) error = %v, want %v", err, ErrNotFound)
	}
}

func TestCurrent(t *testing.T) {
	store := newMemStore()
	_, _, users, _ := newTestServices(store)
	ctx := context.Background()

	got, err := users.Current(ctx, uuid.Nil)
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if got != nil {
		t.Errorf("Current(anonymous) = %+v, want nil", got)
	}

	alice := store.addUser("alice@example.com")
	got, err = users.Current(ctx, alice)
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if got == nil || got.ID != alice {
		t.Fatalf("Current() = %+v, want user %v", got, alice)
	}
	if got.Profile != nil {
		t.Error("Current() resolved a profile before one was created")
	}

	if _, err := users.EnsureProfile(ctx, alice); err != nil {
		t.Fatalf("EnsureProfile() error = %v", err)
	}
	got, err = users.Current(ctx, alice)
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if got.Profile == nil {
		t.Error("Current() missing stored profile")
	}
}

func TestListOthers(t *testing.T) {
	store := newMemStore()
	_, _, users, _ := newTestServices(store)
	ctx := context.Background()

	alice := store.addUser("alice@example.com")
	bob := store.addUser("bob@example.com")
	store.addUser("carol@example.com")

	if _, err := users.EnsureProfile(ctx, bob); err != nil {
		t.Fatalf("EnsureProfile() error = %v", err)
	}

	got, err := users.ListOthers(ctx, alice)
	if err != nil {
		t.Fatalf("ListOthers() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListOthers() returned %d users, want 2", len(got))
	}
	for _, u := range got {
		if u.ID == alice {
			t.Error("ListOthers() included the requester")
		}
		if u.Profile == nil {
			t.Errorf("user %v has no resolved profile", u.ID)
		}
	}

	empty, err := users.ListOthers(ctx, uuid.Nil)
	if err != nil {
		t.Fatalf("ListOthers() error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("ListOthers(anonymous) returned %d users, want 0", len(empty))
	}
}

func TestUpdateStatus(t *testing.T) {
	store := newMemStore()
	_, _, users, _ := newTestServices(store)
	ctx := context.Background()

	if err := users.UpdateStatus(ctx, uuid.Nil, domain.StatusAway); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("UpdateStatus(anonymous) error = %v, want %v", err, ErrUnauthenticated)
	}

	alice := store.addUser("alice@example.com")

	// No profile yet: silent no-op.
	if err := users.UpdateStatus(ctx, alice, domain.StatusAway); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if _, ok := store.profiles[alice]; ok {
		t.Error("UpdateStatus() created a profile, want no-op")
	}

	if _, err := users.EnsureProfile(ctx, alice); err != nil {
		t.Fatalf("EnsureProfile() error = %v", err)
	}
	before := store.profiles[alice].LastSeen

	if err := users.UpdateStatus(ctx, alice, domain.StatusAway); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	after := store.profiles[alice]
	if after.Status != domain.StatusAway {
		t.Errorf("Status = %q, want %q", after.Status, domain.StatusAway)
	}
	if after.LastSeen.Before(before) {
		t.Error("UpdateStatus() rewound last seen")
	}
}

func TestUpdateDisplayName(t *testing.T) {
	store := newMemStore()
	_, _, users, _ := newTestServices(store)
	ctx := context.Background()

	if err := users.UpdateDisplayName(ctx, uuid.Nil, "Alice"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("UpdateDisplayName(anonymous) error = %v, want %v", err, ErrUnauthenticated)
	}

	alice := store.addUser("alice@example.com")

	// Creates the profile when absent.
	if err := users.UpdateDisplayName(ctx, alice, "Alice L."); err != nil {
		t.Fatalf("UpdateDisplayName() error = %v", err)
	}
	p, ok := store.profiles[alice]
	if !ok {
		t.Fatal("UpdateDisplayName() did not create a profile")
	}
	if p.DisplayName != "Alice L." {
		t.Errorf("DisplayName = %q, want Alice L.", p.DisplayName)
	}

	// Updates in place afterwards.
	if err := users.UpdateDisplayName(ctx, alice, "Alice"); err != nil {
		t.Fatalf("UpdateDisplayName() error = %v", err)
	}
	if got := store.profiles[alice].DisplayName; got != "Alice" {
		t.Errorf("DisplayName = %q, want Alice", got)
	}
	if got := store.profiles[alice].ID; got != p.ID {
		t.Errorf("profile id changed on rename: %v -> %v", p.ID, got)
	}
}
