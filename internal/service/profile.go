package service

import (
	"strings"
	"time"

	"github.com/parley-chat/parley/internal/domain"
)

// ResolveProfile returns the stored profile, or the fallback view for users
// who never created one: display name from the email local part, offline,
// last seen now. Every enrichment path goes through this one function so the
// fallback rule cannot drift between call sites.
func ResolveProfile(user domain.User, stored *domain.Profile) domain.Profile {
	if stored != nil {
		return *stored
	}
	return domain.Profile{
		UserID:      user.ID,
		DisplayName: fallbackDisplayName(user.Email),
		Status:      domain.StatusOffline,
		LastSeen:    time.Now(),
	}
}

func fallbackDisplayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return "User"
	}
	return local
}
