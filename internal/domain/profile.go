package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
	StatusAway    = "away"
)

// Profile is the display profile attached to a user. At most one per user,
// created lazily on first profile-touching operation.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Status      string    `json:"status"`
	LastSeen    time.Time `json:"last_seen"`
}

// ValidStatus reports whether s is one of the presence states.
func ValidStatus(s string) bool {
	return s == StatusOnline || s == StatusOffline || s == StatusAway
}
