package domain

import (
	"time"

	"github.com/google/uuid"
)

// User accounts are provisioned by the identity system; the core only
// reads them.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserWithProfile pairs a user with a profile for enriched responses.
// Profile is nil only on the current-user endpoint before the profile has
// been created; every other enrichment path substitutes the fallback.
type UserWithProfile struct {
	User
	Profile *Profile `json:"profile"`
}
