// Package blob stores uploaded attachment bytes and hands out short-lived
// signed URLs. The core only ever moves opaque references; bytes travel
// directly between the client and the store.
package blob

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrNotFound     = errors.New("attachment not found")
)

// UploadSlot is a pre-authorized target the client uploads bytes to before
// appending an attachment message with the resulting reference.
type UploadSlot struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Store interface {
	IssueUploadSlot(ctx context.Context) (*UploadSlot, error)

	// Save consumes an upload-slot token, stores the bytes, and returns the
	// opaque attachment reference.
	Save(ctx context.Context, token, contentType string, r io.Reader) (string, error)

	// Open returns the stored bytes and content type for a reference. The
	// token must be a download token minted for that same reference.
	Open(ctx context.Context, ref, token string) (io.ReadCloser, string, error)

	// ResolveURL mints a fresh signed download URL for a reference. Results
	// expire and must not be cached.
	ResolveURL(ctx context.Context, ref string) (string, error)
}
