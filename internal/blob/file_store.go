package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	scopeUpload   = "upload"
	scopeDownload = "download"
)

// FileStore keeps attachment bytes on local disk and signs slot and download
// tokens with HS256. References are uuids; the content type is kept in a
// sidecar file next to the bytes.
type FileStore struct {
	root        string
	secret      []byte
	baseURL     string
	slotTTL     time.Duration
	downloadTTL time.Duration
	now         func() time.Time
}

func NewFileStore(root, baseURL string, secret []byte, slotTTL, downloadTTL time.Duration) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob root: %w", err)
	}
	return &FileStore{
		root:        root,
		secret:      secret,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		slotTTL:     slotTTL,
		downloadTTL: downloadTTL,
		now:         time.Now,
	}, nil
}

func (s *FileStore) IssueUploadSlot(ctx context.Context) (*UploadSlot, error) {
	expiresAt := s.now().Add(s.slotTTL)
	token, err := s.sign(jwt.MapClaims{
		"scope": scopeUpload,
		"jti":   uuid.NewString(),
		"exp":   expiresAt.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("signing upload slot: %w", err)
	}
	return &UploadSlot{
		URL:       s.baseURL + "/api/v1/uploads?token=" + url.QueryEscape(token),
		ExpiresAt: expiresAt,
	}, nil
}

func (s *FileStore) Save(ctx context.Context, token, contentType string, r io.Reader) (string, error) {
	claims, err := s.verify(token)
	if err != nil {
		return "", err
	}
	if claims["scope"] != scopeUpload {
		return "", ErrInvalidToken
	}

	ref := uuid.NewString()
	f, err := os.Create(s.path(ref))
	if err != nil {
		return "", fmt.Errorf("creating blob file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(s.path(ref))
		return "", fmt.Errorf("writing blob: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing blob: %w", err)
	}
	if err := os.WriteFile(s.metaPath(ref), []byte(contentType), 0o644); err != nil {
		return "", fmt.Errorf("writing blob metadata: %w", err)
	}
	return ref, nil
}

func (s *FileStore) Open(ctx context.Context, ref, token string) (io.ReadCloser, string, error) {
	claims, err := s.verify(token)
	if err != nil {
		return nil, "", err
	}
	if claims["scope"] != scopeDownload || claims["ref"] != ref {
		return nil, "", ErrInvalidToken
	}

	f, err := os.Open(s.path(ref))
	if os.IsNotExist(err) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	contentType, err := os.ReadFile(s.metaPath(ref))
	if err != nil {
		f.Close()
		return nil, "", err
	}
	return f, string(contentType), nil
}

func (s *FileStore) ResolveURL(ctx context.Context, ref string) (string, error) {
	if _, err := os.Stat(s.path(ref)); os.IsNotExist(err) {
		return "", ErrNotFound
	} else if err != nil {
		return "", err
	}

	token, err := s.sign(jwt.MapClaims{
		"scope": scopeDownload,
		"ref":   ref,
		"exp":   s.now().Add(s.downloadTTL).Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("signing download url: %w", err)
	}
	return s.baseURL + "/api/v1/attachments/" + ref + "?token=" + url.QueryEscape(token), nil
}

func (s *FileStore) sign(claims jwt.MapClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *FileStore) verify(token string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *FileStore) path(ref string) string {
	// References are uuids we minted ourselves, but never trust them as
	// path components.
	return filepath.Join(s.root, filepath.Base(ref))
}

func (s *FileStore) metaPath(ref string) string {
	return s.path(ref) + ".meta"
}
