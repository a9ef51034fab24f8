package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/parley-chat/parley/internal/blob"
	"github.com/parley-chat/parley/internal/service"
	"github.com/parley-chat/parley/internal/transport/http/middleware"
	"github.com/rs/zerolog/log"
)

// UploadHandler adapts the blob store to HTTP: slot issuance goes through
// the message service (it owns the authentication rule), byte upload and
// download are authorized by the signed tokens in the URL, not by the
// bearer identity.
type UploadHandler struct {
	messages *service.MessageService
	blobs    blob.Store
}

func NewUploadHandler(messages *service.MessageService, blobs blob.Store) *UploadHandler {
	return &UploadHandler{messages: messages, blobs: blobs}
}

func (h *UploadHandler) RequestSlot(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	slot, err := h.messages.RequestUploadSlot(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "request upload slot", err)
		return
	}
	writeJSON(w, http.StatusOK, slot)
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ref, err := h.blobs.Save(r.Context(), token, contentType, r.Body)
	if err != nil {
		if errors.Is(err, blob.ErrInvalidToken) {
			writeError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Upload slot is invalid or expired")
			return
		}
		log.Error().Err(err).Msg("save upload")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"ref": ref})
}

func (h *UploadHandler) Download(w http.ResponseWriter, r *http.Request) {
	ref := r.PathValue("ref")
	token := r.URL.Query().Get("token")

	body, contentType, err := h.blobs.Open(r.Context(), ref, token)
	if err != nil {
		switch {
		case errors.Is(err, blob.ErrInvalidToken):
			writeError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Download URL is invalid or expired")
		case errors.Is(err, blob.ErrNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Attachment not found")
		default:
			log.Error().Err(err).Str("ref", ref).Msg("open attachment")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", contentType)
	if _, err := io.Copy(w, body); err != nil {
		log.Error().Err(err).Str("ref", ref).Msg("stream attachment")
	}
}
