package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/parley-chat/parley/internal/service"
	"github.com/parley-chat/parley/internal/transport/http/middleware"
	"github.com/parley-chat/parley/pkg/validator"
)

type MessageHandler struct {
	messages *service.MessageService
}

func NewMessageHandler(messages *service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	convID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid conversation ID")
		return
	}

	msgs, err := h.messages.List(r.Context(), userID, convID)
	if err != nil {
		writeServiceError(w, "list messages", err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (h *MessageHandler) AppendText(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	convID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid conversation ID")
		return
	}

	var input struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if errs := validator.ValidateMessage(input.Content); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	id, err := h.messages.AppendText(r.Context(), userID, convID, input.Content)
	if err != nil {
		writeServiceError(w, "append text message", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uuid.UUID{"id": id})
}

func (h *MessageHandler) AppendAttachment(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	convID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid conversation ID")
		return
	}

	var input struct {
		AttachmentRef  string `json:"attachment_ref"`
		AttachmentName string `json:"attachment_name"`
		AttachmentType string `json:"attachment_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if errs := validator.ValidateAttachment(input.AttachmentRef, input.AttachmentName, input.AttachmentType); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	id, err := h.messages.AppendAttachment(r.Context(), userID, convID,
		input.AttachmentRef, input.AttachmentName, input.AttachmentType)
	if err != nil {
		writeServiceError(w, "append attachment message", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uuid.UUID{"id": id})
}
