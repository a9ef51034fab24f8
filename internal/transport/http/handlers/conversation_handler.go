package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/parley-chat/parley/internal/service"
	"github.com/parley-chat/parley/internal/transport/http/middleware"
	"github.com/parley-chat/parley/pkg/validator"
)

type ConversationHandler struct {
	conversations *service.ConversationService
}

func NewConversationHandler(conversations *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	convs, err := h.conversations.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "list conversations", err)
		return
	}
	writeJSON(w, http.StatusOK, convs)
}

func (h *ConversationHandler) CreateDirect(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var input struct {
		UserID uuid.UUID `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if input.UserID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "MISSING_USER_ID", "user_id is required")
		return
	}

	id, err := h.conversations.CreateDirect(r.Context(), userID, input.UserID)
	if err != nil {
		writeServiceError(w, "create direct conversation", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uuid.UUID{"id": id})
}

func (h *ConversationHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var input struct {
		Name      string      `json:"name"`
		MemberIDs []uuid.UUID `json:"member_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if errs := validator.ValidateGroup(input.Name); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	id, err := h.conversations.CreateGroup(r.Context(), userID, input.Name, input.MemberIDs)
	if err != nil {
		writeServiceError(w, "create group conversation", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uuid.UUID{"id": id})
}
