package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/parley-chat/parley/internal/service"
	"github.com/parley-chat/parley/internal/transport/http/middleware"
	"github.com/parley-chat/parley/pkg/validator"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Me returns the current user with their profile; anonymous requests get a
// JSON null rather than an error so clients can poll it as a session probe.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	user, err := h.users.Current(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "current user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	id, err := h.users.EnsureProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "create profile", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uuid.UUID{"id": id})
}

func (h *UserHandler) ListOthers(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	users, err := h.users.ListOthers(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "list users", err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var input struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if errs := validator.ValidateStatus(input.Status); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	if err := h.users.UpdateStatus(r.Context(), userID, input.Status); err != nil {
		writeServiceError(w, "update status", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) UpdateDisplayName(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var input struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if errs := validator.ValidateDisplayName(input.DisplayName); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	if err := h.users.UpdateDisplayName(r.Context(), userID, input.DisplayName); err != nil {
		writeServiceError(w, "update display name", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
