package handlers

import (
	"net/http"
	"strconv"

	"pinpal-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// FriendshipHandler handles friend request and friendship HTTP requests
type FriendshipHandler struct {
	friendshipService *services.FriendshipService
}

// NewFriendshipHandler creates a new friendship handler
func NewFriendshipHandler(friendshipService *services.FriendshipService) *FriendshipHandler {
	return &FriendshipHandler{friendshipService: friendshipService}
}

// Requests handles GET /api/user/users/{user_id}/requests
func (h *FriendshipHandler) Requests(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if !requireSelf(w, r, userID) {
		return
	}

	profiles, err := h.friendshipService.ListIncomingRequests(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list friend requests")
		respondServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Friend requests retrieved", map[string]interface{}{
		"requests": profiles,
	})
}

// Status handles GET /api/user/users/{user_id}/request/{target_id}/status
func (h *FriendshipHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	targetID := chi.URLParam(r, "target_id")

	status, err := h.friendshipService.Status(r.Context(), userID, targetID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Friend status retrieved", map[string]interface{}{
		"status": status,
	})
}

// Create handles POST /api/user/users/{user_id}/request/{target_id}/create
func (h *FriendshipHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	targetID := chi.URLParam(r, "target_id")
	if !requireSelf(w, r, userID) {
		return
	}

	if err := h.friendshipService.SendRequest(r.Context(), userID, targetID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("target_id", targetID).Msg("Failed to create friend request")
		respondServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Friend request sent", nil)
}

// Accept handles PATCH /api/user/users/{user_id}/request/{target_id}/accept.
// user_id is the recipient accepting target_id's request.
func (h *FriendshipHandler) Accept(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	targetID := chi.URLParam(r, "target_id")
	if !requireSelf(w, r, userID) {
		return
	}

	if err := h.friendshipService.AcceptRequest(r.Context(), userID, targetID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("target_id", targetID).Msg("Failed to accept friend request")
		respondServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Friend request accepted", nil)
}

// Delete handles DELETE /api/user/users/{user_id}/request/{target_id}/delete.
// It serves as decline, cancel and unfriend.
func (h *FriendshipHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	targetID := chi.URLParam(r, "target_id")
	if !requireSelf(w, r, userID) {
		return
	}

	if err := h.friendshipService.Remove(r.Context(), userID, targetID); err != nil {
		respondServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Friend request deleted", nil)
}

// Friends handles GET /api/user/users/{user_id}/friends
func (h *FriendshipHandler) Friends(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	profiles, err := h.friendshipService.ListFriends(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list friends")
		respondServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Friends retrieved", map[string]interface{}{
		"friends": profiles,
	})
}

// Recommended handles GET /api/user/users/{user_id}/friends/recommended
func (h *FriendshipHandler) Recommended(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if !requireSelf(w, r, userID) {
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	recs, err := h.friendshipService.Recommend(r.Context(), userID, limit)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to recommend friends")
		respondServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Recommended friends retrieved", map[string]interface{}{
		"recommendations": recs,
	})
}
