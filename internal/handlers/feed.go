package handlers

import (
	"net/http"

	"pinpal-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// FeedHandler handles aggregated pin feeds
type FeedHandler struct {
	feedService *services.FeedService
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(feedService *services.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// FriendPins handles GET /api/user/users/{user_id}/pins/friends
func (h *FeedHandler) FriendPins(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if !requireSelf(w, r, userID) {
		return
	}

	feed, err := h.feedService.FriendPins(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list friend pins")
		respondServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Friend pins retrieved", map[string]interface{}{
		"pins": feed,
	})
}

// PublicPins handles GET /api/user/users/{user_id}/pins/public
func (h *FeedHandler) PublicPins(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if !requireSelf(w, r, userID) {
		return
	}

	pins, err := h.feedService.PublicPins(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list public pins")
		respondServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Public pins retrieved", map[string]interface{}{
		"pins": pins,
	})
}

// TaggedPins handles GET /api/user/users/{user_id}/pins/tagged
func (h *FeedHandler) TaggedPins(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if !requireSelf(w, r, userID) {
		return
	}

	pins, err := h.feedService.TaggedPins(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list tagged pins")
		respondServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Tagged pins retrieved", map[string]interface{}{
		"pins": pins,
	})
}
