package handlers

import (
	"net/http"
	"strconv"

	"pinpal-backend/internal/apperr"
	"pinpal-backend/internal/models"
	"pinpal-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// PinHandler handles pin and pin-like HTTP requests
type PinHandler struct {
	pinService *services.PinService
}

// NewPinHandler creates a new pin handler
func NewPinHandler(pinService *services.PinService) *PinHandler {
	return &PinHandler{pinService: pinService}
}

// List handles GET /api/user/users/{user_id}/pins
func (h *PinHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	pins, err := h.pinService.ListByOwner(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list pins")
		respondServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Pins retrieved", map[string]interface{}{
		"pins": pins,
	})
}

// Add handles POST /api/user/users/{user_id}/pin/add. The body is
// multipart: pin fields as form values plus an optional "photo" file.
func (h *PinHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if !requireSelf(w, r, userID) {
		return
	}

	input, photo, err := parsePinForm(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	pin, err := h.pinService.Create(r.Context(), userID, input, photo)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create pin")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Str("pin_id", pin.ID).Msg("Pin created")
	respond(w, http.StatusOK, "Pin created successfully", map[string]interface{}{
		"pin": pin,
	})
}

// Get handles GET /api/user/users/{user_id}/pin/{pin_id}/info
func (h *PinHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	pinID := chi.URLParam(r, "pin_id")

	pin, err := h.pinService.Get(r.Context(), userID, pinID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Pin retrieved", map[string]interface{}{
		"pin": pin,
	})
}

// Update handles PUT /api/user/users/{user_id}/pin/{pin_id}/update
func (h *PinHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	pinID := chi.URLParam(r, "pin_id")
	if !requireSelf(w, r, userID) {
		return
	}

	input, photo, err := parsePinForm(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	pin, err := h.pinService.Update(r.Context(), userID, pinID, input, photo)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("pin_id", pinID).Msg("Failed to update pin")
		respondServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Pin updated successfully", map[string]interface{}{
		"pin": pin,
	})
}

// UpdateLocRequest is the payload for PATCH .../update_loc
type UpdateLocRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
}

// UpdateLocation handles PATCH /api/user/users/{user_id}/pin/{pin_id}/update_loc
func (h *PinHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	pinID := chi.URLParam(r, "pin_id")
	if !requireSelf(w, r, userID) {
		return
	}

	var req UpdateLocRequest
	if err := decodeValid(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.pinService.UpdateLocation(r.Context(), userID, pinID, *req.Latitude, *req.Longitude); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("pin_id", pinID).Msg("Failed to update pin location")
		respondServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Pin location updated", nil)
}

// Delete handles DELETE /api/user/users/{user_id}/pin/{pin_id}/delete
func (h *PinHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	pinID := chi.URLParam(r, "pin_id")
	if !requireSelf(w, r, userID) {
		return
	}

	if err := h.pinService.Delete(r.Context(), userID, pinID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("pin_id", pinID).Msg("Failed to delete pin")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Str("pin_id", pinID).Msg("Pin deleted")
	respond(w, http.StatusOK, "Pin deleted successfully", nil)
}

// Likes handles GET /api/user/pins/{pin_id}/likes
func (h *PinHandler) Likes(w http.ResponseWriter, r *http.Request) {
	pinID := chi.URLParam(r, "pin_id")

	profiles, err := h.pinService.ListLikes(r.Context(), pinID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Likes retrieved", map[string]interface{}{
		"likes": profiles,
	})
}

// Like handles POST /api/user/pins/{pin_id}/user/{user_id}/like
func (h *PinHandler) Like(w http.ResponseWriter, r *http.Request) {
	pinID := chi.URLParam(r, "pin_id")
	userID := chi.URLParam(r, "user_id")
	if !requireSelf(w, r, userID) {
		return
	}

	if err := h.pinService.Like(r.Context(), pinID, userID); err != nil {
		respondServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Pin liked", nil)
}

// Unlike handles DELETE /api/user/pins/{pin_id}/user/{user_id}/unlike
func (h *PinHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	pinID := chi.URLParam(r, "pin_id")
	userID := chi.URLParam(r, "user_id")
	if !requireSelf(w, r, userID) {
		return
	}

	if err := h.pinService.Unlike(r.Context(), pinID, userID); err != nil {
		respondServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Pin unliked", nil)
}

// parsePinForm reads the multipart pin fields and optional photo
func parsePinForm(r *http.Request) (*services.PinInput, []byte, error) {
	photo, err := readOptionalFile(r, "photo")
	if err != nil {
		return nil, nil, apperr.Invalid("invalid photo upload")
	}

	lat, err := strconv.ParseFloat(r.FormValue("latitude"), 64)
	if err != nil {
		return nil, nil, apperr.Invalid("latitude is required and must be a number")
	}
	lng, err := strconv.ParseFloat(r.FormValue("longitude"), 64)
	if err != nil {
		return nil, nil, apperr.Invalid("longitude is required and must be a number")
	}

	title := r.FormValue("title")
	if title == "" {
		return nil, nil, apperr.Invalid("title is required")
	}

	visibility := models.VisibilityPrivate
	if v := r.FormValue("visibility"); v != "" {
		visibility, err = strconv.Atoi(v)
		if err != nil || visibility < models.VisibilityPrivate || visibility > models.VisibilityPublic {
			return nil, nil, apperr.Invalid("visibility must be 0, 1 or 2")
		}
	}

	return &services.PinInput{
		Latitude:     lat,
		Longitude:    lng,
		Title:        title,
		Caption:      r.FormValue("caption"),
		Visibility:   visibility,
		LocationTags: formValues(r, "location_tags"),
		UserTags:     formValues(r, "user_tags"),
	}, photo, nil
}

// formValues returns every value submitted under the key, from both
// multipart and urlencoded bodies
func formValues(r *http.Request, key string) []string {
	if r.MultipartForm != nil {
		if vs, ok := r.MultipartForm.Value[key]; ok {
			return vs
		}
	}
	if vs, ok := r.PostForm[key]; ok {
		return vs
	}
	return nil
}
