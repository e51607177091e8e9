package handlers

import (
	"io"
	"net/http"

	"pinpal-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const maxPhotoBytes = 7 << 20 // matches the original API's 7mb body cap

// UserHandler handles user profile HTTP requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UsernameExists handles GET /api/user/username_exists/{username}
func (h *UserHandler) UsernameExists(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	available, err := h.userService.UsernameAvailable(r.Context(), username)
	if err != nil {
		log.Error().Err(err).Str("username", username).Msg("Failed to check username")
		respondServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Username checked", map[string]interface{}{
		"exists": !available,
	})
}

// PhoneExists handles GET /api/user/phone_no_exists/{phone_no}
func (h *UserHandler) PhoneExists(w http.ResponseWriter, r *http.Request) {
	phoneNo := chi.URLParam(r, "phone_no")

	available, err := h.userService.PhoneAvailable(r.Context(), phoneNo)
	if err != nil {
		log.Error().Err(err).Str("phone_no", phoneNo).Msg("Failed to check phone number")
		respondServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Phone number checked", map[string]interface{}{
		"exists": !available,
	})
}

// GetInfo handles GET /api/user/users/{user_id}/info
func (h *UserHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	profile, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "User info retrieved", map[string]interface{}{
		"user": profile,
	})
}

// UpdateRequest is the payload for PUT /users/{user_id}/update; absent
// fields keep their current value
type UpdateRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=32"`
	FullName *string `json:"full_name,omitempty"`
	Birthday *string `json:"birthday,omitempty"`
	PhoneNo  *string `json:"phone_no,omitempty" validate:"omitempty,e164"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8"`
}

// Update handles PUT /api/user/users/{user_id}/update
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if !requireSelf(w, r, userID) {
		return
	}

	var req UpdateRequest
	if err := decodeValid(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	err := h.userService.UpdateProfile(r.Context(), userID, &services.UpdateProfileInput{
		Username: req.Username,
		FullName: req.FullName,
		Birthday: req.Birthday,
		PhoneNo:  req.PhoneNo,
		Password: req.Password,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update profile")
		respondServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "User updated successfully", nil)
}

// UpdateProfilePic handles PUT /api/user/users/{user_id}/update_profile_pic.
// A multipart "profile_pic" file sets the picture; no file clears it.
func (h *UserHandler) UpdateProfilePic(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if !requireSelf(w, r, userID) {
		return
	}

	photo, err := readOptionalFile(r, "profile_pic")
	if err != nil {
		respondError(w, "invalid profile picture upload", http.StatusBadRequest)
		return
	}

	url, err := h.userService.UpdateProfilePicture(r.Context(), userID, photo)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update profile picture")
		respondServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Profile picture updated", map[string]interface{}{
		"profile_pic_url": url,
	})
}

// DeviceTokenRequest is the payload for POST /users/{user_id}/token
type DeviceTokenRequest struct {
	DeviceToken string `json:"device_token" validate:"required"`
}

// SaveDeviceToken handles POST /api/user/users/{user_id}/token
func (h *UserHandler) SaveDeviceToken(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if !requireSelf(w, r, userID) {
		return
	}

	var req DeviceTokenRequest
	if err := decodeValid(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.userService.SaveDeviceToken(r.Context(), userID, req.DeviceToken); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to save device token")
		respondServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Device token saved", nil)
}

// Search handles GET /api/user/search/{query}
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := chi.URLParam(r, "query")

	profiles, err := h.userService.Search(r.Context(), query)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("Failed to search users")
		respondServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Users retrieved", map[string]interface{}{
		"users": profiles,
	})
}

// readOptionalFile reads a multipart file field; a missing field or a
// non-multipart body yields nil bytes, meaning "no photo supplied"
func readOptionalFile(r *http.Request, field string) ([]byte, error) {
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		if err == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, err
	}
	file, _, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(io.LimitReader(file, maxPhotoBytes))
}
