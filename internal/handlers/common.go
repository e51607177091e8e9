package handlers

import (
	"encoding/json"
	"net/http"

	"pinpal-backend/internal/apperr"
	"pinpal-backend/internal/middleware"

	"github.com/go-playground/validator/v10"
)

// validate checks request payload structs against their field tags
var validate = validator.New()

// respond sends the JSON envelope {message, ...payload}
func respond(w http.ResponseWriter, status int, message string, payload map[string]interface{}) {
	body := map[string]interface{}{"message": message}
	for k, v := range payload {
		body[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// respondError sends an error envelope with the given message
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respond(w, statusCode, message, nil)
}

// respondServiceError maps a service error onto its HTTP status and
// client-safe message
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, apperr.ClientMessage(err), apperr.HTTPStatus(err))
}

// decodeValid decodes a JSON body into dst and validates it
func decodeValid(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Invalid("invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return apperr.Invalid("missing or invalid fields: " + err.Error())
	}
	return nil
}

// requireSelf ensures the authenticated user is the one named in the
// path; writes a 403 and returns false otherwise
func requireSelf(w http.ResponseWriter, r *http.Request, pathUserID string) bool {
	if middleware.GetUserID(r.Context()) != pathUserID {
		respondError(w, "cannot act on behalf of another user", http.StatusForbidden)
		return false
	}
	return true
}
