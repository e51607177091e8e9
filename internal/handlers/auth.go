package handlers

import (
	"net/http"

	"pinpal-backend/internal/middleware"
	"pinpal-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles signup, login and phone verification
type AuthHandler struct {
	userService         *services.UserService
	verificationService *services.VerificationService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService *services.UserService, verificationService *services.VerificationService) *AuthHandler {
	return &AuthHandler{
		userService:         userService,
		verificationService: verificationService,
	}
}

// Welcome handles GET /api/user
func (h *AuthHandler) Welcome(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, "Welcome to PinPal API", nil)
}

// SignupRequest is the payload for POST /signup
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	FullName string `json:"full_name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Birthday string `json:"birthday" validate:"required"`
	PhoneNo  string `json:"phone_no" validate:"required,e164"`
}

// Signup handles POST /api/user/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeValid(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	profile, err := h.userService.Register(r.Context(), &services.RegisterInput{
		Username: req.Username,
		FullName: req.FullName,
		Password: req.Password,
		Birthday: req.Birthday,
		PhoneNo:  req.PhoneNo,
	})
	if err != nil {
		log.Error().Err(err).Str("username", req.Username).Msg("Failed to register user")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", profile.ID).Str("username", profile.Username).Msg("User registered")
	respond(w, http.StatusOK, "User registered successfully", map[string]interface{}{
		"user": profile,
	})
}

// LoginRequest is the payload for POST /login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/user/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeValid(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	result, err := h.userService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		log.Warn().Err(err).Str("username", req.Username).Msg("Login failed")
		respondServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "User logged in successfully", map[string]interface{}{
		"user": result,
	})
}

// SendVerificationRequest is the payload for POST /send-verification
type SendVerificationRequest struct {
	PhoneNo string `json:"phone_no" validate:"required,e164"`
}

// SendVerification handles POST /api/user/send-verification
func (h *AuthHandler) SendVerification(w http.ResponseWriter, r *http.Request) {
	var req SendVerificationRequest
	if err := decodeValid(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.verificationService.SendCode(r.Context(), req.PhoneNo); err != nil {
		log.Error().Err(err).Str("phone_no", req.PhoneNo).Msg("Failed to send verification code")
		respondServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Verification code sent", nil)
}

// VerifyCodeRequest is the payload for POST /verify-code
type VerifyCodeRequest struct {
	PhoneNo string `json:"phone_no" validate:"required,e164"`
	Code    string `json:"code" validate:"required,min=4,max=10"`
}

// VerifyCode handles POST /api/user/verify-code
func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req VerifyCodeRequest
	if err := decodeValid(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.verificationService.CheckCode(r.Context(), userID, req.PhoneNo, req.Code); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Verification check failed")
		respondServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Phone number verified", nil)
}
