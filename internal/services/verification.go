package services

import (
	"context"
	"errors"

	"pinpal-backend/internal/apperr"
	"pinpal-backend/internal/repository"
)

// VerificationService handles phone number verification through an SMS
// one-time-code provider
type VerificationService struct {
	users UserStore
	sms   SMSVerifier
}

// NewVerificationService creates a new verification service
func NewVerificationService(users UserStore, sms SMSVerifier) *VerificationService {
	return &VerificationService{users: users, sms: sms}
}

// SendCode asks the provider to text a one-time code to the phone.
// These calls are user-initiated, so provider failures are surfaced.
func (s *VerificationService) SendCode(ctx context.Context, phoneNo string) error {
	if err := s.sms.SendCode(ctx, phoneNo); err != nil {
		return apperr.External("failed to send verification code", err)
	}
	return nil
}

// CheckCode verifies the code and, on success, marks the user's phone
// number as verified
func (s *VerificationService) CheckCode(ctx context.Context, userID, phoneNo, code string) error {
	ok, err := s.sms.CheckCode(ctx, phoneNo, code)
	if err != nil {
		return apperr.External("failed to check verification code", err)
	}
	if !ok {
		return apperr.Invalid("verification code is invalid or expired")
	}

	if err := s.users.SetPhoneVerified(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal(err)
	}
	return nil
}
