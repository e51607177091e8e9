package sms

import (
	"context"
	"fmt"

	appconfig "pinpal-backend/internal/config"

	"github.com/twilio/twilio-go"
	verify "github.com/twilio/twilio-go/rest/verify/v2"
)

const statusApproved = "approved"

// TwilioVerifier sends and checks one-time codes through Twilio Verify
type TwilioVerifier struct {
	client     *twilio.RestClient
	serviceSID string
}

// NewTwilioVerifier creates a Twilio Verify client
func NewTwilioVerifier(cfg appconfig.TwilioConfig) *TwilioVerifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioVerifier{client: client, serviceSID: cfg.VerifyServiceSID}
}

// SendCode texts a one-time code to the phone number
func (v *TwilioVerifier) SendCode(ctx context.Context, phoneNo string) error {
	params := &verify.CreateVerificationParams{}
	params.SetTo(phoneNo)
	params.SetChannel("sms")

	if _, err := v.client.VerifyV2.CreateVerification(v.serviceSID, params); err != nil {
		return fmt.Errorf("failed to send verification: %w", err)
	}
	return nil
}

// CheckCode reports whether the code matches the one sent to the phone
func (v *TwilioVerifier) CheckCode(ctx context.Context, phoneNo, code string) (bool, error) {
	params := &verify.CreateVerificationCheckParams{}
	params.SetTo(phoneNo)
	params.SetCode(code)

	check, err := v.client.VerifyV2.CreateVerificationCheck(v.serviceSID, params)
	if err != nil {
		return false, fmt.Errorf("failed to check verification: %w", err)
	}
	return check.Status != nil && *check.Status == statusApproved, nil
}
