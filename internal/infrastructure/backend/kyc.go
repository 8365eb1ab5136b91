package backend

import (
	"context"
	"net/http"

	"github.com/marketplace/portal/internal/domain/onboarding"
)

// KYC is the /kyc resource used by vendor onboarding
type KYC struct{ c *Client }

// KYC returns the KYC resource client
func (c *Client) KYC() *KYC { return &KYC{c: c} }

// InitiateSession opens a provider session and returns its captcha
func (k *KYC) InitiateSession(ctx context.Context) (*onboarding.Captcha, error) {
	var out onboarding.Captcha
	if err := k.c.Do(ctx, http.MethodPost, "/kyc/initiate-session", nil, struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateOTP sends an OTP to the Aadhaar-linked mobile
func (k *KYC) GenerateOTP(ctx context.Context, kycSessionID, aadhaar, captcha string) (*onboarding.AadhaarOTPResult, error) {
	body := map[string]string{
		"session_id":     kycSessionID,
		"aadhaar_number": aadhaar,
		"captcha":        captcha,
	}
	var out onboarding.AadhaarOTPResult
	if err := k.c.Do(ctx, http.MethodPost, "/kyc/generate-otp", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyOTP confirms the Aadhaar OTP
func (k *KYC) VerifyOTP(ctx context.Context, kycSessionID, otp string) (*onboarding.KYCIdentity, error) {
	body := map[string]string{"session_id": kycSessionID, "otp": otp}
	var out onboarding.KYCIdentity
	if err := k.c.Do(ctx, http.MethodPost, "/kyc/verify-otp", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyPAN looks a PAN up
func (k *KYC) VerifyPAN(ctx context.Context, pan string) (*onboarding.DocumentCheck, error) {
	return k.document(ctx, "/kyc/verify-pan", map[string]string{"pan": pan})
}

// VerifyGST looks a GSTIN up
func (k *KYC) VerifyGST(ctx context.Context, gstin string) (*onboarding.DocumentCheck, error) {
	return k.document(ctx, "/kyc/verify-gst", map[string]string{"gstin": gstin})
}

func (k *KYC) document(ctx context.Context, path string, body any) (*onboarding.DocumentCheck, error) {
	out := onboarding.DocumentCheck{Valid: true}
	if err := k.c.Do(ctx, http.MethodPost, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
