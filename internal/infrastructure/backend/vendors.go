package backend

import (
	"context"
	"net/http"

	"github.com/marketplace/portal/internal/domain/onboarding"
)

// Vendors is the /vendor registration resource
type Vendors struct{ c *Client }

// Vendors returns the vendor registration client
func (c *Client) Vendors() *Vendors { return &Vendors{c: c} }

// SendOTP sends the 4 digit mobile OTP
func (v *Vendors) SendOTP(ctx context.Context, mobile string) error {
	return v.c.Do(ctx, http.MethodPost, "/vendor/send-otp", nil, map[string]string{"mobile": mobile}, nil)
}

// VerifyOTP checks the mobile OTP
func (v *Vendors) VerifyOTP(ctx context.Context, mobile, otp string) error {
	return v.c.Do(ctx, http.MethodPost, "/vendor/verify-otp", nil,
		map[string]string{"mobile": mobile, "otp": otp}, nil)
}

// Register creates the vendor account and returns its id
func (v *Vendors) Register(ctx context.Context, reg *onboarding.Registration) (string, error) {
	var out struct {
		VendorID string `json:"vendor_id"`
		ID       string `json:"_id"`
	}
	if err := v.c.Do(ctx, http.MethodPost, "/vendor/register", nil, reg, &out); err != nil {
		return "", err
	}
	if out.VendorID == "" {
		return out.ID, nil
	}
	return out.VendorID, nil
}
