package onboarding

import (
	"fmt"
	"strings"

	"github.com/marketplace/portal/internal/domain/shared"
)

// OTPKind selects which verification an OTP belongs to
type OTPKind string

const (
	OTPMobile  OTPKind = "mobile"
	OTPAadhaar OTPKind = "aadhaar"
)

// Digits returns the number of digits the OTP input accepts
func (k OTPKind) Digits() int {
	switch k {
	case OTPMobile:
		return 4
	case OTPAadhaar:
		return 6
	}
	return 0
}

// ValidateOTP checks that code has exactly the digit count for kind
func ValidateOTP(kind OTPKind, code string) error {
	n := kind.Digits()
	if n == 0 {
		return shared.NewDomainError("INVALID_OTP_KIND", fmt.Sprintf("Unknown OTP kind: %s", kind))
	}
	code = strings.TrimSpace(code)
	if len(code) != n {
		return shared.NewDomainError("INVALID_OTP", fmt.Sprintf("OTP must be %d digits", n))
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return shared.NewDomainError("INVALID_OTP", fmt.Sprintf("OTP must be %d digits", n))
		}
	}
	return nil
}
