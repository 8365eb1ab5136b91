package onboarding

import (
	"regexp"
	"strings"
)

var (
	phonePattern   = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	panPattern     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	gstinPattern   = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	aadhaarPattern = regexp.MustCompile(`^[2-9][0-9]{11}$`)
	ifscPattern    = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
)

// NormalizePhone strips spaces, dashes and a leading +91 or 0
func NormalizePhone(s string) string {
	s = strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "+91")
	if len(s) == 11 && s[0] == '0' {
		s = s[1:]
	}
	return s
}

// IsValidPhone reports whether s is a 10 digit Indian mobile number
func IsValidPhone(s string) bool {
	return phonePattern.MatchString(NormalizePhone(s))
}

// IsValidPAN reports whether s is a PAN such as ABCDE1234F
func IsValidPAN(s string) bool {
	return panPattern.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

// IsValidGSTIN reports whether s is a 15 character GSTIN
func IsValidGSTIN(s string) bool {
	return gstinPattern.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

// IsValidPincode reports whether s is a 6 digit postal code
func IsValidPincode(s string) bool {
	return pincodePattern.MatchString(strings.TrimSpace(s))
}

// IsValidAadhaar reports whether s is a 12 digit Aadhaar number. Spaces are ignored.
func IsValidAadhaar(s string) bool {
	return aadhaarPattern.MatchString(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}

// IsValidIFSC reports whether s is a bank IFSC code
func IsValidIFSC(s string) bool {
	return ifscPattern.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

// GSTINMatchesPAN reports whether the GSTIN embeds the given PAN.
// Characters 3 to 12 of a GSTIN are the holder's PAN.
func GSTINMatchesPAN(gstin, pan string) bool {
	gstin = strings.ToUpper(strings.TrimSpace(gstin))
	pan = strings.ToUpper(strings.TrimSpace(pan))
	if len(gstin) != 15 || len(pan) != 10 {
		return false
	}
	return gstin[2:12] == pan
}

// MaskAadhaar keeps only the last four digits
func MaskAadhaar(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if len(s) < 4 {
		return s
	}
	return strings.Repeat("X", len(s)-4) + s[len(s)-4:]
}
