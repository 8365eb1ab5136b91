package onboarding

// Captcha is what the KYC provider returns when a session is initiated.
// Image is a base64 data URI shown next to the Aadhaar input.
type Captcha struct {
	KYCSessionID string `json:"session_id"`
	Image        string `json:"captcha"`
}

// AadhaarOTPResult is returned when the Aadhaar OTP is dispatched
type AadhaarOTPResult struct {
	ReferenceID string `json:"reference_id"`
	Message     string `json:"message,omitempty"`
}

// KYCIdentity is the verified holder returned by the Aadhaar OTP check
type KYCIdentity struct {
	Name    string `json:"name"`
	Gender  string `json:"gender,omitempty"`
	DOB     string `json:"dob,omitempty"`
	Pincode string `json:"pincode,omitempty"`
}

// DocumentCheck is the result of a PAN or GSTIN lookup
type DocumentCheck struct {
	Valid        bool   `json:"valid"`
	Name         string `json:"name,omitempty"`
	BusinessName string `json:"business_name,omitempty"`
	Status       string `json:"status,omitempty"`
}
