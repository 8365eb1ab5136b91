package onboarding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/portal/internal/domain/shared"
)

// Step is the current page of the onboarding wizard
type Step string

const (
	StepMobile    Step = "mobile"
	StepAadhaar   Step = "aadhaar"
	StepForm      Step = "form"
	StepSubmitted Step = "submitted"
)

// rank orders steps so transitions can only move forward
func (s Step) rank() int {
	switch s {
	case StepMobile:
		return 0
	case StepAadhaar:
		return 1
	case StepForm:
		return 2
	case StepSubmitted:
		return 3
	}
	return -1
}

// IsValid checks if the step is known
func (s Step) IsValid() bool {
	return s.rank() >= 0
}

// Errors returned by session transitions
var (
	ErrSessionNotFound    = shared.NewDomainError("ONBOARDING_SESSION_NOT_FOUND", "Onboarding session not found or expired")
	ErrMobileNotVerified  = shared.NewDomainError("MOBILE_NOT_VERIFIED", "Verify your mobile number first")
	ErrAadhaarNotVerified = shared.NewDomainError("AADHAAR_NOT_VERIFIED", "Verify your Aadhaar first")
	ErrKYCNotStarted      = shared.NewDomainError("KYC_NOT_STARTED", "Request a captcha before asking for the Aadhaar OTP")
	ErrAadhaarOTPNotSent  = shared.NewDomainError("AADHAAR_OTP_NOT_SENT", "Request the Aadhaar OTP first")
	ErrPANNotVerified     = shared.NewDomainError("PAN_NOT_VERIFIED", "Verify your PAN first")
	ErrGSTNotVerified     = shared.NewDomainError("GST_NOT_VERIFIED", "Verify your GSTIN first")
	ErrAlreadySubmitted   = shared.NewDomainError("ONBOARDING_SUBMITTED", "This onboarding has already been submitted")
	ErrGSTINPANMismatch   = shared.NewDomainError("GSTIN_PAN_MISMATCH", "GSTIN does not belong to the verified PAN")

	ErrAadhaarAlreadyVerified = shared.NewDomainError("AADHAAR_ALREADY_VERIFIED", "Aadhaar is already verified")
)

// Session is the server-held state of one vendor going through the wizard.
// Every flag is set only after the backend confirmed the matching
// verification, and the step never moves backwards.
type Session struct {
	shared.BaseEntity
	Mobile          string     `json:"mobile"`
	Step            Step       `json:"step"`
	MobileVerified  bool       `json:"mobile_verified"`
	AadhaarVerified bool       `json:"aadhaar_verified"`
	PANVerified     bool       `json:"pan_verified"`
	GSTVerified     bool       `json:"gst_verified"`
	KYCSessionID    string     `json:"kyc_session_id,omitempty"`
	AadhaarRef      string     `json:"aadhaar_ref,omitempty"`
	AadhaarOTPSent  bool       `json:"aadhaar_otp_sent"`
	PAN             string     `json:"pan,omitempty"`
	GSTIN           string     `json:"gstin,omitempty"`
	VendorID        string     `json:"vendor_id,omitempty"`
	OTPSentAt       *time.Time `json:"otp_sent_at,omitempty"`
	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
}

// NewSession starts a wizard for a mobile number
func NewSession(mobile string) (*Session, error) {
	mobile = NormalizePhone(mobile)
	if !phonePattern.MatchString(mobile) {
		return nil, shared.NewDomainError("INVALID_PHONE", "Enter a valid 10 digit mobile number")
	}
	return &Session{
		BaseEntity: shared.NewBaseEntity(),
		Mobile:     mobile,
		Step:       StepMobile,
	}, nil
}

// MarkOTPSent records when the last mobile OTP was sent
func (s *Session) MarkOTPSent(at time.Time) {
	s.OTPSentAt = &at
	s.Touch()
}

// VerifyMobile records a confirmed mobile OTP and moves to the Aadhaar step
func (s *Session) VerifyMobile() error {
	if s.Step == StepSubmitted {
		return ErrAlreadySubmitted
	}
	s.MobileVerified = true
	s.advance(StepAadhaar)
	return nil
}

// StartKYC stores the backend KYC session that the Aadhaar OTP belongs to.
// A new captcha resets a previously requested OTP.
func (s *Session) StartKYC(kycSessionID string) error {
	if err := s.CanStartKYC(); err != nil {
		return err
	}
	if strings.TrimSpace(kycSessionID) == "" {
		return shared.NewDomainError("INVALID_KYC_SESSION", "KYC session could not be started")
	}
	s.KYCSessionID = kycSessionID
	s.AadhaarOTPSent = false
	s.Touch()
	return nil
}

// CanStartKYC checks that a captcha may be requested
func (s *Session) CanStartKYC() error {
	if err := s.requireOpen(); err != nil {
		return err
	}
	if !s.MobileVerified {
		return ErrMobileNotVerified
	}
	if s.AadhaarVerified {
		return ErrAadhaarAlreadyVerified
	}
	return nil
}

// CanRequestAadhaarOTP checks the preconditions for generating an Aadhaar OTP
func (s *Session) CanRequestAadhaarOTP() error {
	if err := s.requireOpen(); err != nil {
		return err
	}
	if !s.MobileVerified {
		return ErrMobileNotVerified
	}
	if s.KYCSessionID == "" {
		return ErrKYCNotStarted
	}
	return nil
}

// MarkAadhaarOTPSent records a successful Aadhaar OTP request
func (s *Session) MarkAadhaarOTPSent(aadhaar string) {
	s.AadhaarRef = MaskAadhaar(aadhaar)
	s.AadhaarOTPSent = true
	s.Touch()
}

// CanVerifyAadhaar checks the preconditions for verifying the Aadhaar OTP
func (s *Session) CanVerifyAadhaar() error {
	if err := s.CanRequestAadhaarOTP(); err != nil {
		return err
	}
	if !s.AadhaarOTPSent {
		return ErrAadhaarOTPNotSent
	}
	return nil
}

// VerifyAadhaar records a confirmed Aadhaar OTP and opens the form step
func (s *Session) VerifyAadhaar() error {
	if err := s.CanVerifyAadhaar(); err != nil {
		return err
	}
	s.AadhaarVerified = true
	s.advance(StepForm)
	return nil
}

// CanVerifyDocuments checks that PAN/GST verification is reachable
func (s *Session) CanVerifyDocuments() error {
	if err := s.requireOpen(); err != nil {
		return err
	}
	if !s.MobileVerified {
		return ErrMobileNotVerified
	}
	if !s.AadhaarVerified {
		return ErrAadhaarNotVerified
	}
	return nil
}

// VerifyPAN records a confirmed PAN
func (s *Session) VerifyPAN(pan string) error {
	if err := s.CanVerifyDocuments(); err != nil {
		return err
	}
	pan = strings.ToUpper(strings.TrimSpace(pan))
	if !panPattern.MatchString(pan) {
		return shared.NewDomainError("INVALID_PAN", "PAN must look like ABCDE1234F")
	}
	s.PAN = pan
	s.PANVerified = true
	// GST verification is tied to the PAN it was checked against
	if s.GSTIN != "" && !GSTINMatchesPAN(s.GSTIN, pan) {
		s.GSTIN = ""
		s.GSTVerified = false
	}
	s.Touch()
	return nil
}

// CheckGSTIN validates a GSTIN before it is sent for verification
func (s *Session) CheckGSTIN(gstin string) error {
	if err := s.CanVerifyDocuments(); err != nil {
		return err
	}
	if !s.PANVerified {
		return ErrPANNotVerified
	}
	gstin = strings.ToUpper(strings.TrimSpace(gstin))
	if !gstinPattern.MatchString(gstin) {
		return shared.NewDomainError("INVALID_GSTIN", "GSTIN must be 15 characters, e.g. 22ABCDE1234F1Z5")
	}
	if !GSTINMatchesPAN(gstin, s.PAN) {
		return ErrGSTINPANMismatch
	}
	return nil
}

// VerifyGST records a confirmed GSTIN
func (s *Session) VerifyGST(gstin string) error {
	if err := s.CheckGSTIN(gstin); err != nil {
		return err
	}
	s.GSTIN = strings.ToUpper(strings.TrimSpace(gstin))
	s.GSTVerified = true
	s.Touch()
	return nil
}

// CanSubmit reports whether every verification the form depends on is done
func (s *Session) CanSubmit() error {
	if err := s.CanVerifyDocuments(); err != nil {
		return err
	}
	if !s.PANVerified {
		return ErrPANNotVerified
	}
	if !s.GSTVerified {
		return ErrGSTNotVerified
	}
	return nil
}

// Registration assembles the payload sent to the backend on submit
func (s *Session) Registration(form VendorForm) (*Registration, error) {
	if err := s.CanSubmit(); err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}
	form.Bank.IFSC = strings.ToUpper(strings.TrimSpace(form.Bank.IFSC))
	return &Registration{
		VendorForm:   form,
		Mobile:       s.Mobile,
		KYCSessionID: s.KYCSessionID,
		PAN:          s.PAN,
		GSTIN:        s.GSTIN,
	}, nil
}

// Submit marks the wizard complete
func (s *Session) Submit(vendorID string) error {
	if err := s.CanSubmit(); err != nil {
		return err
	}
	now := time.Now()
	s.VendorID = vendorID
	s.SubmittedAt = &now
	s.advance(StepSubmitted)
	return nil
}

func (s *Session) requireOpen() error {
	if s.Step == StepSubmitted {
		return ErrAlreadySubmitted
	}
	return nil
}

// advance moves to next only if it is further along than the current step
func (s *Session) advance(next Step) {
	if next.rank() > s.Step.rank() {
		s.Step = next
	}
	s.Touch()
}

// Clone returns a deep copy so stores can hand out sessions safely
func (s *Session) Clone() *Session {
	c := *s
	if s.OTPSentAt != nil {
		t := *s.OTPSentAt
		c.OTPSentAt = &t
	}
	if s.SubmittedAt != nil {
		t := *s.SubmittedAt
		c.SubmittedAt = &t
	}
	return &c
}

// String is used in logs; it never includes document numbers
func (s *Session) String() string {
	return fmt.Sprintf("onboarding(%s step=%s m=%t a=%t p=%t g=%t)",
		s.ID, s.Step, s.MobileVerified, s.AadhaarVerified, s.PANVerified, s.GSTVerified)
}

// SessionStore persists wizard sessions between requests
type SessionStore interface {
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
