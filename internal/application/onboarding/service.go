// Package onboarding runs the vendor registration wizard. Every step reads
// the session, asks the backend, and saves the session only when the
// backend confirmed, so a failed call never moves the wizard forward.
package onboarding

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/portal/internal/domain/onboarding"
	"github.com/marketplace/portal/internal/domain/shared"
	"github.com/marketplace/portal/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// VendorGateway is the backend's vendor registration resource
type VendorGateway interface {
	SendOTP(ctx context.Context, mobile string) error
	VerifyOTP(ctx context.Context, mobile, otp string) error
	Register(ctx context.Context, reg *onboarding.Registration) (string, error)
}

// KYCGateway is the backend's KYC resource
type KYCGateway interface {
	InitiateSession(ctx context.Context) (*onboarding.Captcha, error)
	GenerateOTP(ctx context.Context, kycSessionID, aadhaar, captcha string) (*onboarding.AadhaarOTPResult, error)
	VerifyOTP(ctx context.Context, kycSessionID, otp string) (*onboarding.KYCIdentity, error)
	VerifyPAN(ctx context.Context, pan string) (*onboarding.DocumentCheck, error)
	VerifyGST(ctx context.Context, gstin string) (*onboarding.DocumentCheck, error)
}

// Config holds wizard timings
type Config struct {
	SessionTTL     time.Duration
	ResendCooldown time.Duration
}

// Service drives the onboarding wizard
type Service struct {
	store   onboarding.SessionStore
	vendors VendorGateway
	kyc     KYCGateway
	cfg     Config
	now     func() time.Time
}

// NewService creates a new onboarding Service
func NewService(store onboarding.SessionStore, vendors VendorGateway, kyc KYCGateway, cfg Config) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	return &Service{store: store, vendors: vendors, kyc: kyc, cfg: cfg, now: time.Now}
}

// Start opens a wizard for mobile and sends the first OTP
func (s *Service) Start(ctx context.Context, mobile string) (*onboarding.Session, error) {
	sess, err := onboarding.NewSession(mobile)
	if err != nil {
		return nil, err
	}
	if err := s.vendors.SendOTP(ctx, sess.Mobile); err != nil {
		return nil, err
	}
	sess.MarkOTPSent(s.now())
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	logger.L(ctx).Info("Onboarding started", zap.Stringer("session", sess))
	return sess, nil
}

// Get returns the session
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*onboarding.Session, error) {
	return s.store.Get(ctx, id)
}

// ResendMobileOTP sends another mobile OTP once the cooldown has passed.
// The cooldown is kept on the session so it holds across instances.
func (s *Service) ResendMobileOTP(ctx context.Context, id uuid.UUID) (*onboarding.Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.MobileVerified {
		return nil, shared.NewDomainError("MOBILE_ALREADY_VERIFIED", "Mobile number is already verified")
	}
	if wait := s.cooldownLeft(sess); wait > 0 {
		secs := int(math.Ceil(wait.Seconds()))
		return nil, shared.NewDomainError(shared.ErrRateLimited.Code,
			fmt.Sprintf("Please wait %d seconds before requesting another OTP", secs))
	}
	if err := s.vendors.SendOTP(ctx, sess.Mobile); err != nil {
		return nil, err
	}
	sess.MarkOTPSent(s.now())
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Service) cooldownLeft(sess *onboarding.Session) time.Duration {
	if sess.OTPSentAt == nil || s.cfg.ResendCooldown <= 0 {
		return 0
	}
	return sess.OTPSentAt.Add(s.cfg.ResendCooldown).Sub(s.now())
}

// VerifyMobileOTP checks the 4 digit mobile OTP and opens the Aadhaar step
func (s *Service) VerifyMobileOTP(ctx context.Context, id uuid.UUID, otp string) (*onboarding.Session, error) {
	if err := onboarding.ValidateOTP(onboarding.OTPMobile, otp); err != nil {
		return nil, err
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Step == onboarding.StepSubmitted {
		return nil, onboarding.ErrAlreadySubmitted
	}
	if sess.MobileVerified {
		return sess, nil
	}
	if err := s.vendors.VerifyOTP(ctx, sess.Mobile, strings.TrimSpace(otp)); err != nil {
		return nil, err
	}
	if err := sess.VerifyMobile(); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	logger.L(ctx).Info("Mobile verified", zap.Stringer("session", sess))
	return sess, nil
}

// StartAadhaar opens a KYC session and returns its captcha
func (s *Service) StartAadhaar(ctx context.Context, id uuid.UUID) (*onboarding.Captcha, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sess.CanStartKYC(); err != nil {
		return nil, err
	}
	captcha, err := s.kyc.InitiateSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := sess.StartKYC(captcha.KYCSessionID); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return captcha, nil
}

// RequestAadhaarOTP sends the Aadhaar OTP to the number linked with aadhaar
func (s *Service) RequestAadhaarOTP(ctx context.Context, id uuid.UUID, aadhaar, captcha string) (*onboarding.AadhaarOTPResult, error) {
	aadhaar = strings.ReplaceAll(strings.TrimSpace(aadhaar), " ", "")
	if !onboarding.IsValidAadhaar(aadhaar) {
		return nil, shared.NewDomainError("INVALID_AADHAAR", "Enter a valid 12 digit Aadhaar number")
	}
	if strings.TrimSpace(captcha) == "" {
		return nil, shared.NewDomainError("INVALID_CAPTCHA", "Enter the captcha shown in the image")
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sess.CanRequestAadhaarOTP(); err != nil {
		return nil, err
	}
	res, err := s.kyc.GenerateOTP(ctx, sess.KYCSessionID, aadhaar, strings.TrimSpace(captcha))
	if err != nil {
		return nil, err
	}
	sess.MarkAadhaarOTPSent(aadhaar)
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return res, nil
}

// VerifyAadhaarOTP checks the 6 digit Aadhaar OTP and opens the form step
func (s *Service) VerifyAadhaarOTP(ctx context.Context, id uuid.UUID, otp string) (*onboarding.Session, *onboarding.KYCIdentity, error) {
	if err := onboarding.ValidateOTP(onboarding.OTPAadhaar, otp); err != nil {
		return nil, nil, err
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := sess.CanVerifyAadhaar(); err != nil {
		return nil, nil, err
	}
	holder, err := s.kyc.VerifyOTP(ctx, sess.KYCSessionID, strings.TrimSpace(otp))
	if err != nil {
		return nil, nil, err
	}
	if err := sess.VerifyAadhaar(); err != nil {
		return nil, nil, err
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, nil, err
	}
	logger.L(ctx).Info("Aadhaar verified", zap.Stringer("session", sess))
	return sess, holder, nil
}

// VerifyPAN checks the PAN with the backend
func (s *Service) VerifyPAN(ctx context.Context, id uuid.UUID, pan string) (*onboarding.Session, *onboarding.DocumentCheck, error) {
	if !onboarding.IsValidPAN(pan) {
		return nil, nil, shared.NewDomainError("INVALID_PAN", "PAN must look like ABCDE1234F")
	}
	pan = strings.ToUpper(strings.TrimSpace(pan))
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := sess.CanVerifyDocuments(); err != nil {
		return nil, nil, err
	}
	check, err := s.kyc.VerifyPAN(ctx, pan)
	if err != nil {
		return nil, nil, err
	}
	if !check.Valid {
		return nil, check, shared.NewDomainError("PAN_NOT_VALID", "PAN could not be verified")
	}
	if err := sess.VerifyPAN(pan); err != nil {
		return nil, nil, err
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, nil, err
	}
	return sess, check, nil
}

// VerifyGST checks the GSTIN with the backend. The PAN must be verified first.
func (s *Service) VerifyGST(ctx context.Context, id uuid.UUID, gstin string) (*onboarding.Session, *onboarding.DocumentCheck, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := sess.CheckGSTIN(gstin); err != nil {
		return nil, nil, err
	}
	gstin = strings.ToUpper(strings.TrimSpace(gstin))
	check, err := s.kyc.VerifyGST(ctx, gstin)
	if err != nil {
		return nil, nil, err
	}
	if !check.Valid {
		return nil, check, shared.NewDomainError("GSTIN_NOT_VALID", "GSTIN could not be verified")
	}
	if err := sess.VerifyGST(gstin); err != nil {
		return nil, nil, err
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, nil, err
	}
	return sess, check, nil
}

// Submit registers the vendor once every verification is done
func (s *Service) Submit(ctx context.Context, id uuid.UUID, form onboarding.VendorForm) (*onboarding.Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	reg, err := sess.Registration(form)
	if err != nil {
		return nil, err
	}
	vendorID, err := s.vendors.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	if err := sess.Submit(vendorID); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	logger.L(ctx).Info("Vendor registered", zap.Stringer("session", sess), zap.String("vendor_id", vendorID))
	return sess, nil
}

func (s *Service) save(ctx context.Context, sess *onboarding.Session) error {
	if err := s.store.Save(ctx, sess, s.cfg.SessionTTL); err != nil {
		return fmt.Errorf("save onboarding session: %w", err)
	}
	return nil
}
