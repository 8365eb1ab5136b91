package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	onboardingapp "github.com/marketplace/portal/internal/application/onboarding"
	"github.com/marketplace/portal/internal/domain/onboarding"
)

// OnboardingHandler serves the vendor registration wizard
type OnboardingHandler struct {
	BaseHandler
	onboardingService *onboardingapp.Service
}

// NewOnboardingHandler creates a new OnboardingHandler
func NewOnboardingHandler(onboardingService *onboardingapp.Service) *OnboardingHandler {
	return &OnboardingHandler{onboardingService: onboardingService}
}

// StartSessionRequest opens a wizard for a mobile number
type StartSessionRequest struct {
	Mobile string `json:"mobile" binding:"required,in_phone" example:"9876543210"`
}

// MobileOTPRequest carries the 4 digit mobile OTP
type MobileOTPRequest struct {
	OTP string `json:"otp" binding:"required,otp4" example:"1234"`
}

// AadhaarOTPRequest asks for the Aadhaar OTP
type AadhaarOTPRequest struct {
	Aadhaar string `json:"aadhaar" binding:"required,aadhaar" example:"2345 6789 0123"`
	Captcha string `json:"captcha" binding:"required,max=16" example:"x7Kp2"`
}

// AadhaarVerifyRequest carries the 6 digit Aadhaar OTP
type AadhaarVerifyRequest struct {
	OTP string `json:"otp" binding:"required,otp6" example:"123456"`
}

// PANRequest carries the PAN to verify
type PANRequest struct {
	PAN string `json:"pan" binding:"required,pan" example:"ABCDE1234F"`
}

// GSTRequest carries the GSTIN to verify
type GSTRequest struct {
	GSTIN string `json:"gstin" binding:"required,gstin" example:"22ABCDE1234F1Z5"`
}

// AddressRequest is the pickup address on the vendor form
type AddressRequest struct {
	Line1   string `json:"line1" binding:"required,max=200"`
	Line2   string `json:"line2" binding:"max=200"`
	City    string `json:"city" binding:"required,max=100"`
	State   string `json:"state" binding:"required,max=100"`
	Pincode string `json:"pincode" binding:"required,pincode" example:"560001"`
}

// BankRequest is the payout account on the vendor form
type BankRequest struct {
	AccountHolder string `json:"account_holder" binding:"required,max=200"`
	AccountNumber string `json:"account_number" binding:"required,min=9,max=18,numeric"`
	IFSC          string `json:"ifsc" binding:"required,ifsc" example:"HDFC0001234"`
}

// SubmitVendorRequest is the last wizard step
type SubmitVendorRequest struct {
	BusinessName string         `json:"business_name" binding:"required,max=200"`
	OwnerName    string         `json:"owner_name" binding:"required,max=200"`
	Email        string         `json:"email" binding:"required,email,max=200"`
	Password     string         `json:"password" binding:"required,min=8,max=72"`
	Address      AddressRequest `json:"address" binding:"required"`
	Bank         BankRequest    `json:"bank" binding:"required"`
	Categories   []string       `json:"categories" binding:"max=20,dive,max=100"`
}

func (r SubmitVendorRequest) toForm() onboarding.VendorForm {
	return onboarding.VendorForm{
		BusinessName: r.BusinessName,
		OwnerName:    r.OwnerName,
		Email:        r.Email,
		Password:     r.Password,
		Address: onboarding.Address{
			Line1:   r.Address.Line1,
			Line2:   r.Address.Line2,
			City:    r.Address.City,
			State:   r.Address.State,
			Pincode: r.Address.Pincode,
		},
		Bank: onboarding.BankDetails{
			AccountHolder: r.Bank.AccountHolder,
			AccountNumber: r.Bank.AccountNumber,
			IFSC:          r.Bank.IFSC,
		},
		Categories: r.Categories,
	}
}

// SessionResponse is the wizard state shown to the browser. The backend KYC
// session id stays on the server.
type SessionResponse struct {
	ID              uuid.UUID       `json:"id"`
	Mobile          string          `json:"mobile"`
	Step            onboarding.Step `json:"step"`
	MobileVerified  bool            `json:"mobile_verified"`
	AadhaarVerified bool            `json:"aadhaar_verified"`
	AadhaarRef      string          `json:"aadhaar_ref,omitempty"`
	AadhaarOTPSent  bool            `json:"aadhaar_otp_sent"`
	PANVerified     bool            `json:"pan_verified"`
	GSTVerified     bool            `json:"gst_verified"`
	PAN             string          `json:"pan,omitempty"`
	GSTIN           string          `json:"gstin,omitempty"`
	VendorID        string          `json:"vendor_id,omitempty"`
	OTPSentAt       *time.Time      `json:"otp_sent_at,omitempty"`
	SubmittedAt     *time.Time      `json:"submitted_at,omitempty"`
}

func toSessionResponse(s *onboarding.Session) SessionResponse {
	return SessionResponse{
		ID:              s.ID,
		Mobile:          s.Mobile,
		Step:            s.Step,
		MobileVerified:  s.MobileVerified,
		AadhaarVerified: s.AadhaarVerified,
		AadhaarRef:      s.AadhaarRef,
		AadhaarOTPSent:  s.AadhaarOTPSent,
		PANVerified:     s.PANVerified,
		GSTVerified:     s.GSTVerified,
		PAN:             s.PAN,
		GSTIN:           s.GSTIN,
		VendorID:        s.VendorID,
		OTPSentAt:       s.OTPSentAt,
		SubmittedAt:     s.SubmittedAt,
	}
}

// sessionID parses the :id path parameter; it answers 400 itself on failure
func (h *OnboardingHandler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid onboarding session")
		return uuid.Nil, false
	}
	return id, true
}

// Start handles POST /onboarding/sessions
func (h *OnboardingHandler) Start(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	sess, err := h.onboardingService.Start(c.Request.Context(), req.Mobile)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Mutated(c, http.StatusCreated, toSessionResponse(sess), "OTP sent to your mobile number")
}

// Get handles GET /onboarding/sessions/:id
func (h *OnboardingHandler) Get(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	sess, err := h.onboardingService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSessionResponse(sess))
}

// ResendMobileOTP handles POST /onboarding/sessions/:id/mobile/resend
func (h *OnboardingHandler) ResendMobileOTP(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	sess, err := h.onboardingService.ResendMobileOTP(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Mutated(c, http.StatusOK, toSessionResponse(sess), "OTP sent again")
}

// VerifyMobileOTP handles POST /onboarding/sessions/:id/mobile/verify
func (h *OnboardingHandler) VerifyMobileOTP(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req MobileOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	sess, err := h.onboardingService.VerifyMobileOTP(c.Request.Context(), id, req.OTP)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Mutated(c, http.StatusOK, toSessionResponse(sess), "Mobile number verified")
}

// StartAadhaar handles POST /onboarding/sessions/:id/aadhaar/captcha
func (h *OnboardingHandler) StartAadhaar(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	captcha, err := h.onboardingService.StartAadhaar(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	// the captcha image is all the browser needs
	h.Success(c, gin.H{"captcha": captcha.Image})
}

// RequestAadhaarOTP handles POST /onboarding/sessions/:id/aadhaar/otp
func (h *OnboardingHandler) RequestAadhaarOTP(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req AadhaarOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	res, err := h.onboardingService.RequestAadhaarOTP(c.Request.Context(), id, req.Aadhaar, req.Captcha)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	msg := res.Message
	if msg == "" {
		msg = "OTP sent to the mobile number linked with your Aadhaar"
	}
	h.Mutated(c, http.StatusOK, gin.H{"reference_id": res.ReferenceID}, msg)
}

// VerifyAadhaarOTP handles POST /onboarding/sessions/:id/aadhaar/verify
func (h *OnboardingHandler) VerifyAadhaarOTP(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req AadhaarVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	sess, holder, err := h.onboardingService.VerifyAadhaarOTP(c.Request.Context(), id, req.OTP)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Mutated(c, http.StatusOK, gin.H{
		"session": toSessionResponse(sess),
		"holder":  holder,
	}, "Aadhaar verified")
}

// VerifyPAN handles POST /onboarding/sessions/:id/pan
func (h *OnboardingHandler) VerifyPAN(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req PANRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	sess, check, err := h.onboardingService.VerifyPAN(c.Request.Context(), id, req.PAN)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Mutated(c, http.StatusOK, gin.H{
		"session": toSessionResponse(sess),
		"check":   check,
	}, "PAN verified")
}

// VerifyGST handles POST /onboarding/sessions/:id/gst
func (h *OnboardingHandler) VerifyGST(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req GSTRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	sess, check, err := h.onboardingService.VerifyGST(c.Request.Context(), id, req.GSTIN)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Mutated(c, http.StatusOK, gin.H{
		"session": toSessionResponse(sess),
		"check":   check,
	}, "GSTIN verified")
}

// Submit handles POST /onboarding/sessions/:id/submit
func (h *OnboardingHandler) Submit(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req SubmitVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	sess, err := h.onboardingService.Submit(c.Request.Context(), id, req.toForm())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Mutated(c, http.StatusCreated, toSessionResponse(sess), "Registration submitted. We will review your details shortly.")
}
