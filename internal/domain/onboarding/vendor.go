package onboarding

import (
	"net/mail"
	"strings"

	"github.com/marketplace/portal/internal/domain/shared"
)

// BankDetails is the payout account of a vendor
type BankDetails struct {
	AccountHolder string `json:"account_holder"`
	AccountNumber string `json:"account_number"`
	IFSC          string `json:"ifsc"`
}

// Address is the pickup address of a vendor
type Address struct {
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

// VendorForm is the last wizard step, filled after KYC
type VendorForm struct {
	BusinessName string      `json:"business_name"`
	OwnerName    string      `json:"owner_name"`
	Email        string      `json:"email"`
	Password     string      `json:"password"`
	Address      Address     `json:"address"`
	Bank         BankDetails `json:"bank"`
	Categories   []string    `json:"categories,omitempty"`
}

// Validate applies the form-level checks the registration page performs
func (f *VendorForm) Validate() error {
	if strings.TrimSpace(f.BusinessName) == "" {
		return invalidForm("Business name is required")
	}
	if strings.TrimSpace(f.OwnerName) == "" {
		return invalidForm("Owner name is required")
	}
	if _, err := mail.ParseAddress(f.Email); err != nil {
		return invalidForm("Email address is invalid")
	}
	if len(f.Password) < 8 {
		return invalidForm("Password must be at least 8 characters")
	}
	if strings.TrimSpace(f.Address.Line1) == "" || strings.TrimSpace(f.Address.City) == "" ||
		strings.TrimSpace(f.Address.State) == "" {
		return invalidForm("Address is incomplete")
	}
	if !IsValidPincode(f.Address.Pincode) {
		return invalidForm("Pincode must be 6 digits")
	}
	if strings.TrimSpace(f.Bank.AccountHolder) == "" || len(strings.TrimSpace(f.Bank.AccountNumber)) < 9 {
		return invalidForm("Bank account details are incomplete")
	}
	if !IsValidIFSC(f.Bank.IFSC) {
		return invalidForm("IFSC code is invalid")
	}
	return nil
}

func invalidForm(msg string) error {
	return shared.NewDomainError("INVALID_VENDOR_FORM", msg)
}

// Registration is what the backend receives when the wizard completes
type Registration struct {
	VendorForm
	Mobile       string `json:"mobile"`
	KYCSessionID string `json:"kyc_session_id"`
	PAN          string `json:"pan"`
	GSTIN        string `json:"gstin"`
}
