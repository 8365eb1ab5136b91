package identity

import (
	"net/mail"
	"strings"

	"github.com/marketplace/portal/internal/domain/onboarding"
	"github.com/marketplace/portal/internal/domain/shared"
)

// Role is the kind of account behind a token
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleSubAdmin   Role = "sub_admin"
	RoleVendor     Role = "vendor"
	RoleCustomer   Role = "customer"
)

// IsAdmin reports whether the role can open the admin console
func (r Role) IsAdmin() bool {
	return r == RoleSuperAdmin || r == RoleSubAdmin
}

// Principal is the authenticated caller
type Principal struct {
	UserID      string
	Role        Role
	VendorID    string
	Permissions PermissionSet
}

// Can reports whether the principal may perform action on module.
// Super admins can do everything; sub-admins are limited by their map.
func (p Principal) Can(m Module, a Action) bool {
	switch p.Role {
	case RoleSuperAdmin:
		return true
	case RoleSubAdmin:
		return p.Permissions.Allows(m, a)
	}
	return false
}

// CanGrant reports whether the principal may hand grant to a team member.
// A sub-admin cannot give away more than it holds.
func (p Principal) CanGrant(grant PermissionSet) bool {
	switch p.Role {
	case RoleSuperAdmin:
		return true
	case RoleSubAdmin:
		return p.Permissions.Covers(grant)
	}
	return false
}

// SubAdmin is an admin console account managed by the super admin
type SubAdmin struct {
	ID          string        `json:"_id,omitempty"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Phone       string        `json:"phone"`
	Password    string        `json:"password,omitempty"`
	Role        Role          `json:"role"`
	Active      bool          `json:"active"`
	Permissions PermissionSet `json:"permissions"`
}

// Validate checks the team member form. Password is required only on create.
func (s *SubAdmin) Validate(creating bool) error {
	if len(strings.TrimSpace(s.Name)) < 2 {
		return invalidMember("Name is required")
	}
	if _, err := mail.ParseAddress(s.Email); err != nil {
		return invalidMember("Email address is invalid")
	}
	if !onboarding.IsValidPhone(s.Phone) {
		return invalidMember("Enter a valid 10 digit mobile number")
	}
	if creating && len(s.Password) < 8 {
		return invalidMember("Password must be at least 8 characters")
	}
	if s.Role == "" {
		s.Role = RoleSubAdmin
	}
	if s.Role != RoleSubAdmin {
		return invalidMember("Only sub-admins can be managed from the team page")
	}
	s.Phone = onboarding.NormalizePhone(s.Phone)
	if s.Permissions == nil {
		s.Permissions = PermissionSet{}
	}
	return nil
}

func invalidMember(msg string) error {
	return shared.NewDomainError("INVALID_TEAM_MEMBER", msg)
}
