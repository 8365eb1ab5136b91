// Package identity manages the admin console team and its permissions.
package identity

import (
	"context"
	"strings"

	"github.com/marketplace/portal/internal/domain/identity"
	"github.com/marketplace/portal/internal/domain/shared"
	"github.com/marketplace/portal/internal/infrastructure/logger"
	"go.uber.org/zap"
)

var errGrantExceedsCaller = shared.NewDomainError("PERMISSION_NOT_HELD", "You cannot grant permissions you do not have")

// AdminGateway is the backend's sub-admin resource
type AdminGateway interface {
	List(ctx context.Context) ([]identity.SubAdmin, error)
	Create(ctx context.Context, s *identity.SubAdmin) (*identity.SubAdmin, string, error)
	Update(ctx context.Context, id string, s *identity.SubAdmin) (string, error)
	Delete(ctx context.Context, id string) (string, error)
}

// MemberInput is the team editor form
type MemberInput struct {
	Name        string
	Email       string
	Phone       string
	Password    string
	Active      bool
	Permissions map[string]identity.Capability
}

// Result is a backend confirmation with the message to show
type Result struct {
	Message string              `json:"message"`
	Member  *identity.SubAdmin `json:"member,omitempty"`
}

// TeamService handles sub-admin accounts
type TeamService struct {
	admins AdminGateway
}

// NewTeamService creates a new TeamService
func NewTeamService(admins AdminGateway) *TeamService {
	return &TeamService{admins: admins}
}

// List returns every sub-admin
func (s *TeamService) List(ctx context.Context) ([]identity.SubAdmin, error) {
	members, err := s.admins.List(ctx)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = make([]identity.SubAdmin, 0)
	}
	return members, nil
}

// Create adds a sub-admin. The permission map is checked against the
// known modules and the caller's own grants before anything is sent.
func (s *TeamService) Create(ctx context.Context, p identity.Principal, in MemberInput) (*Result, error) {
	member, err := in.toSubAdmin()
	if err != nil {
		return nil, err
	}
	if !p.CanGrant(member.Permissions) {
		return nil, errGrantExceedsCaller
	}
	if err := member.Validate(true); err != nil {
		return nil, err
	}
	created, msg, err := s.admins.Create(ctx, member)
	if err != nil {
		return nil, err
	}
	if created != nil {
		created.Password = ""
	}
	logger.L(ctx).Info("Sub-admin created", zap.String("email", member.Email), zap.Strings("permissions", member.Permissions.Codes()))
	return &Result{Message: orDefault(msg, "Team member added"), Member: created}, nil
}

// Update replaces a sub-admin's profile and whole permission map. Nobody
// edits their own account from the team page.
func (s *TeamService) Update(ctx context.Context, p identity.Principal, id string, in MemberInput) (*Result, error) {
	if strings.TrimSpace(id) == "" {
		return nil, shared.ErrInvalidInput
	}
	if id == p.UserID {
		return nil, shared.NewDomainError("CANNOT_EDIT_SELF", "You cannot change your own permissions")
	}
	member, err := in.toSubAdmin()
	if err != nil {
		return nil, err
	}
	if !p.CanGrant(member.Permissions) {
		return nil, errGrantExceedsCaller
	}
	if err := member.Validate(false); err != nil {
		return nil, err
	}
	msg, err := s.admins.Update(ctx, id, member)
	if err != nil {
		return nil, err
	}
	logger.L(ctx).Info("Sub-admin updated", zap.String("id", id), zap.Strings("permissions", member.Permissions.Codes()))
	return &Result{Message: orDefault(msg, "Team member updated")}, nil
}

// Delete removes a sub-admin. Admins cannot remove themselves.
func (s *TeamService) Delete(ctx context.Context, p identity.Principal, id string) (*Result, error) {
	if strings.TrimSpace(id) == "" {
		return nil, shared.ErrInvalidInput
	}
	if id == p.UserID {
		return nil, shared.NewDomainError("CANNOT_DELETE_SELF", "You cannot remove your own account")
	}
	msg, err := s.admins.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	logger.L(ctx).Info("Sub-admin deleted", zap.String("id", id))
	return &Result{Message: orDefault(msg, "Team member removed")}, nil
}

// Modules is the catalog shown by the permission editor
func (s *TeamService) Modules() []identity.ModuleInfo {
	return identity.Modules()
}

func (in MemberInput) toSubAdmin() (*identity.SubAdmin, error) {
	perms, err := identity.ParsePermissions(in.Permissions)
	if err != nil {
		return nil, err
	}
	return &identity.SubAdmin{
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.TrimSpace(in.Email),
		Phone:       in.Phone,
		Password:    in.Password,
		Role:        identity.RoleSubAdmin,
		Active:      in.Active,
		Permissions: perms,
	}, nil
}

func orDefault(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
