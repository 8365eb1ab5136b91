package handler

import (
	"net/http"
	"testing"

	identityapp "github.com/marketplace/portal/internal/application/identity"
	"github.com/marketplace/portal/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var superAdmin = identity.Principal{UserID: "admin-1", Role: identity.RoleSuperAdmin}

func newTeamFixture() (*MockAdminGateway, *TeamHandler) {
	gw := new(MockAdminGateway)
	return gw, NewTeamHandler(identityapp.NewTeamService(gw))
}

func memberBody(perms map[string]any) map[string]any {
	return map[string]any{
		"name":        "Asha Rao",
		"email":       "asha@example.com",
		"phone":       "9876543210",
		"password":    "s3cretpass",
		"permissions": perms,
	}
}

func TestTeamHandler_Create(t *testing.T) {
	gw, h := newTeamFixture()
	gw.On("Create", mock.Anything, mock.MatchedBy(func(s *identity.SubAdmin) bool {
		return s.Permissions.Allows(identity.ModuleProducts, identity.ActionEdit) &&
			!s.Permissions.Allows(identity.ModuleTeam, identity.ActionView) &&
			s.Active
	})).Return(&identity.SubAdmin{ID: "sa-1", Name: "Asha Rao", Password: "s3cretpass"}, "Sub-admin created", nil)

	r := as(&superAdmin)
	r.POST("/admin/team", h.Create)

	w := doJSON(r, http.MethodPost, "/admin/team", memberBody(map[string]any{
		"products": map[string]bool{"view": true, "edit": true},
	}))

	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode(t, w)
	assert.True(t, resp.CloseModal)
	assert.Equal(t, "Sub-admin created", resp.Notification.Message)
	assert.NotContains(t, w.Body.String(), "s3cretpass")
	gw.AssertExpectations(t)
}

func TestTeamHandler_CreateUnknownModule(t *testing.T) {
	gw, h := newTeamFixture()
	r := as(&superAdmin)
	r.POST("/admin/team", h.Create)

	w := doJSON(r, http.MethodPost, "/admin/team", memberBody(map[string]any{
		"warehouse": map[string]bool{"view": true},
	}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PERMISSION_MODULE", decode(t, w).Error.Code)
	gw.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTeamHandler_DeleteSelf(t *testing.T) {
	gw, h := newTeamFixture()
	r := as(&superAdmin)
	r.DELETE("/admin/team/:id", h.Delete)

	w := doJSON(r, http.MethodDelete, "/admin/team/admin-1", nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "CANNOT_DELETE_SELF", decode(t, w).Error.Code)
	gw.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestTeamHandler_Modules(t *testing.T) {
	_, h := newTeamFixture()
	r := as(&superAdmin)
	r.GET("/admin/permissions/modules", h.Modules)

	w := doJSON(r, http.MethodGet, "/admin/permissions/modules", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	modules, ok := decode(t, w).Data.([]any)
	require.True(t, ok)
	assert.Len(t, modules, len(identity.AllModules))
}

func TestTeamHandler_SubAdminEscalation(t *testing.T) {
	gw, h := newTeamFixture()
	lead := identity.Principal{
		UserID:      "sa-1",
		Role:        identity.RoleSubAdmin,
		Permissions: identity.PermissionSet{identity.ModuleTeam: {View: true, Add: true, Edit: true}},
	}
	r := as(&lead)
	r.POST("/admin/team", h.Create)
	r.PUT("/admin/team/:id", h.Update)

	w := doJSON(r, http.MethodPost, "/admin/team", memberBody(map[string]any{
		"team":   map[string]bool{"view": true},
		"offers": map[string]bool{"edit": true},
	}))
	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
	assert.Equal(t, "PERMISSION_NOT_HELD", decode(t, w).Error.Code)

	w = doJSON(r, http.MethodPut, "/admin/team/sa-1", memberBody(map[string]any{
		"team": map[string]bool{"view": true},
	}))
	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
	assert.Equal(t, "CANNOT_EDIT_SELF", decode(t, w).Error.Code)

	gw.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	gw.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}
