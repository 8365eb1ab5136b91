package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	identityapp "github.com/marketplace/portal/internal/application/identity"
	"github.com/marketplace/portal/internal/domain/identity"
)

// TeamHandler manages sub-admins from the admin console
type TeamHandler struct {
	BaseHandler
	teamService *identityapp.TeamService
}

// NewTeamHandler creates a new TeamHandler
func NewTeamHandler(teamService *identityapp.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// TeamMemberRequest is the sub-admin form. Permissions is keyed by module,
// e.g. {"products": {"view": true, "edit": true}}; unknown modules are
// rejected by the service.
type TeamMemberRequest struct {
	Name        string                         `json:"name" binding:"required,max=100" example:"Asha Rao"`
	Email       string                         `json:"email" binding:"required,email,max=200" example:"asha@example.com"`
	Phone       string                         `json:"phone" binding:"required,in_phone" example:"9876543210"`
	Password    string                         `json:"password" binding:"omitempty,min=8,max=72"`
	Active      *bool                          `json:"active"`
	Permissions map[string]identity.Capability `json:"permissions" binding:"required"`
}

func (r TeamMemberRequest) toInput() identityapp.MemberInput {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return identityapp.MemberInput{
		Name:        r.Name,
		Email:       r.Email,
		Phone:       r.Phone,
		Password:    r.Password,
		Active:      active,
		Permissions: r.Permissions,
	}
}

// List handles GET /admin/team
func (h *TeamHandler) List(c *gin.Context) {
	members, err := h.teamService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, members)
}

// Create handles POST /admin/team
func (h *TeamHandler) Create(c *gin.Context) {
	var req TeamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	res, err := h.teamService.Create(c.Request.Context(), principal(c), req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Mutated(c, http.StatusCreated, res.Member, res.Message)
}

// Update handles PUT /admin/team/:id
func (h *TeamHandler) Update(c *gin.Context) {
	var req TeamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	res, err := h.teamService.Update(c.Request.Context(), principal(c), c.Param("id"), req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Mutated(c, http.StatusOK, nil, res.Message)
}

// Delete handles DELETE /admin/team/:id
func (h *TeamHandler) Delete(c *gin.Context) {
	res, err := h.teamService.Delete(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Mutated(c, http.StatusOK, nil, res.Message)
}

// Modules handles GET /admin/permissions/modules
func (h *TeamHandler) Modules(c *gin.Context) {
	h.Success(c, h.teamService.Modules())
}
