package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/marketplace/portal/internal/domain/identity"
	"github.com/marketplace/portal/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// PermissionConfig holds configuration for permission middleware
type PermissionConfig struct {
	// Logger for middleware logging
	Logger *zap.Logger
	// OnDenied is called when permission is denied (optional)
	OnDenied func(c *gin.Context, required string)
}

// RequireRole lets through callers whose token carries one of roles
func RequireRole(roles ...identity.Role) gin.HandlerFunc {
	return RequireRoleWithConfig(PermissionConfig{}, roles...)
}

// RequireRoleWithConfig is RequireRole with custom config
func RequireRoleWithConfig(cfg PermissionConfig, roles ...identity.Role) gin.HandlerFunc {
	required := make([]string, len(roles))
	for i, r := range roles {
		required[i] = string(r)
	}
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			abortUnauthenticated(c)
			return
		}
		for _, r := range roles {
			if p.Role == r {
				c.Next()
				return
			}
		}
		handlePermissionDenied(c, cfg, p, "role:"+strings.Join(required, ","))
	}
}

// RequireAdmin lets through super admins and sub-admins
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(identity.RoleSuperAdmin, identity.RoleSubAdmin)
}

// RequireCapability lets through callers allowed to perform action on
// module. Super admins always pass; sub-admins are checked against the
// permission map in their token.
func RequireCapability(module identity.Module, action identity.Action) gin.HandlerFunc {
	return RequireCapabilityWithConfig(PermissionConfig{}, module, action)
}

// RequireCapabilityWithConfig is RequireCapability with custom config
func RequireCapabilityWithConfig(cfg PermissionConfig, module identity.Module, action identity.Action) gin.HandlerFunc {
	required := string(module) + ":" + string(action)
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			abortUnauthenticated(c)
			return
		}
		if !p.Can(module, action) {
			handlePermissionDenied(c, cfg, p, required)
			return
		}
		if cfg.Logger != nil {
			cfg.Logger.Debug("Permission check passed",
				zap.String("user_id", p.UserID),
				zap.String("required", required),
			)
		}
		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Please log in to continue", getRequestIDFromContext(c)))
}

// handlePermissionDenied handles permission denied errors
func handlePermissionDenied(c *gin.Context, cfg PermissionConfig, p identity.Principal, required string) {
	if cfg.OnDenied != nil {
		cfg.OnDenied(c, required)
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("Permission denied",
			zap.String("user_id", p.UserID),
			zap.String("role", string(p.Role)),
			zap.String("required", required),
			zap.String("path", c.Request.URL.Path),
		)
	}

	c.AbortWithStatusJSON(http.StatusForbidden,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "You do not have permission to do this", getRequestIDFromContext(c)))
}

