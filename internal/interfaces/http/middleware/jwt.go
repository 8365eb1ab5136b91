package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/marketplace/portal/internal/domain/identity"
	"github.com/marketplace/portal/internal/infrastructure/auth"
	"github.com/marketplace/portal/internal/infrastructure/backend"
	"github.com/marketplace/portal/internal/infrastructure/logger"
	"github.com/marketplace/portal/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey    = "jwt_claims"
	JWTUserIDKey    = "jwt_user_id"
	JWTVendorIDKey  = "jwt_vendor_id"
	JWTRoleKey      = "jwt_role"
	JWTPrincipalKey = "jwt_principal"
	AuthHeaderKey   = "Authorization"
	BearerPrefix    = "Bearer "
)

// TokenValidator verifies a bearer token
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// Validator is required for token validation
	Validator TokenValidator
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// Optional callback if token is invalid (default: return 401)
	OnError func(c *gin.Context, err error)
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultJWTConfig returns default JWT middleware configuration
func DefaultJWTConfig(v TokenValidator) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		Validator: v,
		SkipPaths: []string{"/health", "/api/v1/health"},
	}
}

// JWTAuthMiddleware creates JWT authentication middleware
func JWTAuthMiddleware(v TokenValidator) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(v))
}

// JWTAuthMiddlewareWithConfig verifies the bearer token, stores the caller
// on the gin context and forwards the token to backend calls made while
// serving the request.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}

		tokenString, err := bearerFromHeader(c.GetHeader(AuthHeaderKey))
		if err != nil {
			handleAuthError(c, cfg, err, "Missing or malformed authorization header")
			return
		}

		claims, err := cfg.Validator.Validate(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err, "Token validation failed")
			return
		}

		setPrincipal(c, claims, tokenString)

		if cfg.Logger != nil {
			cfg.Logger.Debug("JWT authentication successful",
				zap.String("user_id", claims.UserID),
				zap.String("role", string(claims.Role)),
			)
		}

		c.Next()
	}
}

// OptionalJWTAuthMiddleware extracts the caller when a valid token is present
// and lets anonymous requests through otherwise.
func OptionalJWTAuthMiddleware(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerFromHeader(c.GetHeader(AuthHeaderKey))
		if err != nil {
			c.Next()
			return
		}
		claims, err := v.Validate(tokenString)
		if err != nil {
			c.Next()
			return
		}
		setPrincipal(c, claims, tokenString)
		c.Next()
	}
}

func bearerFromHeader(header string) (string, error) {
	if header == "" || !strings.HasPrefix(header, BearerPrefix) {
		return "", auth.ErrInvalidToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	if token == "" {
		return "", auth.ErrInvalidToken
	}
	return token, nil
}

func setPrincipal(c *gin.Context, claims *auth.Claims, token string) {
	principal := claims.Principal()

	c.Set(JWTClaimsKey, claims)
	c.Set(JWTUserIDKey, claims.UserID)
	c.Set(JWTVendorIDKey, claims.VendorID)
	c.Set(JWTRoleKey, claims.Role)
	c.Set(JWTPrincipalKey, principal)

	ctx := backend.WithBearerToken(c.Request.Context(), token)
	ctx = logger.WithPrincipal(ctx, claims.UserID, claims.VendorID)
	c.Request = c.Request.WithContext(ctx)
}

// handleAuthError handles authentication errors
func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error, message string) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("JWT authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	code := dto.ErrCodeUnauthorized
	errorMessage := "Please log in to continue"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code = dto.ErrCodeTokenExpired
		errorMessage = "Your session has expired, please log in again"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrUnknownRole),
		errors.Is(err, auth.ErrTokenNotYetValid):
		code = dto.ErrCodeTokenInvalid
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, errorMessage, getRequestIDFromContext(c)))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetPrincipal returns the authenticated caller
func GetPrincipal(c *gin.Context) (identity.Principal, bool) {
	if v, exists := c.Get(JWTPrincipalKey); exists {
		if p, ok := v.(identity.Principal); ok {
			return p, true
		}
	}
	return identity.Principal{}, false
}

// GetJWTUserID retrieves the user ID from JWT claims in context
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

// GetJWTVendorID retrieves the vendor ID from JWT claims in context
func GetJWTVendorID(c *gin.Context) string {
	return c.GetString(JWTVendorIDKey)
}
