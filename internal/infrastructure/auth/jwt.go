// Package auth verifies the access tokens issued by the marketplace backend.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/marketplace/portal/internal/domain/identity"
	"github.com/marketplace/portal/internal/infrastructure/config"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrUnknownRole      = errors.New("unknown role in token")
)

// Claims is the payload of a backend access token. Permissions are
// "module:action" codes, see identity.PermissionSet.Codes.
type Claims struct {
	jwt.RegisteredClaims
	UserID      string        `json:"user_id"`
	Name        string        `json:"name,omitempty"`
	Role        identity.Role `json:"role"`
	VendorID    string        `json:"vendor_id,omitempty"`
	Permissions []string      `json:"permissions,omitempty"`
}

// Principal converts the claims into the domain's view of the caller
func (c *Claims) Principal() identity.Principal {
	p := identity.Principal{
		UserID:   c.UserID,
		Role:     c.Role,
		VendorID: c.VendorID,
	}
	if c.Role == identity.RoleSuperAdmin {
		p.Permissions = identity.FullPermissions()
	} else {
		p.Permissions = identity.PermissionsFromCodes(c.Permissions)
	}
	return p
}

// JWTService verifies HS256 tokens with the secret shared with the backend
type JWTService struct {
	secret []byte
	issuer string
	leeway time.Duration
}

// NewJWTService creates a verifier from config
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		leeway: cfg.Leeway,
	}
}

// Validate parses and checks a token
func (s *JWTService) Validate(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(s.leeway),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return nil, ErrTokenNotYetValid
	case err != nil:
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, ErrInvalidClaims
	}
	switch claims.Role {
	case identity.RoleSuperAdmin, identity.RoleSubAdmin, identity.RoleCustomer:
	case identity.RoleVendor:
		if claims.VendorID == "" {
			return nil, ErrInvalidClaims
		}
	default:
		return nil, ErrUnknownRole
	}
	return claims, nil
}

// Issue signs a token for p. The backend is the real issuer; this exists for
// local development and tests.
func (s *JWTService) Issue(p identity.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:   p.UserID,
		Role:     p.Role,
		VendorID: p.VendorID,
	}
	if p.Role == identity.RoleSubAdmin {
		claims.Permissions = p.Permissions.Codes()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
