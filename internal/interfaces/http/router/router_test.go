package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	identityapp "github.com/marketplace/portal/internal/application/identity"
	"github.com/marketplace/portal/internal/domain/identity"
	"github.com/marketplace/portal/internal/infrastructure/auth"
	"github.com/marketplace/portal/internal/infrastructure/config"
	"github.com/marketplace/portal/internal/interfaces/http/handler"
	"github.com/marketplace/portal/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	t.Run("defaults to v1", func(t *testing.T) {
		r := NewRouter(gin.New())
		assert.Equal(t, "v1", r.apiVersion)
		assert.Empty(t, r.registrars)
	})

	t.Run("custom API version", func(t *testing.T) {
		r := NewRouter(gin.New(), WithAPIVersion("v2"))
		assert.Equal(t, "v2", r.apiVersion)
	})
}

func TestRouter_Setup(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("test", "/test")
	g.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	NewRouter(engine, WithAPIVersion("v2")).Register(g).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/test/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	ok := func(body string) gin.HandlerFunc {
		return func(c *gin.Context) { c.String(http.StatusOK, body) }
	}

	t.Run("registers every method", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("items", "/items")
		g.GET("", ok("get")).
			POST("", ok("post")).
			PUT("/:id", ok("put")).
			PATCH("/:id", ok("patch")).
			DELETE("/:id", ok("delete"))
		g.RegisterRoutes(engine.Group("/api/v1"))

		tests := []struct {
			method, path, body string
		}{
			{http.MethodGet, "/api/v1/items", "get"},
			{http.MethodPost, "/api/v1/items", "post"},
			{http.MethodPut, "/api/v1/items/1", "put"},
			{http.MethodPatch, "/api/v1/items/1", "patch"},
			{http.MethodDelete, "/api/v1/items/1", "delete"},
		}
		for _, tt := range tests {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, http.StatusOK, w.Code, "%s %s", tt.method, tt.path)
			assert.Equal(t, tt.body, w.Body.String())
		}
	})

	t.Run("subgroups inherit middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("admin", "/admin").Use(func(c *gin.Context) {
			c.Header("X-Group", "admin")
			c.Next()
		})
		g.Group("team", "/team").GET("", ok("team"))
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/team", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "admin", w.Header().Get("X-Group"))
	})

	t.Run("lists routes", func(t *testing.T) {
		g := NewDomainGroup("vendor", "/vendor")
		g.GET("/products", ok(""))
		g.Group("bulk", "/bulk").POST("/import", ok(""))

		assert.Equal(t, []string{"GET /vendor/products", "POST /vendor/bulk/import"}, g.Routes())
		assert.Equal(t, "vendor", g.Name())
		assert.Equal(t, "/vendor", g.Prefix())
	})
}

type fakeAdmins struct {
	members []identity.SubAdmin
}

func (f *fakeAdmins) List(context.Context) ([]identity.SubAdmin, error) { return f.members, nil }
func (f *fakeAdmins) Create(_ context.Context, s *identity.SubAdmin) (*identity.SubAdmin, string, error) {
	return s, "Team member added", nil
}
func (f *fakeAdmins) Update(context.Context, string, *identity.SubAdmin) (string, error) {
	return "Team member updated", nil
}
func (f *fakeAdmins) Delete(context.Context, string) (string, error) {
	return "Team member removed", nil
}

type portalFixture struct {
	engine *gin.Engine
	tokens *auth.JWTService
	groups []RouteRegistrar
}

func newPortal(t *testing.T) *portalFixture {
	t.Helper()
	middleware.SetupValidator()

	tokens := auth.NewJWTService(config.JWTConfig{
		Secret: "router-test-secret-at-least-32-chars",
		Issuer: "marketplace-backend",
	})
	admins := &fakeAdmins{members: []identity.SubAdmin{{ID: "sa-1", Name: "Asha", Role: identity.RoleSubAdmin}}}

	h := Handlers{
		Health:     handler.NewHealthHandler("test", nil),
		Storefront: handler.NewStorefrontHandler(nil, nil),
		Onboarding: handler.NewOnboardingHandler(nil),
		Order:      handler.NewOrderHandler(nil),
		Product:    handler.NewProductHandler(nil),
		Bulk:       handler.NewBulkHandler(nil),
		Team:       handler.NewTeamHandler(identityapp.NewTeamService(admins)),
		Offer:      handler.NewOfferHandler(nil),
		Report:     handler.NewReportHandler(nil),
	}
	limiter := middleware.NewRateLimiter(2, time.Minute)
	t.Cleanup(limiter.Stop)
	groups := Portal(h, Guards{Tokens: tokens, OTPLimiter: limiter})

	engine := gin.New()
	NewRouter(engine).Register(groups...).Setup()
	return &portalFixture{engine: engine, tokens: tokens, groups: groups}
}

func (f *portalFixture) do(t *testing.T, method, path string, p *identity.Principal, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if p != nil {
		token, err := f.tokens.Issue(*p, time.Minute)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestPortal_Health(t *testing.T) {
	f := newPortal(t)
	w := f.do(t, http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPortal_SubAdminWithoutTeamAdd(t *testing.T) {
	f := newPortal(t)
	viewer := &identity.Principal{
		UserID:      "sa-2",
		Role:        identity.RoleSubAdmin,
		Permissions: identity.PermissionsFromCodes([]string{"team:view"}),
	}

	w := f.do(t, http.MethodPost, "/api/v1/admin/team", viewer,
		`{"name":"Ravi","email":"ravi@example.com","phone":"9876543210","password":"secret123","permissions":{}}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/admin/team", viewer, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Asha")
}

func TestPortal_RoleGates(t *testing.T) {
	f := newPortal(t)
	vendor := &identity.Principal{UserID: "u-1", Role: identity.RoleVendor, VendorID: "v-1"}
	customer := &identity.Principal{UserID: "u-2", Role: identity.RoleCustomer}

	tests := []struct {
		name   string
		method string
		path   string
		caller *identity.Principal
		want   int
	}{
		{"anonymous vendor route", http.MethodGet, "/api/v1/vendor/products", nil, http.StatusUnauthorized},
		{"anonymous customer orders", http.MethodGet, "/api/v1/storefront/orders", nil, http.StatusUnauthorized},
		{"customer on vendor route", http.MethodGet, "/api/v1/vendor/products", customer, http.StatusForbidden},
		{"vendor on admin route", http.MethodGet, "/api/v1/admin/team", vendor, http.StatusForbidden},
		{"vendor on customer orders", http.MethodGet, "/api/v1/storefront/orders", vendor, http.StatusForbidden},
		{"super admin", http.MethodGet, "/api/v1/admin/team", &identity.Principal{UserID: "root", Role: identity.RoleSuperAdmin}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, tt.method, tt.path, tt.caller, "")
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestPortal_OTPRateLimit(t *testing.T) {
	f := newPortal(t)
	// the limiter allows two attempts per minute; the third is refused
	// before the handler binds the body
	var last int
	for i := 0; i < 3; i++ {
		last = f.do(t, http.MethodPost, "/api/v1/onboarding/sessions", nil, `{"mobile":"12"}`).Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestPortal_RouteTable(t *testing.T) {
	f := newPortal(t)
	var routes []string
	for _, r := range f.groups {
		routes = append(routes, r.(*DomainGroup).Routes()...)
	}

	for _, want := range []string{
		"GET /health",
		"GET /storefront/products/:id",
		"POST /storefront/orders/:id/return",
		"POST /onboarding/sessions/:id/aadhaar/verify",
		"PATCH /vendor/products/:id/price",
		"POST /vendor/bulk/price-update",
		"GET /vendor/bulk/history/:id/errors",
		"POST /admin/team",
		"GET /admin/permissions/modules",
		"POST /admin/bulk/import/:vendorId",
		"GET /admin/bulk/history/:id/file",
		"PATCH /admin/orders/:id/status",
		"GET /admin/returns",
	} {
		assert.Contains(t, routes, want)
	}
}
