package router

import (
	"github.com/gin-gonic/gin"
	"github.com/marketplace/portal/internal/domain/identity"
	"github.com/marketplace/portal/internal/interfaces/http/handler"
	"github.com/marketplace/portal/internal/interfaces/http/middleware"
)

// Handlers bundles the HTTP handlers mounted by Portal
type Handlers struct {
	Health     *handler.HealthHandler
	Storefront *handler.StorefrontHandler
	Onboarding *handler.OnboardingHandler
	Order      *handler.OrderHandler
	Product    *handler.ProductHandler
	Bulk       *handler.BulkHandler
	Team       *handler.TeamHandler
	Offer      *handler.OfferHandler
	Report     *handler.ReportHandler
}

// Guards are the authentication pieces shared by the protected groups.
// OTPLimiter may be nil.
type Guards struct {
	Tokens     middleware.TokenValidator
	OTPLimiter *middleware.RateLimiter
}

// Portal builds the route groups served under /api/<version>
func Portal(h Handlers, g Guards) []RouteRegistrar {
	auth := middleware.JWTAuthMiddleware(g.Tokens)
	caller := middleware.CallerSpanAttributes()
	can := middleware.RequireCapability

	otp := func(c *gin.Context) { c.Next() }
	if g.OTPLimiter != nil {
		otp = middleware.OTPRateLimit(g.OTPLimiter)
	}

	system := NewDomainGroup("system", "")
	system.GET("/health", h.Health.Health)

	storefront := NewDomainGroup("storefront", "/storefront")
	storefront.GET("/home", h.Storefront.Home)
	storefront.GET("/deal", h.Storefront.Deal)
	storefront.GET("/products", h.Storefront.ListProducts)
	storefront.GET("/products/:id", h.Storefront.GetProduct)

	orders := storefront.Group("orders", "/orders").
		Use(auth, caller, middleware.RequireRole(identity.RoleCustomer))
	orders.GET("", h.Order.List)
	orders.GET("/:id", h.Order.Get)
	orders.POST("/:id/return", h.Order.RequestReturn)
	orders.POST("/:id/replacement", h.Order.RequestReplacement)

	onboarding := NewDomainGroup("onboarding", "/onboarding/sessions")
	onboarding.POST("", otp, h.Onboarding.Start)
	onboarding.GET("/:id", h.Onboarding.Get)
	onboarding.POST("/:id/mobile/resend", otp, h.Onboarding.ResendMobileOTP)
	onboarding.POST("/:id/mobile/verify", otp, h.Onboarding.VerifyMobileOTP)
	onboarding.POST("/:id/aadhaar/captcha", h.Onboarding.StartAadhaar)
	onboarding.POST("/:id/aadhaar/otp", otp, h.Onboarding.RequestAadhaarOTP)
	onboarding.POST("/:id/aadhaar/verify", otp, h.Onboarding.VerifyAadhaarOTP)
	onboarding.POST("/:id/pan", h.Onboarding.VerifyPAN)
	onboarding.POST("/:id/gst", h.Onboarding.VerifyGST)
	onboarding.POST("/:id/submit", h.Onboarding.Submit)

	vendor := NewDomainGroup("vendor", "/vendor").
		Use(auth, caller, middleware.RequireRole(identity.RoleVendor))
	vendor.GET("/dashboard", h.Report.VendorDashboard)
	vendor.POST("/reports", h.Report.VendorReport)
	vendor.GET("/orders", h.Order.List)
	vendor.GET("/returns", h.Order.ListReturns)
	vendor.GET("/products", h.Product.ListVendorProducts)
	vendor.POST("/products/price-preview", h.Product.PreviewPrice)
	vendor.GET("/products/:id", h.Product.GetProduct)
	vendor.PATCH("/products/:id", h.Product.UpdateProduct)
	vendor.PATCH("/products/:id/price", h.Product.UpdatePrice)

	vendorBulk := vendor.Group("bulk", "/bulk")
	vendorBulk.GET("/template", h.Bulk.Template)
	vendorBulk.POST("/import", h.Bulk.ImportProducts)
	vendorBulk.POST("/price-update", h.Bulk.ImportPrices)
	vendorBulk.GET("/history", h.Bulk.History)
	vendorBulk.GET("/history/:id/errors", h.Bulk.ErrorReport)

	admin := NewDomainGroup("admin", "/admin").
		Use(auth, caller, middleware.RequireAdmin())
	admin.GET("/dashboard", can(identity.ModuleDashboard, identity.ActionView), h.Report.AdminDashboard)
	admin.POST("/reports", can(identity.ModuleReports, identity.ActionView), h.Report.AdminReport)

	team := admin.Group("team", "/team")
	team.GET("", can(identity.ModuleTeam, identity.ActionView), h.Team.List)
	team.POST("", can(identity.ModuleTeam, identity.ActionAdd), h.Team.Create)
	team.PUT("/:id", can(identity.ModuleTeam, identity.ActionEdit), h.Team.Update)
	team.DELETE("/:id", can(identity.ModuleTeam, identity.ActionEdit), h.Team.Delete)
	admin.GET("/permissions/modules", can(identity.ModuleTeam, identity.ActionView), h.Team.Modules)

	offers := admin.Group("offers", "/offers")
	offers.GET("", can(identity.ModuleOffers, identity.ActionView), h.Offer.List)
	offers.POST("", can(identity.ModuleOffers, identity.ActionAdd), h.Offer.Create)
	offers.PUT("/:id", can(identity.ModuleOffers, identity.ActionEdit), h.Offer.Update)
	offers.DELETE("/:id", can(identity.ModuleOffers, identity.ActionEdit), h.Offer.Delete)

	admin.GET("/products/:id", can(identity.ModuleProducts, identity.ActionView), h.Product.GetProduct)
	admin.PATCH("/products/:id", can(identity.ModuleProducts, identity.ActionEdit), h.Product.UpdateProduct)
	admin.PATCH("/products/:id/price", can(identity.ModuleProducts, identity.ActionEdit), h.Product.UpdatePrice)

	adminBulk := admin.Group("bulk", "/bulk")
	adminBulk.GET("/template", can(identity.ModuleBulkImport, identity.ActionView), h.Bulk.Template)
	adminBulk.POST("/import/:vendorId", can(identity.ModuleBulkImport, identity.ActionBulk), h.Bulk.ImportForVendor)
	adminBulk.GET("/history", can(identity.ModuleBulkImport, identity.ActionView), h.Bulk.History)
	adminBulk.GET("/history/:id/errors", can(identity.ModuleBulkImport, identity.ActionView), h.Bulk.ErrorReport)
	adminBulk.GET("/history/:id/file", can(identity.ModuleBulkImport, identity.ActionView), h.Bulk.ArchivedFile)

	admin.GET("/orders", can(identity.ModuleOrders, identity.ActionView), h.Order.List)
	admin.PATCH("/orders/:id/status", can(identity.ModuleOrders, identity.ActionEdit), h.Order.UpdateStatus)
	admin.GET("/returns", can(identity.ModuleReturns, identity.ActionView), h.Order.ListReturns)

	return []RouteRegistrar{system, storefront, onboarding, vendor, admin}
}
