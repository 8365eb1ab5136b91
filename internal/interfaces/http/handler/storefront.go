package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/marketplace/portal/internal/application/catalog"
	storefrontapp "github.com/marketplace/portal/internal/application/storefront"
	"github.com/marketplace/portal/internal/domain/catalog"
)

// StorefrontHandler serves the public storefront pages
type StorefrontHandler struct {
	BaseHandler
	storefrontService *storefrontapp.Service
	productService    *catalogapp.ProductService
}

// NewStorefrontHandler creates a new StorefrontHandler
func NewStorefrontHandler(storefrontService *storefrontapp.Service, productService *catalogapp.ProductService) *StorefrontHandler {
	return &StorefrontHandler{
		storefrontService: storefrontService,
		productService:    productService,
	}
}

// ProductListQuery is the query of a product listing page
type ProductListQuery struct {
	Category string `form:"category" binding:"max=100"`
	Search   string `form:"search" binding:"max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

func (q ProductListQuery) filter() catalog.ProductFilter {
	return catalog.ProductFilter{
		Category: q.Category,
		Search:   q.Search,
		Page:     q.Page,
		Limit:    q.Limit,
	}
}

// Home handles GET /storefront/home
func (h *StorefrontHandler) Home(c *gin.Context) {
	home, err := h.storefrontService.Home(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, home)
}

// Deal handles GET /storefront/deal. A day without a deal answers null data.
func (h *StorefrontHandler) Deal(c *gin.Context) {
	deal, err := h.storefrontService.DealOfTheDay(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, deal)
}

// ListProducts handles GET /storefront/products
func (h *StorefrontHandler) ListProducts(c *gin.Context) {
	var q ProductListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	page, err := h.productService.Browse(c.Request.Context(), q.filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Products, page.Total, page.Page, page.Limit)
}

// GetProduct handles GET /storefront/products/:id
func (h *StorefrontHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.ProductDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}
