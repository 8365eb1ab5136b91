package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	promotionapp "github.com/marketplace/portal/internal/application/promotion"
	"github.com/marketplace/portal/internal/domain/promotion"
	"github.com/shopspring/decimal"
)

// OfferHandler manages promotions from the admin console
type OfferHandler struct {
	BaseHandler
	offerService *promotionapp.OfferService
}

// NewOfferHandler creates a new OfferHandler
func NewOfferHandler(offerService *promotionapp.OfferService) *OfferHandler {
	return &OfferHandler{offerService: offerService}
}

// OfferRequest is the offer form
type OfferRequest struct {
	Title         string          `json:"title" binding:"required,max=200" example:"Festive sale"`
	Code          string          `json:"code" binding:"required,min=4,max=16,alphanum" example:"DIWALI25"`
	DiscountType  string          `json:"discount_type" binding:"required,oneof=percent flat" example:"percent"`
	DiscountValue decimal.Decimal `json:"discount_value" example:"25"`
	MinOrderValue decimal.Decimal `json:"min_order_value" example:"999"`
	MaxDiscount   decimal.Decimal `json:"max_discount" example:"500"`
	StartsAt      time.Time       `json:"starts_at" binding:"required"`
	EndsAt        time.Time       `json:"ends_at" binding:"required,gtfield=StartsAt"`
	Active        bool            `json:"active"`
	ProductIDs    []string        `json:"product_ids" binding:"max=500,dive,required,max=64"`
}

func (r OfferRequest) toOffer() promotion.Offer {
	return promotion.Offer{
		Title:         r.Title,
		Code:          r.Code,
		DiscountType:  promotion.DiscountType(r.DiscountType),
		DiscountValue: r.DiscountValue,
		MinOrderValue: r.MinOrderValue,
		MaxDiscount:   r.MaxDiscount,
		StartsAt:      r.StartsAt,
		EndsAt:        r.EndsAt,
		Active:        r.Active,
		ProductIDs:    r.ProductIDs,
	}
}

// List handles GET /admin/offers
func (h *OfferHandler) List(c *gin.Context) {
	offers, err := h.offerService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, offers)
}

// Create handles POST /admin/offers
func (h *OfferHandler) Create(c *gin.Context) {
	var req OfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	res, err := h.offerService.Create(c.Request.Context(), req.toOffer())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Mutated(c, http.StatusCreated, res.Offer, res.Message)
}

// Update handles PUT /admin/offers/:id
func (h *OfferHandler) Update(c *gin.Context) {
	var req OfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	res, err := h.offerService.Update(c.Request.Context(), c.Param("id"), req.toOffer())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Mutated(c, http.StatusOK, res.Offer, res.Message)
}

// Delete handles DELETE /admin/offers/:id
func (h *OfferHandler) Delete(c *gin.Context) {
	res, err := h.offerService.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Mutated(c, http.StatusOK, nil, res.Message)
}
