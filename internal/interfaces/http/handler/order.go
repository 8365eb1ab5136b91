package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	tradeapp "github.com/marketplace/portal/internal/application/trade"
	"github.com/marketplace/portal/internal/domain/trade"
)

// OrderHandler serves order lists and the return/replacement flow for
// customers, vendors and admins. Scoping by caller happens in the service.
type OrderHandler struct {
	BaseHandler
	orderService *tradeapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *tradeapp.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// OrderListQuery filters order lists
type OrderListQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=placed confirmed shipped delivered cancelled returned replaced"`
	VendorID string `form:"vendor_id" binding:"max=64"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

func (q OrderListQuery) filter() trade.OrderFilter {
	return trade.OrderFilter{
		Status:   trade.OrderStatus(q.Status),
		VendorID: q.VendorID,
		Page:     q.Page,
		Limit:    q.Limit,
	}
}

// ReturnOrderRequest files a return
type ReturnOrderRequest struct {
	Reason  string   `json:"reason" binding:"required,max=200"`
	SKUs    []string `json:"skus" binding:"max=50,dive,required,max=64"`
	Comment string   `json:"comment" binding:"max=1000"`
}

// ReplaceOrderRequest files a replacement for one item
type ReplaceOrderRequest struct {
	SKU    string `json:"sku" binding:"required,max=64"`
	NewSKU string `json:"new_sku" binding:"max=64"`
	Reason string `json:"reason" binding:"required,max=200"`
}

// UpdateOrderStatusRequest moves an order along its lifecycle
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required" example:"shipped"`
}

// List handles GET /storefront/orders, /vendor/orders and /admin/orders
func (h *OrderHandler) List(c *gin.Context) {
	var q OrderListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	page, err := h.orderService.List(c.Request.Context(), principal(c), q.filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Orders, page.Total, page.Page, page.Limit)
}

// Get handles GET /storefront/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orderService.Get(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// RequestReturn handles POST /storefront/orders/:id/return
func (h *OrderHandler) RequestReturn(c *gin.Context) {
	var req ReturnOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	msg, err := h.orderService.RequestReturn(c.Request.Context(), principal(c), trade.ReturnRequest{
		OrderID: c.Param("id"),
		Reason:  req.Reason,
		SKUs:    req.SKUs,
		Comment: req.Comment,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Mutated(c, http.StatusCreated, nil, msg)
}

// RequestReplacement handles POST /storefront/orders/:id/replacement
func (h *OrderHandler) RequestReplacement(c *gin.Context) {
	var req ReplaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	msg, err := h.orderService.RequestReplacement(c.Request.Context(), principal(c), trade.ReplacementRequest{
		OrderID: c.Param("id"),
		SKU:     req.SKU,
		NewSKU:  req.NewSKU,
		Reason:  req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Mutated(c, http.StatusCreated, nil, msg)
}

// UpdateStatus handles PATCH /admin/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	msg, err := h.orderService.UpdateStatus(c.Request.Context(), c.Param("id"), trade.OrderStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Mutated(c, http.StatusOK, gin.H{"status": req.Status}, msg)
}

// ListReturns handles GET /admin/returns and GET /vendor/returns
func (h *OrderHandler) ListReturns(c *gin.Context) {
	var q OrderListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	cases, err := h.orderService.ListReturns(c.Request.Context(), principal(c), q.filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cases)
}
