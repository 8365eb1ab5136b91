package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/marketplace/portal/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state reported by the backend
type OrderStatus string

const (
	OrderPlaced    OrderStatus = "placed"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
	OrderReturned  OrderStatus = "returned"
	OrderReplaced  OrderStatus = "replaced"
)

// IsValid checks if the status is known
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPlaced, OrderConfirmed, OrderShipped, OrderDelivered,
		OrderCancelled, OrderReturned, OrderReplaced:
		return true
	}
	return false
}

// allowedTransitions lists the statuses an admin may move an order to
var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderPlaced:    {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderShipped, OrderCancelled},
	OrderShipped:   {OrderDelivered},
	OrderDelivered: {OrderReturned, OrderReplaced},
}

// CanTransition reports whether an admin status change is allowed
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, next := range allowedTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderItem is one line of an order
type OrderItem struct {
	ProductID string          `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Order mirrors the backend order record
type Order struct {
	ID          string          `json:"_id"`
	CustomerID  string          `json:"customer_id"`
	VendorID    string          `json:"vendor_id"`
	Items       []OrderItem     `json:"items"`
	Status      OrderStatus     `json:"status"`
	Total       decimal.Decimal `json:"total"`
	PlacedAt    time.Time       `json:"placed_at"`
	DeliveredAt *time.Time      `json:"delivered_at,omitempty"`
}

// HasSKU reports whether the order contains sku
func (o *Order) HasSKU(sku string) bool {
	for _, it := range o.Items {
		if strings.EqualFold(it.SKU, sku) {
			return true
		}
	}
	return false
}

// Errors returned by eligibility checks
var (
	ErrNotDelivered     = shared.NewDomainError("ORDER_NOT_DELIVERED", "Only delivered orders can be returned or replaced")
	ErrWindowClosed     = shared.NewDomainError("RETURN_WINDOW_CLOSED", "The return window for this order has closed")
	ErrReasonRequired   = shared.NewDomainError("REASON_REQUIRED", "Please tell us why you are returning this item")
	ErrSKUNotInOrder    = shared.NewDomainError("SKU_NOT_IN_ORDER", "The selected item is not part of this order")
	ErrNotOrderOwner    = shared.NewDomainError("FORBIDDEN", "This order belongs to another customer")
	ErrInvalidNewStatus = shared.NewDomainError("INVALID_ORDER_STATUS", "This status change is not allowed")
)

// ReturnPolicy decides whether a delivered order can still be returned
type ReturnPolicy struct {
	Window time.Duration
}

// DefaultReturnPolicy is seven days after delivery
func DefaultReturnPolicy() ReturnPolicy {
	return ReturnPolicy{Window: 7 * 24 * time.Hour}
}

// CheckEligible verifies the order is delivered and within the window at now
func (p ReturnPolicy) CheckEligible(o *Order, now time.Time) error {
	if o.Status != OrderDelivered || o.DeliveredAt == nil {
		return ErrNotDelivered
	}
	if now.After(o.DeliveredAt.Add(p.Window)) {
		return ErrWindowClosed
	}
	return nil
}

// ReturnRequest asks for a refund of some or all items
type ReturnRequest struct {
	OrderID string   `json:"order_id"`
	Reason  string   `json:"reason"`
	SKUs    []string `json:"skus,omitempty"`
	Comment string   `json:"comment,omitempty"`
}

// Validate checks the request against the order
func (r *ReturnRequest) Validate(o *Order) error {
	if strings.TrimSpace(r.Reason) == "" {
		return ErrReasonRequired
	}
	for _, sku := range r.SKUs {
		if !o.HasSKU(sku) {
			return ErrSKUNotInOrder
		}
	}
	return nil
}

// ReplacementRequest asks to swap an item for another variation
type ReplacementRequest struct {
	OrderID string `json:"order_id"`
	SKU     string `json:"sku"`
	NewSKU  string `json:"new_sku,omitempty"`
	Reason  string `json:"reason"`
}

// Validate checks the request against the order
func (r *ReplacementRequest) Validate(o *Order) error {
	if strings.TrimSpace(r.Reason) == "" {
		return ErrReasonRequired
	}
	if !o.HasSKU(r.SKU) {
		return ErrSKUNotInOrder
	}
	if r.NewSKU == "" {
		r.NewSKU = r.SKU
	}
	return nil
}

// ReturnStatus is the state of a return or replacement case
type ReturnStatus string

const (
	ReturnRequested ReturnStatus = "requested"
	ReturnApproved  ReturnStatus = "approved"
	ReturnRejected  ReturnStatus = "rejected"
	ReturnCompleted ReturnStatus = "completed"
)

// ReturnCase is a return or replacement as listed for admins
type ReturnCase struct {
	ID          string       `json:"_id"`
	OrderID     string       `json:"order_id"`
	Kind        string       `json:"kind"` // return or replacement
	SKU         string       `json:"sku,omitempty"`
	Reason      string       `json:"reason"`
	Status      ReturnStatus `json:"status"`
	RequestedAt time.Time    `json:"requested_at"`
}

// OrderFilter narrows order lists
type OrderFilter struct {
	Status   OrderStatus
	VendorID string
	Page     int
	Limit    int
}

// Validate checks and clamps the filter
func (f *OrderFilter) Validate() error {
	if f.Status != "" && !f.Status.IsValid() {
		return shared.NewDomainError("INVALID_ORDER_STATUS", fmt.Sprintf("Unknown order status: %s", f.Status))
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
	return nil
}

// OrderPage is a page of orders
type OrderPage struct {
	Orders []Order `json:"orders"`
	Total  int64   `json:"total"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
}
