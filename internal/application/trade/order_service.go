// Package trade covers order listings, admin status changes and the
// storefront return and replacement flow.
package trade

import (
	"context"
	"strings"
	"time"

	"github.com/marketplace/portal/internal/domain/identity"
	"github.com/marketplace/portal/internal/domain/shared"
	"github.com/marketplace/portal/internal/domain/trade"
	"github.com/marketplace/portal/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// OrderGateway is the backend's order resource
type OrderGateway interface {
	List(ctx context.Context, f trade.OrderFilter) (*trade.OrderPage, error)
	Get(ctx context.Context, id string) (*trade.Order, error)
	UpdateStatus(ctx context.Context, id string, status trade.OrderStatus) (string, error)
	RequestReturn(ctx context.Context, req *trade.ReturnRequest) (string, error)
	RequestReplacement(ctx context.Context, req *trade.ReplacementRequest) (string, error)
	Returns(ctx context.Context, f trade.OrderFilter) ([]trade.ReturnCase, error)
}

// OrderService handles orders for every surface
type OrderService struct {
	orders OrderGateway
	policy trade.ReturnPolicy
	now    func() time.Time
}

// NewOrderService creates a new OrderService
func NewOrderService(orders OrderGateway, policy trade.ReturnPolicy) *OrderService {
	if policy.Window <= 0 {
		policy = trade.DefaultReturnPolicy()
	}
	return &OrderService{orders: orders, policy: policy, now: time.Now}
}

// List returns orders visible to the caller. Vendors are pinned to their
// own orders; customers are scoped by their token on the backend.
func (s *OrderService) List(ctx context.Context, p identity.Principal, f trade.OrderFilter) (*trade.OrderPage, error) {
	if p.Role == identity.RoleVendor {
		f.VendorID = p.VendorID
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return s.orders.List(ctx, f)
}

// Get returns one order if the caller may see it
func (s *OrderService) Get(ctx context.Context, p identity.Principal, id string) (*trade.Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch p.Role {
	case identity.RoleCustomer:
		if o.CustomerID != p.UserID {
			return nil, shared.ErrNotFound
		}
	case identity.RoleVendor:
		if o.VendorID != p.VendorID {
			return nil, shared.ErrNotFound
		}
	}
	return o, nil
}

// UpdateStatus moves an order along its admin-controlled lifecycle
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status trade.OrderStatus) (string, error) {
	if !status.IsValid() {
		return "", trade.ErrInvalidNewStatus
	}
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !o.Status.CanTransition(status) {
		return "", trade.ErrInvalidNewStatus
	}
	msg, err := s.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		return "", err
	}
	logger.L(ctx).Info("Order status changed",
		zap.String("order_id", id),
		zap.String("from", string(o.Status)),
		zap.String("to", string(status)),
	)
	return orDefault(msg, "Order status updated"), nil
}

// RequestReturn checks eligibility and files a return for a customer's order
func (s *OrderService) RequestReturn(ctx context.Context, p identity.Principal, req trade.ReturnRequest) (string, error) {
	o, err := s.eligibleOrder(ctx, p, req.OrderID)
	if err != nil {
		return "", err
	}
	if err := req.Validate(o); err != nil {
		return "", err
	}
	req.Reason = strings.TrimSpace(req.Reason)
	msg, err := s.orders.RequestReturn(ctx, &req)
	if err != nil {
		return "", err
	}
	logger.L(ctx).Info("Return requested", zap.String("order_id", o.ID), zap.Int("items", len(req.SKUs)))
	return orDefault(msg, "Return request submitted"), nil
}

// RequestReplacement checks eligibility and files a replacement
func (s *OrderService) RequestReplacement(ctx context.Context, p identity.Principal, req trade.ReplacementRequest) (string, error) {
	o, err := s.eligibleOrder(ctx, p, req.OrderID)
	if err != nil {
		return "", err
	}
	if err := req.Validate(o); err != nil {
		return "", err
	}
	req.Reason = strings.TrimSpace(req.Reason)
	msg, err := s.orders.RequestReplacement(ctx, &req)
	if err != nil {
		return "", err
	}
	logger.L(ctx).Info("Replacement requested", zap.String("order_id", o.ID), zap.String("sku", req.SKU))
	return orDefault(msg, "Replacement request submitted"), nil
}

// ListReturns lists return and replacement cases. Vendors only see their own.
func (s *OrderService) ListReturns(ctx context.Context, p identity.Principal, f trade.OrderFilter) ([]trade.ReturnCase, error) {
	f.Status = ""
	if p.Role == identity.RoleVendor {
		f.VendorID = p.VendorID
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	cases, err := s.orders.Returns(ctx, f)
	if err != nil {
		return nil, err
	}
	if cases == nil {
		cases = make([]trade.ReturnCase, 0)
	}
	return cases, nil
}

func (s *OrderService) eligibleOrder(ctx context.Context, p identity.Principal, id string) (*trade.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, shared.ErrInvalidInput
	}
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != p.UserID {
		return nil, trade.ErrNotOrderOwner
	}
	if err := s.policy.CheckEligible(o, s.now()); err != nil {
		return nil, err
	}
	return o, nil
}

func orDefault(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
