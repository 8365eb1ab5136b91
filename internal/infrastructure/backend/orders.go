package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/marketplace/portal/internal/domain/trade"
)

// Orders is the /order resource
type Orders struct{ c *Client }

// Orders returns the orders resource client
func (c *Client) Orders() *Orders { return &Orders{c: c} }

func orderQuery(f trade.OrderFilter) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(f.Page))
	q.Set("limit", strconv.Itoa(f.Limit))
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.VendorID != "" {
		q.Set("vendorId", f.VendorID)
	}
	return q
}

// List returns orders visible to the caller's token
func (o *Orders) List(ctx context.Context, f trade.OrderFilter) (*trade.OrderPage, error) {
	var out trade.OrderPage
	if err := o.c.Do(ctx, http.MethodGet, "/order/get", orderQuery(f), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches one order
func (o *Orders) Get(ctx context.Context, id string) (*trade.Order, error) {
	var out trade.Order
	if err := o.c.Do(ctx, http.MethodGet, "/order/getOrderById/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStatus moves an order to a new status
func (o *Orders) UpdateStatus(ctx context.Context, id string, status trade.OrderStatus) (string, error) {
	return o.c.message(ctx, http.MethodPatch, "/order/updateStatus/"+url.PathEscape(id),
		map[string]string{"status": string(status)}, nil)
}

// RequestReturn files a return
func (o *Orders) RequestReturn(ctx context.Context, req *trade.ReturnRequest) (string, error) {
	return o.c.message(ctx, http.MethodPost, "/order/return/"+url.PathEscape(req.OrderID), req, nil)
}

// RequestReplacement files a replacement
func (o *Orders) RequestReplacement(ctx context.Context, req *trade.ReplacementRequest) (string, error) {
	return o.c.message(ctx, http.MethodPost, "/order/replacement/"+url.PathEscape(req.OrderID), req, nil)
}

// Returns lists return and replacement cases
func (o *Orders) Returns(ctx context.Context, f trade.OrderFilter) ([]trade.ReturnCase, error) {
	out := make([]trade.ReturnCase, 0)
	if err := o.c.Do(ctx, http.MethodGet, "/order/returns", orderQuery(f), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
