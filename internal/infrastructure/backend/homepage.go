package backend

import (
	"context"
	"net/http"

	"github.com/marketplace/portal/internal/domain/storefront"
)

// Homepage is the /homepage resource
type Homepage struct{ c *Client }

// Homepage returns the homepage resource client
func (c *Client) Homepage() *Homepage { return &Homepage{c: c} }

// Sections returns the configured homepage blocks
func (h *Homepage) Sections(ctx context.Context) ([]storefront.Section, error) {
	out := make([]storefront.Section, 0)
	if err := h.c.Do(ctx, http.MethodGet, "/homepage/sections", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DealOfTheDay returns the current deal, or nil when none is running
func (h *Homepage) DealOfTheDay(ctx context.Context) (*storefront.Deal, error) {
	var out *storefront.Deal
	if err := h.c.Do(ctx, http.MethodGet, "/homepage/deal-of-the-day", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
