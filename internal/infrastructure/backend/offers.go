package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/marketplace/portal/internal/domain/promotion"
)

// Offers is the /offer resource
type Offers struct{ c *Client }

// Offers returns the offers resource client
func (c *Client) Offers() *Offers { return &Offers{c: c} }

// List returns all offers
func (o *Offers) List(ctx context.Context) ([]promotion.Offer, error) {
	out := make([]promotion.Offer, 0)
	if err := o.c.Do(ctx, http.MethodGet, "/offer/get", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create adds an offer
func (o *Offers) Create(ctx context.Context, offer *promotion.Offer) (*promotion.Offer, string, error) {
	var out promotion.Offer
	msg, err := o.c.message(ctx, http.MethodPost, "/offer/create", offer, &out)
	if err != nil {
		return nil, "", err
	}
	return &out, msg, nil
}

// Update replaces an offer
func (o *Offers) Update(ctx context.Context, id string, offer *promotion.Offer) (string, error) {
	return o.c.message(ctx, http.MethodPut, "/offer/update/"+url.PathEscape(id), offer, nil)
}

// Delete removes an offer
func (o *Offers) Delete(ctx context.Context, id string) (string, error) {
	return o.c.message(ctx, http.MethodDelete, "/offer/delete/"+url.PathEscape(id), nil, nil)
}
