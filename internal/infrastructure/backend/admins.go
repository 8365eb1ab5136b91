package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/marketplace/portal/internal/domain/identity"
)

// Admins is the /admin resource (sub-admin CRUD)
type Admins struct{ c *Client }

// Admins returns the sub-admin resource client
func (c *Client) Admins() *Admins { return &Admins{c: c} }

// List returns every team member
func (a *Admins) List(ctx context.Context) ([]identity.SubAdmin, error) {
	out := make([]identity.SubAdmin, 0)
	if err := a.c.Do(ctx, http.MethodGet, "/admin/get", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create adds a sub-admin
func (a *Admins) Create(ctx context.Context, s *identity.SubAdmin) (*identity.SubAdmin, string, error) {
	var out identity.SubAdmin
	msg, err := a.c.message(ctx, http.MethodPost, "/admin/create", s, &out)
	if err != nil {
		return nil, "", err
	}
	return &out, msg, nil
}

// Update replaces a sub-admin, permissions included
func (a *Admins) Update(ctx context.Context, id string, s *identity.SubAdmin) (string, error) {
	return a.c.message(ctx, http.MethodPut, "/admin/updated/"+url.PathEscape(id), s, nil)
}

// Delete removes a sub-admin
func (a *Admins) Delete(ctx context.Context, id string) (string, error) {
	return a.c.message(ctx, http.MethodDelete, "/admin/delete/"+url.PathEscape(id), nil, nil)
}
