package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/marketplace/portal/internal/domain/catalog"
)

// Products is the /product resource
type Products struct{ c *Client }

// Products returns the product resource client
func (c *Client) Products() *Products { return &Products{c: c} }

// Get fetches one product
func (p *Products) Get(ctx context.Context, id string) (*catalog.Product, error) {
	var out catalog.Product
	if err := p.c.Do(ctx, http.MethodGet, "/product/getProductById/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Browse lists storefront products
func (p *Products) Browse(ctx context.Context, f catalog.ProductFilter) (*catalog.ProductPage, error) {
	var out catalog.ProductPage
	if err := p.c.Do(ctx, http.MethodGet, "/product/getProducts", pageQuery(f), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByVendor lists a vendor's own products
func (p *Products) ListByVendor(ctx context.Context, vendorID string, f catalog.ProductFilter) (*catalog.ProductPage, error) {
	var out catalog.ProductPage
	path := "/product/vendor/" + url.PathEscape(vendorID)
	if err := p.c.Do(ctx, http.MethodGet, path, pageQuery(f), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update sends the edit form as multipart with any new images
func (p *Products) Update(ctx context.Context, id string, upd catalog.ProductUpdate, images []catalog.Image) (*catalog.Product, error) {
	fields := map[string]string{}
	setIf := func(k, v string) {
		if v != "" {
			fields[k] = v
		}
	}
	setIf("name", upd.Name)
	setIf("description", upd.Description)
	setIf("category", upd.Category)
	setIf("sub_category", upd.SubCategory)
	setIf("brand", upd.Brand)
	if len(upd.Variations) > 0 {
		raw, err := json.Marshal(upd.Variations)
		if err != nil {
			return nil, fmt.Errorf("encode variations: %w", err)
		}
		fields["variations"] = string(raw)
	}

	files := make([]File, 0, len(images))
	for _, img := range images {
		files = append(files, File{Field: "images", Name: img.Name, ContentType: img.ContentType, Content: bytes.NewReader(img.Content)})
	}

	var out catalog.Product
	if err := p.c.Upload(ctx, http.MethodPatch, "/product/updateProduct/"+url.PathEscape(id), fields, files, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePrice changes the three pricing fields. The backend's message is
// returned for the success toast.
func (p *Products) UpdatePrice(ctx context.Context, id string, in catalog.PriceInput) (string, error) {
	return p.c.message(ctx, http.MethodPatch, "/product/updatePrice/"+url.PathEscape(id), in, nil)
}

func pageQuery(f catalog.ProductFilter) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(f.Page))
	q.Set("limit", strconv.Itoa(f.Limit))
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return q
}
