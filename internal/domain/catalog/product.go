package catalog

import (
	"strings"

	"github.com/marketplace/portal/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductStatus is the listing state reported by the backend
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
	ProductStatusPending  ProductStatus = "pending"
	ProductStatusRejected ProductStatus = "rejected"
)

// Product mirrors the backend product record. The portal never owns it:
// it is fetched, shown, edited in a form and sent back wholesale.
type Product struct {
	ID               string          `json:"_id"`
	VendorID         string          `json:"vendor_id"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	Category         string          `json:"category"`
	SubCategory      string          `json:"sub_category,omitempty"`
	Brand            string          `json:"brand,omitempty"`
	Images           []string        `json:"images,omitempty"`
	Variations       []Variation     `json:"variations,omitempty"`
	Status           ProductStatus   `json:"status"`
	BaseSalePrice    decimal.Decimal `json:"base_sale_price"`
	MaxSalePrice     decimal.Decimal `json:"max_sale_price"`
	LogisticsCharges decimal.Decimal `json:"logistics_charges"`
}

// Variation is a SKU of a product differentiated by color, size and the like
type Variation struct {
	SKU   string          `json:"sku"`
	Color string          `json:"color,omitempty"`
	Size  string          `json:"size,omitempty"`
	Stock int             `json:"stock"`
	Price decimal.Decimal `json:"price"`
}

// PriceInput returns the pricing fields of the product
func (p *Product) PriceInput() PriceInput {
	return PriceInput{
		BaseSalePrice:    p.BaseSalePrice,
		MaxSalePrice:     p.MaxSalePrice,
		LogisticsCharges: p.LogisticsCharges,
	}
}

// ProductUpdate is the editable subset of a product sent with the multipart
// update form. Empty fields are left untouched by the backend.
type ProductUpdate struct {
	Name        string      `json:"name,omitempty"`
	Description string      `json:"description,omitempty"`
	Category    string      `json:"category,omitempty"`
	SubCategory string      `json:"sub_category,omitempty"`
	Brand       string      `json:"brand,omitempty"`
	Variations  []Variation `json:"variations,omitempty"`
}

// Validate checks the form-level rules for a product update
func (u *ProductUpdate) Validate() error {
	if u.Name != "" && len(strings.TrimSpace(u.Name)) < 3 {
		return shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name must be at least 3 characters")
	}
	seen := make(map[string]struct{}, len(u.Variations))
	for _, v := range u.Variations {
		sku := strings.TrimSpace(v.SKU)
		if sku == "" {
			return shared.NewDomainError("INVALID_VARIATION", "Every variation needs a SKU")
		}
		if _, dup := seen[strings.ToUpper(sku)]; dup {
			return shared.NewDomainError("DUPLICATE_SKU", "Duplicate SKU in variations: "+sku)
		}
		seen[strings.ToUpper(sku)] = struct{}{}
		if v.Stock < 0 {
			return shared.NewDomainError("INVALID_VARIATION", "Variation stock cannot be negative")
		}
		if v.Price.IsNegative() {
			return shared.NewDomainError("INVALID_VARIATION", "Variation price cannot be negative")
		}
	}
	return nil
}

// ProductFilter narrows storefront browsing and vendor listings
type ProductFilter struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

// Normalize clamps paging values
func (f *ProductFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
	f.Search = strings.TrimSpace(f.Search)
}

// ProductPage is a page of products as returned by list endpoints
type ProductPage struct {
	Products []Product `json:"products"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
}

// Image is a picture attached to a product update form
type Image struct {
	Name        string
	ContentType string
	Content     []byte
}
