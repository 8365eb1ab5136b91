package catalog

import "github.com/marketplace/portal/internal/domain/catalog"

// ProductView is a product plus its derived price table
type ProductView struct {
	catalog.Product
	Pricing *catalog.PriceBreakdown `json:"pricing,omitempty"`
}

// PriceUpdateResult is returned after the backend accepted a price change
type PriceUpdateResult struct {
	Message   string                 `json:"message"`
	Breakdown catalog.PriceBreakdown `json:"breakdown"`
}
