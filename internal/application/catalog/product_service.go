// Package catalog holds the product use cases of the vendor portal and storefront.
package catalog

import (
	"context"

	"github.com/marketplace/portal/internal/domain/catalog"
	"github.com/marketplace/portal/internal/domain/identity"
	"github.com/marketplace/portal/internal/domain/shared"
	"github.com/marketplace/portal/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ProductGateway is the backend's product resource
type ProductGateway interface {
	Get(ctx context.Context, id string) (*catalog.Product, error)
	Browse(ctx context.Context, f catalog.ProductFilter) (*catalog.ProductPage, error)
	ListByVendor(ctx context.Context, vendorID string, f catalog.ProductFilter) (*catalog.ProductPage, error)
	Update(ctx context.Context, id string, upd catalog.ProductUpdate, images []catalog.Image) (*catalog.Product, error)
	UpdatePrice(ctx context.Context, id string, in catalog.PriceInput) (string, error)
}

// ProductService handles product reads, edits and price changes
type ProductService struct {
	products ProductGateway
	policy   catalog.PricingPolicy
}

// NewProductService creates a new ProductService
func NewProductService(products ProductGateway, policy catalog.PricingPolicy) *ProductService {
	return &ProductService{products: products, policy: policy}
}

// GetProduct fetches a product with its price breakdown. Vendors only see
// their own listings; other products look missing.
func (s *ProductService) GetProduct(ctx context.Context, p identity.Principal, id string) (*ProductView, error) {
	product, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Role == identity.RoleVendor && product.VendorID != p.VendorID {
		return nil, shared.ErrNotFound
	}
	return s.view(product), nil
}

// CheckOwnership lets a vendor touch only their own products. Admins pass.
func (s *ProductService) CheckOwnership(ctx context.Context, p identity.Principal, id string) error {
	if p.Role != identity.RoleVendor {
		return nil
	}
	_, err := s.GetProduct(ctx, p, id)
	return err
}

// ProductDetail is the storefront product page; no ownership rules apply
func (s *ProductService) ProductDetail(ctx context.Context, id string) (*catalog.Product, error) {
	return s.products.Get(ctx, id)
}

// Browse lists storefront products
func (s *ProductService) Browse(ctx context.Context, f catalog.ProductFilter) (*catalog.ProductPage, error) {
	f.Normalize()
	return s.products.Browse(ctx, f)
}

// ListVendorProducts lists the products of one vendor
func (s *ProductService) ListVendorProducts(ctx context.Context, vendorID string, f catalog.ProductFilter) (*catalog.ProductPage, error) {
	if vendorID == "" {
		return nil, shared.NewDomainError("INVALID_VENDOR", "Vendor is required")
	}
	f.Normalize()
	return s.products.ListByVendor(ctx, vendorID, f)
}

// UpdateProduct sends the edit form with any new images
func (s *ProductService) UpdateProduct(ctx context.Context, id string, upd catalog.ProductUpdate, images []catalog.Image) (*ProductView, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}
	product, err := s.products.Update(ctx, id, upd, images)
	if err != nil {
		return nil, err
	}
	logger.L(ctx).Info("Product updated", zap.String("product_id", id), zap.Int("images", len(images)))
	return s.view(product), nil
}

// UpdatePrice validates and forwards a price change. The backend's message
// is returned so it can be shown as the success toast.
func (s *ProductService) UpdatePrice(ctx context.Context, id string, in catalog.PriceInput) (*PriceUpdateResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	msg, err := s.products.UpdatePrice(ctx, id, in)
	if err != nil {
		return nil, err
	}
	if msg == "" {
		msg = "Price updated successfully"
	}
	logger.L(ctx).Info("Product price updated",
		zap.String("product_id", id),
		zap.String("base_sale_price", in.BaseSalePrice.String()),
		zap.String("max_sale_price", in.MaxSalePrice.String()),
	)
	return &PriceUpdateResult{Message: msg, Breakdown: s.policy.Calculate(in)}, nil
}

// PreviewPrice computes the breakdown without calling the backend
func (s *ProductService) PreviewPrice(in catalog.PriceInput) (catalog.PriceBreakdown, error) {
	if err := in.Validate(); err != nil {
		return catalog.PriceBreakdown{}, err
	}
	return s.policy.Calculate(in), nil
}

func (s *ProductService) view(p *catalog.Product) *ProductView {
	v := &ProductView{Product: *p}
	if in := p.PriceInput(); in.Validate() == nil {
		b := s.policy.Calculate(in)
		v.Pricing = &b
	}
	return v
}
