package catalog

import (
	"github.com/marketplace/portal/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Default pricing ratios
var (
	DefaultRentRatio      = decimal.NewFromFloat(0.8)
	DefaultCommissionRate = decimal.NewFromFloat(0.25)
)

// PricingPolicy holds the ratios applied by Calculate
type PricingPolicy struct {
	// RentRatio converts a sale price to its rent price
	RentRatio decimal.Decimal
	// CommissionRate is the marketplace share of the average price
	CommissionRate decimal.Decimal
}

// DefaultPricingPolicy returns the marketplace default ratios
func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		RentRatio:      DefaultRentRatio,
		CommissionRate: DefaultCommissionRate,
	}
}

// PriceInput is the price form a vendor edits
type PriceInput struct {
	BaseSalePrice    decimal.Decimal `json:"base_sale_price"`
	MaxSalePrice     decimal.Decimal `json:"max_sale_price"`
	LogisticsCharges decimal.Decimal `json:"logistics_charges"`
}

// Validate checks the price form
func (in PriceInput) Validate() error {
	if in.BaseSalePrice.IsNegative() || in.MaxSalePrice.IsNegative() || in.LogisticsCharges.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
	}
	if in.MaxSalePrice.LessThan(in.BaseSalePrice) {
		return shared.NewDomainError("INVALID_PRICE", "Max sale price cannot be lower than base sale price")
	}
	return nil
}

// PriceBreakdown is the derived price table shown next to the price form
type PriceBreakdown struct {
	BaseRent       decimal.Decimal `json:"base_rent"`
	MaxRent        decimal.Decimal `json:"max_rent"`
	AvgSale        decimal.Decimal `json:"avg_sale"`
	AvgRent        decimal.Decimal `json:"avg_rent"`
	Commission     decimal.Decimal `json:"commission"`
	AvgEarningSale decimal.Decimal `json:"avg_earning_sale"`
	RentCommission decimal.Decimal `json:"rent_commission"`
	AvgEarningRent decimal.Decimal `json:"avg_earning_rent"`
}

// Calculate derives the breakdown for a price input.
// Values are rounded to 2 places only at the end.
func (p PricingPolicy) Calculate(in PriceInput) PriceBreakdown {
	two := decimal.NewFromInt(2)

	baseRent := in.BaseSalePrice.Mul(p.RentRatio)
	maxRent := in.MaxSalePrice.Mul(p.RentRatio)
	avgSale := in.BaseSalePrice.Add(in.MaxSalePrice).Div(two)
	avgRent := baseRent.Add(maxRent).Div(two)
	commission := avgSale.Mul(p.CommissionRate)
	rentCommission := avgRent.Mul(p.CommissionRate)

	return PriceBreakdown{
		BaseRent:       baseRent.Round(2),
		MaxRent:        maxRent.Round(2),
		AvgSale:        avgSale.Round(2),
		AvgRent:        avgRent.Round(2),
		Commission:     commission.Round(2),
		AvgEarningSale: avgSale.Sub(commission).Sub(in.LogisticsCharges).Round(2),
		RentCommission: rentCommission.Round(2),
		AvgEarningRent: avgRent.Sub(rentCommission).Sub(in.LogisticsCharges).Round(2),
	}
}

// Calculate uses the default policy
func Calculate(in PriceInput) PriceBreakdown {
	return DefaultPricingPolicy().Calculate(in)
}
