package promotion

import (
	"regexp"
	"strings"
	"time"

	"github.com/marketplace/portal/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DiscountType is how an offer reduces the price
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFlat    DiscountType = "flat"
)

var offerCodePattern = regexp.MustCompile(`^[A-Z0-9]{4,16}$`)

// Offer is a promotion managed from the admin console
type Offer struct {
	ID            string          `json:"_id,omitempty"`
	Title         string          `json:"title"`
	Code          string          `json:"code"`
	DiscountType  DiscountType    `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	MinOrderValue decimal.Decimal `json:"min_order_value"`
	MaxDiscount   decimal.Decimal `json:"max_discount,omitempty"`
	StartsAt      time.Time       `json:"starts_at"`
	EndsAt        time.Time       `json:"ends_at"`
	Active        bool            `json:"active"`
	ProductIDs    []string        `json:"product_ids,omitempty"`
}

// Validate checks the offer form and normalizes the code
func (o *Offer) Validate() error {
	if strings.TrimSpace(o.Title) == "" {
		return invalidOffer("Offer title is required")
	}
	o.Code = strings.ToUpper(strings.TrimSpace(o.Code))
	if !offerCodePattern.MatchString(o.Code) {
		return invalidOffer("Offer code must be 4 to 16 letters or digits")
	}
	switch o.DiscountType {
	case DiscountPercent:
		if !o.DiscountValue.IsPositive() || o.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
			return invalidOffer("Percentage discount must be between 0 and 100")
		}
	case DiscountFlat:
		if !o.DiscountValue.IsPositive() {
			return invalidOffer("Flat discount must be greater than zero")
		}
	default:
		return invalidOffer("Discount type must be percent or flat")
	}
	if o.MinOrderValue.IsNegative() || o.MaxDiscount.IsNegative() {
		return invalidOffer("Amounts cannot be negative")
	}
	if o.StartsAt.IsZero() || o.EndsAt.IsZero() {
		return invalidOffer("Offer start and end dates are required")
	}
	if !o.EndsAt.After(o.StartsAt) {
		return invalidOffer("Offer must end after it starts")
	}
	return nil
}

// IsLive reports whether the offer applies at now
func (o *Offer) IsLive(now time.Time) bool {
	return o.Active && !now.Before(o.StartsAt) && now.Before(o.EndsAt)
}

// Discount returns the amount taken off orderValue, zero when the order
// does not reach the minimum
func (o *Offer) Discount(orderValue decimal.Decimal) decimal.Decimal {
	if orderValue.LessThan(o.MinOrderValue) {
		return decimal.Zero
	}
	var d decimal.Decimal
	switch o.DiscountType {
	case DiscountPercent:
		d = orderValue.Mul(o.DiscountValue).Div(decimal.NewFromInt(100))
		if o.MaxDiscount.IsPositive() && d.GreaterThan(o.MaxDiscount) {
			d = o.MaxDiscount
		}
	case DiscountFlat:
		d = o.DiscountValue
	}
	if d.GreaterThan(orderValue) {
		d = orderValue
	}
	return d.Round(2)
}

func invalidOffer(msg string) error {
	return shared.NewDomainError("INVALID_OFFER", msg)
}
