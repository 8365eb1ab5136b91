package storefront

import (
	"sort"
	"time"

	"github.com/marketplace/portal/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// SectionType identifies a homepage block
type SectionType string

const (
	SectionBanners    SectionType = "banners"
	SectionCategories SectionType = "categories"
	SectionFeatured   SectionType = "featured"
	SectionDeal       SectionType = "deal"
)

// Banner is one slide of the homepage carousel
type Banner struct {
	ImageURL string `json:"image_url"`
	Link     string `json:"link"`
	Title    string `json:"title,omitempty"`
}

// CategoryTile links to a category listing
type CategoryTile struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	ImageURL string `json:"image_url,omitempty"`
}

// Section is a homepage block. Only the field matching Type is populated.
type Section struct {
	Type       SectionType       `json:"type"`
	Title      string            `json:"title"`
	Position   int               `json:"position"`
	Banners    []Banner          `json:"banners,omitempty"`
	Categories []CategoryTile    `json:"categories,omitempty"`
	Products   []catalog.Product `json:"products,omitempty"`
}

// Deal is the backend's deal of the day
type Deal struct {
	Product       catalog.Product `json:"product"`
	DealPrice     decimal.Decimal `json:"deal_price"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	EndsAt        time.Time       `json:"ends_at"`
}

// DealView is the deal as served to the storefront. The countdown is
// computed here so every client shows the same remaining time.
type DealView struct {
	Deal
	SecondsRemaining int64           `json:"seconds_remaining"`
	Expired          bool            `json:"expired"`
	DiscountPercent  decimal.Decimal `json:"discount_percent"`
}

// View computes the countdown at now. SecondsRemaining is never negative.
func (d Deal) View(now time.Time) DealView {
	remaining := int64(d.EndsAt.Sub(now) / time.Second)
	if remaining < 0 {
		remaining = 0
	}
	return DealView{
		Deal:             d,
		SecondsRemaining: remaining,
		Expired:          !now.Before(d.EndsAt),
		DiscountPercent:  d.discountPercent(),
	}
}

func (d Deal) discountPercent() decimal.Decimal {
	if !d.OriginalPrice.IsPositive() || d.DealPrice.GreaterThanOrEqual(d.OriginalPrice) {
		return decimal.Zero
	}
	return d.OriginalPrice.Sub(d.DealPrice).
		Div(d.OriginalPrice).
		Mul(decimal.NewFromInt(100)).
		Round(0)
}

// Home is the full homepage payload
type Home struct {
	Sections []Section `json:"sections"`
	Deal     *DealView `json:"deal,omitempty"`
}

// SortSections orders sections by position, keeping backend order for ties
func SortSections(sections []Section) []Section {
	out := make([]Section, len(sections))
	copy(out, sections)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}
