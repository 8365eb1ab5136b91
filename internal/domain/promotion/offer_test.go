package promotion

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newOffer() Offer {
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	return Offer{
		Title:         "Diwali Sale",
		Code:          " diwali25 ",
		DiscountType:  DiscountPercent,
		DiscountValue: decimal.NewFromInt(25),
		MinOrderValue: decimal.NewFromInt(500),
		MaxDiscount:   decimal.NewFromInt(300),
		StartsAt:      start,
		EndsAt:        start.Add(10 * 24 * time.Hour),
		Active:        true,
	}
}

func TestOffer_Validate(t *testing.T) {
	o := newOffer()
	assert.NoError(t, o.Validate())
	assert.Equal(t, "DIWALI25", o.Code)

	tests := []struct {
		name   string
		mutate func(*Offer)
	}{
		{"missing title", func(o *Offer) { o.Title = "" }},
		{"short code", func(o *Offer) { o.Code = "AB" }},
		{"percent over 100", func(o *Offer) { o.DiscountValue = decimal.NewFromInt(101) }},
		{"zero flat", func(o *Offer) { o.DiscountType = DiscountFlat; o.DiscountValue = decimal.Zero }},
		{"unknown type", func(o *Offer) { o.DiscountType = "bogo" }},
		{"ends before start", func(o *Offer) { o.EndsAt = o.StartsAt.Add(-time.Hour) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newOffer()
			tt.mutate(&o)
			assert.Error(t, o.Validate())
		})
	}
}

func TestOffer_IsLive(t *testing.T) {
	o := newOffer()
	assert.False(t, o.IsLive(o.StartsAt.Add(-time.Second)))
	assert.True(t, o.IsLive(o.StartsAt))
	assert.False(t, o.IsLive(o.EndsAt))

	o.Active = false
	assert.False(t, o.IsLive(o.StartsAt.Add(time.Hour)))
}

func TestOffer_Discount(t *testing.T) {
	o := newOffer()
	assert.True(t, o.Discount(decimal.NewFromInt(400)).IsZero(), "below minimum")
	assert.True(t, o.Discount(decimal.NewFromInt(800)).Equal(decimal.NewFromInt(200)))
	assert.True(t, o.Discount(decimal.NewFromInt(2000)).Equal(decimal.NewFromInt(300)), "capped")

	o.DiscountType = DiscountFlat
	o.DiscountValue = decimal.NewFromInt(1000)
	o.MinOrderValue = decimal.Zero
	assert.True(t, o.Discount(decimal.NewFromInt(600)).Equal(decimal.NewFromInt(600)), "never above order value")
}
