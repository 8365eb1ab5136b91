// Package promotion manages admin console offers.
package promotion

import (
	"context"
	"strings"
	"time"

	"github.com/marketplace/portal/internal/domain/promotion"
	"github.com/marketplace/portal/internal/domain/shared"
	"github.com/marketplace/portal/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// OfferGateway is the backend's offer resource
type OfferGateway interface {
	List(ctx context.Context) ([]promotion.Offer, error)
	Create(ctx context.Context, offer *promotion.Offer) (*promotion.Offer, string, error)
	Update(ctx context.Context, id string, offer *promotion.Offer) (string, error)
	Delete(ctx context.Context, id string) (string, error)
}

// OfferView adds the live flag computed at request time
type OfferView struct {
	promotion.Offer
	Live bool `json:"live"`
}

// Result is a backend confirmation with the message to show
type Result struct {
	Message string           `json:"message"`
	Offer   *promotion.Offer `json:"offer,omitempty"`
}

// OfferService handles offers
type OfferService struct {
	offers OfferGateway
	now    func() time.Time
}

// NewOfferService creates a new OfferService
func NewOfferService(offers OfferGateway) *OfferService {
	return &OfferService{offers: offers, now: time.Now}
}

// List returns every offer with its live state
func (s *OfferService) List(ctx context.Context) ([]OfferView, error) {
	offers, err := s.offers.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]OfferView, 0, len(offers))
	for i := range offers {
		out = append(out, OfferView{Offer: offers[i], Live: offers[i].IsLive(now)})
	}
	return out, nil
}

// Create validates and sends a new offer
func (s *OfferService) Create(ctx context.Context, offer promotion.Offer) (*Result, error) {
	if err := offer.Validate(); err != nil {
		return nil, err
	}
	created, msg, err := s.offers.Create(ctx, &offer)
	if err != nil {
		return nil, err
	}
	logger.L(ctx).Info("Offer created", zap.String("code", offer.Code))
	return &Result{Message: orDefault(msg, "Offer created"), Offer: created}, nil
}

// Update validates and replaces an offer
func (s *OfferService) Update(ctx context.Context, id string, offer promotion.Offer) (*Result, error) {
	if strings.TrimSpace(id) == "" {
		return nil, shared.ErrInvalidInput
	}
	if err := offer.Validate(); err != nil {
		return nil, err
	}
	msg, err := s.offers.Update(ctx, id, &offer)
	if err != nil {
		return nil, err
	}
	logger.L(ctx).Info("Offer updated", zap.String("id", id), zap.String("code", offer.Code))
	return &Result{Message: orDefault(msg, "Offer updated")}, nil
}

// Delete removes an offer
func (s *OfferService) Delete(ctx context.Context, id string) (*Result, error) {
	if strings.TrimSpace(id) == "" {
		return nil, shared.ErrInvalidInput
	}
	msg, err := s.offers.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	logger.L(ctx).Info("Offer deleted", zap.String("id", id))
	return &Result{Message: orDefault(msg, "Offer deleted")}, nil
}

func orDefault(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
