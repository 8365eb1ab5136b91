// Package storefront assembles the public shop pages.
package storefront

import (
	"context"
	"time"

	"github.com/marketplace/portal/internal/domain/storefront"
	"github.com/marketplace/portal/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// HomepageGateway is the backend's homepage resource
type HomepageGateway interface {
	Sections(ctx context.Context) ([]storefront.Section, error)
	DealOfTheDay(ctx context.Context) (*storefront.Deal, error)
}

// Service serves the storefront homepage. Product browsing goes through
// the catalog service.
type Service struct {
	homepage HomepageGateway
	now      func() time.Time
}

// NewService creates a new storefront Service
func NewService(homepage HomepageGateway) *Service {
	return &Service{homepage: homepage, now: time.Now}
}

// Home returns the ordered homepage sections with the current deal. A
// failing deal lookup does not take the homepage down.
func (s *Service) Home(ctx context.Context) (*storefront.Home, error) {
	sections, err := s.homepage.Sections(ctx)
	if err != nil {
		return nil, err
	}
	home := &storefront.Home{Sections: storefront.SortSections(sections)}

	deal, err := s.DealOfTheDay(ctx)
	if err != nil {
		logger.L(ctx).Warn("Deal of the day unavailable", zap.Error(err))
		return home, nil
	}
	home.Deal = deal
	return home, nil
}

// DealOfTheDay returns the deal with its countdown, or nil when there is
// no running deal
func (s *Service) DealOfTheDay(ctx context.Context) (*storefront.DealView, error) {
	deal, err := s.homepage.DealOfTheDay(ctx)
	if err != nil || deal == nil {
		return nil, err
	}
	view := deal.View(s.now())
	if view.Expired {
		return nil, nil
	}
	return &view, nil
}
