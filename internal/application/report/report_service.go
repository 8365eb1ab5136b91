// Package report builds report pages and dashboards from backend aggregates.
package report

import (
	"context"

	"github.com/marketplace/portal/internal/domain/identity"
	"github.com/marketplace/portal/internal/domain/report"
	"github.com/marketplace/portal/internal/domain/shared"
)

// ReportGateway is the backend's report resource
type ReportGateway interface {
	Vendor(ctx context.Context, vendorID string, q report.Query) (*report.Aggregates, error)
	Admin(ctx context.Context, q report.Query) (*report.Aggregates, error)
	VendorDashboard(ctx context.Context, vendorID string) (*report.Aggregates, error)
	AdminDashboard(ctx context.Context) (*report.Aggregates, error)
}

// Service renders reports
type Service struct {
	reports ReportGateway
}

// NewService creates a new report Service
func NewService(reports ReportGateway) *Service {
	return &Service{reports: reports}
}

// VendorReport is the vendor portal report page
func (s *Service) VendorReport(ctx context.Context, p identity.Principal, q report.Query) (*report.Report, error) {
	if p.VendorID == "" {
		return nil, shared.ErrForbidden
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	agg, err := s.reports.Vendor(ctx, p.VendorID, q)
	if err != nil {
		return nil, err
	}
	r := report.Build(q, *agg)
	return &r, nil
}

// AdminReport is the admin console report page
func (s *Service) AdminReport(ctx context.Context, q report.Query) (*report.Report, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	agg, err := s.reports.Admin(ctx, q)
	if err != nil {
		return nil, err
	}
	r := report.Build(q, *agg)
	return &r, nil
}

// VendorDashboard is the vendor portal landing page
func (s *Service) VendorDashboard(ctx context.Context, p identity.Principal) (*report.Dashboard, error) {
	if p.VendorID == "" {
		return nil, shared.ErrForbidden
	}
	agg, err := s.reports.VendorDashboard(ctx, p.VendorID)
	if err != nil {
		return nil, err
	}
	d := report.BuildDashboard(*agg)
	return &d, nil
}

// AdminDashboard is the admin console landing page
func (s *Service) AdminDashboard(ctx context.Context) (*report.Dashboard, error) {
	agg, err := s.reports.AdminDashboard(ctx)
	if err != nil {
		return nil, err
	}
	d := report.BuildDashboard(*agg)
	return &d, nil
}
