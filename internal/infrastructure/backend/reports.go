package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/marketplace/portal/internal/domain/report"
)

// Reports covers the /reports and /dashboard resources
type Reports struct{ c *Client }

// Reports returns the reports resource client
func (c *Client) Reports() *Reports { return &Reports{c: c} }

type reportBody struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Granularity string `json:"granularity"`
}

func toBody(q report.Query) reportBody {
	return reportBody{
		From:        q.From.Format("2006-01-02"),
		To:          q.To.Format("2006-01-02"),
		Granularity: string(q.Granularity),
	}
}

// Vendor fetches report aggregates for one vendor
func (r *Reports) Vendor(ctx context.Context, vendorID string, q report.Query) (*report.Aggregates, error) {
	var out report.Aggregates
	if err := r.c.Do(ctx, http.MethodPost, "/reports/vendor/"+url.PathEscape(vendorID), nil, toBody(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Admin fetches marketplace-wide aggregates
func (r *Reports) Admin(ctx context.Context, q report.Query) (*report.Aggregates, error) {
	var out report.Aggregates
	if err := r.c.Do(ctx, http.MethodPost, "/reports/admin", nil, toBody(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VendorDashboard fetches the vendor landing page figures
func (r *Reports) VendorDashboard(ctx context.Context, vendorID string) (*report.Aggregates, error) {
	var out report.Aggregates
	if err := r.c.Do(ctx, http.MethodGet, "/dashboard/vendor/"+url.PathEscape(vendorID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdminDashboard fetches the admin landing page figures
func (r *Reports) AdminDashboard(ctx context.Context) (*report.Aggregates, error) {
	var out report.Aggregates
	if err := r.c.Do(ctx, http.MethodGet, "/dashboard/admin", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
