package report

import (
	"context"
	"testing"
	"time"

	"github.com/marketplace/portal/internal/domain/identity"
	"github.com/marketplace/portal/internal/domain/report"
	"github.com/marketplace/portal/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReportGateway struct {
	mock.Mock
}

func (m *MockReportGateway) Vendor(ctx context.Context, vendorID string, q report.Query) (*report.Aggregates, error) {
	args := m.Called(ctx, vendorID, q)
	a, _ := args.Get(0).(*report.Aggregates)
	return a, args.Error(1)
}

func (m *MockReportGateway) Admin(ctx context.Context, q report.Query) (*report.Aggregates, error) {
	args := m.Called(ctx, q)
	a, _ := args.Get(0).(*report.Aggregates)
	return a, args.Error(1)
}

func (m *MockReportGateway) VendorDashboard(ctx context.Context, vendorID string) (*report.Aggregates, error) {
	args := m.Called(ctx, vendorID)
	a, _ := args.Get(0).(*report.Aggregates)
	return a, args.Error(1)
}

func (m *MockReportGateway) AdminDashboard(ctx context.Context) (*report.Aggregates, error) {
	args := m.Called(ctx)
	a, _ := args.Get(0).(*report.Aggregates)
	return a, args.Error(1)
}

func aggregates() *report.Aggregates {
	return &report.Aggregates{
		Summary: report.Summary{TotalOrders: 12, TotalSales: decimal.NewFromInt(5400)},
		TopProducts: []report.TopProduct{
			{Name: "Kurta", UnitsSold: 3, Revenue: decimal.NewFromInt(900)},
			{Name: "Saree", UnitsSold: 2, Revenue: decimal.NewFromInt(3000)},
		},
		Regions: []report.RegionSales{{Region: "TAMIL NADU", Orders: 4, Sales: decimal.NewFromInt(1200)}},
	}
}

func TestService_VendorReport(t *testing.T) {
	ctx := context.Background()
	gw := new(MockReportGateway)
	q := report.Query{From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)}
	gw.On("Vendor", ctx, "v1", mock.MatchedBy(func(q report.Query) bool { return q.Granularity == report.GranularityDay })).
		Return(aggregates(), nil)

	r, err := NewService(gw).VendorReport(ctx, identity.Principal{Role: identity.RoleVendor, VendorID: "v1"}, q)
	require.NoError(t, err)
	require.Len(t, r.Tables, 2)
	assert.Equal(t, "Saree", r.Tables[0].Rows[0][1])
	assert.Equal(t, "Units Sold", r.Tables[0].Columns[2].Label)
	assert.Equal(t, "Tamil Nadu", r.Tables[1].Rows[0][0])
}

func TestService_VendorReport_InvalidRange(t *testing.T) {
	gw := new(MockReportGateway)
	q := report.Query{From: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}

	_, err := NewService(gw).VendorReport(context.Background(), identity.Principal{Role: identity.RoleVendor, VendorID: "v1"}, q)
	require.Error(t, err)
	gw.AssertNotCalled(t, "Vendor", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Dashboards(t *testing.T) {
	ctx := context.Background()
	gw := new(MockReportGateway)
	gw.On("AdminDashboard", ctx).Return(aggregates(), nil)
	svc := NewService(gw)

	d, err := svc.AdminDashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12), d.Summary.TotalOrders)
	assert.Len(t, d.Table.Rows, 2)

	_, err = svc.VendorDashboard(ctx, identity.Principal{Role: identity.RoleVendor})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}
