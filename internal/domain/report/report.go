package report

import (
	"time"

	"github.com/marketplace/portal/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Granularity is the bucket size of a time series
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// maxRange bounds a report query so aggregates stay cheap for the backend
const maxRange = 366 * 24 * time.Hour

// Query selects the report period
type Query struct {
	From        time.Time   `json:"from"`
	To          time.Time   `json:"to"`
	Granularity Granularity `json:"granularity"`
}

// Validate checks the period and defaults the granularity
func (q *Query) Validate() error {
	if q.From.IsZero() || q.To.IsZero() {
		return shared.NewDomainError("INVALID_REPORT_RANGE", "Report start and end dates are required")
	}
	if q.To.Before(q.From) {
		return shared.NewDomainError("INVALID_REPORT_RANGE", "Report end date must not be before the start date")
	}
	if q.To.Sub(q.From) > maxRange {
		return shared.NewDomainError("INVALID_REPORT_RANGE", "Reports can cover at most one year")
	}
	switch q.Granularity {
	case "":
		q.Granularity = GranularityDay
	case GranularityDay, GranularityWeek, GranularityMonth:
	default:
		return shared.NewDomainError("INVALID_REPORT_GRANULARITY", "Granularity must be day, week or month")
	}
	return nil
}

// Summary holds headline figures of a report or dashboard
type Summary struct {
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalOrders   int64           `json:"total_orders"`
	TotalReturns  int64           `json:"total_returns"`
	TotalProducts int64           `json:"total_products"`
	TotalVendors  int64           `json:"total_vendors,omitempty"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
}

// Point is one bucket of a time series
type Point struct {
	Period string          `json:"period"`
	Sales  decimal.Decimal `json:"sales"`
	Orders int64           `json:"orders"`
}

// TopProduct is a best seller row
type TopProduct struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitsSold int64           `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// RegionSales is a sales figure for a state, rendered on the map widget
type RegionSales struct {
	Region string          `json:"region"`
	Orders int64           `json:"orders"`
	Sales  decimal.Decimal `json:"sales"`
}

// Aggregates is the raw payload of the backend report endpoints
type Aggregates struct {
	Summary     Summary       `json:"summary"`
	Series      []Point       `json:"series"`
	TopProducts []TopProduct  `json:"top_products"`
	Regions     []RegionSales `json:"regions"`
}

// Report is what the report pages render
type Report struct {
	Query   Query   `json:"query"`
	Summary Summary `json:"summary"`
	Series  []Point `json:"series"`
	Tables  []Table `json:"tables"`
}

// Build turns backend aggregates into a report with rendered tables
func Build(q Query, agg Aggregates) Report {
	return Report{
		Query:   q,
		Summary: agg.Summary,
		Series:  agg.Series,
		Tables: []Table{
			TopProductsTable(agg.TopProducts),
			RegionsTable(agg.Regions),
		},
	}
}

// Dashboard is the landing page of the vendor portal and admin console
type Dashboard struct {
	Summary     Summary      `json:"summary"`
	Series      []Point      `json:"series"`
	TopProducts []TopProduct `json:"top_products"`
	Table       Table        `json:"table"`
}

// BuildDashboard attaches the shared top products table
func BuildDashboard(agg Aggregates) Dashboard {
	return Dashboard{
		Summary:     agg.Summary,
		Series:      agg.Series,
		TopProducts: agg.TopProducts,
		Table:       TopProductsTable(agg.TopProducts),
	}
}
