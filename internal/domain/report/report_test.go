package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_Validate(t *testing.T) {
	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	q := Query{From: from, To: from.AddDate(0, 1, 0)}
	require.NoError(t, q.Validate())
	assert.Equal(t, GranularityDay, q.Granularity)

	q = Query{From: from, To: from.AddDate(0, 0, -1)}
	assert.Error(t, q.Validate())

	q = Query{From: from, To: from.AddDate(2, 0, 0)}
	assert.Error(t, q.Validate())

	q = Query{From: from, To: from, Granularity: "hour"}
	assert.Error(t, q.Validate())

	q = Query{To: from}
	assert.Error(t, q.Validate())
}

func TestTopProductsTable(t *testing.T) {
	tbl := TopProductsTable([]TopProduct{
		{Name: "Cotton Kurta", UnitsSold: 10, Revenue: decimal.NewFromInt(5000)},
		{Name: "Silk Saree", UnitsSold: 2, Revenue: decimal.NewFromInt(12000)},
	})

	require.Len(t, tbl.Columns, 4)
	assert.Equal(t, "Product Name", tbl.Columns[1].Label)
	assert.Equal(t, "Units Sold", tbl.Columns[2].Label)
	assert.True(t, tbl.Columns[3].Numeric)

	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"1", "Silk Saree", "2", "12000.00"}, tbl.Rows[0])
	assert.Equal(t, []string{"2", "Cotton Kurta", "10", "5000.00"}, tbl.Rows[1])
}

func TestRegionsTable(t *testing.T) {
	tbl := RegionsTable([]RegionSales{
		{Region: "TAMIL NADU", Orders: 3, Sales: decimal.NewFromInt(900)},
		{Region: "maharashtra", Orders: 5, Sales: decimal.NewFromInt(1500)},
	})
	assert.Equal(t, "Sales By Region", tbl.Title)
	assert.Equal(t, "Maharashtra", tbl.Rows[0][0])
	assert.Equal(t, "Tamil Nadu", tbl.Rows[1][0])
}

func TestBuild_SharesTableRenderer(t *testing.T) {
	rep := Build(Query{}, Aggregates{
		TopProducts: []TopProduct{{Name: "A", Revenue: decimal.NewFromInt(1)}},
	})
	require.Len(t, rep.Tables, 2)
	assert.Equal(t, "Top Products", rep.Tables[0].Title)
	assert.Empty(t, rep.Tables[1].Rows)

	dash := BuildDashboard(Aggregates{TopProducts: []TopProduct{{Name: "A", Revenue: decimal.NewFromInt(1)}}})
	assert.Equal(t, rep.Tables[0], dash.Table)
}
