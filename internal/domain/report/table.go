package report

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Table is the one tabular shape used by every report widget. The top
// products list and the regional breakdown both render through it.
type Table struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Column is a table heading
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	// Numeric columns are right-aligned by the UI
	Numeric bool `json:"numeric"`
}

var titleCaser = cases.Title(language.English)

// Heading turns a snake_case key into a display label
func Heading(key string) string {
	return titleCaser.String(strings.ReplaceAll(key, "_", " "))
}

// NewTable builds a table whose column labels derive from keys
func NewTable(title string, keys []string, numeric map[string]bool) Table {
	cols := make([]Column, 0, len(keys))
	for _, k := range keys {
		cols = append(cols, Column{Key: k, Label: Heading(k), Numeric: numeric[k]})
	}
	return Table{Title: title, Columns: cols, Rows: make([][]string, 0)}
}

// AddRow appends a row; it must have one cell per column
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// TopProductsTable renders best sellers ordered by revenue, highest first
func TopProductsTable(items []TopProduct) Table {
	sorted := make([]TopProduct, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Revenue.GreaterThan(sorted[j].Revenue)
	})

	t := NewTable("Top Products", []string{"rank", "product_name", "units_sold", "revenue"},
		map[string]bool{"rank": true, "units_sold": true, "revenue": true})
	for i, p := range sorted {
		t.AddRow(strconv.Itoa(i+1), p.Name, strconv.FormatInt(p.UnitsSold, 10), p.Revenue.StringFixed(2))
	}
	return t
}

// RegionsTable renders the data behind the sales map, largest first
func RegionsTable(regions []RegionSales) Table {
	sorted := make([]RegionSales, len(regions))
	copy(sorted, regions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Sales.GreaterThan(sorted[j].Sales)
	})

	t := NewTable("Sales By Region", []string{"region", "orders", "sales"},
		map[string]bool{"orders": true, "sales": true})
	for _, r := range sorted {
		t.AddRow(titleCaser.String(strings.ToLower(r.Region)), strconv.FormatInt(r.Orders, 10), r.Sales.StringFixed(2))
	}
	return t
}
