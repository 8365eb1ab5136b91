// Package export renders bulk import error reports and checks uploaded workbooks.
package export

import (
	"bytes"
	"fmt"

	"github.com/gocarina/gocsv"
	"github.com/marketplace/portal/internal/domain/bulk"
	"github.com/xuri/excelize/v2"
)

const reportSheet = "Errors"

var reportHeader = []any{"Row", "Kind", "Field", "Value", "Message"}

// Reports renders []bulk.Problem as CSV or XLSX
type Reports struct{}

// NewReports creates a report renderer
func NewReports() *Reports {
	return &Reports{}
}

// Render writes problems in the requested format
func (r *Reports) Render(format bulk.ReportFormat, problems []bulk.Problem) ([]byte, error) {
	switch format {
	case bulk.ReportXLSX:
		return r.XLSX(problems)
	case bulk.ReportCSV:
		return r.CSV(problems)
	}
	return nil, fmt.Errorf("unsupported report format %q", format)
}

// CSV renders a header line plus one line per problem
func (r *Reports) CSV(problems []bulk.Problem) ([]byte, error) {
	if problems == nil {
		problems = []bulk.Problem{}
	}
	out, err := gocsv.MarshalBytes(&problems)
	if err != nil {
		return nil, fmt.Errorf("render csv report: %w", err)
	}
	return out, nil
}

// XLSX renders a single-sheet workbook with a bold header
func (r *Reports) XLSX(problems []bulk.Problem) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return nil, fmt.Errorf("render xlsx report: %w", err)
	}
	if err := f.SetSheetRow(reportSheet, "A1", &reportHeader); err != nil {
		return nil, fmt.Errorf("render xlsx report: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("render xlsx report: %w", err)
	}
	if err := f.SetCellStyle(reportSheet, "A1", "E1", bold); err != nil {
		return nil, fmt.Errorf("render xlsx report: %w", err)
	}
	_ = f.SetColWidth(reportSheet, "E", "E", 60)

	for i, p := range problems {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{p.Row, p.Kind, p.Field, p.Value, p.Message}
		if err := f.SetSheetRow(reportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("render xlsx report row %d: %w", p.Row, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx report: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}
