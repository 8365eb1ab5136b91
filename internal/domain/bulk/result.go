package bulk

import (
	"sort"

	"github.com/marketplace/portal/internal/domain/shared"
)

// RowError is one row the backend rejected
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Duplicate is a row whose SKU already exists or repeats in the workbook
type Duplicate struct {
	Row     int    `json:"row"`
	SKU     string `json:"sku"`
	Message string `json:"message,omitempty"`
}

// Result is the backend's verdict on an upload, as rendered to the user
type Result struct {
	Status     int         `json:"status"`
	Message    string      `json:"message"`
	Inserted   int         `json:"inserted"`
	Updated    int         `json:"updated"`
	Errors     []RowError  `json:"errors"`
	Duplicates []Duplicate `json:"duplicates"`
}

// Succeeded reports whether the backend accepted the upload
func (r Result) Succeeded() bool {
	return r.Status == 1
}

// Normalize makes nil lists empty so the UI always receives arrays
func (r *Result) Normalize() {
	if r.Errors == nil {
		r.Errors = make([]RowError, 0)
	}
	if r.Duplicates == nil {
		r.Duplicates = make([]Duplicate, 0)
	}
}

// Problem is one line of an exported error report
type Problem struct {
	Row     int    `csv:"row" json:"row"`
	Kind    string `csv:"kind" json:"kind"`
	Field   string `csv:"field" json:"field"`
	Value   string `csv:"value" json:"value"`
	Message string `csv:"message" json:"message"`
}

func sortProblems(p []Problem) {
	sort.SliceStable(p, func(i, j int) bool { return p[i].Row < p[j].Row })
}

// ReportFormat is the file format of an exported error report
type ReportFormat string

const (
	ReportCSV  ReportFormat = "csv"
	ReportXLSX ReportFormat = "xlsx"
)

// ParseReportFormat defaults to CSV for an empty value
func ParseReportFormat(s string) (ReportFormat, error) {
	switch ReportFormat(s) {
	case "", ReportCSV:
		return ReportCSV, nil
	case ReportXLSX:
		return ReportXLSX, nil
	}
	return "", shared.NewDomainError("INVALID_REPORT_FORMAT", "Error reports can be exported as csv or xlsx")
}

// ContentType of the rendered report
func (f ReportFormat) ContentType() string {
	if f == ReportXLSX {
		return XLSXContentType
	}
	return "text/csv; charset=utf-8"
}

// Errors raised by the workbook preflight
var (
	ErrUnreadableWorkbook = shared.NewDomainError("INVALID_WORKBOOK", "The file is not a readable Excel workbook")
	ErrEmptyWorkbook      = shared.NewDomainError("EMPTY_WORKBOOK", "The workbook has no rows to import")
)
