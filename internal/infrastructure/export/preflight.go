package export

import (
	"bytes"
	"strings"

	"github.com/marketplace/portal/internal/domain/bulk"
	"github.com/xuri/excelize/v2"
)

// Preflight opens an uploaded workbook before it is forwarded. It only
// checks that the file is a workbook with a header and at least one data
// row; column rules are the backend's job.
type Preflight struct{}

// NewPreflight creates a workbook checker
func NewPreflight() *Preflight {
	return &Preflight{}
}

// Inspect returns the number of data rows on the first sheet
func (Preflight) Inspect(content []byte) (int, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return 0, bulk.ErrUnreadableWorkbook
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return 0, bulk.ErrEmptyWorkbook
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return 0, bulk.ErrUnreadableWorkbook
	}

	data := 0
	for i, row := range rows {
		if i == 0 || blank(row) {
			continue
		}
		data++
	}
	if len(rows) == 0 || blank(rows[0]) || data == 0 {
		return 0, bulk.ErrEmptyWorkbook
	}
	return data, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
