// Package importer maps uploaded Excel workbooks onto fact rows. Each parser
// reads one template sheet, reports per-cell problems with row numbers, and
// hands the good rows to the workflow for upsert. A bad cell fails only its
// own row.
package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/engine"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/workflow"
	"github.com/shopspring/decimal"
)

const sheetName = "Sheet1"

type Importer struct {
	Workflow *workflow.Workflow
}

func NewImporter(w *workflow.Workflow) *Importer {
	return &Importer{Workflow: w}
}

// RowError pins one rejected cell to its workbook position. Row is the
// 1-based row number as shown in Excel.
type RowError struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Reason string `json:"reason"`
}

// ImportResult reports how many rows were written and which were rejected.
type ImportResult struct {
	Applied int        `json:"applied"`
	Errors  []RowError `json:"errors,omitempty"`
}

func (r *ImportResult) reject(rowNo int, column, reason string) {
	r.Errors = append(r.Errors, RowError{Row: rowNo, Column: column, Reason: reason})
}

// cell returns the i-th cell of a row, empty when the row is short. excelize
// trims trailing empty cells from GetRows output.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"01-02-06",
	"1/2/06",
	"2006-01",
	"2006/01",
}

func parseTimeCell(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

func parseMonthCell(raw string) (time.Time, error) {
	t, err := parseTimeCell(raw)
	if err != nil {
		return time.Time{}, err
	}
	return engine.MonthStart(t), nil
}

// parseDecimalCell returns nil for an empty cell so missing template values
// stay null rather than zero.
func parseDecimalCell(raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return nil, fmt.Errorf("not a number: %q", raw)
	}
	return &d, nil
}

func parseIntCell(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return nil, fmt.Errorf("not an integer: %q", raw)
	}
	return &n, nil
}

func parseBoolCell(raw string) bool {
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "target":
		return true
	}
	return false
}
