package importer

import (
	"testing"
	"time"
)

func TestParseFinancialRowsSkipsHeaderAndParsesMonth(t *testing.T) {
	rows := [][]string{
		{"month", "is_target", "sales_total"},
		{"2024-09", "", "1000"},
		{"2024-10-01", "true", "1,200.50"},
	}
	parsed, errs := ParseFinancialRows(rows)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(parsed) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(parsed))
	}
	first := parsed[0].Input.Data
	if !first.Month.Equal(time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("month = %v", first.Month)
	}
	if first.IsTarget {
		t.Errorf("expected actual row")
	}
	if first.SalesTotal == nil || first.SalesTotal.String() != "1000" {
		t.Errorf("sales_total = %v", first.SalesTotal)
	}
	second := parsed[1].Input.Data
	if !second.IsTarget {
		t.Errorf("expected target row")
	}
	if second.SalesTotal == nil || second.SalesTotal.String() != "1200.5" {
		t.Errorf("sales_total = %v", second.SalesTotal)
	}
	if second.CostOfSales != nil {
		t.Errorf("missing cell should stay nil, got %v", second.CostOfSales)
	}
}

func TestParseFinancialRowsBadCellFailsOnlyItsRow(t *testing.T) {
	rows := [][]string{
		{"month", "is_target", "sales_total"},
		{"2024-09", "", "abc"},
		{"2024-10", "", "500"},
	}
	parsed, errs := ParseFinancialRows(rows)
	if len(parsed) != 1 {
		t.Fatalf("expected 1 good row, got %d", len(parsed))
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if errs[0].Row != 2 || errs[0].Column != "sales_total" {
		t.Errorf("error = %+v", errs[0])
	}
	if parsed[0].RowNo != 3 {
		t.Errorf("good row number = %d", parsed[0].RowNo)
	}
}

func TestParseManufacturingRows(t *testing.T) {
	rows := [][]string{
		{"date", "is_target", "batts", "pieces", "workers", "paid_leave"},
		{"2024-09-02", "", "120", "", "8", "4.5"},
		{"2024-09-03", "", "-5", "", "8", ""},
	}
	parsed, errs := ParseManufacturingRows(rows)
	if len(parsed) != 1 {
		t.Fatalf("expected 1 good row, got %d", len(parsed))
	}
	row := parsed[0].Data
	if row.ProductionBatts == nil || *row.ProductionBatts != 120 {
		t.Errorf("batts = %v", row.ProductionBatts)
	}
	if row.ProductionPieces != nil {
		t.Errorf("empty pieces should stay nil for derivation, got %v", row.ProductionPieces)
	}
	if row.PaidLeaveHours == nil || row.PaidLeaveHours.String() != "4.5" {
		t.Errorf("paid_leave_hours = %v", row.PaidLeaveHours)
	}
	if len(errs) != 1 || errs[0].Row != 3 || errs[0].Column != "production_batts" {
		t.Fatalf("errors = %+v", errs)
	}
}

func TestParseStorePLRowsRequiresSegment(t *testing.T) {
	rows := [][]string{
		{"segment_id", "month", "is_target", "sales"},
		{"", "2024-09", "", "100"},
		{"store_001", "2024-09", "target", "100"},
	}
	parsed, errs := ParseStorePLRows(rows)
	if len(parsed) != 1 {
		t.Fatalf("expected 1 good row, got %d", len(parsed))
	}
	if parsed[0].Input.Data.SegmentId != "store_001" || !parsed[0].Input.Data.IsTarget {
		t.Errorf("row = %+v", parsed[0].Input.Data)
	}
	if len(errs) != 1 || errs[0].Column != "segment_id" {
		t.Fatalf("errors = %+v", errs)
	}
}

func TestParseTimeCellLayouts(t *testing.T) {
	for _, raw := range []string{"2024-09-02", "2024/09/02", "2024/9/2", "9/2/24"} {
		got, err := parseTimeCell(raw)
		if err != nil {
			t.Fatalf("parseTimeCell(%q): %v", raw, err)
		}
		want := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("parseTimeCell(%q) = %v, want %v", raw, got, want)
		}
	}
	if _, err := parseTimeCell("next tuesday"); err == nil {
		t.Errorf("expected error for junk date")
	}
}
