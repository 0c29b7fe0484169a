package workflow

import (
	"testing"
	"time"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/models"
	"github.com/shopspring/decimal"
)

func kpiRow(segment, kpi string, d time.Time, target bool, value string) models.KpiValue {
	return models.KpiValue{
		SegmentId: segment,
		KpiId:     kpi,
		Date:      d,
		IsTarget:  target,
		Value:     decPtr(value),
	}
}

func TestComposeKpiSummaryYearToDate(t *testing.T) {
	asOf := time.Date(2024, time.November, 30, 0, 0, 0, 0, time.UTC)
	rows := []models.KpiValue{
		kpiRow("s1", "customer_count", fyMonth(2024, time.September), false, "100"),
		kpiRow("s1", "customer_count", fyMonth(2024, time.October), false, "120"),
		kpiRow("s1", "customer_count", fyMonth(2024, time.September), true, "110"),
		kpiRow("s1", "customer_count", fyMonth(2024, time.October), true, "110"),
		// Next fiscal month, beyond asOf: excluded from YTD.
		kpiRow("s1", "customer_count", fyMonth(2024, time.December), false, "999"),
	}

	summary := ComposeKpiSummary(2024, asOf, rows)
	if len(summary.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(summary.Rows))
	}
	row := summary.Rows[0]
	if !row.YtdActual.Equal(decimal.RequireFromString("220")) {
		t.Errorf("ytd actual = %s, want 220", row.YtdActual)
	}
	if !row.YtdTarget.Equal(decimal.RequireFromString("220")) {
		t.Errorf("ytd target = %s, want 220", row.YtdTarget)
	}
	if row.AchievementRate == nil || !row.AchievementRate.Equal(decimal.RequireFromString("1")) {
		t.Errorf("achievement = %v, want 1", row.AchievementRate)
	}
}

func TestComposeKpiSummarySortsBySegmentThenKpi(t *testing.T) {
	asOf := time.Date(2025, time.August, 31, 0, 0, 0, 0, time.UTC)
	rows := []models.KpiValue{
		kpiRow("s2", "a", fyMonth(2024, time.September), false, "1"),
		kpiRow("s1", "b", fyMonth(2024, time.September), false, "1"),
		kpiRow("s1", "a", fyMonth(2024, time.September), false, "1"),
	}
	summary := ComposeKpiSummary(2024, asOf, rows)
	if len(summary.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(summary.Rows))
	}
	got := []string{}
	for _, r := range summary.Rows {
		got = append(got, r.SegmentId+":"+r.KpiId)
	}
	want := []string{"s1:a", "s1:b", "s2:a"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestComposeKpiSummaryZeroTarget(t *testing.T) {
	asOf := time.Date(2024, time.October, 31, 0, 0, 0, 0, time.UTC)
	rows := []models.KpiValue{
		kpiRow("s1", "a", fyMonth(2024, time.September), false, "10"),
		kpiRow("s1", "a", fyMonth(2024, time.September), true, "0"),
	}
	summary := ComposeKpiSummary(2024, asOf, rows)
	if summary.Rows[0].AchievementRate != nil {
		t.Error("achievement against a zero target must be nil")
	}
}
