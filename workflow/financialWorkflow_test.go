package workflow

import (
	"testing"
	"time"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/engine"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/models"
	"github.com/shopspring/decimal"
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func fyMonth(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestComposeFinancialOverviewVariance(t *testing.T) {
	month := fyMonth(2024, time.October)
	rows := []*models.FinancialData{
		{Month: month, SalesTotal: decPtr("1200"), GrossProfit: decPtr("480")},
		{Month: month, IsTarget: true, SalesTotal: decPtr("1000"), GrossProfit: decPtr("450")},
	}

	overview := ComposeFinancialOverview(2024, rows)
	if len(overview.Months) != 1 {
		t.Fatalf("expected 1 month, got %d", len(overview.Months))
	}
	m := overview.Months[0]
	if v := m.Variance[models.MeasureSalesTotal]; !v.Equal(decimal.RequireFromString("200")) {
		t.Errorf("sales variance = %s, want 200", v)
	}
	if m.GrossMarginRate == nil || !m.GrossMarginRate.Equal(decimal.RequireFromString("0.4")) {
		t.Errorf("gross margin rate = %v, want 0.4", m.GrossMarginRate)
	}
}

func TestComposeFinancialOverviewMissingTarget(t *testing.T) {
	rows := []*models.FinancialData{
		{Month: fyMonth(2024, time.October), SalesTotal: decPtr("500")},
	}
	overview := ComposeFinancialOverview(2024, rows)
	m := overview.Months[0]
	if m.Target != nil {
		t.Error("expected no target side")
	}
	// Without a target there is nothing to compare; variance stays absent
	// rather than pretending the target was zero.
	if len(m.Variance) != 0 {
		t.Errorf("variance = %v, want none", m.Variance)
	}
}

func TestComposeFinancialOverviewNegativeResidual(t *testing.T) {
	month := fyMonth(2024, time.November)
	rows := []*models.FinancialData{
		{
			Month:       month,
			SgAndATotal: decPtr("100"),
			SgaDetail: &models.FinancialSgaDetail{
				PersonnelCost: decPtr("80"),
				DeliveryCost:  decPtr("40"),
			},
		},
	}

	overview := ComposeFinancialOverview(2024, rows)
	m := overview.Months[0]
	if m.SgaBreakdown == nil {
		t.Fatal("expected sga breakdown")
	}
	if !m.SgaBreakdown.Negative {
		t.Error("expected negative residual flag")
	}
	if m.SgaBreakdown.Others == nil || !m.SgaBreakdown.Others.Equal(decimal.RequireFromString("-20")) {
		t.Errorf("others = %v, want -20 (never clamped)", m.SgaBreakdown.Others)
	}

	found := false
	for _, warning := range overview.Warnings {
		if warning.Kind == engine.WarnDataQuality {
			found = true
		}
	}
	if !found {
		t.Error("expected a data quality warning for the negative residual")
	}
}

func TestComposeFinancialOverviewCumulativeResetsAtFiscalYear(t *testing.T) {
	rows := []*models.FinancialData{
		{Month: fyMonth(2024, time.September), SalesTotal: decPtr("10")},
		{Month: fyMonth(2024, time.October), SalesTotal: decPtr("20")},
	}
	overview := ComposeFinancialOverview(2024, rows)
	if len(overview.CumulativeSales) != 2 {
		t.Fatalf("expected 2 cumulative points, got %d", len(overview.CumulativeSales))
	}
	last := overview.CumulativeSales[1]
	if !last.Running.Equal(decimal.RequireFromString("30")) {
		t.Errorf("running total = %s, want 30", last.Running)
	}
	if last.FiscalYear != 2024 {
		t.Errorf("fiscal year = %d, want 2024 (September start)", last.FiscalYear)
	}
}
