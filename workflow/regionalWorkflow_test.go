package workflow

import (
	"testing"
	"time"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/models"
	"github.com/shopspring/decimal"
)

func TestComposeRegionalSummarySumsByRegion(t *testing.T) {
	month := fyMonth(2024, time.October)
	rows := []models.StorePL{
		{SegmentId: "s1", Month: month, Sales: decPtr("1000"), GrossProfit: decPtr("500")},
		{SegmentId: "s2", Month: month, Sales: decPtr("100"), GrossProfit: decPtr("10")},
		{SegmentId: "s3", Month: month, Sales: decPtr("300"), GrossProfit: decPtr("90")},
	}
	mapping := map[string]string{"s1": "east", "s2": "east", "s3": "west"}

	summary := ComposeRegionalSummary(2024, rows, mapping)
	if len(summary.Regions) != 2 {
		t.Fatalf("expected 2 region rows, got %d", len(summary.Regions))
	}

	byRegion := map[string]RegionRow{}
	for _, r := range summary.Regions {
		byRegion[r.RegionId] = r
	}
	east := byRegion["east"]
	if !east.Sales.Equal(decimal.RequireFromString("1100")) {
		t.Errorf("east sales = %s, want 1100", east.Sales)
	}
	if east.StoreCount != 2 {
		t.Errorf("east store count = %d, want 2", east.StoreCount)
	}
	// 510/1100, recomputed from the sums, not the mean of 0.50 and 0.10.
	if east.GrossMarginRate == nil || !east.GrossMarginRate.Equal(decimal.RequireFromString("0.4636")) {
		t.Errorf("east margin = %v, want 0.4636", east.GrossMarginRate)
	}

	if len(summary.Company) != 1 {
		t.Fatalf("expected 1 company row, got %d", len(summary.Company))
	}
	if !summary.Company[0].Sales.Equal(decimal.RequireFromString("1400")) {
		t.Errorf("company sales = %s, want 1400", summary.Company[0].Sales)
	}
}

func TestComposeRegionalSummaryUnmappedStoreStaysVisible(t *testing.T) {
	month := fyMonth(2024, time.October)
	rows := []models.StorePL{
		{SegmentId: "s1", Month: month, Sales: decPtr("100")},
		{SegmentId: "orphan", Month: month, Sales: decPtr("50")},
	}
	summary := ComposeRegionalSummary(2024, rows, map[string]string{"s1": "east"})

	var unmapped *RegionRow
	for i := range summary.Regions {
		if summary.Regions[i].RegionId == "" {
			unmapped = &summary.Regions[i]
		}
	}
	if unmapped == nil {
		t.Fatal("expected the unmapped store to appear under the empty region")
	}
	if !unmapped.Sales.Equal(decimal.RequireFromString("50")) {
		t.Errorf("unmapped sales = %s, want 50", unmapped.Sales)
	}
	if !summary.Company[0].Sales.Equal(decimal.RequireFromString("150")) {
		t.Errorf("company sales = %s, want 150 (orphan included)", summary.Company[0].Sales)
	}
}

func TestComposeStorePLOverviewResidual(t *testing.T) {
	month := fyMonth(2024, time.October)
	rows := []*models.StorePL{
		{
			SegmentId: "s1",
			Month:     month,
			Sales:     decPtr("1000"),
			SgaTotal:  decPtr("300"),
			SgaDetail: &models.StorePLSgaDetail{
				PersonnelCost: decPtr("150"),
				LandRent:      decPtr("50"),
			},
		},
	}
	overview := ComposeStorePLOverview(2024, rows)
	if len(overview.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(overview.Rows))
	}
	b := overview.Rows[0].SgaBreakdown
	if b == nil {
		t.Fatal("expected sga breakdown")
	}
	if b.Others == nil || !b.Others.Equal(decimal.RequireFromString("100")) {
		t.Errorf("others = %v, want 100", b.Others)
	}
	if b.Negative {
		t.Error("residual should not be negative")
	}
}

func TestComposeStorePLOverviewTargetOnlyMonth(t *testing.T) {
	month := fyMonth(2024, time.December)
	rows := []*models.StorePL{
		{SegmentId: "s1", Month: month, IsTarget: true, Sales: decPtr("800")},
	}
	overview := ComposeStorePLOverview(2024, rows)
	row := overview.Rows[0]
	if row.Actual != nil {
		t.Error("expected no actual side")
	}
	if row.Target == nil {
		t.Fatal("expected target side")
	}
	if row.GrossMarginRate != nil {
		t.Error("margins are not derived from targets alone")
	}
}
