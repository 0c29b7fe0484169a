package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func mfgFact(d time.Time, batts, workers string) Fact {
	return &testFact{
		entity: "manufacturing", period: d,
		measures: map[string]*decimal.Decimal{
			"production_batts": dec(batts),
			"workers_count":    dec(workers),
		},
	}
}

func TestManufacturingMonthlyRollup(t *testing.T) {
	facts := []Fact{
		mfgFact(day(2024, time.January, 1), "500", "10"),
		mfgFact(day(2024, time.January, 2), "0", "0"),
	}
	rows := Rollup(facts, GroupByEntityMonth)
	if len(rows) != 1 {
		t.Fatalf("expected 1 monthly row, got %d", len(rows))
	}
	row := rows[0]
	if got := row.TotalInt("workers_count"); got != 10 {
		t.Errorf("total workers = %d, want 10", got)
	}
	if got := row.TotalInt("production_batts"); got != 500 {
		t.Errorf("total batts = %d, want 500", got)
	}
	avg := ProductionPerWorker(row.TotalInt("production_batts"), row.TotalInt("workers_count"))
	if !avg.Equal(decimal.RequireFromString("50")) {
		t.Errorf("avg production per worker = %s, want 50.00", avg)
	}
	// A day whose row reports no activity at all is not a working day.
	if row.WorkingDays != 1 {
		t.Errorf("working days = %d, want 1", row.WorkingDays)
	}
	if row.RowCount != 2 {
		t.Errorf("row count = %d, want 2", row.RowCount)
	}
}

func TestWorkingDaysCountDistinctDates(t *testing.T) {
	// Two stores reporting the same day count once; a zero-worker day with
	// production still counts.
	facts := []Fact{
		&testFact{entity: "s1", period: day(2024, time.March, 4), measures: map[string]*decimal.Decimal{"production_batts": dec("10"), "workers_count": dec("2")}},
		&testFact{entity: "s2", period: day(2024, time.March, 4), measures: map[string]*decimal.Decimal{"production_batts": dec("20"), "workers_count": dec("3")}},
		&testFact{entity: "s1", period: day(2024, time.March, 5), measures: map[string]*decimal.Decimal{"production_batts": dec("15"), "workers_count": dec("0")}},
	}
	rows := Rollup(facts, GroupByMonth)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].WorkingDays != 2 {
		t.Errorf("working days = %d, want 2 (distinct dates, not rows)", rows[0].WorkingDays)
	}
}

func TestRollupNullAsZero(t *testing.T) {
	facts := []Fact{
		&testFact{entity: "s1", period: month(2024, time.April), measures: map[string]*decimal.Decimal{"sales": dec("100"), "sga_total": nil}},
		&testFact{entity: "s2", period: month(2024, time.April), measures: map[string]*decimal.Decimal{"sales": dec("50"), "sga_total": dec("30")}},
	}
	rows := Rollup(facts, GroupByMonth)
	if got := rows[0].Total("sales"); !got.Equal(decimal.RequireFromString("150")) {
		t.Errorf("sales total = %s, want 150", got)
	}
	if got := rows[0].Total("sga_total"); !got.Equal(decimal.RequireFromString("30")) {
		t.Errorf("sga total = %s, want 30 (null as zero)", got)
	}
}

func TestRollupRegionMapping(t *testing.T) {
	mapping := map[string]string{"s1": "east", "s2": "east", "s3": "west"}
	facts := []Fact{
		&testFact{entity: "s1", period: month(2024, time.April), measures: map[string]*decimal.Decimal{"sales": dec("100")}},
		&testFact{entity: "s2", period: month(2024, time.April), measures: map[string]*decimal.Decimal{"sales": dec("40")}},
		&testFact{entity: "s3", period: month(2024, time.April), measures: map[string]*decimal.Decimal{"sales": dec("60")}},
	}
	rows := Rollup(facts, GroupByMapped(mapping))
	if len(rows) != 2 {
		t.Fatalf("expected 2 region rows, got %d", len(rows))
	}
	byRegion := map[string]decimal.Decimal{}
	for _, r := range rows {
		byRegion[r.Key.Group] = r.Total("sales")
	}
	if !byRegion["east"].Equal(decimal.RequireFromString("140")) {
		t.Errorf("east = %s, want 140", byRegion["east"])
	}
	if !byRegion["west"].Equal(decimal.RequireFromString("60")) {
		t.Errorf("west = %s, want 60", byRegion["west"])
	}
}

// Rolling up a rollup's own output grouped by the same key must reproduce the
// identical totals (associativity of summation).
func TestRollupIdempotence(t *testing.T) {
	facts := []Fact{
		&testFact{entity: "s1", period: month(2024, time.April), measures: map[string]*decimal.Decimal{"sales": dec("100.50"), "cost_of_sales": dec("60.25")}},
		&testFact{entity: "s2", period: month(2024, time.April), measures: map[string]*decimal.Decimal{"sales": dec("99.50"), "cost_of_sales": nil}},
		&testFact{entity: "s1", period: month(2024, time.May), measures: map[string]*decimal.Decimal{"sales": dec("80"), "cost_of_sales": dec("40")}},
	}
	first := Rollup(facts, GroupByMonth)

	again := Rollup(Facts(sliceOfPtrs(first)), GroupByMonth)
	if len(again) != len(first) {
		t.Fatalf("re-rollup changed row count: %d vs %d", len(again), len(first))
	}
	for i := range first {
		for name, want := range first[i].Totals {
			if got := again[i].Total(name); !got.Equal(want) {
				t.Errorf("row %d measure %s: re-rollup %s, want %s", i, name, got, want)
			}
		}
	}
}

// Ratios are recomputed from rolled-up totals, never averaged per entity.
func TestRollupRecomputesRatiosFromTotals(t *testing.T) {
	// Store A: margin 50% on 1000; store B: margin 10% on 100.
	facts := []Fact{
		&testFact{entity: "a", period: month(2024, time.April), measures: map[string]*decimal.Decimal{"sales": dec("1000"), "gross_profit": dec("500")}},
		&testFact{entity: "b", period: month(2024, time.April), measures: map[string]*decimal.Decimal{"sales": dec("100"), "gross_profit": dec("10")}},
	}
	row := Rollup(facts, GroupByMonth)[0]
	rate := GrossMarginRate(row.TotalPtr("gross_profit"), row.TotalPtr("sales"))
	// 510/1100 ≈ 0.4636, nowhere near the 0.30 a ratio average would give.
	if rate == nil || !rate.Equal(decimal.RequireFromString("0.4636")) {
		t.Errorf("blended rate = %v, want 0.4636", rate)
	}
}

func sliceOfPtrs(rows []RollupRow) []*RollupRow {
	out := make([]*RollupRow, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out
}
