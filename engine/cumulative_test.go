package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func kpiFact(entity string, period time.Time, isTarget bool, value string) Fact {
	return &testFact{
		entity: entity, period: period, isTarget: isTarget,
		measures: map[string]*decimal.Decimal{"value": dec(value)},
	}
}

func TestCumulativeSeriesRunningTotal(t *testing.T) {
	facts := []Fact{
		kpiFact("s1", month(2024, time.September), false, "10"),
		kpiFact("s1", month(2024, time.October), false, "20"),
		kpiFact("s1", month(2024, time.November), false, "30"),
	}
	res := CumulativeSeries("kpi_values", "value", facts)
	if len(res.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(res.Points))
	}
	wantRunning := []string{"10", "30", "60"}
	for i, p := range res.Points {
		if !p.Running.Equal(decimal.RequireFromString(wantRunning[i])) {
			t.Errorf("point %d running = %s, want %s", i, p.Running, wantRunning[i])
		}
		if p.FiscalYear != 2024 {
			t.Errorf("point %d fiscal year = %d, want 2024", i, p.FiscalYear)
		}
	}
}

func TestCumulativeSeriesFiscalYearReset(t *testing.T) {
	// August belongs to the closing fiscal year; September starts the next.
	facts := []Fact{
		kpiFact("s1", month(2024, time.July), false, "5"),
		kpiFact("s1", month(2024, time.August), false, "7"),
		kpiFact("s1", month(2024, time.September), false, "11"),
	}
	res := CumulativeSeries("kpi_values", "value", facts)
	if res.Points[1].FiscalYear != 2023 || !res.Points[1].Running.Equal(decimal.RequireFromString("12")) {
		t.Errorf("august point = FY%d running %s, want FY2023 running 12", res.Points[1].FiscalYear, res.Points[1].Running)
	}
	last := res.Points[2]
	if last.FiscalYear != 2024 {
		t.Errorf("september fiscal year = %d, want 2024", last.FiscalYear)
	}
	if !last.Running.Equal(decimal.RequireFromString("11")) {
		t.Errorf("running total must reset at fiscal year start: got %s, want 11", last.Running)
	}
}

// Reconciliation law: the running total at the last period of a fiscal year
// equals the sum of all point values in that partition.
func TestCumulativeSeriesReconciliationLaw(t *testing.T) {
	values := []string{"12.5", "-3.75", "40", "0", "8.25"}
	var facts []Fact
	sum := decimal.Zero
	for i, v := range values {
		facts = append(facts, kpiFact("s1", month(2024, time.September).AddDate(0, i, 0), false, v))
		sum = sum.Add(decimal.RequireFromString(v))
	}
	res := CumulativeSeries("kpi_values", "value", facts)
	last := res.Points[len(res.Points)-1]
	if !last.Running.Equal(sum) {
		t.Errorf("final running = %s, want %s", last.Running, sum)
	}
}

func TestCumulativeSeriesPartitionsByFlagAndEntity(t *testing.T) {
	facts := []Fact{
		kpiFact("s1", month(2024, time.September), false, "10"),
		kpiFact("s1", month(2024, time.September), true, "100"),
		kpiFact("s2", month(2024, time.September), false, "7"),
		kpiFact("s1", month(2024, time.October), true, "100"),
	}
	res := CumulativeSeries("kpi_values", "value", facts)
	if len(res.Warnings) != 0 {
		t.Fatalf("actual and target rows for one period are not duplicates: %+v", res.Warnings)
	}
	// Points are period-ordered within each partition, so the last write per
	// key is the partition's final running total.
	byKey := map[string]decimal.Decimal{}
	for _, p := range res.Points {
		byKey[p.EntityId+keyFlag(p.IsTarget)] = p.Running
	}
	if got := byKey["s1#target"]; !got.Equal(decimal.RequireFromString("200")) {
		t.Errorf("s1 target running = %s, want 200", got)
	}
	if got := byKey["s1#actual"]; !got.Equal(decimal.RequireFromString("10")) {
		t.Errorf("s1 actual running = %s, want 10", got)
	}
	if got := byKey["s2#actual"]; !got.Equal(decimal.RequireFromString("7")) {
		t.Errorf("s2 actual running = %s, want 7", got)
	}
}

func keyFlag(isTarget bool) string {
	if isTarget {
		return "#target"
	}
	return "#actual"
}

func TestCumulativeSeriesDuplicateTieBreak(t *testing.T) {
	older := &testFact{
		entity: "s1", period: month(2024, time.September),
		updated:  time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC),
		measures: map[string]*decimal.Decimal{"value": dec("1")},
	}
	newer := &testFact{
		entity: "s1", period: month(2024, time.September),
		updated:  time.Date(2024, 10, 2, 0, 0, 0, 0, time.UTC),
		measures: map[string]*decimal.Decimal{"value": dec("9")},
	}
	res := CumulativeSeries("kpi_values", "value", []Fact{older, newer})
	if len(res.Points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(res.Points))
	}
	if !res.Points[0].Value.Equal(decimal.RequireFromString("9")) {
		t.Errorf("most recently updated row must win, got %s", res.Points[0].Value)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Kind != WarnDuplicateFact {
		t.Fatalf("expected one DuplicateFactWarning, got %+v", res.Warnings)
	}
}

func TestYearToDate(t *testing.T) {
	facts := []Fact{
		kpiFact("s1", month(2024, time.September), false, "10"),
		kpiFact("s1", month(2024, time.October), false, "20"),
		kpiFact("s1", month(2024, time.November), false, "30"),
	}
	ytd, warnings := YearToDate("kpi_values", "value", facts, month(2024, time.October))
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", warnings)
	}
	if !ytd.Equal(decimal.RequireFromString("30")) {
		t.Errorf("ytd = %s, want 30", ytd)
	}
}
