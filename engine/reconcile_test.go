package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestReconcileVariance(t *testing.T) {
	actuals := []Fact{&testFact{
		entity: "company", period: month(2024, time.April),
		measures: map[string]*decimal.Decimal{"sales_total": dec("1200000"), "operating_profit": dec("90000")},
	}}
	targets := []Fact{&testFact{
		entity: "company", period: month(2024, time.April), isTarget: true,
		measures: map[string]*decimal.Decimal{"sales_total": dec("1000000"), "operating_profit": dec("100000")},
	}}

	res := Reconcile("financial_data", actuals, targets)
	if len(res.Pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(res.Pairs))
	}
	pair := res.Pairs[0]
	if pair.Actual == nil || pair.Target == nil {
		t.Fatal("both sides should be present")
	}
	if got := pair.Variance["sales_total"]; !got.Equal(decimal.RequireFromString("200000")) {
		t.Errorf("sales variance = %s, want 200000", got)
	}
	if got := pair.Variance["operating_profit"]; !got.Equal(decimal.RequireFromString("-10000")) {
		t.Errorf("profit variance = %s, want -10000", got)
	}
	pct := pair.VariancePct["sales_total"]
	if pct == nil || !pct.Equal(decimal.RequireFromString("0.2")) {
		t.Errorf("sales variance pct = %v, want 0.2", pct)
	}
}

func TestReconcileMissingTargetSide(t *testing.T) {
	actuals := []Fact{&testFact{
		entity: "company", period: month(2024, time.April),
		measures: map[string]*decimal.Decimal{"sales_total": dec("1000000")},
	}}

	res := Reconcile("financial_data", actuals, nil)
	if len(res.Pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(res.Pairs))
	}
	pair := res.Pairs[0]
	if pair.Target != nil {
		t.Error("target side should be absent")
	}
	if pair.Variance != nil {
		t.Errorf("variance must be nil with one side absent, got %v", pair.Variance)
	}
}

func TestReconcileZeroTargetYieldsNilPct(t *testing.T) {
	actuals := []Fact{&testFact{
		entity: "ec", period: month(2024, time.April),
		measures: map[string]*decimal.Decimal{"sales": dec("5000")},
	}}
	targets := []Fact{&testFact{
		entity: "ec", period: month(2024, time.April), isTarget: true,
		measures: map[string]*decimal.Decimal{"sales": dec("0")},
	}}

	res := Reconcile("ecommerce_channel_sales", actuals, targets)
	pair := res.Pairs[0]
	if got := pair.Variance["sales"]; !got.Equal(decimal.RequireFromString("5000")) {
		t.Errorf("variance = %s, want 5000", got)
	}
	if pct := pair.VariancePct["sales"]; pct != nil {
		t.Errorf("variance pct must be nil on zero target, got %s", pct)
	}
}

func TestReconcileDuplicateKeyTieBreak(t *testing.T) {
	older := &testFact{
		entity: "company", period: month(2024, time.April),
		updated:  time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		measures: map[string]*decimal.Decimal{"sales_total": dec("100")},
	}
	newer := &testFact{
		entity: "company", period: month(2024, time.April),
		updated:  time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC),
		measures: map[string]*decimal.Decimal{"sales_total": dec("200")},
	}

	res := Reconcile("financial_data", []Fact{older, newer}, nil)
	if len(res.Pairs) != 1 {
		t.Fatalf("expected 1 pair after dedupe, got %d", len(res.Pairs))
	}
	if res.Pairs[0].Actual != Fact(newer) {
		t.Error("most recently updated row should win the tie-break")
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Kind != WarnDuplicateFact {
		t.Fatalf("expected one DuplicateFactWarning, got %+v", res.Warnings)
	}
}

func TestReconcileFullOuterJoinOrdering(t *testing.T) {
	actuals := []Fact{
		&testFact{entity: "b", period: month(2024, time.May), measures: map[string]*decimal.Decimal{"v": dec("1")}},
		&testFact{entity: "a", period: month(2024, time.April), measures: map[string]*decimal.Decimal{"v": dec("2")}},
	}
	targets := []Fact{
		&testFact{entity: "c", period: month(2024, time.April), isTarget: true, measures: map[string]*decimal.Decimal{"v": dec("3")}},
	}

	res := Reconcile("kpi_values", actuals, targets)
	if len(res.Pairs) != 3 {
		t.Fatalf("full outer join should keep unmatched rows on both sides, got %d pairs", len(res.Pairs))
	}
	// Ordered by period then entity.
	if res.Pairs[0].EntityId != "a" || res.Pairs[1].EntityId != "c" || res.Pairs[2].EntityId != "b" {
		t.Errorf("unexpected order: %s, %s, %s", res.Pairs[0].EntityId, res.Pairs[1].EntityId, res.Pairs[2].EntityId)
	}
	if res.Pairs[1].Actual != nil {
		t.Error("target-only pair should have absent actual side")
	}
}
