package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconciledPair joins an actual fact with its target counterpart for one
// (entity, period). Either side may be absent, never both. Variance entries
// exist only for measures present on both sides; VariancePct is nil wherever
// the target is zero.
type ReconciledPair struct {
	EntityId    string                      `json:"entity_id"`
	Period      time.Time                   `json:"period"`
	Actual      Fact                        `json:"actual,omitempty"`
	Target      Fact                        `json:"target,omitempty"`
	Variance    map[string]decimal.Decimal  `json:"variance,omitempty"`
	VariancePct map[string]*decimal.Decimal `json:"variance_pct,omitempty"`
}

type ReconcileResult struct {
	Pairs    []ReconciledPair `json:"pairs"`
	Warnings []Warning        `json:"warnings,omitempty"`
}

// Reconcile performs a full outer join of actuals and targets on
// (entity, period). Both inputs must come from the same table with the
// actual/target flag fixed on each side.
func Reconcile(table string, actuals []Fact, targets []Fact) ReconcileResult {
	actualByKey, warnings := dedupe(table, actuals)
	targetByKey, targetWarnings := dedupe(table, targets)
	warnings = append(warnings, targetWarnings...)

	union := make(map[factKey]Fact, len(actualByKey)+len(targetByKey))
	for k, f := range actualByKey {
		union[k] = f
	}
	for k, f := range targetByKey {
		if _, ok := union[k]; !ok {
			union[k] = f
		}
	}

	pairs := make([]ReconciledPair, 0, len(union))
	for _, k := range sortedKeys(union) {
		any := union[k]
		pair := ReconciledPair{
			EntityId: any.EntityKey(),
			Period:   any.PeriodDate(),
		}
		if a, ok := actualByKey[k]; ok {
			pair.Actual = a
		}
		if t, ok := targetByKey[k]; ok {
			pair.Target = t
		}
		if pair.Actual != nil && pair.Target != nil {
			pair.Variance, pair.VariancePct = computeVariance(pair.Actual, pair.Target)
		}
		pairs = append(pairs, pair)
	}

	return ReconcileResult{Pairs: pairs, Warnings: warnings}
}

// computeVariance: variance = actual − target for every measure present on
// both sides; variance_pct = variance / target, nil when target is zero.
// Never divides by zero, never fabricates infinity.
func computeVariance(actual, target Fact) (map[string]decimal.Decimal, map[string]*decimal.Decimal) {
	actualMeasures := actual.MeasureValues()
	targetMeasures := target.MeasureValues()

	variance := make(map[string]decimal.Decimal)
	variancePct := make(map[string]*decimal.Decimal)
	for name, av := range actualMeasures {
		tv, ok := targetMeasures[name]
		if !ok || av == nil || tv == nil {
			continue
		}
		diff := av.Sub(*tv)
		variance[name] = diff
		if tv.IsZero() {
			variancePct[name] = nil
			continue
		}
		pct := diff.Div(*tv)
		variancePct[name] = &pct
	}
	if len(variance) == 0 {
		return nil, nil
	}
	return variance, variancePct
}
