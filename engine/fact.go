package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Fact is the uniform read contract every period-keyed fact row satisfies.
// (EntityKey, PeriodDate, TargetFlag) identifies a row uniquely; measures may
// be nil and default to zero on aggregation.
type Fact interface {
	EntityKey() string
	PeriodDate() time.Time
	TargetFlag() bool
	LastUpdated() time.Time
	MeasureValues() map[string]*decimal.Decimal
}

// Facts widens a concrete model slice to the Fact interface.
func Facts[T Fact](rows []T) []Fact {
	out := make([]Fact, len(rows))
	for i := range rows {
		out[i] = rows[i]
	}
	return out
}

type factKey struct {
	entity string
	period string // yyyy-mm-dd, avoids time.Time equality pitfalls
}

func keyOf(f Fact) factKey {
	return factKey{entity: f.EntityKey(), period: f.PeriodDate().Format("2006-01-02")}
}

// dedupe collapses duplicate (entity, period) rows, keeping the most recently
// updated one. The store is expected to enforce uniqueness but is external and
// not guaranteed clean; every collision appends a DuplicateFactWarning.
func dedupe(table string, facts []Fact) (map[factKey]Fact, []Warning) {
	byKey := make(map[factKey]Fact, len(facts))
	var warnings []Warning
	for _, f := range facts {
		k := keyOf(f)
		prev, ok := byKey[k]
		if !ok {
			byKey[k] = f
			continue
		}
		warnings = append(warnings, Warning{
			Kind:     WarnDuplicateFact,
			Table:    table,
			EntityId: f.EntityKey(),
			Period:   f.PeriodDate(),
			IsTarget: f.TargetFlag(),
			Detail:   "duplicate row for unique key; most recently updated row used",
		})
		if f.LastUpdated().After(prev.LastUpdated()) {
			byKey[k] = f
		}
	}
	return byKey, warnings
}

func sortedKeys(m map[factKey]Fact) []factKey {
	keys := make([]factKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].period != keys[j].period {
			return keys[i].period < keys[j].period
		}
		return keys[i].entity < keys[j].entity
	})
	return keys
}

// valueOrZero applies the null-as-zero aggregation default.
func valueOrZero(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}
