package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// RollupKey identifies one output row of a rollup. Group is the grouping
// dimension value (region ID, channel, or "company"); Month is zero when the
// grouping collapses periods entirely.
type RollupKey struct {
	Group string    `json:"group"`
	Month time.Time `json:"month,omitempty"`
}

// KeyFn maps a fact to the rollup key it contributes to.
type KeyFn func(Fact) RollupKey

// RollupRow is one summary row: every numeric measure summed with nulls as
// zero over the facts in the group. Derived ratios are NOT carried along;
// callers recompute them from these totals (averaging per-entity ratios is
// statistically invalid and deliberately impossible here).
type RollupRow struct {
	Key    RollupKey                  `json:"key"`
	Totals map[string]decimal.Decimal `json:"totals"`

	// RowCount is the number of fact rows merged into this summary.
	RowCount int `json:"row_count"`

	// WorkingDays counts distinct dates on which at least one contributing
	// fact reported activity (any non-zero measure), independent of how many
	// entities reported that day. Meaningful for daily-grain tables.
	WorkingDays int `json:"working_days"`
}

// Fact interface adoption lets a rollup's own output be rolled up again;
// grouping by the same key must reproduce identical totals.
func (r *RollupRow) EntityKey() string      { return r.Key.Group }
func (r *RollupRow) PeriodDate() time.Time  { return r.Key.Month }
func (r *RollupRow) TargetFlag() bool       { return false }
func (r *RollupRow) LastUpdated() time.Time { return time.Time{} }
func (r *RollupRow) MeasureValues() map[string]*decimal.Decimal {
	out := make(map[string]*decimal.Decimal, len(r.Totals))
	for name := range r.Totals {
		v := r.Totals[name]
		out[name] = &v
	}
	return out
}

// GroupByMonth rolls company-level facts up to one row per month.
func GroupByMonth(f Fact) RollupKey {
	return RollupKey{Group: "company", Month: MonthStart(f.PeriodDate())}
}

// GroupByEntityMonth keeps the entity dimension and normalizes daily facts to
// their month.
func GroupByEntityMonth(f Fact) RollupKey {
	return RollupKey{Group: f.EntityKey(), Month: MonthStart(f.PeriodDate())}
}

// GroupByMapped rolls entities up through a mapping (segment -> region).
// Unmapped entities land in the "" group so they stay visible rather than
// silently vanishing.
func GroupByMapped(mapping map[string]string) KeyFn {
	return func(f Fact) RollupKey {
		return RollupKey{Group: mapping[f.EntityKey()], Month: MonthStart(f.PeriodDate())}
	}
}

// Rollup merges fact rows into summary rows grouped by keyFn, summing every
// measure with nulls as zero. Output is ordered by (month, group).
func Rollup(facts []Fact, keyFn KeyFn) []RollupRow {
	type accum struct {
		row  RollupRow
		days map[string]bool
	}
	groups := make(map[RollupKey]*accum)

	for _, f := range facts {
		k := keyFn(f)
		acc, ok := groups[k]
		if !ok {
			acc = &accum{
				row:  RollupRow{Key: k, Totals: make(map[string]decimal.Decimal)},
				days: make(map[string]bool),
			}
			groups[k] = acc
		}
		acc.row.RowCount++

		active := false
		for name, v := range f.MeasureValues() {
			val := valueOrZero(v)
			acc.row.Totals[name] = acc.row.Totals[name].Add(val)
			if !val.IsZero() {
				active = true
			}
		}
		if active {
			acc.days[f.PeriodDate().Format("2006-01-02")] = true
		}
	}

	rows := make([]RollupRow, 0, len(groups))
	for _, acc := range groups {
		acc.row.WorkingDays = len(acc.days)
		rows = append(rows, acc.row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Key.Month.Equal(rows[j].Key.Month) {
			return rows[i].Key.Month.Before(rows[j].Key.Month)
		}
		return rows[i].Key.Group < rows[j].Key.Group
	})
	return rows
}

// Total looks up a summed measure; zero when the group never saw the measure.
func (r *RollupRow) Total(measure string) decimal.Decimal {
	return r.Totals[measure]
}

// TotalPtr is Total as a pointer, for the derived-metric calculators.
func (r *RollupRow) TotalPtr(measure string) *decimal.Decimal {
	v := r.Totals[measure]
	return &v
}

// TotalInt truncates a summed count measure to int.
func (r *RollupRow) TotalInt(measure string) int {
	return int(r.Totals[measure].IntPart())
}
