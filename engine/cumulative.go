package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// SeriesPoint is one element of a fiscal-year cumulative series. Running is
// the exact decimal sum of all point values at or before Period within the
// (entity, measure, actual/target, fiscal year) partition.
type SeriesPoint struct {
	EntityId   string          `json:"entity_id"`
	Measure    string          `json:"measure"`
	FiscalYear int             `json:"fiscal_year"`
	Period     time.Time       `json:"period"`
	IsTarget   bool            `json:"is_target"`
	Value      decimal.Decimal `json:"value"`
	Running    decimal.Decimal `json:"running"`
}

type CumulativeResult struct {
	Points   []SeriesPoint `json:"points"`
	Warnings []Warning     `json:"warnings,omitempty"`
}

// CumulativeSeries computes running totals of one measure over period-ordered
// facts, partitioned by (entity, actual/target flag, fiscal year). The running
// total resets to the point's own value at the first period of each fiscal
// year. Accumulation is exact decimal arithmetic; values may be negative
// (variances are) so monotonicity is never assumed.
func CumulativeSeries(table string, measure string, facts []Fact) CumulativeResult {
	type partKey struct {
		entity   string
		isTarget bool
	}
	// Split by flag before deduping: actual and target rows for the same
	// period are distinct facts, not duplicates.
	byPart := make(map[partKey][]Fact)
	for _, f := range facts {
		k := partKey{entity: f.EntityKey(), isTarget: f.TargetFlag()}
		byPart[k] = append(byPart[k], f)
	}

	partKeys := make([]partKey, 0, len(byPart))
	for k := range byPart {
		partKeys = append(partKeys, k)
	}
	sort.Slice(partKeys, func(i, j int) bool {
		if partKeys[i].entity != partKeys[j].entity {
			return partKeys[i].entity < partKeys[j].entity
		}
		return !partKeys[i].isTarget && partKeys[j].isTarget
	})

	var (
		points   []SeriesPoint
		warnings []Warning
	)
	for _, pk := range partKeys {
		deduped, w := dedupe(table, byPart[pk])
		warnings = append(warnings, w...)

		rows := make([]Fact, 0, len(deduped))
		for _, f := range deduped {
			rows = append(rows, f)
		}
		sort.Slice(rows, func(i, j int) bool {
			return rows[i].PeriodDate().Before(rows[j].PeriodDate())
		})

		running := decimal.Zero
		currentFY := 0
		for i, f := range rows {
			fy := FiscalYear(f.PeriodDate())
			if i == 0 || fy != currentFY {
				currentFY = fy
				running = decimal.Zero
			}
			v := valueOrZero(f.MeasureValues()[measure])
			running = running.Add(v)
			points = append(points, SeriesPoint{
				EntityId:   f.EntityKey(),
				Measure:    measure,
				FiscalYear: fy,
				Period:     f.PeriodDate(),
				IsTarget:   f.TargetFlag(),
				Value:      v,
				Running:    running,
			})
		}
	}

	return CumulativeResult{Points: points, Warnings: warnings}
}

// YearToDate returns the running total of measure as of upTo (inclusive) for
// the fiscal year containing upTo, zero when no facts fall in that window.
func YearToDate(table string, measure string, facts []Fact, upTo time.Time) (decimal.Decimal, []Warning) {
	res := CumulativeSeries(table, measure, facts)
	ytd := decimal.Zero
	fy := FiscalYear(upTo)
	for _, p := range res.Points {
		if p.FiscalYear == fy && !p.Period.After(upTo) {
			ytd = p.Running
		}
	}
	return ytd, res.Warnings
}
