package engine

import (
	"github.com/shopspring/decimal"
)

// Derived metric calculators. Pure and stateless; each carries an explicit
// zero/null policy. The manufacturing zero-sentinel and the e-commerce null
// policy are intentionally different; unifying them would silently change
// reported values.

// ratePlaces: margin rates are reported as fractions rounded to 4 places;
// unit economics to 2.
const (
	ratePlaces  = 4
	moneyPlaces = 2
)

// GrossMarginRate = grossProfit / salesTotal. Nil when either input is nil or
// sales is zero.
func GrossMarginRate(grossProfit, salesTotal *decimal.Decimal) *decimal.Decimal {
	return safeRatio(grossProfit, salesTotal, ratePlaces)
}

// OperatingMarginRate = operatingProfit / salesTotal, same null policy.
func OperatingMarginRate(operatingProfit, salesTotal *decimal.Decimal) *decimal.Decimal {
	return safeRatio(operatingProfit, salesTotal, ratePlaces)
}

// ProductionPerWorker = totalBatts / totalWorkers, rounded to 2 places.
// Returns decimal zero (not nil) when totalWorkers is zero; the monthly
// manufacturing rollup documented this sentinel and reports depend on it.
func ProductionPerWorker(totalBatts, totalWorkers int) decimal.Decimal {
	if totalWorkers == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(totalBatts)).
		Div(decimal.NewFromInt(int64(totalWorkers))).
		Round(moneyPlaces)
}

// UnitPrice = sales / buyers. Nil when sales is nil or buyers is nil or zero.
// Deliberately NOT the manufacturing zero sentinel.
func UnitPrice(sales *decimal.Decimal, buyers *int) *decimal.Decimal {
	if sales == nil || buyers == nil || *buyers == 0 {
		return nil
	}
	p := sales.Div(decimal.NewFromInt(int64(*buyers))).Round(moneyPlaces)
	return &p
}

// AchievementRate = actual / target, nil when target is nil or zero.
func AchievementRate(actual, target *decimal.Decimal) *decimal.Decimal {
	return safeRatio(actual, target, ratePlaces)
}

// YoYRate = current / previous, nil when previous is nil or zero.
func YoYRate(current, previous *decimal.Decimal) *decimal.Decimal {
	return safeRatio(current, previous, ratePlaces)
}

func safeRatio(numerator, denominator *decimal.Decimal, places int32) *decimal.Decimal {
	if numerator == nil || denominator == nil || denominator.IsZero() {
		return nil
	}
	r := numerator.Div(*denominator).Round(places)
	return &r
}

// DetailBreakdown is the result of the generic detail-residual computation
// shared by the cost, SG&A and store-SG&A breakdowns.
type DetailBreakdown struct {
	// ItemTotal is the sum of the itemized fields, nulls as zero.
	ItemTotal decimal.Decimal `json:"item_total"`

	// Others = parent total − ItemTotal. Nil when the parent total is unknown.
	Others *decimal.Decimal `json:"others"`

	// Negative marks a residual below zero: the detail rows overstate the
	// parent total. Reported, never clamped.
	Negative bool `json:"negative"`
}

// ComputeDetailBreakdown derives the "others" residual of a detail record
// against its parent's aggregate total. Parameterized by the detail field map
// so each domain reuses the one implementation.
func ComputeDetailBreakdown(parentTotal *decimal.Decimal, fields map[string]*decimal.Decimal) DetailBreakdown {
	itemTotal := decimal.Zero
	for _, v := range fields {
		itemTotal = itemTotal.Add(valueOrZero(v))
	}
	out := DetailBreakdown{ItemTotal: itemTotal}
	if parentTotal == nil {
		return out
	}
	others := parentTotal.Sub(itemTotal)
	out.Others = &others
	out.Negative = others.IsNegative()
	return out
}

// ValidateDetailSum rejects detail fields whose sum exceeds the parent total,
// for callers that requested strict validation. Runs before any mutation; a
// nil parent total cannot be validated and passes.
func ValidateDetailSum(parentTotal *decimal.Decimal, fields map[string]*decimal.Decimal) error {
	b := ComputeDetailBreakdown(parentTotal, fields)
	if b.Others != nil && b.Negative {
		return ErrConstraintViolation
	}
	return nil
}
