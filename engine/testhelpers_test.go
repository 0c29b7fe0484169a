package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// testFact is a minimal in-memory fact used across the package tests.
type testFact struct {
	entity   string
	period   time.Time
	isTarget bool
	updated  time.Time
	measures map[string]*decimal.Decimal
}

func (f *testFact) EntityKey() string                             { return f.entity }
func (f *testFact) PeriodDate() time.Time                         { return f.period }
func (f *testFact) TargetFlag() bool                              { return f.isTarget }
func (f *testFact) LastUpdated() time.Time                        { return f.updated }
func (f *testFact) MeasureValues() map[string]*decimal.Decimal    { return f.measures }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
