package engine

import (
	"fmt"
	"time"
)

// FiscalYearStartMonth: the accounting year runs September through August.
// A date in September-December belongs to the fiscal year named after its
// calendar year; January-August belongs to the previous one.
const FiscalYearStartMonth = time.September

// FiscalYear returns the fiscal year containing d.
func FiscalYear(d time.Time) int {
	if d.Month() >= FiscalYearStartMonth {
		return d.Year()
	}
	return d.Year() - 1
}

// FiscalYearRange returns the first and last month (both month-start dates,
// inclusive) of the given fiscal year.
func FiscalYearRange(fiscalYear int) (time.Time, time.Time) {
	start := time.Date(fiscalYear, FiscalYearStartMonth, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 11, 0)
	return start, end
}

// Quarter returns the fiscal quarter (1-4) of a calendar month.
// Q1 = Sep-Nov, Q2 = Dec-Feb, Q3 = Mar-May, Q4 = Jun-Aug.
func Quarter(m time.Month) int {
	fiscalMonth := (int(m)-int(FiscalYearStartMonth)+12)%12 + 1
	return (fiscalMonth-1)/3 + 1
}

// MonthStart truncates d to the first day of its month, UTC.
func MonthStart(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DayStart truncates d to midnight UTC. Used for daily-grain facts.
func DayStart(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// ValidateMonthStart rejects periods not aligned to a month start. Validation
// runs before any mutation.
func ValidateMonthStart(d time.Time) error {
	if d.IsZero() {
		return fmt.Errorf("%w: zero period", ErrInvalidPeriod)
	}
	if d.Day() != 1 {
		return fmt.Errorf("%w: %s is not a month start", ErrInvalidPeriod, d.Format("2006-01-02"))
	}
	return nil
}

// PeriodRange is an inclusive [From, To] range of period dates.
type PeriodRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (r PeriodRange) Validate() error {
	if r.From.IsZero() || r.To.IsZero() {
		return fmt.Errorf("%w: open-ended range", ErrInvalidPeriod)
	}
	if r.To.Before(r.From) {
		return fmt.Errorf("%w: range end %s before start %s",
			ErrInvalidPeriod, r.To.Format("2006-01-02"), r.From.Format("2006-01-02"))
	}
	return nil
}

func (r PeriodRange) Contains(d time.Time) bool {
	return !d.Before(r.From) && !d.After(r.To)
}

// FiscalYearPeriodRange is the month range covering one fiscal year.
func FiscalYearPeriodRange(fiscalYear int) PeriodRange {
	from, to := FiscalYearRange(fiscalYear)
	return PeriodRange{From: from, To: to}
}

// MonthRange expands an inclusive month-start range into the list of months.
func MonthRange(r PeriodRange) []time.Time {
	var months []time.Time
	for cur := MonthStart(r.From); !cur.After(r.To); cur = cur.AddDate(0, 1, 0) {
		months = append(months, cur)
	}
	return months
}

// PreviousYearMonth returns the same month one calendar year earlier.
func PreviousYearMonth(d time.Time) time.Time {
	return MonthStart(d.AddDate(-1, 0, 0))
}
