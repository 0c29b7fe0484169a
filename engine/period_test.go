package engine

import (
	"errors"
	"testing"
	"time"
)

func TestFiscalYear(t *testing.T) {
	cases := []struct {
		date time.Time
		want int
	}{
		{day(2025, time.September, 1), 2025},
		{day(2025, time.September, 30), 2025},
		{day(2025, time.December, 15), 2025},
		{day(2025, time.August, 31), 2024},
		{day(2025, time.January, 1), 2024},
		{day(2024, time.October, 1), 2024},
	}
	for _, c := range cases {
		if got := FiscalYear(c.date); got != c.want {
			t.Errorf("FiscalYear(%s) = %d, want %d", c.date.Format("2006-01-02"), got, c.want)
		}
	}
}

func TestFiscalYearRange(t *testing.T) {
	start, end := FiscalYearRange(2024)
	if !start.Equal(month(2024, time.September)) {
		t.Errorf("start = %s, want 2024-09-01", start.Format("2006-01-02"))
	}
	if !end.Equal(month(2025, time.August)) {
		t.Errorf("end = %s, want 2025-08-01", end.Format("2006-01-02"))
	}
}

func TestQuarter(t *testing.T) {
	cases := map[time.Month]int{
		time.September: 1,
		time.November:  1,
		time.December:  2,
		time.February:  2,
		time.March:     3,
		time.May:       3,
		time.June:      4,
		time.August:    4,
	}
	for m, want := range cases {
		if got := Quarter(m); got != want {
			t.Errorf("Quarter(%s) = %d, want %d", m, got, want)
		}
	}
}

func TestValidateMonthStart(t *testing.T) {
	if err := ValidateMonthStart(month(2024, time.April)); err != nil {
		t.Fatalf("month start rejected: %v", err)
	}
	err := ValidateMonthStart(day(2024, time.April, 15))
	if !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
	if err := ValidateMonthStart(time.Time{}); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("zero period must be invalid, got %v", err)
	}
}

func TestPeriodRangeValidate(t *testing.T) {
	ok := PeriodRange{From: month(2024, time.January), To: month(2024, time.June)}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid range rejected: %v", err)
	}
	inverted := PeriodRange{From: month(2024, time.June), To: month(2024, time.January)}
	if err := inverted.Validate(); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestMonthRange(t *testing.T) {
	months := MonthRange(PeriodRange{From: month(2024, time.November), To: month(2025, time.February)})
	if len(months) != 4 {
		t.Fatalf("expected 4 months, got %d", len(months))
	}
	if !months[0].Equal(month(2024, time.November)) || !months[3].Equal(month(2025, time.February)) {
		t.Errorf("unexpected bounds: %v .. %v", months[0], months[3])
	}
}
