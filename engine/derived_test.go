package engine

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestGrossMarginRate(t *testing.T) {
	if got := GrossMarginRate(dec("300"), dec("1000")); got == nil || !got.Equal(decimal.RequireFromString("0.3")) {
		t.Errorf("margin = %v, want 0.3", got)
	}
	if got := GrossMarginRate(dec("300"), dec("0")); got != nil {
		t.Errorf("zero sales must yield nil, got %s", got)
	}
	if got := GrossMarginRate(dec("300"), nil); got != nil {
		t.Errorf("nil sales must yield nil, got %s", got)
	}
	if got := GrossMarginRate(nil, dec("1000")); got != nil {
		t.Errorf("nil profit must yield nil, got %s", got)
	}
}

func TestProductionPerWorkerZeroSentinel(t *testing.T) {
	if got := ProductionPerWorker(500, 10); !got.Equal(decimal.RequireFromString("50")) {
		t.Errorf("per-worker = %s, want 50", got)
	}
	// Manufacturing uses a zero sentinel, not null, on divide-by-zero.
	if got := ProductionPerWorker(500, 0); !got.IsZero() {
		t.Errorf("zero workers must yield 0, got %s", got)
	}
	if got := ProductionPerWorker(100, 3); !got.Equal(decimal.RequireFromString("33.33")) {
		t.Errorf("per-worker = %s, want 33.33", got)
	}
}

func TestUnitPriceNullPolicy(t *testing.T) {
	buyers := 40
	if got := UnitPrice(dec("10000"), &buyers); got == nil || !got.Equal(decimal.RequireFromString("250")) {
		t.Errorf("unit price = %v, want 250", got)
	}
	// E-commerce uses null, not the manufacturing zero sentinel.
	zero := 0
	if got := UnitPrice(dec("10000"), &zero); got != nil {
		t.Errorf("zero buyers must yield nil, got %s", got)
	}
	if got := UnitPrice(dec("10000"), nil); got != nil {
		t.Errorf("nil buyers must yield nil, got %s", got)
	}
	if got := UnitPrice(nil, &buyers); got != nil {
		t.Errorf("nil sales must yield nil, got %s", got)
	}
}

func TestComputeDetailBreakdown(t *testing.T) {
	fields := map[string]*decimal.Decimal{
		"personnel_cost": dec("100"),
		"land_rent":      dec("50"),
		"lease_cost":     nil,
	}
	b := ComputeDetailBreakdown(dec("200"), fields)
	if !b.ItemTotal.Equal(decimal.RequireFromString("150")) {
		t.Errorf("item total = %s, want 150", b.ItemTotal)
	}
	if b.Others == nil || !b.Others.Equal(decimal.RequireFromString("50")) {
		t.Errorf("others = %v, want 50", b.Others)
	}
	if b.Negative {
		t.Error("non-negative residual flagged")
	}
}

func TestComputeDetailBreakdownNegativeResidualNotClamped(t *testing.T) {
	fields := map[string]*decimal.Decimal{
		"personnel_cost": dec("250"),
	}
	b := ComputeDetailBreakdown(dec("200"), fields)
	if b.Others == nil || !b.Others.Equal(decimal.RequireFromString("-50")) {
		t.Errorf("others = %v, want -50 (never clamped)", b.Others)
	}
	if !b.Negative {
		t.Error("negative residual must raise the data-quality flag")
	}
}

func TestComputeDetailBreakdownNilParent(t *testing.T) {
	b := ComputeDetailBreakdown(nil, map[string]*decimal.Decimal{"personnel_cost": dec("10")})
	if b.Others != nil {
		t.Errorf("residual without a parent total must be nil, got %s", b.Others)
	}
}

func TestValidateDetailSum(t *testing.T) {
	ok := map[string]*decimal.Decimal{"personnel_cost": dec("150")}
	if err := ValidateDetailSum(dec("200"), ok); err != nil {
		t.Fatalf("valid detail sum rejected: %v", err)
	}
	over := map[string]*decimal.Decimal{"personnel_cost": dec("250")}
	if err := ValidateDetailSum(dec("200"), over); !errors.Is(err, ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
	if err := ValidateDetailSum(nil, over); err != nil {
		t.Fatalf("nil parent cannot be validated and must pass, got %v", err)
	}
}
