package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/config"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/engine"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/models"
	"github.com/shopspring/decimal"
)

// TargetBulkItem is one (segment, month, measure) cell of a bulk target
// submission from the target-setting screen.
type TargetBulkItem struct {
	SegmentId string          `json:"segment_id" validate:"required"`
	Month     time.Time       `json:"month" validate:"required"`
	Measure   string          `json:"measure" validate:"required"`
	Value     decimal.Decimal `json:"value"`
}

// TargetBulkResult reports per-item outcomes; one bad cell fails only itself.
type TargetBulkResult struct {
	Applied int              `json:"applied"`
	Errors  []TargetRowError `json:"errors,omitempty"`
}

type TargetRowError struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// BulkUpsertStorePLTargets applies a batch of store P&L target cells. Cells
// for the same (segment, month) are merged into one row before writing so the
// per-key lock is taken once per row, not once per cell.
func (w *Workflow) BulkUpsertStorePLTargets(ctx context.Context, items []TargetBulkItem) (*TargetBulkResult, error) {
	result := &TargetBulkResult{}

	type rowKey struct {
		segment string
		month   string
	}
	merged := map[rowKey]*models.StorePL{}
	order := []rowKey{}

	for i, item := range items {
		if !segmentScopeAllows(ctx, item.SegmentId) {
			result.Errors = append(result.Errors, TargetRowError{Index: i, Reason: "segment out of scope"})
			continue
		}
		month := engine.MonthStart(item.Month)
		if err := engine.ValidateMonthStart(month); err != nil {
			result.Errors = append(result.Errors, TargetRowError{Index: i, Reason: err.Error()})
			continue
		}
		k := rowKey{item.SegmentId, month.Format("2006-01")}
		row, ok := merged[k]
		if !ok {
			row = &models.StorePL{SegmentId: item.SegmentId, Month: month, IsTarget: true}
			merged[k] = row
			order = append(order, k)
		}
		v := item.Value
		switch item.Measure {
		case models.MeasureSales:
			row.Sales = &v
		case models.MeasureCostOfSales:
			row.CostOfSales = &v
		case models.MeasureGrossProfit:
			row.GrossProfit = &v
		case models.MeasureSgaTotal:
			row.SgaTotal = &v
		case models.MeasureOperatingProfit:
			row.OperatingProfit = &v
		default:
			result.Errors = append(result.Errors, TargetRowError{Index: i, Reason: fmt.Sprintf("unknown measure %q", item.Measure)})
		}
	}

	for _, k := range order {
		row := merged[k]
		// Preserve measures an earlier submission set but this batch omits.
		if existing, err := w.findStorePL(ctx, row.SegmentId, row.Month, true); err == nil {
			mergeStorePLTargets(existing, row)
		} else if !errors.Is(err, engine.ErrNotFound) {
			config.LogError(w.Logger, "targetWorkflow.go", "BulkUpsertStorePLTargets", "reading existing target", k, err)
			return nil, err
		}
		if _, err := w.UpsertStorePL(ctx, StorePLUpsertInput{Data: *row}); err != nil {
			config.LogError(w.Logger, "targetWorkflow.go", "BulkUpsertStorePLTargets", "upserting target row", k, err)
			return nil, err
		}
		result.Applied++
	}
	return result, nil
}

// mergeStorePLTargets fills measures the incoming row leaves nil from the
// previously stored target.
func mergeStorePLTargets(existing *models.StorePL, row *models.StorePL) {
	if row.Sales == nil {
		row.Sales = existing.Sales
	}
	if row.CostOfSales == nil {
		row.CostOfSales = existing.CostOfSales
	}
	if row.GrossProfit == nil {
		row.GrossProfit = existing.GrossProfit
	}
	if row.SgaTotal == nil {
		row.SgaTotal = existing.SgaTotal
	}
	if row.OperatingProfit == nil {
		row.OperatingProfit = existing.OperatingProfit
	}
}

// KpiTargetItem is one (segment, kpi, date) target cell.
type KpiTargetItem struct {
	SegmentId string          `json:"segment_id" validate:"required"`
	KpiId     string          `json:"kpi_id" validate:"required"`
	Date      time.Time       `json:"date" validate:"required"`
	Value     decimal.Decimal `json:"value"`
}

// BulkUpsertKpiTargets applies a batch of KPI target cells.
func (w *Workflow) BulkUpsertKpiTargets(ctx context.Context, items []KpiTargetItem) (*TargetBulkResult, error) {
	result := &TargetBulkResult{}
	for i, item := range items {
		v := item.Value
		row := models.KpiValue{
			SegmentId: item.SegmentId,
			KpiId:     item.KpiId,
			Date:      item.Date,
			IsTarget:  true,
			Value:     &v,
		}
		if _, err := w.UpsertKpiValue(ctx, row); err != nil {
			result.Errors = append(result.Errors, TargetRowError{Index: i, Reason: err.Error()})
			continue
		}
		result.Applied++
	}
	return result, nil
}

// UpsertFinancialTarget writes one month of company-level targets.
func (w *Workflow) UpsertFinancialTarget(ctx context.Context, row models.FinancialData) (*models.FinancialData, error) {
	row.IsTarget = true
	return w.UpsertFinancialData(ctx, FinancialUpsertInput{Data: row})
}
