package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/config"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/engine"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/models"
	"github.com/shopspring/decimal"
)

const financeCachePrefix = "finance:"

// FinancialMonth is one month of the company P&L overview: the actual and
// target rows joined, variances, recomputed margin rates and the derived
// detail residuals.
type FinancialMonth struct {
	Month       time.Time                   `json:"month"`
	Actual      *models.FinancialData       `json:"actual,omitempty"`
	Target      *models.FinancialData       `json:"target,omitempty"`
	Variance    map[string]decimal.Decimal  `json:"variance,omitempty"`
	VariancePct map[string]*decimal.Decimal `json:"variance_pct,omitempty"`

	GrossMarginRate     *decimal.Decimal `json:"gross_margin_rate"`
	OperatingMarginRate *decimal.Decimal `json:"operating_margin_rate"`

	CostBreakdown *engine.DetailBreakdown `json:"cost_breakdown,omitempty"`
	SgaBreakdown  *engine.DetailBreakdown `json:"sga_breakdown,omitempty"`
}

type FinancialOverview struct {
	FiscalYear      int                  `json:"fiscal_year"`
	Months          []FinancialMonth     `json:"months"`
	CumulativeSales []engine.SeriesPoint `json:"cumulative_sales"`
	CumulativeOpPft []engine.SeriesPoint `json:"cumulative_operating_profit"`
	Warnings        []engine.Warning     `json:"warnings,omitempty"`
}

// GetFinancialOverview assembles the company P&L dashboard for one fiscal
// year. Cached briefly; any financial upsert invalidates the cache.
func (w *Workflow) GetFinancialOverview(ctx context.Context, fiscalYear int) (*FinancialOverview, error) {
	cacheKey := fmt.Sprintf("%soverview:%d", financeCachePrefix, fiscalYear)
	var cached FinancialOverview
	if cacheGet(cacheKey, &cached) {
		return &cached, nil
	}

	rng := engine.FiscalYearPeriodRange(fiscalYear)
	fetched, err := engine.FetchFacts[models.FinancialData](ctx, w.Store, rng, engine.FactQuery{})
	if err != nil {
		config.LogError(w.Logger, "financialWorkflow.go", "GetFinancialOverview", "fetching financial_data", fiscalYear, err)
		return nil, err
	}
	rows := make([]*models.FinancialData, len(fetched))
	for i := range fetched {
		rows[i] = &fetched[i]
	}
	if err := w.loadFinancialDetails(ctx, rows); err != nil {
		config.LogError(w.Logger, "financialWorkflow.go", "GetFinancialOverview", "loading detail rows", fiscalYear, err)
		return nil, err
	}

	overview := ComposeFinancialOverview(fiscalYear, rows)
	w.logWarnings(ctx, "financialWorkflow.go", "GetFinancialOverview", overview.Warnings)
	cacheSet(cacheKey, overview)
	return overview, nil
}

// ComposeFinancialOverview joins actuals against targets, recomputes margin
// rates from stored totals and derives the detail residuals. Pure; the rows
// normally come from one FetchFacts snapshot.
func ComposeFinancialOverview(fiscalYear int, rows []*models.FinancialData) *FinancialOverview {
	var actuals, targets []engine.Fact
	for _, r := range rows {
		if r.IsTarget {
			targets = append(targets, r)
		} else {
			actuals = append(actuals, r)
		}
	}

	rec := engine.Reconcile(models.FinancialData{}.TableName(), actuals, targets)
	months := make([]FinancialMonth, 0, len(rec.Pairs))
	for _, pair := range rec.Pairs {
		m := FinancialMonth{
			Month:       pair.Period,
			Variance:    pair.Variance,
			VariancePct: pair.VariancePct,
		}
		if pair.Actual != nil {
			m.Actual = pair.Actual.(*models.FinancialData)
		}
		if pair.Target != nil {
			m.Target = pair.Target.(*models.FinancialData)
		}
		if m.Actual != nil {
			m.GrossMarginRate = engine.GrossMarginRate(m.Actual.GrossProfit, m.Actual.SalesTotal)
			m.OperatingMarginRate = engine.OperatingMarginRate(m.Actual.OperatingProfit, m.Actual.SalesTotal)
			if m.Actual.CostDetail != nil {
				b := engine.ComputeDetailBreakdown(m.Actual.CostOfSales, m.Actual.CostDetail.Fields())
				m.CostBreakdown = &b
			}
			if m.Actual.SgaDetail != nil {
				b := engine.ComputeDetailBreakdown(m.Actual.SgAndATotal, m.Actual.SgaDetail.Fields())
				m.SgaBreakdown = &b
			}
		}
		months = append(months, m)
	}

	warnings := rec.Warnings
	salesSeries := engine.CumulativeSeries(models.FinancialData{}.TableName(), models.MeasureSalesTotal, engine.Facts(rows))
	opSeries := engine.CumulativeSeries(models.FinancialData{}.TableName(), models.MeasureOperatingProfit, engine.Facts(rows))
	for _, m := range months {
		if m.CostBreakdown != nil && m.CostBreakdown.Negative {
			warnings = append(warnings, negativeResidualWarning(models.FinancialCostDetail{}.TableName(), models.CompanyEntityId, m.Month))
		}
		if m.SgaBreakdown != nil && m.SgaBreakdown.Negative {
			warnings = append(warnings, negativeResidualWarning(models.FinancialSgaDetail{}.TableName(), models.CompanyEntityId, m.Month))
		}
	}

	return &FinancialOverview{
		FiscalYear:      fiscalYear,
		Months:          months,
		CumulativeSales: salesSeries.Points,
		CumulativeOpPft: opSeries.Points,
		Warnings:        warnings,
	}
}

func negativeResidualWarning(table string, entityId string, period time.Time) engine.Warning {
	return engine.Warning{
		Kind:     engine.WarnDataQuality,
		Table:    table,
		EntityId: entityId,
		Period:   period,
		Detail:   "detail items exceed parent total; residual is negative",
	}
}

// loadFinancialDetails attaches cost and SG&A detail rows in two IN queries
// rather than per-row preloads.
func (w *Workflow) loadFinancialDetails(ctx context.Context, rows []*models.FinancialData) error {
	if len(rows) == 0 {
		return nil
	}
	byId := make(map[int]*models.FinancialData, len(rows))
	ids := make([]int, 0, len(rows))
	for _, r := range rows {
		byId[r.ID] = r
		ids = append(ids, r.ID)
	}

	return w.Store.WithRetry(ctx, "loadFinancialDetails", func(ctx context.Context) error {
		var costs []models.FinancialCostDetail
		if err := w.Store.DB().WithContext(ctx).Where("financial_data_id IN ?", ids).Find(&costs).Error; err != nil {
			return err
		}
		for i := range costs {
			if parent, ok := byId[costs[i].FinancialDataId]; ok {
				parent.CostDetail = &costs[i]
			}
		}
		var sgas []models.FinancialSgaDetail
		if err := w.Store.DB().WithContext(ctx).Where("financial_data_id IN ?", ids).Find(&sgas).Error; err != nil {
			return err
		}
		for i := range sgas {
			if parent, ok := byId[sgas[i].FinancialDataId]; ok {
				parent.SgaDetail = &sgas[i]
			}
		}
		return nil
	})
}

// FinancialUpsertInput carries one month of company P&L figures. Detail
// records are optional; when present and Strict is set, itemized sums may not
// exceed the parent totals.
type FinancialUpsertInput struct {
	Data       models.FinancialData
	CostDetail *models.FinancialCostDetail
	SgaDetail  *models.FinancialSgaDetail
	Strict     bool
}

// UpsertFinancialData writes one (month, is_target) P&L row and its detail
// records. Validation runs before any mutation; the parent and details are
// written under the same per-key lock.
func (w *Workflow) UpsertFinancialData(ctx context.Context, in FinancialUpsertInput) (*models.FinancialData, error) {
	row := in.Data
	row.Month = engine.MonthStart(row.Month)
	row.CostDetail = nil
	row.SgaDetail = nil

	if in.Strict {
		if in.CostDetail != nil {
			if err := engine.ValidateDetailSum(row.CostOfSales, in.CostDetail.Fields()); err != nil {
				return nil, fmt.Errorf("%w: cost detail items exceed cost_of_sales", err)
			}
		}
		if in.SgaDetail != nil {
			if err := engine.ValidateDetailSum(row.SgAndATotal, in.SgaDetail.Fields()); err != nil {
				return nil, fmt.Errorf("%w: sga detail items exceed sg_and_a_total", err)
			}
		}
	}

	key := engine.FactKeyDesc{
		Table:        models.FinancialData{}.TableName(),
		EntityId:     models.CompanyEntityId,
		Period:       row.Month,
		IsTarget:     row.IsTarget,
		Where:        map[string]any{"month": row.Month, "is_target": row.IsTarget},
		MonthAligned: true,
	}
	if _, err := engine.UpsertFact(ctx, w.Store, key, &row); err != nil {
		config.LogError(w.Logger, "financialWorkflow.go", "UpsertFinancialData", "upserting financial_data", in.Data, err)
		return nil, err
	}

	saved, err := w.findFinancialData(ctx, row.Month, row.IsTarget)
	if err != nil {
		return nil, err
	}

	if in.CostDetail != nil {
		in.CostDetail.FinancialDataId = saved.ID
		if err := w.upsertCostDetail(ctx, saved, in.CostDetail); err != nil {
			return nil, err
		}
	}
	if in.SgaDetail != nil {
		in.SgaDetail.FinancialDataId = saved.ID
		if err := w.upsertSgaDetail(ctx, saved, in.SgaDetail); err != nil {
			return nil, err
		}
	}

	cacheInvalidate(financeCachePrefix)
	cacheInvalidate(dashboardCachePrefix)
	return w.findFinancialData(ctx, row.Month, row.IsTarget)
}

// UpsertFinancialCostDetail replaces the cost breakdown of an existing P&L
// row. The parent must already exist.
func (w *Workflow) UpsertFinancialCostDetail(ctx context.Context, month time.Time, isTarget bool, detail *models.FinancialCostDetail, strict bool) error {
	parent, err := w.findFinancialData(ctx, engine.MonthStart(month), isTarget)
	if err != nil {
		return err
	}
	if strict {
		if err := engine.ValidateDetailSum(parent.CostOfSales, detail.Fields()); err != nil {
			return fmt.Errorf("%w: cost detail items exceed cost_of_sales", err)
		}
	}
	detail.FinancialDataId = parent.ID
	if err := w.upsertCostDetail(ctx, parent, detail); err != nil {
		return err
	}
	cacheInvalidate(financeCachePrefix)
	return nil
}

// UpsertFinancialSgaDetail replaces the SG&A breakdown of an existing P&L row.
func (w *Workflow) UpsertFinancialSgaDetail(ctx context.Context, month time.Time, isTarget bool, detail *models.FinancialSgaDetail, strict bool) error {
	parent, err := w.findFinancialData(ctx, engine.MonthStart(month), isTarget)
	if err != nil {
		return err
	}
	if strict {
		if err := engine.ValidateDetailSum(parent.SgAndATotal, detail.Fields()); err != nil {
			return fmt.Errorf("%w: sga detail items exceed sg_and_a_total", err)
		}
	}
	detail.FinancialDataId = parent.ID
	if err := w.upsertSgaDetail(ctx, parent, detail); err != nil {
		return err
	}
	cacheInvalidate(financeCachePrefix)
	return nil
}

// DeleteFinancialData removes one P&L row; detail rows cascade.
func (w *Workflow) DeleteFinancialData(ctx context.Context, month time.Time, isTarget bool) error {
	m := engine.MonthStart(month)
	key := engine.FactKeyDesc{
		Table:        models.FinancialData{}.TableName(),
		EntityId:     models.CompanyEntityId,
		Period:       m,
		IsTarget:     isTarget,
		Where:        map[string]any{"month": m, "is_target": isTarget},
		MonthAligned: true,
	}
	if err := engine.DeleteFact[models.FinancialData](ctx, w.Store, key); err != nil {
		return err
	}
	cacheInvalidate(financeCachePrefix)
	cacheInvalidate(dashboardCachePrefix)
	return nil
}

func (w *Workflow) findFinancialData(ctx context.Context, month time.Time, isTarget bool) (*models.FinancialData, error) {
	var row models.FinancialData
	err := w.Store.WithRetry(ctx, "findFinancialData", func(ctx context.Context) error {
		return w.Store.DB().WithContext(ctx).
			Where("month = ? AND is_target = ?", month, isTarget).
			First(&row).Error
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (w *Workflow) upsertCostDetail(ctx context.Context, parent *models.FinancialData, detail *models.FinancialCostDetail) error {
	key := engine.FactKeyDesc{
		Table:    models.FinancialCostDetail{}.TableName(),
		EntityId: models.CompanyEntityId,
		Period:   parent.Month,
		IsTarget: parent.IsTarget,
		Where:    map[string]any{"financial_data_id": parent.ID},
	}
	_, err := engine.UpsertFact(ctx, w.Store, key, detail)
	return err
}

func (w *Workflow) upsertSgaDetail(ctx context.Context, parent *models.FinancialData, detail *models.FinancialSgaDetail) error {
	key := engine.FactKeyDesc{
		Table:    models.FinancialSgaDetail{}.TableName(),
		EntityId: models.CompanyEntityId,
		Period:   parent.Month,
		IsTarget: parent.IsTarget,
		Where:    map[string]any{"financial_data_id": parent.ID},
	}
	_, err := engine.UpsertFact(ctx, w.Store, key, detail)
	return err
}
