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

const regionalCachePrefix = "regional:"

// StorePLMonth is one (store, month) of the store P&L overview.
type StorePLMonth struct {
	SegmentId   string                      `json:"segment_id"`
	SegmentName string                      `json:"segment_name,omitempty"`
	Month       time.Time                   `json:"month"`
	Actual      *models.StorePL             `json:"actual,omitempty"`
	Target      *models.StorePL             `json:"target,omitempty"`
	Variance    map[string]decimal.Decimal  `json:"variance,omitempty"`
	VariancePct map[string]*decimal.Decimal `json:"variance_pct,omitempty"`

	GrossMarginRate     *decimal.Decimal        `json:"gross_margin_rate"`
	OperatingMarginRate *decimal.Decimal        `json:"operating_margin_rate"`
	SgaBreakdown        *engine.DetailBreakdown `json:"sga_breakdown,omitempty"`
}

type StorePLOverview struct {
	FiscalYear int              `json:"fiscal_year"`
	Rows       []StorePLMonth   `json:"rows"`
	Warnings   []engine.Warning `json:"warnings,omitempty"`
}

// GetStorePLOverview reconciles per-store monthly P&L against targets. Stores
// outside the caller's segment scope are omitted.
func (w *Workflow) GetStorePLOverview(ctx context.Context, fiscalYear int, segmentIds []string) (*StorePLOverview, error) {
	scoped := filterScopedSegments(ctx, segmentIds)
	if len(segmentIds) > 0 && len(scoped) == 0 {
		return &StorePLOverview{FiscalYear: fiscalYear}, nil
	}

	rng := engine.FiscalYearPeriodRange(fiscalYear)
	fetched, err := engine.FetchFacts[models.StorePL](ctx, w.Store, rng, engine.FactQuery{
		EntityColumn: "segment_id",
		EntityIn:     scoped,
	})
	if err != nil {
		config.LogError(w.Logger, "regionalWorkflow.go", "GetStorePLOverview", "fetching store_pl", fiscalYear, err)
		return nil, err
	}
	rows := make([]*models.StorePL, 0, len(fetched))
	for i := range fetched {
		if segmentScopeAllows(ctx, fetched[i].SegmentId) {
			rows = append(rows, &fetched[i])
		}
	}
	if err := w.loadStoreSgaDetails(ctx, rows); err != nil {
		config.LogError(w.Logger, "regionalWorkflow.go", "GetStorePLOverview", "loading sga details", fiscalYear, err)
		return nil, err
	}
	overview := ComposeStorePLOverview(fiscalYear, rows)
	w.logWarnings(ctx, "regionalWorkflow.go", "GetStorePLOverview", overview.Warnings)
	return overview, nil
}

// ComposeStorePLOverview is the pure reconciliation behind the store overview.
func ComposeStorePLOverview(fiscalYear int, rows []*models.StorePL) *StorePLOverview {
	var actuals, targets []engine.Fact
	for _, r := range rows {
		if r.IsTarget {
			targets = append(targets, r)
		} else {
			actuals = append(actuals, r)
		}
	}

	rec := engine.Reconcile(models.StorePL{}.TableName(), actuals, targets)
	overview := &StorePLOverview{FiscalYear: fiscalYear, Warnings: rec.Warnings}
	for _, pair := range rec.Pairs {
		row := StorePLMonth{
			SegmentId:   pair.EntityId,
			Month:       pair.Period,
			Variance:    pair.Variance,
			VariancePct: pair.VariancePct,
		}
		if pair.Actual != nil {
			row.Actual = pair.Actual.(*models.StorePL)
		}
		if pair.Target != nil {
			row.Target = pair.Target.(*models.StorePL)
		}
		if row.Actual != nil {
			row.GrossMarginRate = engine.GrossMarginRate(row.Actual.GrossProfit, row.Actual.Sales)
			row.OperatingMarginRate = engine.OperatingMarginRate(row.Actual.OperatingProfit, row.Actual.Sales)
			if row.Actual.SgaDetail != nil {
				b := engine.ComputeDetailBreakdown(row.Actual.SgaTotal, row.Actual.SgaDetail.Fields())
				row.SgaBreakdown = &b
				if b.Negative {
					overview.Warnings = append(overview.Warnings,
						negativeResidualWarning(models.StorePLSgaDetail{}.TableName(), pair.EntityId, pair.Period))
				}
			}
		}
		overview.Rows = append(overview.Rows, row)
	}
	return overview
}

// RegionRow is one (region, month) of the regional summary. Margin rates are
// recomputed from the region's summed totals.
type RegionRow struct {
	RegionId    string          `json:"region_id"`
	RegionName  string          `json:"region_name,omitempty"`
	Month       time.Time       `json:"month"`
	Sales       decimal.Decimal `json:"sales"`
	GrossProfit decimal.Decimal `json:"gross_profit"`
	OpProfit    decimal.Decimal `json:"operating_profit"`
	StoreCount  int             `json:"store_count"`

	GrossMarginRate     *decimal.Decimal `json:"gross_margin_rate"`
	OperatingMarginRate *decimal.Decimal `json:"operating_margin_rate"`
}

type RegionalSummary struct {
	FiscalYear int         `json:"fiscal_year"`
	Regions    []RegionRow `json:"regions"`
	Company    []RegionRow `json:"company"`
}

// GetRegionalSummary rolls store P&L actuals up to regions and the company
// total. Stores with no region mapping surface under an empty region id
// rather than disappearing from the company total.
func (w *Workflow) GetRegionalSummary(ctx context.Context, fiscalYear int) (*RegionalSummary, error) {
	cacheKey := fmt.Sprintf("%ssummary:%d", regionalCachePrefix, fiscalYear)
	var cached RegionalSummary
	if cacheGet(cacheKey, &cached) {
		return &cached, nil
	}

	rng := engine.FiscalYearPeriodRange(fiscalYear)
	fetched, err := engine.FetchFacts[models.StorePL](ctx, w.Store, rng, engine.FactQuery{
		EntityColumn: "segment_id",
		IsTarget:     boolPtr(false),
	})
	if err != nil {
		config.LogError(w.Logger, "regionalWorkflow.go", "GetRegionalSummary", "fetching store_pl", fiscalYear, err)
		return nil, err
	}

	mapping, err := w.storeRegionMapping(ctx)
	if err != nil {
		config.LogError(w.Logger, "regionalWorkflow.go", "GetRegionalSummary", "loading store region mapping", fiscalYear, err)
		return nil, err
	}

	summary := ComposeRegionalSummary(fiscalYear, fetched, mapping)
	cacheSet(cacheKey, summary)
	return summary, nil
}

// ComposeRegionalSummary is the pure two-level rollup: stores to regions, and
// stores to the company total. Ratios come from the rolled-up sums.
func ComposeRegionalSummary(fiscalYear int, rows []models.StorePL, mapping map[string]string) *RegionalSummary {
	facts := make([]engine.Fact, 0, len(rows))
	for i := range rows {
		facts = append(facts, &rows[i])
	}

	summary := &RegionalSummary{FiscalYear: fiscalYear}
	for _, row := range engine.Rollup(facts, engine.GroupByMapped(mapping)) {
		summary.Regions = append(summary.Regions, regionRowFromRollup(row, row.Key.Group))
	}
	for _, row := range engine.Rollup(facts, engine.GroupByMonth) {
		summary.Company = append(summary.Company, regionRowFromRollup(row, models.CompanyEntityId))
	}
	return summary
}

func regionRowFromRollup(row engine.RollupRow, group string) RegionRow {
	out := RegionRow{
		RegionId:    group,
		Month:       row.Key.Month,
		Sales:       row.Total(models.MeasureSales),
		GrossProfit: row.Total(models.MeasureGrossProfit),
		OpProfit:    row.Total(models.MeasureOperatingProfit),
		StoreCount:  row.RowCount,
	}
	out.GrossMarginRate = engine.GrossMarginRate(row.TotalPtr(models.MeasureGrossProfit), row.TotalPtr(models.MeasureSales))
	out.OperatingMarginRate = engine.OperatingMarginRate(row.TotalPtr(models.MeasureOperatingProfit), row.TotalPtr(models.MeasureSales))
	return out
}

// StorePLUpsertInput carries one month of store P&L figures.
type StorePLUpsertInput struct {
	Data      models.StorePL
	SgaDetail *models.StorePLSgaDetail
	Strict    bool
}

// UpsertStorePL writes one (segment, month, is_target) P&L row and its SG&A
// detail. The caller must hold write scope for the segment.
func (w *Workflow) UpsertStorePL(ctx context.Context, in StorePLUpsertInput) (*models.StorePL, error) {
	row := in.Data
	if !segmentScopeAllows(ctx, row.SegmentId) {
		return nil, fmt.Errorf("%w: segment %s out of scope", engine.ErrConstraintViolation, row.SegmentId)
	}
	row.Month = engine.MonthStart(row.Month)
	row.SgaDetail = nil

	if in.Strict && in.SgaDetail != nil {
		if err := engine.ValidateDetailSum(row.SgaTotal, in.SgaDetail.Fields()); err != nil {
			return nil, fmt.Errorf("%w: sga detail items exceed sga_total", err)
		}
	}

	key := engine.FactKeyDesc{
		Table:        models.StorePL{}.TableName(),
		EntityId:     row.SegmentId,
		Period:       row.Month,
		IsTarget:     row.IsTarget,
		Where:        map[string]any{"segment_id": row.SegmentId, "month": row.Month, "is_target": row.IsTarget},
		MonthAligned: true,
	}
	if _, err := engine.UpsertFact(ctx, w.Store, key, &row); err != nil {
		config.LogError(w.Logger, "regionalWorkflow.go", "UpsertStorePL", "upserting store_pl", in.Data, err)
		return nil, err
	}

	saved, err := w.findStorePL(ctx, row.SegmentId, row.Month, row.IsTarget)
	if err != nil {
		return nil, err
	}
	if in.SgaDetail != nil {
		in.SgaDetail.StorePLId = saved.ID
		detailKey := engine.FactKeyDesc{
			Table:    models.StorePLSgaDetail{}.TableName(),
			EntityId: row.SegmentId,
			Period:   row.Month,
			IsTarget: row.IsTarget,
			Where:    map[string]any{"store_pl_id": saved.ID},
		}
		if _, err := engine.UpsertFact(ctx, w.Store, detailKey, in.SgaDetail); err != nil {
			return nil, err
		}
	}

	cacheInvalidate(regionalCachePrefix)
	cacheInvalidate(dashboardCachePrefix)
	return w.findStorePL(ctx, row.SegmentId, row.Month, row.IsTarget)
}

// DeleteStorePL removes one store P&L row; the SG&A detail cascades.
func (w *Workflow) DeleteStorePL(ctx context.Context, segmentId string, month time.Time, isTarget bool) error {
	if !segmentScopeAllows(ctx, segmentId) {
		return fmt.Errorf("%w: segment %s out of scope", engine.ErrConstraintViolation, segmentId)
	}
	m := engine.MonthStart(month)
	key := engine.FactKeyDesc{
		Table:        models.StorePL{}.TableName(),
		EntityId:     segmentId,
		Period:       m,
		IsTarget:     isTarget,
		Where:        map[string]any{"segment_id": segmentId, "month": m, "is_target": isTarget},
		MonthAligned: true,
	}
	if err := engine.DeleteFact[models.StorePL](ctx, w.Store, key); err != nil {
		return err
	}
	cacheInvalidate(regionalCachePrefix)
	cacheInvalidate(dashboardCachePrefix)
	return nil
}

func (w *Workflow) findStorePL(ctx context.Context, segmentId string, month time.Time, isTarget bool) (*models.StorePL, error) {
	var row models.StorePL
	err := w.Store.WithRetry(ctx, "findStorePL", func(ctx context.Context) error {
		return w.Store.DB().WithContext(ctx).
			Where("segment_id = ? AND month = ? AND is_target = ?", segmentId, month, isTarget).
			First(&row).Error
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (w *Workflow) loadStoreSgaDetails(ctx context.Context, rows []*models.StorePL) error {
	if len(rows) == 0 {
		return nil
	}
	byId := make(map[int]*models.StorePL, len(rows))
	ids := make([]int, 0, len(rows))
	for _, r := range rows {
		byId[r.ID] = r
		ids = append(ids, r.ID)
	}
	return w.Store.WithRetry(ctx, "loadStoreSgaDetails", func(ctx context.Context) error {
		var details []models.StorePLSgaDetail
		if err := w.Store.DB().WithContext(ctx).Where("store_pl_id IN ?", ids).Find(&details).Error; err != nil {
			return err
		}
		for i := range details {
			if parent, ok := byId[details[i].StorePLId]; ok {
				parent.SgaDetail = &details[i]
			}
		}
		return nil
	})
}

// storeRegionMapping loads the segment-to-region assignment.
func (w *Workflow) storeRegionMapping(ctx context.Context) (map[string]string, error) {
	var rows []models.StoreRegionMapping
	err := w.Store.WithRetry(ctx, "storeRegionMapping", func(ctx context.Context) error {
		return w.Store.DB().WithContext(ctx).Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	mapping := make(map[string]string, len(rows))
	for _, r := range rows {
		mapping[r.SegmentId] = r.RegionId
	}
	return mapping, nil
}
