package workflow

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/config"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/engine"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/models"
	"github.com/shopspring/decimal"
)

const kpiCachePrefix = "kpi:"

// KpiSummaryRow is one (segment, KPI) of the store KPI summary: fiscal
// year-to-date actual against target.
type KpiSummaryRow struct {
	SegmentId   string `json:"segment_id"`
	SegmentName string `json:"segment_name,omitempty"`
	KpiId       string `json:"kpi_id"`
	KpiName     string `json:"kpi_name,omitempty"`

	YtdActual decimal.Decimal `json:"ytd_actual"`
	YtdTarget decimal.Decimal `json:"ytd_target"`

	AchievementRate *decimal.Decimal `json:"achievement_rate"`
}

type KpiSummary struct {
	FiscalYear int              `json:"fiscal_year"`
	AsOf       time.Time        `json:"as_of"`
	Rows       []KpiSummaryRow  `json:"rows"`
	Warnings   []engine.Warning `json:"warnings,omitempty"`
}

// GetKpiSummary computes fiscal year-to-date KPI totals per store, actuals
// against targets, up to asOf. Stores outside the caller's scope are omitted.
func (w *Workflow) GetKpiSummary(ctx context.Context, fiscalYear int, asOf time.Time, segmentIds []string) (*KpiSummary, error) {
	scoped := filterScopedSegments(ctx, segmentIds)
	if len(segmentIds) > 0 && len(scoped) == 0 {
		return &KpiSummary{FiscalYear: fiscalYear, AsOf: asOf}, nil
	}

	rng := engine.FiscalYearPeriodRange(fiscalYear)
	rng.To = rng.To.AddDate(0, 1, -1)
	rows, err := engine.FetchFacts[models.KpiValue](ctx, w.Store, rng, engine.FactQuery{
		PeriodColumn: "date",
		EntityColumn: "segment_id",
		EntityIn:     scoped,
	})
	if err != nil {
		config.LogError(w.Logger, "kpiWorkflow.go", "GetKpiSummary", "fetching kpi_values", fiscalYear, err)
		return nil, err
	}

	visible := make([]models.KpiValue, 0, len(rows))
	for _, r := range rows {
		if segmentScopeAllows(ctx, r.SegmentId) {
			visible = append(visible, r)
		}
	}
	summary := ComposeKpiSummary(fiscalYear, asOf, visible)
	w.logWarnings(ctx, "kpiWorkflow.go", "GetKpiSummary", summary.Warnings)
	return summary, nil
}

// ComposeKpiSummary is the pure year-to-date aggregation behind the summary.
func ComposeKpiSummary(fiscalYear int, asOf time.Time, rows []models.KpiValue) *KpiSummary {
	var actuals, targets []engine.Fact
	for i := range rows {
		if rows[i].IsTarget {
			targets = append(targets, &rows[i])
		} else {
			actuals = append(actuals, &rows[i])
		}
	}

	table := models.KpiValue{}.TableName()
	summary := &KpiSummary{FiscalYear: fiscalYear, AsOf: asOf}

	type key struct{ segment, kpi string }
	seen := map[key]bool{}
	for i := range rows {
		seen[key{rows[i].SegmentId, rows[i].KpiId}] = true
	}
	keys := make([]key, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].segment != keys[j].segment {
			return keys[i].segment < keys[j].segment
		}
		return keys[i].kpi < keys[j].kpi
	})

	for _, k := range keys {
		entity := k.segment + ":" + k.kpi
		ytdActual, warns := engine.YearToDate(table, models.MeasureKpiValue, filterEntity(actuals, entity), asOf)
		summary.Warnings = append(summary.Warnings, warns...)
		ytdTarget, warns := engine.YearToDate(table, models.MeasureKpiValue, filterEntity(targets, entity), asOf)
		summary.Warnings = append(summary.Warnings, warns...)

		row := KpiSummaryRow{
			SegmentId: k.segment,
			KpiId:     k.kpi,
			YtdActual: ytdActual,
			YtdTarget: ytdTarget,
		}
		row.AchievementRate = engine.AchievementRate(&ytdActual, &ytdTarget)
		summary.Rows = append(summary.Rows, row)
	}
	return summary
}

func filterEntity(facts []engine.Fact, entity string) []engine.Fact {
	out := make([]engine.Fact, 0, len(facts))
	for _, f := range facts {
		if f.EntityKey() == entity {
			out = append(out, f)
		}
	}
	return out
}

// KpiRankEntry is one store's position in a KPI ranking.
type KpiRankEntry struct {
	Rank        int             `json:"rank"`
	SegmentId   string          `json:"segment_id"`
	SegmentName string          `json:"segment_name,omitempty"`
	YtdValue    decimal.Decimal `json:"ytd_value"`
}

// GetKpiRanking ranks stores by fiscal year-to-date value of one KPI,
// descending. Ties share the value but not the rank; order within a tie is
// the segment id.
func (w *Workflow) GetKpiRanking(ctx context.Context, fiscalYear int, kpiId string, asOf time.Time) ([]KpiRankEntry, error) {
	cacheKey := fmt.Sprintf("%sranking:%d:%s:%s", kpiCachePrefix, fiscalYear, kpiId, asOf.Format("2006-01-02"))
	var cached []KpiRankEntry
	if cacheGet(cacheKey, &cached) {
		return cached, nil
	}

	rng := engine.FiscalYearPeriodRange(fiscalYear)
	rng.To = rng.To.AddDate(0, 1, -1)
	rows, err := engine.FetchFacts[models.KpiValue](ctx, w.Store, rng, engine.FactQuery{
		PeriodColumn: "date",
		IsTarget:     boolPtr(false),
	})
	if err != nil {
		config.LogError(w.Logger, "kpiWorkflow.go", "GetKpiRanking", "fetching kpi_values", kpiId, err)
		return nil, err
	}

	bySegment := map[string][]engine.Fact{}
	for i := range rows {
		if rows[i].KpiId != kpiId {
			continue
		}
		bySegment[rows[i].SegmentId] = append(bySegment[rows[i].SegmentId], &rows[i])
	}

	table := models.KpiValue{}.TableName()
	ranking := make([]KpiRankEntry, 0, len(bySegment))
	for segment, facts := range bySegment {
		ytd, _ := engine.YearToDate(table, models.MeasureKpiValue, facts, asOf)
		ranking = append(ranking, KpiRankEntry{SegmentId: segment, YtdValue: ytd})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if !ranking[i].YtdValue.Equal(ranking[j].YtdValue) {
			return ranking[i].YtdValue.GreaterThan(ranking[j].YtdValue)
		}
		return ranking[i].SegmentId < ranking[j].SegmentId
	})
	for i := range ranking {
		ranking[i].Rank = i + 1
	}

	cacheSet(cacheKey, ranking)
	return ranking, nil
}

// ListKpiDefinitions returns the visible KPI catalog in display order.
func (w *Workflow) ListKpiDefinitions(ctx context.Context) ([]models.KpiDefinition, error) {
	var defs []models.KpiDefinition
	err := w.Store.WithRetry(ctx, "ListKpiDefinitions", func(ctx context.Context) error {
		return w.Store.DB().WithContext(ctx).
			Where("is_visible = ?", true).
			Order("display_order asc, id asc").
			Find(&defs).Error
	})
	if err != nil {
		return nil, err
	}
	return defs, nil
}

// UpsertKpiValue writes one (segment, kpi, date, is_target) value. The KPI
// must exist in the catalog.
func (w *Workflow) UpsertKpiValue(ctx context.Context, row models.KpiValue) (*models.KpiValue, error) {
	if !segmentScopeAllows(ctx, row.SegmentId) {
		return nil, fmt.Errorf("%w: segment %s out of scope", engine.ErrConstraintViolation, row.SegmentId)
	}
	if strings.TrimSpace(row.KpiId) == "" {
		return nil, fmt.Errorf("%w: kpi_id is required", engine.ErrConstraintViolation)
	}
	var def models.KpiDefinition
	err := w.Store.WithRetry(ctx, "UpsertKpiValue", func(ctx context.Context) error {
		return w.Store.DB().WithContext(ctx).Where("id = ?", row.KpiId).First(&def).Error
	})
	if err != nil {
		return nil, err
	}

	row.Date = engine.DayStart(row.Date)
	key := engine.FactKeyDesc{
		Table:    models.KpiValue{}.TableName(),
		EntityId: row.SegmentId + ":" + row.KpiId,
		Period:   row.Date,
		IsTarget: row.IsTarget,
		Where: map[string]any{
			"segment_id": row.SegmentId,
			"kpi_id":     row.KpiId,
			"date":       row.Date,
			"is_target":  row.IsTarget,
		},
	}
	if _, err := engine.UpsertFact(ctx, w.Store, key, &row); err != nil {
		config.LogError(w.Logger, "kpiWorkflow.go", "UpsertKpiValue", "upserting kpi_values", row, err)
		return nil, err
	}
	cacheInvalidate(kpiCachePrefix)
	cacheInvalidate(dashboardCachePrefix)
	return &row, nil
}
