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
	"gorm.io/gorm"
)

const manufacturingCachePrefix = "manufacturing:"

// ManufacturingTotals is one month of production figures rolled up from the
// daily facts. AvgProductionPerWorker is computed from the totals and is zero
// when no workers were recorded.
type ManufacturingTotals struct {
	TotalBatts             int             `json:"total_batts"`
	TotalPieces            int             `json:"total_pieces"`
	TotalWorkers           int             `json:"total_workers"`
	TotalPaidLeaveHours    decimal.Decimal `json:"total_paid_leave_hours"`
	WorkingDays            int             `json:"working_days"`
	AvgProductionPerWorker decimal.Decimal `json:"avg_production_per_worker"`
}

type ManufacturingMonth struct {
	Month  time.Time            `json:"month"`
	Actual *ManufacturingTotals `json:"actual,omitempty"`
	Target *ManufacturingTotals `json:"target,omitempty"`

	// BattsAchievementRate is nil when the target total is missing or zero.
	BattsAchievementRate *decimal.Decimal `json:"batts_achievement_rate"`
}

type ManufacturingMonthlyReport struct {
	FiscalYear int                  `json:"fiscal_year"`
	Months     []ManufacturingMonth `json:"months"`
}

// GetManufacturingMonthly rolls the daily production facts of one fiscal year
// up to calendar months, actuals against targets.
func (w *Workflow) GetManufacturingMonthly(ctx context.Context, fiscalYear int) (*ManufacturingMonthlyReport, error) {
	cacheKey := fmt.Sprintf("%smonthly:%d", manufacturingCachePrefix, fiscalYear)
	var cached ManufacturingMonthlyReport
	if cacheGet(cacheKey, &cached) {
		return &cached, nil
	}

	rng := engine.FiscalYearPeriodRange(fiscalYear)
	// Daily grain: extend the upper bound to the end of the last fiscal month.
	rng.To = rng.To.AddDate(0, 1, -1)
	rows, err := engine.FetchFacts[models.ManufacturingData](ctx, w.Store, rng, engine.FactQuery{PeriodColumn: "date"})
	if err != nil {
		config.LogError(w.Logger, "manufacturingWorkflow.go", "GetManufacturingMonthly", "fetching manufacturing_data", fiscalYear, err)
		return nil, err
	}

	report := ComposeManufacturingMonthly(fiscalYear, rows)
	cacheSet(cacheKey, report)
	return report, nil
}

// ComposeManufacturingMonthly is the pure aggregation behind the monthly
// report: per-flag monthly rollups with the per-worker average recomputed
// from monthly totals, not averaged over days.
func ComposeManufacturingMonthly(fiscalYear int, rows []models.ManufacturingData) *ManufacturingMonthlyReport {
	var actuals, targets []engine.Fact
	for i := range rows {
		if rows[i].IsTarget {
			targets = append(targets, &rows[i])
		} else {
			actuals = append(actuals, &rows[i])
		}
	}

	actualByMonth := rollupManufacturing(actuals)
	targetByMonth := rollupManufacturing(targets)

	months := engine.MonthRange(engine.FiscalYearPeriodRange(fiscalYear))
	report := &ManufacturingMonthlyReport{FiscalYear: fiscalYear}
	for _, m := range months {
		key := m.Format("2006-01")
		actual, hasActual := actualByMonth[key]
		target, hasTarget := targetByMonth[key]
		if !hasActual && !hasTarget {
			continue
		}
		month := ManufacturingMonth{Month: m}
		if hasActual {
			month.Actual = actual
		}
		if hasTarget {
			month.Target = target
		}
		if hasActual && hasTarget {
			a := decimal.NewFromInt(int64(actual.TotalBatts))
			t := decimal.NewFromInt(int64(target.TotalBatts))
			month.BattsAchievementRate = engine.AchievementRate(&a, &t)
		}
		report.Months = append(report.Months, month)
	}
	return report
}

func rollupManufacturing(facts []engine.Fact) map[string]*ManufacturingTotals {
	out := make(map[string]*ManufacturingTotals)
	for _, row := range engine.Rollup(facts, engine.GroupByMonth) {
		totals := &ManufacturingTotals{
			TotalBatts:          row.TotalInt(models.MeasureProductionBatts),
			TotalPieces:         row.TotalInt(models.MeasureProductionPieces),
			TotalWorkers:        row.TotalInt(models.MeasureWorkersCount),
			TotalPaidLeaveHours: row.Total(models.MeasurePaidLeaveHours),
			WorkingDays:         row.WorkingDays,
		}
		totals.AvgProductionPerWorker = engine.ProductionPerWorker(totals.TotalBatts, totals.TotalWorkers)
		out[row.Key.Month.Format("2006-01")] = totals
	}
	return out
}

// UpsertManufacturingDaily writes one daily production row and refreshes the
// persisted monthly summary for the affected month.
func (w *Workflow) UpsertManufacturingDaily(ctx context.Context, row models.ManufacturingData) (*models.ManufacturingData, error) {
	row.Date = engine.DayStart(row.Date)
	if row.ProductionBatts != nil && row.ProductionPieces == nil {
		pieces := *row.ProductionBatts * models.PiecesPerBatt
		row.ProductionPieces = &pieces
	}

	key := engine.FactKeyDesc{
		Table:    models.ManufacturingData{}.TableName(),
		EntityId: "manufacturing",
		Period:   row.Date,
		IsTarget: row.IsTarget,
		Where:    map[string]any{"date": row.Date, "is_target": row.IsTarget},
	}
	if _, err := engine.UpsertFact(ctx, w.Store, key, &row); err != nil {
		config.LogError(w.Logger, "manufacturingWorkflow.go", "UpsertManufacturingDaily", "upserting manufacturing_data", row, err)
		return nil, err
	}

	if err := w.refreshMonthlySummary(ctx, engine.MonthStart(row.Date), row.IsTarget); err != nil {
		config.LogError(w.Logger, "manufacturingWorkflow.go", "UpsertManufacturingDaily", "refreshing monthly summary", row.Date, err)
		return nil, err
	}

	cacheInvalidate(manufacturingCachePrefix)
	cacheInvalidate(dashboardCachePrefix)
	return &row, nil
}

// DeleteManufacturingDaily removes one daily row and refreshes the summary.
func (w *Workflow) DeleteManufacturingDaily(ctx context.Context, date time.Time, isTarget bool) error {
	d := engine.DayStart(date)
	key := engine.FactKeyDesc{
		Table:    models.ManufacturingData{}.TableName(),
		EntityId: "manufacturing",
		Period:   d,
		IsTarget: isTarget,
		Where:    map[string]any{"date": d, "is_target": isTarget},
	}
	if err := engine.DeleteFact[models.ManufacturingData](ctx, w.Store, key); err != nil {
		return err
	}
	if err := w.refreshMonthlySummary(ctx, engine.MonthStart(d), isTarget); err != nil {
		return err
	}
	cacheInvalidate(manufacturingCachePrefix)
	cacheInvalidate(dashboardCachePrefix)
	return nil
}

// refreshMonthlySummary recomputes one (month, is_target) summary row from the
// daily facts. The summary is derived data and can always be rebuilt.
func (w *Workflow) refreshMonthlySummary(ctx context.Context, month time.Time, isTarget bool) error {
	rng := engine.PeriodRange{From: month, To: month.AddDate(0, 1, -1)}
	rows, err := engine.FetchFacts[models.ManufacturingData](ctx, w.Store, rng, engine.FactQuery{
		PeriodColumn: "date",
		IsTarget:     &isTarget,
	})
	if err != nil {
		return err
	}

	facts := make([]engine.Fact, 0, len(rows))
	for i := range rows {
		facts = append(facts, &rows[i])
	}
	summary := models.ManufacturingMonthlySummary{Month: month, IsTarget: isTarget}
	for _, row := range engine.Rollup(facts, engine.GroupByMonth) {
		summary.TotalBatts = row.TotalInt(models.MeasureProductionBatts)
		summary.TotalPieces = row.TotalInt(models.MeasureProductionPieces)
		summary.TotalWorkers = row.TotalInt(models.MeasureWorkersCount)
		summary.TotalPaidLeaveHours = row.Total(models.MeasurePaidLeaveHours)
		summary.WorkingDays = row.WorkingDays
	}
	summary.AvgProductionPerWorker = engine.ProductionPerWorker(summary.TotalBatts, summary.TotalWorkers)

	return w.Store.WithRetry(ctx, "refreshMonthlySummary", func(ctx context.Context) error {
		db := w.Store.DB().WithContext(ctx)
		var existing models.ManufacturingMonthlySummary
		err := db.Where("month = ? AND is_target = ?", month, isTarget).First(&existing).Error
		switch {
		case err == nil:
			return db.Model(&existing).Select("*").Omit("month", "is_target", "created_at").Updates(&summary).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			return db.Create(&summary).Error
		default:
			return err
		}
	})
}

// RebuildMonthlySummaries recomputes every summary row covered by the daily
// facts. Used by cmd/rebuild-monthly-summary after bulk imports.
func (w *Workflow) RebuildMonthlySummaries(ctx context.Context) (int, error) {
	var keys []struct {
		Month    time.Time
		IsTarget bool
	}
	err := w.Store.WithRetry(ctx, "RebuildMonthlySummaries", func(ctx context.Context) error {
		return w.Store.DB().WithContext(ctx).
			Model(&models.ManufacturingData{}).
			Select("DATE_FORMAT(date, '%Y-%m-01') AS month, is_target").
			Group("DATE_FORMAT(date, '%Y-%m-01'), is_target").
			Scan(&keys).Error
	})
	if err != nil {
		return 0, err
	}

	for _, k := range keys {
		if err := w.refreshMonthlySummary(ctx, engine.MonthStart(k.Month), k.IsTarget); err != nil {
			return 0, err
		}
	}
	cacheInvalidate(manufacturingCachePrefix)
	return len(keys), nil
}
