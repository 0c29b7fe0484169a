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

const dashboardCachePrefix = "dashboard:"

// CompanyDashboard is the executive landing page: headline P&L with year on
// year comparison, the department summaries and open complaint volume.
type CompanyDashboard struct {
	FiscalYear int       `json:"fiscal_year"`
	AsOfMonth  time.Time `json:"as_of_month"`

	Sales           MonthlyValue     `json:"sales"`
	GrossProfit     MonthlyValue     `json:"gross_profit"`
	OperatingProfit MonthlyValue     `json:"operating_profit"`
	SalesYoY        *decimal.Decimal `json:"sales_yoy"`

	YtdSales           decimal.Decimal `json:"ytd_sales"`
	YtdOperatingProfit decimal.Decimal `json:"ytd_operating_profit"`

	Manufacturing  *ManufacturingTotals `json:"manufacturing,omitempty"`
	OpenComplaints int64                `json:"open_complaints"`

	Warnings []engine.Warning `json:"warnings,omitempty"`
}

// GetCompanyDashboard assembles the company overview for one month. The
// response is cached; every fact upsert invalidates the dashboard prefix.
func (w *Workflow) GetCompanyDashboard(ctx context.Context, asOfMonth time.Time) (*CompanyDashboard, error) {
	asOfMonth = engine.MonthStart(asOfMonth)
	cacheKey := fmt.Sprintf("%scompany:%s", dashboardCachePrefix, asOfMonth.Format("2006-01"))
	var cached CompanyDashboard
	if cacheGet(cacheKey, &cached) {
		return &cached, nil
	}

	fiscalYear := engine.FiscalYear(asOfMonth)
	dash := &CompanyDashboard{FiscalYear: fiscalYear, AsOfMonth: asOfMonth}

	// One extra year back for the YoY comparison.
	rng := engine.FiscalYearPeriodRange(fiscalYear)
	rng.From = rng.From.AddDate(-1, 0, 0)
	fetched, err := engine.FetchFacts[models.FinancialData](ctx, w.Store, rng, engine.FactQuery{})
	if err != nil {
		config.LogError(w.Logger, "dashboardWorkflow.go", "GetCompanyDashboard", "fetching financial_data", asOfMonth, err)
		return nil, err
	}

	var actuals, targets []engine.Fact
	var prevYearSales *decimal.Decimal
	prevMonth := engine.PreviousYearMonth(asOfMonth)
	for i := range fetched {
		r := &fetched[i]
		if r.IsTarget {
			targets = append(targets, r)
		} else {
			actuals = append(actuals, r)
			if r.Month.Equal(prevMonth) {
				prevYearSales = r.SalesTotal
			}
		}
	}

	rec := engine.Reconcile(models.FinancialData{}.TableName(), actuals, targets)
	dash.Warnings = rec.Warnings
	for _, pair := range rec.Pairs {
		if !pair.Period.Equal(asOfMonth) {
			continue
		}
		dash.Sales = headlineValue(pair, models.MeasureSalesTotal)
		dash.GrossProfit = headlineValue(pair, models.MeasureGrossProfit)
		dash.OperatingProfit = headlineValue(pair, models.MeasureOperatingProfit)
	}
	dash.SalesYoY = engine.YoYRate(dash.Sales.Actual, prevYearSales)

	table := models.FinancialData{}.TableName()
	currentYear := make([]engine.Fact, 0, len(actuals))
	for _, f := range actuals {
		if engine.FiscalYear(f.PeriodDate()) == fiscalYear {
			currentYear = append(currentYear, f)
		}
	}
	ytdSales, warns := engine.YearToDate(table, models.MeasureSalesTotal, currentYear, asOfMonth)
	dash.Warnings = append(dash.Warnings, warns...)
	ytdOp, warns := engine.YearToDate(table, models.MeasureOperatingProfit, currentYear, asOfMonth)
	dash.Warnings = append(dash.Warnings, warns...)
	dash.YtdSales = ytdSales
	dash.YtdOperatingProfit = ytdOp

	var summary models.ManufacturingMonthlySummary
	err = w.Store.WithRetry(ctx, "GetCompanyDashboard", func(ctx context.Context) error {
		return w.Store.DB().WithContext(ctx).
			Where("month = ? AND is_target = ?", asOfMonth, false).
			First(&summary).Error
	})
	switch err {
	case nil:
		dash.Manufacturing = &ManufacturingTotals{
			TotalBatts:             summary.TotalBatts,
			TotalPieces:            summary.TotalPieces,
			TotalWorkers:           summary.TotalWorkers,
			TotalPaidLeaveHours:    summary.TotalPaidLeaveHours,
			WorkingDays:            summary.WorkingDays,
			AvgProductionPerWorker: summary.AvgProductionPerWorker,
		}
	case engine.ErrNotFound:
		// No production recorded for the month.
	default:
		config.LogError(w.Logger, "dashboardWorkflow.go", "GetCompanyDashboard", "reading manufacturing summary", asOfMonth, err)
		return nil, err
	}

	err = w.Store.WithRetry(ctx, "GetCompanyDashboard", func(ctx context.Context) error {
		return w.Store.DB().WithContext(ctx).Model(&models.Complaint{}).
			Where("status IN ?", []models.ComplaintStatus{models.ComplaintStatusOpen, models.ComplaintStatusInProgress}).
			Count(&dash.OpenComplaints).Error
	})
	if err != nil {
		config.LogError(w.Logger, "dashboardWorkflow.go", "GetCompanyDashboard", "counting open complaints", asOfMonth, err)
		return nil, err
	}

	w.logWarnings(ctx, "dashboardWorkflow.go", "GetCompanyDashboard", dash.Warnings)
	cacheSet(cacheKey, dash)
	return dash, nil
}

func headlineValue(pair engine.ReconciledPair, measure string) MonthlyValue {
	out := MonthlyValue{Month: pair.Period}
	if pair.Actual != nil {
		out.Actual = pair.Actual.MeasureValues()[measure]
	}
	if pair.Target != nil {
		out.Target = pair.Target.MeasureValues()[measure]
	}
	if v, ok := pair.Variance[measure]; ok {
		variance := v
		out.Variance = &variance
	}
	out.AchievementRate = engine.AchievementRate(out.Actual, out.Target)
	return out
}
