package workflow

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/config"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/engine"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/models"
	"github.com/shopspring/decimal"
)

const ecommerceCachePrefix = "ecommerce:"

// ChannelMonth is one (channel, month) cell of the channel summary. UnitPrice
// is nil when buyers are unknown or zero; a zero unit price would be a
// fabricated number.
type ChannelMonth struct {
	Channel  models.Channel   `json:"channel"`
	Month    time.Time        `json:"month"`
	Sales    *decimal.Decimal `json:"sales"`
	Buyers   *int             `json:"buyers"`
	Target   *decimal.Decimal `json:"target_sales"`
	Variance *decimal.Decimal `json:"variance"`

	UnitPrice       *decimal.Decimal `json:"unit_price"`
	AchievementRate *decimal.Decimal `json:"achievement_rate"`
}

type ChannelSummary struct {
	FiscalYear int              `json:"fiscal_year"`
	Cells      []ChannelMonth   `json:"cells"`
	Warnings   []engine.Warning `json:"warnings,omitempty"`
}

// GetEcommerceChannelSummary reconciles per-channel monthly sales against
// targets for one fiscal year. Channels appear in their fixed display order.
func (w *Workflow) GetEcommerceChannelSummary(ctx context.Context, fiscalYear int) (*ChannelSummary, error) {
	cacheKey := fmt.Sprintf("%schannels:%d", ecommerceCachePrefix, fiscalYear)
	var cached ChannelSummary
	if cacheGet(cacheKey, &cached) {
		return &cached, nil
	}

	rng := engine.FiscalYearPeriodRange(fiscalYear)
	rows, err := engine.FetchFacts[models.EcommerceChannelSales](ctx, w.Store, rng, engine.FactQuery{})
	if err != nil {
		config.LogError(w.Logger, "ecommerceWorkflow.go", "GetEcommerceChannelSummary", "fetching ecommerce_channel_sales", fiscalYear, err)
		return nil, err
	}

	summary := ComposeChannelSummary(fiscalYear, rows)
	w.logWarnings(ctx, "ecommerceWorkflow.go", "GetEcommerceChannelSummary", summary.Warnings)
	cacheSet(cacheKey, summary)
	return summary, nil
}

// ComposeChannelSummary is the pure join of channel actuals and targets.
func ComposeChannelSummary(fiscalYear int, rows []models.EcommerceChannelSales) *ChannelSummary {
	var actuals, targets []engine.Fact
	for i := range rows {
		if rows[i].IsTarget {
			targets = append(targets, &rows[i])
		} else {
			actuals = append(actuals, &rows[i])
		}
	}

	rec := engine.Reconcile(models.EcommerceChannelSales{}.TableName(), actuals, targets)

	channelOrder := make(map[models.Channel]int, len(models.AllChannels))
	for i, c := range models.AllChannels {
		channelOrder[c] = i
	}

	summary := &ChannelSummary{FiscalYear: fiscalYear, Warnings: rec.Warnings}
	for _, pair := range rec.Pairs {
		cell := ChannelMonth{
			Channel: models.Channel(pair.EntityId),
			Month:   pair.Period,
		}
		if pair.Actual != nil {
			a := pair.Actual.(*models.EcommerceChannelSales)
			cell.Sales = a.Sales
			cell.Buyers = a.Buyers
			cell.UnitPrice = engine.UnitPrice(a.Sales, a.Buyers)
		}
		if pair.Target != nil {
			cell.Target = pair.Target.(*models.EcommerceChannelSales).Sales
		}
		if v, ok := pair.Variance[models.MeasureSales]; ok {
			variance := v
			cell.Variance = &variance
		}
		cell.AchievementRate = engine.AchievementRate(cell.Sales, cell.Target)
		summary.Cells = append(summary.Cells, cell)
	}

	sort.SliceStable(summary.Cells, func(i, j int) bool {
		if !summary.Cells[i].Month.Equal(summary.Cells[j].Month) {
			return summary.Cells[i].Month.Before(summary.Cells[j].Month)
		}
		return channelOrder[summary.Cells[i].Channel] < channelOrder[summary.Cells[j].Channel]
	})
	return summary
}

// ProductMonth is one (product, month) cell of the product sales matrix.
type ProductMonth struct {
	ProductName     string           `json:"product_name"`
	ProductCategory string           `json:"product_category"`
	Month           time.Time        `json:"month"`
	Sales           *decimal.Decimal `json:"sales"`
	Quantity        *int             `json:"quantity"`
}

type ProductMatrix struct {
	FiscalYear int            `json:"fiscal_year"`
	Cells      []ProductMonth `json:"cells"`

	// TotalsByMonth sums product sales per month, nulls as zero.
	TotalsByMonth map[string]decimal.Decimal `json:"totals_by_month"`
}

// GetEcommerceProductMatrix returns the product-by-month sales matrix for one
// fiscal year, actuals only.
func (w *Workflow) GetEcommerceProductMatrix(ctx context.Context, fiscalYear int) (*ProductMatrix, error) {
	cacheKey := fmt.Sprintf("%sproducts:%d", ecommerceCachePrefix, fiscalYear)
	var cached ProductMatrix
	if cacheGet(cacheKey, &cached) {
		return &cached, nil
	}

	rng := engine.FiscalYearPeriodRange(fiscalYear)
	rows, err := engine.FetchFacts[models.EcommerceProductSales](ctx, w.Store, rng, engine.FactQuery{
		IsTarget: boolPtr(false),
	})
	if err != nil {
		config.LogError(w.Logger, "ecommerceWorkflow.go", "GetEcommerceProductMatrix", "fetching ecommerce_product_sales", fiscalYear, err)
		return nil, err
	}

	matrix := &ProductMatrix{FiscalYear: fiscalYear, TotalsByMonth: map[string]decimal.Decimal{}}
	facts := make([]engine.Fact, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		facts = append(facts, r)
		matrix.Cells = append(matrix.Cells, ProductMonth{
			ProductName:     r.ProductName,
			ProductCategory: r.ProductCategory,
			Month:           r.Month,
			Sales:           r.Sales,
			Quantity:        r.Quantity,
		})
	}
	for _, row := range engine.Rollup(facts, engine.GroupByMonth) {
		matrix.TotalsByMonth[row.Key.Month.Format("2006-01")] = row.Total(models.MeasureSales)
	}

	cacheSet(cacheKey, matrix)
	return matrix, nil
}

// CustomerStatsMonth carries the monthly customer composition with the repeat
// ratio recomputed from the stored counts.
type CustomerStatsMonth struct {
	Month           time.Time        `json:"month"`
	NewCustomers    *int             `json:"new_customers"`
	RepeatCustomers *int             `json:"repeat_customers"`
	TotalCustomers  *int             `json:"total_customers"`
	RepeatRate      *decimal.Decimal `json:"repeat_rate"`
}

// GetEcommerceCustomerStats returns the monthly customer composition series.
func (w *Workflow) GetEcommerceCustomerStats(ctx context.Context, fiscalYear int) ([]CustomerStatsMonth, error) {
	rng := engine.FiscalYearPeriodRange(fiscalYear)
	rows, err := engine.FetchFacts[models.EcommerceCustomerStats](ctx, w.Store, rng, engine.FactQuery{
		IsTarget: boolPtr(false),
	})
	if err != nil {
		config.LogError(w.Logger, "ecommerceWorkflow.go", "GetEcommerceCustomerStats", "fetching ecommerce_customer_stats", fiscalYear, err)
		return nil, err
	}

	out := make([]CustomerStatsMonth, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		m := CustomerStatsMonth{
			Month:           r.Month,
			NewCustomers:    r.NewCustomers,
			RepeatCustomers: r.RepeatCustomers,
			TotalCustomers:  r.TotalCustomers,
		}
		if r.RepeatCustomers != nil && r.TotalCustomers != nil {
			repeat := decimal.NewFromInt(int64(*r.RepeatCustomers))
			total := decimal.NewFromInt(int64(*r.TotalCustomers))
			m.RepeatRate = engine.AchievementRate(&repeat, &total)
		}
		out = append(out, m)
	}
	return out, nil
}

// GetEcommerceWebsiteStats returns the monthly traffic series.
func (w *Workflow) GetEcommerceWebsiteStats(ctx context.Context, fiscalYear int) ([]models.EcommerceWebsiteStats, error) {
	rng := engine.FiscalYearPeriodRange(fiscalYear)
	rows, err := engine.FetchFacts[models.EcommerceWebsiteStats](ctx, w.Store, rng, engine.FactQuery{
		IsTarget: boolPtr(false),
	})
	if err != nil {
		config.LogError(w.Logger, "ecommerceWorkflow.go", "GetEcommerceWebsiteStats", "fetching ecommerce_website_stats", fiscalYear, err)
		return nil, err
	}
	return rows, nil
}

// UpsertChannelSales writes one (month, channel, is_target) sales row.
func (w *Workflow) UpsertChannelSales(ctx context.Context, row models.EcommerceChannelSales) (*models.EcommerceChannelSales, error) {
	if err := models.ValidChannel(row.Channel); err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrConstraintViolation, err)
	}
	row.Month = engine.MonthStart(row.Month)
	key := engine.FactKeyDesc{
		Table:        models.EcommerceChannelSales{}.TableName(),
		EntityId:     string(row.Channel),
		Period:       row.Month,
		IsTarget:     row.IsTarget,
		Where:        map[string]any{"month": row.Month, "channel": row.Channel, "is_target": row.IsTarget},
		MonthAligned: true,
	}
	if _, err := engine.UpsertFact(ctx, w.Store, key, &row); err != nil {
		config.LogError(w.Logger, "ecommerceWorkflow.go", "UpsertChannelSales", "upserting ecommerce_channel_sales", row, err)
		return nil, err
	}
	cacheInvalidate(ecommerceCachePrefix)
	cacheInvalidate(dashboardCachePrefix)
	return &row, nil
}

// UpsertProductSales writes one (month, product, is_target) sales row.
func (w *Workflow) UpsertProductSales(ctx context.Context, row models.EcommerceProductSales) (*models.EcommerceProductSales, error) {
	row.Month = engine.MonthStart(row.Month)
	key := engine.FactKeyDesc{
		Table:        models.EcommerceProductSales{}.TableName(),
		EntityId:     row.ProductName,
		Period:       row.Month,
		IsTarget:     row.IsTarget,
		Where:        map[string]any{"month": row.Month, "product_name": row.ProductName, "is_target": row.IsTarget},
		MonthAligned: true,
	}
	if _, err := engine.UpsertFact(ctx, w.Store, key, &row); err != nil {
		config.LogError(w.Logger, "ecommerceWorkflow.go", "UpsertProductSales", "upserting ecommerce_product_sales", row, err)
		return nil, err
	}
	cacheInvalidate(ecommerceCachePrefix)
	return &row, nil
}

// UpsertCustomerStats writes one monthly customer composition row.
func (w *Workflow) UpsertCustomerStats(ctx context.Context, row models.EcommerceCustomerStats) (*models.EcommerceCustomerStats, error) {
	row.Month = engine.MonthStart(row.Month)
	key := engine.FactKeyDesc{
		Table:        models.EcommerceCustomerStats{}.TableName(),
		EntityId:     models.CompanyEntityId,
		Period:       row.Month,
		IsTarget:     row.IsTarget,
		Where:        map[string]any{"month": row.Month, "is_target": row.IsTarget},
		MonthAligned: true,
	}
	if _, err := engine.UpsertFact(ctx, w.Store, key, &row); err != nil {
		config.LogError(w.Logger, "ecommerceWorkflow.go", "UpsertCustomerStats", "upserting ecommerce_customer_stats", row, err)
		return nil, err
	}
	cacheInvalidate(ecommerceCachePrefix)
	return &row, nil
}

// UpsertWebsiteStats writes one monthly traffic row.
func (w *Workflow) UpsertWebsiteStats(ctx context.Context, row models.EcommerceWebsiteStats) (*models.EcommerceWebsiteStats, error) {
	row.Month = engine.MonthStart(row.Month)
	key := engine.FactKeyDesc{
		Table:        models.EcommerceWebsiteStats{}.TableName(),
		EntityId:     models.CompanyEntityId,
		Period:       row.Month,
		IsTarget:     row.IsTarget,
		Where:        map[string]any{"month": row.Month, "is_target": row.IsTarget},
		MonthAligned: true,
	}
	if _, err := engine.UpsertFact(ctx, w.Store, key, &row); err != nil {
		config.LogError(w.Logger, "ecommerceWorkflow.go", "UpsertWebsiteStats", "upserting ecommerce_website_stats", row, err)
		return nil, err
	}
	cacheInvalidate(ecommerceCachePrefix)
	return &row, nil
}
