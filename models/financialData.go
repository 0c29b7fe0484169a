package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CompanyEntityId is the entity key for company-level fact tables which carry
// no segment of their own (financial_data, e-commerce monthly tables).
const CompanyEntityId = "company"

// Measure keys for financial_data. Rates are never stored; they are recomputed
// from rolled-up totals by the engine.
const (
	MeasureSalesTotal      = "sales_total"
	MeasureSalesStore      = "sales_store"
	MeasureSalesOnline     = "sales_online"
	MeasureCostOfSales     = "cost_of_sales"
	MeasureGrossProfit     = "gross_profit"
	MeasureSgaTotal        = "sg_and_a_total"
	MeasureLaborCost       = "labor_cost"
	MeasureOtherExpenses   = "other_expenses"
	MeasureOperatingProfit = "operating_profit"
	MeasureCfOperating     = "cf_operating"
	MeasureCfInvesting     = "cf_investing"
	MeasureCfFinancing     = "cf_financing"
	MeasureCfFree          = "cf_free"
)

// FinancialData is the company-level monthly P&L fact.
// Grain: (month, is_target). Month is always the first of the month.
type FinancialData struct {
	ID       int       `gorm:"primary_key" json:"id"`
	Month    time.Time `gorm:"not null;uniqueIndex:idx_fin_month_target,priority:1" json:"month"`
	IsTarget bool      `gorm:"not null;default:false;uniqueIndex:idx_fin_month_target,priority:2" json:"is_target"`

	SalesTotal      *decimal.Decimal `gorm:"type:decimal(20,4)" json:"sales_total"`
	SalesStore      *decimal.Decimal `gorm:"type:decimal(20,4)" json:"sales_store"`
	SalesOnline     *decimal.Decimal `gorm:"type:decimal(20,4)" json:"sales_online"`
	CostOfSales     *decimal.Decimal `gorm:"type:decimal(20,4)" json:"cost_of_sales"`
	GrossProfit     *decimal.Decimal `gorm:"type:decimal(20,4)" json:"gross_profit"`
	SgAndATotal     *decimal.Decimal `gorm:"type:decimal(20,4)" json:"sg_and_a_total"`
	LaborCost       *decimal.Decimal `gorm:"type:decimal(20,4)" json:"labor_cost"`
	OtherExpenses   *decimal.Decimal `gorm:"type:decimal(20,4)" json:"other_expenses"`
	OperatingProfit *decimal.Decimal `gorm:"type:decimal(20,4)" json:"operating_profit"`
	CfOperating     *decimal.Decimal `gorm:"type:decimal(20,4)" json:"cf_operating"`
	CfInvesting     *decimal.Decimal `gorm:"type:decimal(20,4)" json:"cf_investing"`
	CfFinancing     *decimal.Decimal `gorm:"type:decimal(20,4)" json:"cf_financing"`
	CfFree          *decimal.Decimal `gorm:"type:decimal(20,4)" json:"cf_free"`

	CostDetail *FinancialCostDetail `gorm:"foreignKey:FinancialDataId;constraint:OnDelete:CASCADE" json:"cost_detail,omitempty"`
	SgaDetail  *FinancialSgaDetail  `gorm:"foreignKey:FinancialDataId;constraint:OnDelete:CASCADE" json:"sga_detail,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (FinancialData) TableName() string { return "financial_data" }

func (f *FinancialData) EntityKey() string      { return CompanyEntityId }
func (f *FinancialData) PeriodDate() time.Time  { return f.Month }
func (f *FinancialData) TargetFlag() bool       { return f.IsTarget }
func (f *FinancialData) LastUpdated() time.Time { return f.UpdatedAt }

func (f *FinancialData) MeasureValues() map[string]*decimal.Decimal {
	return map[string]*decimal.Decimal{
		MeasureSalesTotal:      f.SalesTotal,
		MeasureSalesStore:      f.SalesStore,
		MeasureSalesOnline:     f.SalesOnline,
		MeasureCostOfSales:     f.CostOfSales,
		MeasureGrossProfit:     f.GrossProfit,
		MeasureSgaTotal:        f.SgAndATotal,
		MeasureLaborCost:       f.LaborCost,
		MeasureOtherExpenses:   f.OtherExpenses,
		MeasureOperatingProfit: f.OperatingProfit,
		MeasureCfOperating:     f.CfOperating,
		MeasureCfInvesting:     f.CfInvesting,
		MeasureCfFinancing:     f.CfFinancing,
		MeasureCfFree:          f.CfFree,
	}
}

// FinancialCostDetail is the cost-of-sales breakdown owned by one FinancialData
// row. The "others" bucket is never stored; it is derived as the residual
// against the parent's CostOfSales.
type FinancialCostDetail struct {
	ID              int       `gorm:"primary_key" json:"id"`
	FinancialDataId int       `gorm:"not null;uniqueIndex" json:"financial_data_id"`

	Purchases            *decimal.Decimal `gorm:"type:decimal(20,4)" json:"purchases"`
	RawMaterialPurchases *decimal.Decimal `gorm:"type:decimal(20,4)" json:"raw_material_purchases"`
	LaborCost            *decimal.Decimal `gorm:"type:decimal(20,4)" json:"labor_cost"`
	Consumables          *decimal.Decimal `gorm:"type:decimal(20,4)" json:"consumables"`
	Rent                 *decimal.Decimal `gorm:"type:decimal(20,4)" json:"rent"`
	Repairs              *decimal.Decimal `gorm:"type:decimal(20,4)" json:"repairs"`
	Utilities            *decimal.Decimal `gorm:"type:decimal(20,4)" json:"utilities"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (FinancialCostDetail) TableName() string { return "financial_cost_details" }

// Fields returns the itemized breakdown in display order, for the generic
// detail-residual computation.
func (d *FinancialCostDetail) Fields() map[string]*decimal.Decimal {
	return map[string]*decimal.Decimal{
		"purchases":              d.Purchases,
		"raw_material_purchases": d.RawMaterialPurchases,
		"labor_cost":             d.LaborCost,
		"consumables":            d.Consumables,
		"rent":                   d.Rent,
		"repairs":                d.Repairs,
		"utilities":              d.Utilities,
	}
}

// FinancialSgaDetail is the SG&A breakdown owned by one FinancialData row.
type FinancialSgaDetail struct {
	ID              int       `gorm:"primary_key" json:"id"`
	FinancialDataId int       `gorm:"not null;uniqueIndex" json:"financial_data_id"`

	ExecutiveCompensation *decimal.Decimal `gorm:"type:decimal(20,4)" json:"executive_compensation"`
	PersonnelCost         *decimal.Decimal `gorm:"type:decimal(20,4)" json:"personnel_cost"`
	DeliveryCost          *decimal.Decimal `gorm:"type:decimal(20,4)" json:"delivery_cost"`
	PackagingCost         *decimal.Decimal `gorm:"type:decimal(20,4)" json:"packaging_cost"`
	PaymentFees           *decimal.Decimal `gorm:"type:decimal(20,4)" json:"payment_fees"`
	FreightCost           *decimal.Decimal `gorm:"type:decimal(20,4)" json:"freight_cost"`
	SalesCommission       *decimal.Decimal `gorm:"type:decimal(20,4)" json:"sales_commission"`
	AdvertisingCost       *decimal.Decimal `gorm:"type:decimal(20,4)" json:"advertising_cost"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (FinancialSgaDetail) TableName() string { return "financial_sga_details" }

func (d *FinancialSgaDetail) Fields() map[string]*decimal.Decimal {
	return map[string]*decimal.Decimal{
		"executive_compensation": d.ExecutiveCompensation,
		"personnel_cost":         d.PersonnelCost,
		"delivery_cost":          d.DeliveryCost,
		"packaging_cost":         d.PackagingCost,
		"payment_fees":           d.PaymentFees,
		"freight_cost":           d.FreightCost,
		"sales_commission":       d.SalesCommission,
		"advertising_cost":       d.AdvertisingCost,
	}
}
