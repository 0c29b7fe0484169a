package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StorePL is the per-store monthly P&L fact.
// Grain: (segment_id, month, is_target).
type StorePL struct {
	ID        int       `gorm:"primary_key" json:"id"`
	SegmentId string    `gorm:"size:64;not null;uniqueIndex:idx_spl_key,priority:1" json:"segment_id"`
	Month     time.Time `gorm:"not null;uniqueIndex:idx_spl_key,priority:2" json:"month"`
	IsTarget  bool      `gorm:"not null;default:false;uniqueIndex:idx_spl_key,priority:3" json:"is_target"`

	Sales           *decimal.Decimal `gorm:"type:decimal(20,4)" json:"sales"`
	CostOfSales     *decimal.Decimal `gorm:"type:decimal(20,4)" json:"cost_of_sales"`
	GrossProfit     *decimal.Decimal `gorm:"type:decimal(20,4)" json:"gross_profit"`
	SgaTotal        *decimal.Decimal `gorm:"type:decimal(20,4)" json:"sga_total"`
	OperatingProfit *decimal.Decimal `gorm:"type:decimal(20,4)" json:"operating_profit"`

	SgaDetail *StorePLSgaDetail `gorm:"foreignKey:StorePLId;constraint:OnDelete:CASCADE" json:"sga_detail,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (StorePL) TableName() string { return "store_pl" }

func (s *StorePL) EntityKey() string      { return s.SegmentId }
func (s *StorePL) PeriodDate() time.Time  { return s.Month }
func (s *StorePL) TargetFlag() bool       { return s.IsTarget }
func (s *StorePL) LastUpdated() time.Time { return s.UpdatedAt }

func (s *StorePL) MeasureValues() map[string]*decimal.Decimal {
	return map[string]*decimal.Decimal{
		MeasureSales:           s.Sales,
		MeasureCostOfSales:     s.CostOfSales,
		MeasureGrossProfit:     s.GrossProfit,
		MeasureSgaTotal:        s.SgaTotal,
		MeasureOperatingProfit: s.OperatingProfit,
	}
}

// StorePLSgaDetail is the store SG&A breakdown owned by one StorePL row.
// Cascade-deleted with its parent; the "others" bucket is derived, never stored.
type StorePLSgaDetail struct {
	ID        int `gorm:"primary_key" json:"id"`
	StorePLId int `gorm:"not null;uniqueIndex" json:"store_pl_id"`

	PersonnelCost *decimal.Decimal `gorm:"type:decimal(20,4)" json:"personnel_cost"`
	LandRent      *decimal.Decimal `gorm:"type:decimal(20,4)" json:"land_rent"`
	LeaseCost     *decimal.Decimal `gorm:"type:decimal(20,4)" json:"lease_cost"`
	Utilities     *decimal.Decimal `gorm:"type:decimal(20,4)" json:"utilities"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (StorePLSgaDetail) TableName() string { return "store_pl_sga_details" }

func (d *StorePLSgaDetail) Fields() map[string]*decimal.Decimal {
	return map[string]*decimal.Decimal{
		"personnel_cost": d.PersonnelCost,
		"land_rent":      d.LandRent,
		"lease_cost":     d.LeaseCost,
		"utilities":      d.Utilities,
	}
}
