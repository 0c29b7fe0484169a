package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ManufacturingMonthlySummary is a small, query-friendly aggregate table used
// by dashboards.
//
// Grain: (month, is_target).
//
// NOTE: derived data; can be rebuilt from manufacturing_data at any time
// (cmd/rebuild-monthly-summary).
type ManufacturingMonthlySummary struct {
	Month    time.Time `gorm:"primaryKey" json:"month"`
	IsTarget bool      `gorm:"primaryKey" json:"is_target"`

	TotalBatts          int             `gorm:"not null;default:0" json:"total_batts"`
	TotalPieces         int             `gorm:"not null;default:0" json:"total_pieces"`
	TotalWorkers        int             `gorm:"not null;default:0" json:"total_workers"`
	TotalPaidLeaveHours decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"total_paid_leave_hours"`
	WorkingDays         int             `gorm:"not null;default:0" json:"working_days"`

	// AvgProductionPerWorker is zero (not null) when TotalWorkers is zero.
	AvgProductionPerWorker decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"avg_production_per_worker"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ManufacturingMonthlySummary) TableName() string { return "manufacturing_monthly_summary" }
