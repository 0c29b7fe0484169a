package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MeasureProductionBatts  = "production_batts"
	MeasureProductionPieces = "production_pieces"
	MeasureWorkersCount     = "workers_count"
	MeasurePaidLeaveHours   = "paid_leave_hours"
)

// PiecesPerBatt converts batts to pieces for the manufacturing department.
const PiecesPerBatt = 60

// ManufacturingData is the daily production fact for the manufacturing
// department. Grain: (date, is_target); date is a calendar day, not a month.
type ManufacturingData struct {
	ID       int       `gorm:"primary_key" json:"id"`
	Date     time.Time `gorm:"not null;uniqueIndex:idx_mfg_date_target,priority:1" json:"date"`
	IsTarget bool      `gorm:"not null;default:false;uniqueIndex:idx_mfg_date_target,priority:2" json:"is_target"`

	ProductionBatts  *int             `json:"production_batts"`
	ProductionPieces *int             `json:"production_pieces"`
	WorkersCount     *int             `json:"workers_count"`
	PaidLeaveHours   *decimal.Decimal `gorm:"type:decimal(10,2)" json:"paid_leave_hours"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ManufacturingData) TableName() string { return "manufacturing_data" }

func (m *ManufacturingData) EntityKey() string      { return "manufacturing" }
func (m *ManufacturingData) PeriodDate() time.Time  { return m.Date }
func (m *ManufacturingData) TargetFlag() bool       { return m.IsTarget }
func (m *ManufacturingData) LastUpdated() time.Time { return m.UpdatedAt }

func (m *ManufacturingData) MeasureValues() map[string]*decimal.Decimal {
	return map[string]*decimal.Decimal{
		MeasureProductionBatts:  decimalFromInt(m.ProductionBatts),
		MeasureProductionPieces: decimalFromInt(m.ProductionPieces),
		MeasureWorkersCount:     decimalFromInt(m.WorkersCount),
		MeasurePaidLeaveHours:   m.PaidLeaveHours,
	}
}

func decimalFromInt(v *int) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromInt(int64(*v))
	return &d
}
