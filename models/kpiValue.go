package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MeasureKpiValue is the single measure key of kpi_values rows; the KPI
// definition itself disambiguates what the value means.
const MeasureKpiValue = "value"

// KpiValue is the store-level KPI fact.
// Grain: (segment_id, kpi_id, date, is_target).
type KpiValue struct {
	ID        int       `gorm:"primary_key" json:"id"`
	SegmentId string    `gorm:"size:64;not null;uniqueIndex:idx_kv_key,priority:1" json:"segment_id"`
	KpiId     string    `gorm:"size:64;not null;uniqueIndex:idx_kv_key,priority:2" json:"kpi_id"`
	Date      time.Time `gorm:"not null;uniqueIndex:idx_kv_key,priority:3" json:"date"`
	IsTarget  bool      `gorm:"not null;default:false;uniqueIndex:idx_kv_key,priority:4" json:"is_target"`

	Value *decimal.Decimal `gorm:"type:decimal(20,4)" json:"value"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (KpiValue) TableName() string { return "kpi_values" }

// EntityKey joins segment and KPI so cumulative series partition per store
// per measure.
func (k *KpiValue) EntityKey() string      { return k.SegmentId + ":" + k.KpiId }
func (k *KpiValue) PeriodDate() time.Time  { return k.Date }
func (k *KpiValue) TargetFlag() bool       { return k.IsTarget }
func (k *KpiValue) LastUpdated() time.Time { return k.UpdatedAt }

func (k *KpiValue) MeasureValues() map[string]*decimal.Decimal {
	return map[string]*decimal.Decimal{
		MeasureKpiValue: k.Value,
	}
}
