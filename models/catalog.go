package models

import (
	"time"
)

// Entity catalog: departments, segments (stores), regions and the
// store-to-region mapping. Reference data, read-only at engine runtime.

type Department struct {
	ID           string         `gorm:"primaryKey;size:64" json:"id"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	Code         string         `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Type         DepartmentType `gorm:"size:32;not null;index" json:"type"`
	DisplayOrder int            `gorm:"not null;default:0" json:"display_order"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

type Segment struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	DepartmentId string    `gorm:"size:64;not null;index" json:"department_id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Code         string    `gorm:"size:32;uniqueIndex;not null" json:"code"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	IsActive     *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Region struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	Name         string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Code         string    `gorm:"size:32;not null" json:"code"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// StoreRegionMapping assigns a store segment to a region. One row per segment.
type StoreRegionMapping struct {
	SegmentId string    `gorm:"primaryKey;size:64" json:"segment_id"`
	RegionId  string    `gorm:"size:64;not null;index" json:"region_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// KpiDefinition defines the measure space for store-level KPI values.
type KpiDefinition struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Category     string    `gorm:"size:64;index" json:"category"`
	Unit         string    `gorm:"size:16" json:"unit"`
	IsVisible    *bool     `gorm:"not null;default:true" json:"is_visible"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
