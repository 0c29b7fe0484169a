package models

import (
	"time"
)

// Complaint is an individual complaint record. Unlike the period facts it is
// event-grained; monthly counts are produced by the rollup composer.
type Complaint struct {
	ID           int            `gorm:"primary_key" json:"id"`
	IncidentDate time.Time      `gorm:"not null;index" json:"incident_date"`
	Department   DepartmentType `gorm:"size:32;not null;index" json:"department_type"`
	SegmentId    *string        `gorm:"size:64;index" json:"segment_id"`

	CustomerType CustomerType `gorm:"size:32;not null" json:"customer_type"`
	CustomerName string       `gorm:"size:100" json:"customer_name"`
	ContactInfo  string       `gorm:"size:200" json:"contact_info"`

	ComplaintType    ComplaintType   `gorm:"size:32;not null;index" json:"complaint_type"`
	ComplaintContent string          `gorm:"type:text;not null" json:"complaint_content"`
	Response         string          `gorm:"type:text" json:"response"`
	Status           ComplaintStatus `gorm:"size:32;not null;default:'open';index" json:"status"`

	CreatedBy string    `gorm:"size:64" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Complaint) TableName() string { return "complaints" }
