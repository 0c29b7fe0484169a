package models

import (
	"time"
)

// UserProfile exists for the seed command and the access-control collaborator.
// The engine itself never reads this table; role-to-scope mapping happens
// outside and arrives as a segment filter.
type UserProfile struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	Email        string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	DisplayName  string    `gorm:"size:100" json:"display_name"`
	Role         UserRole  `gorm:"size:32;not null;default:'store_staff'" json:"role"`
	SegmentId    *string   `gorm:"size:64;index" json:"segment_id"`
	IsActive     *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserProfile) TableName() string { return "user_profiles" }
