package model

import (
	"time"

	"gorm.io/gorm"
)

// Entitlement grants a user access to a course. ExpiresAt is nil for perpetual
// access (free/lifetime purchases). A past ExpiresAt means access is denied but
// the record is kept as purchase history (soft expiry).
//
// The composite unique index on (user_id, course_id) enforces at most one
// entitlement per user per course; entitlement grants are upserts against it.
type Entitlement struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	UserID      uint           `gorm:"not null;uniqueIndex:idx_entitlement_user_course" json:"user_id"`
	CourseID    uint           `gorm:"not null;uniqueIndex:idx_entitlement_user_course" json:"course_id"`
	PurchasedAt time.Time      `gorm:"not null" json:"purchased_at"`
	ExpiresAt   *time.Time     `gorm:"index" json:"expires_at"`

	// Relationships
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

// TableName specifies the table name for Entitlement
func (Entitlement) TableName() string {
	return "entitlements"
}

// IsExpired reports whether the entitlement has lapsed at the given instant
func (e *Entitlement) IsExpired(now time.Time) bool {
	return e.ExpiresAt != nil && now.After(*e.ExpiresAt)
}
