package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered user in the system. Users are created either at
// signup or implicitly during guest checkout, in which case they are marked
// verified automatically once the payment is confirmed.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	Name         string         `gorm:"not null" json:"name"`
	Role         string         `gorm:"type:varchar(20);default:'student'" json:"role"` // student, admin
	Verified     bool           `gorm:"default:false" json:"verified"`
	Blocked      bool           `gorm:"default:false" json:"blocked"`
	TokenVersion int            `gorm:"default:0" json:"-"` // Increment to invalidate all user tokens

	// Relationships
	Entitlements   []Entitlement       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"entitlements,omitempty"`
	Payments       []PaymentRecord     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Progress       []VideoProgress     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TokenBlacklist []JWTTokenBlacklist `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

// EntitlementFor returns the user's entitlement for a course, or nil if none
// exists. At most one entitlement exists per distinct course.
func (u *User) EntitlementFor(courseID uint) *Entitlement {
	for i := range u.Entitlements {
		if u.Entitlements[i].CourseID == courseID {
			return &u.Entitlements[i]
		}
	}
	return nil
}
