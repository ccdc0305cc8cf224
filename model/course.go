package model

import (
	"time"

	"gorm.io/gorm"
)

// Access types determine how long a purchase grants access to a course.
const (
	AccessFree     = "free"
	AccessLifetime = "lifetime"
	AccessMonthly  = "monthly"
	AccessYearly   = "yearly"
)

// Supported display currencies. The gateway receives the ISO code via
// razorpay.CurrencyCode.
const (
	CurrencyDollar = "dollar"
	CurrencyRupee  = "rupee"
)

// Course represents a sellable course in the catalog
type Course struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Title        string         `gorm:"not null" json:"title"`
	Slug         string         `gorm:"uniqueIndex;not null" json:"slug"`
	Description  string         `gorm:"type:text" json:"description"`
	AccessType   string         `gorm:"type:varchar(20);not null;default:'lifetime'" json:"access_type"` // free, lifetime, monthly, yearly
	Price        int64          `gorm:"not null;default:0" json:"price"`                                 // minor currency units
	Currency     string         `gorm:"type:varchar(10);not null;default:'rupee'" json:"currency"`       // dollar, rupee
	ThumbnailURL string         `gorm:"type:varchar(500)" json:"thumbnail_url"`
	Published    bool           `gorm:"default:false;index" json:"published"`

	// Relationships
	Lessons      []Lesson        `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
	Entitlements []Entitlement   `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Payments     []PaymentRecord `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Course
func (Course) TableName() string {
	return "courses"
}

// IsFree reports whether the course is outside the payment flow entirely
func (c *Course) IsFree() bool {
	return c.AccessType == AccessFree
}

// ValidAccessType reports whether t is one of the known access types
func ValidAccessType(t string) bool {
	switch t {
	case AccessFree, AccessLifetime, AccessMonthly, AccessYearly:
		return true
	}
	return false
}

// ValidCurrency reports whether cur is a supported currency
func ValidCurrency(cur string) bool {
	return cur == CurrencyDollar || cur == CurrencyRupee
}

// Lesson represents a single video lesson within a course
type Lesson struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	CourseID    uint           `gorm:"not null;index" json:"course_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	VideoKey    string         `gorm:"type:varchar(500)" json:"-"` // object storage key, resolved per request
	DurationSec int            `gorm:"default:0" json:"duration_sec"`
	Position    int            `gorm:"not null;default:0" json:"position"`
	Preview     bool           `gorm:"default:false" json:"preview"` // playable without entitlement

	// Relationships
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Lesson
func (Lesson) TableName() string {
	return "lessons"
}
