package model

import (
	"time"

	"gorm.io/gorm"
)

// Testimonial is a student quote shown on the public site
type Testimonial struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Author    string         `gorm:"not null" json:"author"`
	Role      string         `gorm:"type:varchar(100)" json:"role"` // e.g. "MCA Student"
	Quote     string         `gorm:"type:text;not null" json:"quote"`
	AvatarURL string         `gorm:"type:varchar(500)" json:"avatar_url"`
	Published bool           `gorm:"default:false;index" json:"published"`
}

// TableName specifies the table name for Testimonial
func (Testimonial) TableName() string {
	return "testimonials"
}
