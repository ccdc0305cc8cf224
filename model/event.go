package model

import (
	"time"

	"gorm.io/gorm"
)

// Event is a workshop or webinar announced on the public site
type Event struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	StartsAt    time.Time      `gorm:"not null;index" json:"starts_at"`
	Location    string         `gorm:"type:varchar(200)" json:"location"` // physical or meeting link
	BannerURL   string         `gorm:"type:varchar(500)" json:"banner_url"`
	Published   bool           `gorm:"default:false;index" json:"published"`
}

// TableName specifies the table name for Event
func (Event) TableName() string {
	return "events"
}

// IsUpcoming reports whether the event has not yet started
func (e *Event) IsUpcoming(now time.Time) bool {
	return e.StartsAt.After(now)
}
