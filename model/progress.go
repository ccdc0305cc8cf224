package model

import (
	"time"

	"gorm.io/gorm"
)

// VideoProgress tracks how far a user has watched a lesson. One row per
// user/lesson pair, updated in place as playback advances.
type VideoProgress struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	UserID     uint           `gorm:"not null;uniqueIndex:idx_progress_user_lesson" json:"user_id"`
	LessonID   uint           `gorm:"not null;uniqueIndex:idx_progress_user_lesson" json:"lesson_id"`
	WatchedSec int            `gorm:"not null;default:0" json:"watched_sec"`
	Completed  bool           `gorm:"default:false" json:"completed"`

	// Relationships
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Lesson Lesson `gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE" json:"lesson,omitempty"`
}

// TableName specifies the table name for VideoProgress
func (VideoProgress) TableName() string {
	return "video_progress"
}
