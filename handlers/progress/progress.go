package progress

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/courseloft/api/model"
	"github.com/courseloft/api/services"
	"github.com/courseloft/api/utils/middleware"
	"github.com/courseloft/api/utils/response"
	"github.com/courseloft/api/utils/validation"
)

// ProgressHandler records and reports lesson watch progress
type ProgressHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(db *gorm.DB) *ProgressHandler {
	return &ProgressHandler{db: db, validator: validation.NewValidator()}
}

// UpdateRequest reports the caller's playback position for a lesson
type UpdateRequest struct {
	LessonID   uint `json:"lesson_id" validate:"required"`
	WatchedSec int  `json:"watched_sec" validate:"gte=0"`
	Completed  bool `json:"completed"`
}

// Update upserts the caller's progress row for a lesson. Progress never moves
// backwards: a lower position than the stored one is kept as-is.
func (h *ProgressHandler) Update(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	var lesson model.Lesson
	if err := h.db.Preload("Course").First(&lesson, req.LessonID).Error; err != nil {
		return response.NotFound(c, "Lesson not found")
	}

	if !lesson.Preview {
		decision := services.CheckAccess(user.Entitlements, &lesson.Course, time.Now())
		if !decision.Granted {
			if decision.Reason == services.ReasonExpired {
				return response.PaymentRequired(c, "Your access to this course has expired")
			}
			return response.Forbidden(c, "Purchase this course to track progress")
		}
	}

	row := model.VideoProgress{
		UserID:     user.ID,
		LessonID:   lesson.ID,
		WatchedSec: req.WatchedSec,
		Completed:  req.Completed,
	}
	err := h.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"watched_sec": gorm.Expr("GREATEST(video_progress.watched_sec, EXCLUDED.watched_sec)"),
			"completed":   gorm.Expr("video_progress.completed OR EXCLUDED.completed"),
			"updated_at":  time.Now(),
		}),
	}).Create(&row).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to save progress")
	}

	return response.Success(c, fiber.Map{
		"lesson_id":   lesson.ID,
		"watched_sec": req.WatchedSec,
		"completed":   req.Completed,
	})
}

// ForCourse returns the caller's progress rows across a course's lessons
func (h *ProgressHandler) ForCourse(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid course id")
	}

	var rows []model.VideoProgress
	err = h.db.
		Joins("JOIN lessons ON lessons.id = video_progress.lesson_id").
		Where("video_progress.user_id = ? AND lessons.course_id = ?", user.ID, courseID).
		Find(&rows).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to load progress")
	}

	return response.Success(c, rows)
}
