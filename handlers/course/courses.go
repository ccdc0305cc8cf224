package course

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/courseloft/api/model"
	"github.com/courseloft/api/services"
	"github.com/courseloft/api/services/storage"
	"github.com/courseloft/api/utils/middleware"
	"github.com/courseloft/api/utils/response"
)

// playbackURLTTL bounds how long a signed lesson video URL stays valid
const playbackURLTTL = 4 * time.Hour

// CourseHandler serves the public catalog and gated lesson playback
type CourseHandler struct {
	db     *gorm.DB
	spaces *storage.SpacesClient // nil when object storage is not configured
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(db *gorm.DB, spaces *storage.SpacesClient) *CourseHandler {
	return &CourseHandler{db: db, spaces: spaces}
}

// List returns published courses with pagination
func (h *CourseHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	var total int64
	if err := h.db.Model(&model.Course{}).Where("published = ?", true).Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to load courses")
	}

	pagination := response.CalculatePagination(page, limit, total)

	var courses []model.Course
	if err := h.db.Where("published = ?", true).
		Order("created_at DESC").
		Offset((pagination.CurrentPage - 1) * pagination.PerPage).
		Limit(pagination.PerPage).
		Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to load courses")
	}

	return response.Paginated(c, courses, pagination)
}

// Get returns a single published course with its lesson outline
func (h *CourseHandler) Get(c *fiber.Ctx) error {
	course, err := h.loadCourse(c)
	if err != nil {
		return response.NotFound(c, "Course not found")
	}

	return response.Success(c, course)
}

// Access reports the caller's current entitlement decision for a course.
// Anonymous callers get the not_purchased decision for paid courses.
func (h *CourseHandler) Access(c *fiber.Ctx) error {
	course, err := h.loadCourse(c)
	if err != nil {
		return response.NotFound(c, "Course not found")
	}

	var entitlements []model.Entitlement
	if user := middleware.CurrentUser(c); user != nil {
		entitlements = user.Entitlements
	}

	decision := services.CheckAccess(entitlements, course, time.Now())
	return response.Success(c, decision)
}

// Play resolves a signed playback URL for a lesson, gated by the entitlement
// check. Expired access gets 402, never-purchased gets 403.
func (h *CourseHandler) Play(c *fiber.Ctx) error {
	course, err := h.loadCourse(c)
	if err != nil {
		return response.NotFound(c, "Course not found")
	}

	lessonID, err := c.ParamsInt("lessonID")
	if err != nil {
		return response.BadRequest(c, "Invalid lesson id")
	}

	var lesson model.Lesson
	if err := h.db.Where("id = ? AND course_id = ?", lessonID, course.ID).First(&lesson).Error; err != nil {
		return response.NotFound(c, "Lesson not found")
	}

	if !lesson.Preview {
		var entitlements []model.Entitlement
		if user := middleware.CurrentUser(c); user != nil {
			entitlements = user.Entitlements
		}

		decision := services.CheckAccess(entitlements, course, time.Now())
		if !decision.Granted {
			if decision.Reason == services.ReasonExpired {
				return response.PaymentRequired(c, "Your access to this course has expired")
			}
			return response.Forbidden(c, "Purchase this course to watch its lessons")
		}
	}

	if h.spaces == nil || lesson.VideoKey == "" {
		return response.NotFound(c, "Video not available")
	}

	url, err := h.spaces.SignedURL(lesson.VideoKey, playbackURLTTL)
	if err != nil {
		return response.UpstreamError(c, "Failed to resolve video")
	}

	return response.Success(c, fiber.Map{
		"lesson_id":  lesson.ID,
		"video_url":  url,
		"expires_in": int(playbackURLTTL.Seconds()),
	})
}

// loadCourse fetches a published course by numeric id or slug
func (h *CourseHandler) loadCourse(c *fiber.Ctx) (*model.Course, error) {
	idOrSlug := c.Params("id")

	var course model.Course
	query := h.db.Preload("Lessons", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("published = ?", true)

	if id, err := c.ParamsInt("id"); err == nil {
		err = query.First(&course, id).Error
		return &course, err
	}

	err := query.Where("slug = ?", idOrSlug).First(&course).Error
	return &course, err
}
