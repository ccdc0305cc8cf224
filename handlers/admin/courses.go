package admin

import (
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/courseloft/api/model"
	"github.com/courseloft/api/utils/response"
)

// maxVideoUploadBytes caps multipart lesson video uploads at 2 GiB
const maxVideoUploadBytes = 2 << 30

// CourseRequest is the admin create/update payload for a course
type CourseRequest struct {
	Title        string `json:"title" validate:"required,min=3,max=200"`
	Slug         string `json:"slug" validate:"required,min=3,max=200"`
	Description  string `json:"description"`
	AccessType   string `json:"access_type" validate:"required,oneof=free lifetime monthly yearly"`
	Price        int64  `json:"price" validate:"gte=0"`
	Currency     string `json:"currency" validate:"required,oneof=dollar rupee"`
	ThumbnailURL string `json:"thumbnail_url"`
	Published    bool   `json:"published"`
}

// LessonRequest is the admin create/update payload for a lesson
type LessonRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description"`
	DurationSec int    `json:"duration_sec" validate:"gte=0"`
	Position    int    `json:"position" validate:"gte=0"`
	Preview     bool   `json:"preview"`
}

// ListCourses returns all courses including unpublished drafts
func (h *AdminHandler) ListCourses(c *fiber.Ctx) error {
	var courses []model.Course
	err := h.db.Preload("Lessons").Order("created_at DESC").Find(&courses).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to load courses")
	}
	return response.Success(c, courses)
}

// CreateCourse creates a new course
func (h *AdminHandler) CreateCourse(c *fiber.Ctx) error {
	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}
	if req.AccessType == model.AccessFree && req.Price != 0 {
		return response.BadRequest(c, "Free courses must have a price of zero")
	}
	if req.AccessType != model.AccessFree && req.Price <= 0 {
		return response.BadRequest(c, "Paid courses need a positive price")
	}

	course := model.Course{
		Title:        req.Title,
		Slug:         strings.ToLower(req.Slug),
		Description:  req.Description,
		AccessType:   req.AccessType,
		Price:        req.Price,
		Currency:     req.Currency,
		ThumbnailURL: req.ThumbnailURL,
		Published:    req.Published,
	}
	if err := h.db.Create(&course).Error; err != nil {
		return response.Conflict(c, "A course with this slug already exists")
	}

	return response.Created(c, course)
}

// UpdateCourse updates an existing course
func (h *AdminHandler) UpdateCourse(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid course id")
	}

	var course model.Course
	if err := h.db.First(&course, id).Error; err != nil {
		return response.NotFound(c, "Course not found")
	}

	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	updates := map[string]interface{}{
		"title":         req.Title,
		"slug":          strings.ToLower(req.Slug),
		"description":   req.Description,
		"access_type":   req.AccessType,
		"price":         req.Price,
		"currency":      req.Currency,
		"thumbnail_url": req.ThumbnailURL,
		"published":     req.Published,
	}
	if err := h.db.Model(&course).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update course")
	}

	return response.SuccessWithMessage(c, "Course updated", course)
}

// DeleteCourse soft-deletes a course. Entitlements and payment records stay for
// the books; access checks fail closed once the course is gone.
func (h *AdminHandler) DeleteCourse(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid course id")
	}

	result := h.db.Delete(&model.Course{}, id)
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to delete course")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Course not found")
	}

	return response.NoContent(c)
}

// CreateLesson adds a lesson to a course
func (h *AdminHandler) CreateLesson(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid course id")
	}

	var course model.Course
	if err := h.db.First(&course, courseID).Error; err != nil {
		return response.NotFound(c, "Course not found")
	}

	var req LessonRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	lesson := model.Lesson{
		CourseID:    course.ID,
		Title:       req.Title,
		Description: req.Description,
		DurationSec: req.DurationSec,
		Position:    req.Position,
		Preview:     req.Preview,
	}
	if err := h.db.Create(&lesson).Error; err != nil {
		return response.InternalServerError(c, "Failed to create lesson")
	}

	return response.Created(c, lesson)
}

// UpdateLesson updates a lesson's details
func (h *AdminHandler) UpdateLesson(c *fiber.Ctx) error {
	lessonID, err := c.ParamsInt("lessonID")
	if err != nil {
		return response.BadRequest(c, "Invalid lesson id")
	}

	var lesson model.Lesson
	if err := h.db.First(&lesson, lessonID).Error; err != nil {
		return response.NotFound(c, "Lesson not found")
	}

	var req LessonRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	updates := map[string]interface{}{
		"title":        req.Title,
		"description":  req.Description,
		"duration_sec": req.DurationSec,
		"position":     req.Position,
		"preview":      req.Preview,
	}
	if err := h.db.Model(&lesson).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update lesson")
	}

	return response.SuccessWithMessage(c, "Lesson updated", lesson)
}

// DeleteLesson removes a lesson and its stored video
func (h *AdminHandler) DeleteLesson(c *fiber.Ctx) error {
	lessonID, err := c.ParamsInt("lessonID")
	if err != nil {
		return response.BadRequest(c, "Invalid lesson id")
	}

	var lesson model.Lesson
	if err := h.db.First(&lesson, lessonID).Error; err != nil {
		return response.NotFound(c, "Lesson not found")
	}

	if err := h.db.Delete(&lesson).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete lesson")
	}

	if h.spaces != nil && lesson.VideoKey != "" {
		if err := h.spaces.Delete(c.Context(), lesson.VideoKey); err != nil {
			log.Printf("video cleanup for lesson %d failed: %v", lesson.ID, err)
		}
	}

	return response.NoContent(c)
}

// UploadLessonVideo receives a multipart video file, stores it privately and
// attaches the object key to the lesson.
func (h *AdminHandler) UploadLessonVideo(c *fiber.Ctx) error {
	if h.spaces == nil {
		return response.UpstreamError(c, "Object storage is not configured")
	}

	lessonID, err := c.ParamsInt("lessonID")
	if err != nil {
		return response.BadRequest(c, "Invalid lesson id")
	}

	var lesson model.Lesson
	if err := h.db.First(&lesson, lessonID).Error; err != nil {
		return response.NotFound(c, "Lesson not found")
	}

	fileHeader, err := c.FormFile("video")
	if err != nil {
		return response.BadRequest(c, "Missing video file")
	}
	if fileHeader.Size > maxVideoUploadBytes {
		return response.BadRequest(c, "Video file is too large")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	switch ext {
	case ".mp4", ".webm", ".mov":
	default:
		return response.BadRequest(c, "Unsupported video format")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return response.InternalServerError(c, "Failed to read upload")
	}

	key := fmt.Sprintf("videos/%d/%s%s", lesson.CourseID, uuid.New().String(), ext)
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}
	if err := h.spaces.UploadPrivate(c.Context(), key, data, contentType); err != nil {
		return response.UpstreamError(c, "Failed to store video")
	}

	oldKey := lesson.VideoKey
	if err := h.db.Model(&lesson).Update("video_key", key).Error; err != nil {
		return response.InternalServerError(c, "Failed to attach video")
	}

	if oldKey != "" {
		if err := h.spaces.Delete(c.Context(), oldKey); err != nil {
			log.Printf("stale video cleanup for lesson %d failed: %v", lesson.ID, err)
		}
	}

	return response.SuccessWithMessage(c, "Video uploaded", fiber.Map{
		"lesson_id": lesson.ID,
		"video_key": key,
	})
}
