package content

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/courseloft/api/model"
	"github.com/courseloft/api/utils/response"
)

// ContentHandler serves the public marketing content: testimonials and events
type ContentHandler struct {
	db *gorm.DB
}

// NewContentHandler creates a new content handler
func NewContentHandler(db *gorm.DB) *ContentHandler {
	return &ContentHandler{db: db}
}

// Testimonials returns published testimonials, newest first
func (h *ContentHandler) Testimonials(c *fiber.Ctx) error {
	var testimonials []model.Testimonial
	err := h.db.Where("published = ?", true).
		Order("created_at DESC").
		Limit(50).
		Find(&testimonials).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to load testimonials")
	}

	return response.Success(c, testimonials)
}

// Events returns published events. Pass ?upcoming=true to filter to events
// that have not started yet.
func (h *ContentHandler) Events(c *fiber.Ctx) error {
	query := h.db.Where("published = ?", true)
	if c.QueryBool("upcoming") {
		query = query.Where("starts_at > ?", time.Now())
	}

	var events []model.Event
	if err := query.Order("starts_at ASC").Limit(50).Find(&events).Error; err != nil {
		return response.InternalServerError(c, "Failed to load events")
	}

	return response.Success(c, events)
}
