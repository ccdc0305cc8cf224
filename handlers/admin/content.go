package admin

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/courseloft/api/model"
	"github.com/courseloft/api/utils/response"
)

// TestimonialRequest is the admin create/update payload for a testimonial
type TestimonialRequest struct {
	Author    string `json:"author" validate:"required,min=2,max=100"`
	Role      string `json:"role" validate:"max=100"`
	Quote     string `json:"quote" validate:"required,min=10"`
	AvatarURL string `json:"avatar_url"`
	Published bool   `json:"published"`
}

// EventRequest is the admin create/update payload for an event
type EventRequest struct {
	Title       string    `json:"title" validate:"required,min=3,max=200"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	Location    string    `json:"location" validate:"max=200"`
	BannerURL   string    `json:"banner_url"`
	Published   bool      `json:"published"`
}

// CreateTestimonial creates a testimonial
func (h *AdminHandler) CreateTestimonial(c *fiber.Ctx) error {
	var req TestimonialRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	testimonial := model.Testimonial{
		Author:    req.Author,
		Role:      req.Role,
		Quote:     req.Quote,
		AvatarURL: req.AvatarURL,
		Published: req.Published,
	}
	if err := h.db.Create(&testimonial).Error; err != nil {
		return response.InternalServerError(c, "Failed to create testimonial")
	}

	return response.Created(c, testimonial)
}

// UpdateTestimonial updates a testimonial
func (h *AdminHandler) UpdateTestimonial(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid testimonial id")
	}

	var testimonial model.Testimonial
	if err := h.db.First(&testimonial, id).Error; err != nil {
		return response.NotFound(c, "Testimonial not found")
	}

	var req TestimonialRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	updates := map[string]interface{}{
		"author":     req.Author,
		"role":       req.Role,
		"quote":      req.Quote,
		"avatar_url": req.AvatarURL,
		"published":  req.Published,
	}
	if err := h.db.Model(&testimonial).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update testimonial")
	}

	return response.SuccessWithMessage(c, "Testimonial updated", testimonial)
}

// DeleteTestimonial removes a testimonial
func (h *AdminHandler) DeleteTestimonial(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid testimonial id")
	}

	result := h.db.Delete(&model.Testimonial{}, id)
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to delete testimonial")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Testimonial not found")
	}

	return response.NoContent(c)
}

// CreateEvent creates an event
func (h *AdminHandler) CreateEvent(c *fiber.Ctx) error {
	var req EventRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	event := model.Event{
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		Location:    req.Location,
		BannerURL:   req.BannerURL,
		Published:   req.Published,
	}
	if err := h.db.Create(&event).Error; err != nil {
		return response.InternalServerError(c, "Failed to create event")
	}

	return response.Created(c, event)
}

// UpdateEvent updates an event
func (h *AdminHandler) UpdateEvent(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid event id")
	}

	var event model.Event
	if err := h.db.First(&event, id).Error; err != nil {
		return response.NotFound(c, "Event not found")
	}

	var req EventRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	updates := map[string]interface{}{
		"title":       req.Title,
		"description": req.Description,
		"starts_at":   req.StartsAt,
		"location":    req.Location,
		"banner_url":  req.BannerURL,
		"published":   req.Published,
	}
	if err := h.db.Model(&event).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update event")
	}

	return response.SuccessWithMessage(c, "Event updated", event)
}

// DeleteEvent removes an event
func (h *AdminHandler) DeleteEvent(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid event id")
	}

	result := h.db.Delete(&model.Event{}, id)
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to delete event")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Event not found")
	}

	return response.NoContent(c)
}
