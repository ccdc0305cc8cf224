package payment

import (
	"github.com/gofiber/fiber/v2"

	"github.com/courseloft/api/services"
	"github.com/courseloft/api/utils/middleware"
	"github.com/courseloft/api/utils/response"
)

// CheckoutRequest starts a purchase. Email is only consulted for guests;
// authenticated callers buy under their own account.
type CheckoutRequest struct {
	CourseID uint   `json:"course_id" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// Checkout opens a gateway order for a course purchase
func (h *PaymentHandler) Checkout(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	in := services.CheckoutInput{
		CourseID:   req.CourseID,
		User:       middleware.CurrentUser(c),
		GuestEmail: req.Email,
	}
	if in.User == nil && in.GuestEmail == "" {
		return response.BadRequest(c, "Email is required for guest checkout")
	}

	result, err := h.checkout.Begin(c.Context(), in)
	if err != nil {
		switch err {
		case services.ErrCourseNotFound:
			return response.NotFound(c, "Course not found")
		case services.ErrFreeCourse:
			return response.BadRequest(c, "This course is free and needs no checkout")
		case services.ErrInvalidEmail:
			return response.BadRequest(c, "Invalid email address")
		case services.ErrAlreadyPurchased:
			return response.Conflict(c, "You already own this course")
		case services.ErrCheckoutPending:
			return response.Conflict(c, "A checkout for this course is already in progress")
		default:
			return response.UpstreamError(c, "Failed to start checkout")
		}
	}

	return response.Success(c, result)
}
