package payment

import (
	"log"

	"github.com/gofiber/fiber/v2"

	auth "github.com/courseloft/api/handlers/auth"
	"github.com/courseloft/api/services"
	"github.com/courseloft/api/utils/response"
)

// VerifyRequest carries the gateway checkout callback fields. The field names
// follow the gateway's widget response.
type VerifyRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
	Email             string `json:"email" validate:"omitempty,email"`
}

// Verify settles a payment after the gateway checkout completes. Guest buyers
// get an auto-login session cookie alongside the result.
func (h *PaymentHandler) Verify(c *fiber.Ctx) error {
	var req VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	result, err := h.payments.Verify(c.Context(), services.VerifyInput{
		OrderID:    req.RazorpayOrderID,
		PaymentID:  req.RazorpayPaymentID,
		Signature:  req.RazorpaySignature,
		GuestEmail: req.Email,
	})
	if err != nil {
		switch err {
		case services.ErrInvalidSignature:
			return response.BadRequest(c, "Payment signature verification failed")
		case services.ErrOrderNotFound:
			return response.NotFound(c, "Unknown order")
		case services.ErrUserNotFound:
			return response.BadRequest(c, "No account is associated with this payment")
		case services.ErrPaymentFailed:
			return response.Conflict(c, "This payment was marked failed; please retry checkout or contact support")
		default:
			log.Printf("payment verification for order %s failed: %v", req.RazorpayOrderID, err)
			return response.InternalServerError(c, "Payment verification failed")
		}
	}

	if result.AutoLoginToken != "" {
		auth.SetSessionCookie(c, result.AutoLoginToken, h.jwt.AccessExpiry())
	}

	return response.SuccessWithMessage(c, "Payment verified", result)
}

// Webhook receives signed gateway event deliveries. The raw body is verified
// before parsing; unknown events are acknowledged.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	signature := c.Get("X-Razorpay-Signature")
	if signature == "" {
		return response.BadRequest(c, "Missing webhook signature")
	}

	body := c.BodyRaw()
	if err := h.payments.HandleWebhook(c.Context(), body, signature); err != nil {
		switch err {
		case services.ErrInvalidSignature:
			return response.BadRequest(c, "Webhook signature verification failed")
		case services.ErrOrderNotFound:
			// Acknowledge so the gateway stops retrying an order we never opened
			log.Printf("webhook for unknown order, acknowledged")
			return response.Success(c, fiber.Map{"status": "ignored"})
		default:
			log.Printf("webhook processing failed: %v", err)
			return response.InternalServerError(c, "Webhook processing failed")
		}
	}

	return response.Success(c, fiber.Map{"status": "ok"})
}
