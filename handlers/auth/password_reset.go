package auth

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/courseloft/api/model"
	authutil "github.com/courseloft/api/utils/auth"
	"github.com/courseloft/api/utils/cache"
	"github.com/courseloft/api/utils/response"
)

// ForgotPasswordRequest starts an OTP-based password reset
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes a reset with the emailed code
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=6"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ForgotPassword emails a one-time reset code
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	if h.otpStore == nil {
		return response.ServiceUnavailable(c, "Password reset is temporarily unavailable. Please try again later")
	}

	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Email == "" {
		return response.BadRequest(c, "Email is required")
	}

	// Don't reveal if email exists for security
	neutral := fiber.Map{"message": "If the email exists, a reset code will be sent"}

	var user model.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return response.Success(c, neutral)
	}

	code, err := authutil.GenerateOTP()
	if err != nil {
		return response.InternalServerError(c, "Failed to create reset code")
	}
	if err := h.otpStore.Save(c.Context(), cache.OTPPurposePasswordReset, user.Email, code); err != nil {
		return response.InternalServerError(c, "Failed to create reset code")
	}

	if err := h.emailService.SendOTPEmail(user.Email, user.Name, code, cache.OTPPurposePasswordReset); err != nil {
		log.Printf("reset OTP email for %s failed: %v", user.Email, err)
	}

	return response.Success(c, neutral)
}

// ResetPassword verifies the code and replaces the password. All existing
// sessions are invalidated through the token version bump.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	if h.otpStore == nil {
		return response.ServiceUnavailable(c, "Password reset is temporarily unavailable. Please try again later")
	}

	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Email == "" || req.Code == "" || req.NewPassword == "" {
		return response.BadRequest(c, "Email, code and new password are required")
	}

	if !authutil.IsPasswordValid(req.NewPassword) {
		return response.BadRequest(c, "Password must be at least 8 characters long")
	}

	var user model.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return response.BadRequest(c, "Invalid reset code")
	}

	if err := h.otpStore.Verify(c.Context(), cache.OTPPurposePasswordReset, req.Email, req.Code); err != nil {
		switch err {
		case cache.ErrOTPMaxAttempts:
			return response.TooManyRequests(c, "Too many attempts. Request a new code")
		case cache.ErrOTPNotFound, cache.ErrOTPMismatch:
			return response.BadRequest(c, "Invalid reset code")
		default:
			return response.InternalServerError(c, "Failed to verify code")
		}
	}

	hashedPassword, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	if err := h.db.Model(&user).Updates(map[string]interface{}{
		"password_hash": hashedPassword,
		"token_version": user.TokenVersion + 1, // Invalidate all existing tokens
	}).Error; err != nil {
		return response.InternalServerError(c, "Failed to update password")
	}

	return response.SuccessWithMessage(c, "Password reset successfully", nil)
}
