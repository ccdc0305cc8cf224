package auth

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/courseloft/api/model"
	authutil "github.com/courseloft/api/utils/auth"
	"github.com/courseloft/api/utils/cache"
	"github.com/courseloft/api/utils/response"
)

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=2"`
}

// VerifyEmailRequest confirms a signup with the emailed OTP code
type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

// Register handles user registration. The account starts unverified; a
// one-time code is emailed and confirmed via VerifyEmail.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	// Without the OTP store there is no way to verify the account; refuse
	// before creating a user row that could never complete signup.
	if h.otpStore == nil {
		return response.ServiceUnavailable(c, "Email verification is temporarily unavailable. Please try again later")
	}

	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Email == "" || req.Password == "" || req.Name == "" {
		return response.BadRequest(c, "Email, password, and name are required")
	}

	if !authutil.IsPasswordValid(req.Password) {
		return response.BadRequest(c, "Password must be at least 8 characters long")
	}

	// Check if user already exists
	var existingUser model.User
	if err := h.db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		return response.Conflict(c, "User with this email already exists")
	}

	hashedPassword, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	user := model.User{
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Name:         req.Name,
		Role:         "student",
		Verified:     false,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return response.InternalServerError(c, "Failed to create user")
	}

	if err := h.sendSignupOTP(c, &user); err != nil {
		log.Printf("signup OTP for %s failed: %v", user.Email, err)
	}

	return response.Created(c, fiber.Map{
		"user":    toUserResponse(&user),
		"message": "Verification code sent to your email",
	})
}

// VerifyEmail confirms the signup OTP and issues the first session
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	if h.otpStore == nil {
		return response.ServiceUnavailable(c, "Email verification is temporarily unavailable. Please try again later")
	}

	var req VerifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Email == "" || req.Code == "" {
		return response.BadRequest(c, "Email and code are required")
	}

	var user model.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return response.BadRequest(c, "Invalid verification code")
	}

	if user.Verified {
		return response.BadRequest(c, "Email is already verified")
	}

	if err := h.otpStore.Verify(c.Context(), cache.OTPPurposeSignup, req.Email, req.Code); err != nil {
		switch err {
		case cache.ErrOTPMaxAttempts:
			return response.TooManyRequests(c, "Too many attempts. Request a new code")
		case cache.ErrOTPNotFound, cache.ErrOTPMismatch:
			return response.BadRequest(c, "Invalid verification code")
		default:
			return response.InternalServerError(c, "Failed to verify code")
		}
	}

	if err := h.db.Model(&user).Update("verified", true).Error; err != nil {
		return response.InternalServerError(c, "Failed to verify account")
	}
	user.Verified = true

	tokens, err := h.issueTokens(c, &user)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate tokens")
	}

	return response.SuccessWithMessage(c, "Email verified", tokens)
}

// ResendOTP sends a fresh signup verification code
func (h *AuthHandler) ResendOTP(c *fiber.Ctx) error {
	if h.otpStore == nil {
		return response.ServiceUnavailable(c, "Email verification is temporarily unavailable. Please try again later")
	}

	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	var user model.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		// Don't reveal whether the email exists
		return response.Success(c, fiber.Map{"message": "If the email exists, a code will be sent"})
	}

	if user.Verified {
		return response.BadRequest(c, "Email is already verified")
	}

	if err := h.sendSignupOTP(c, &user); err != nil {
		log.Printf("signup OTP resend for %s failed: %v", user.Email, err)
	}

	return response.Success(c, fiber.Map{"message": "If the email exists, a code will be sent"})
}

func (h *AuthHandler) sendSignupOTP(c *fiber.Ctx, user *model.User) error {
	code, err := authutil.GenerateOTP()
	if err != nil {
		return err
	}
	if err := h.otpStore.Save(c.Context(), cache.OTPPurposeSignup, user.Email, code); err != nil {
		return err
	}
	return h.emailService.SendOTPEmail(user.Email, user.Name, code, cache.OTPPurposeSignup)
}
