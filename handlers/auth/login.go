package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/courseloft/api/model"
	authutil "github.com/courseloft/api/utils/auth"
	"github.com/courseloft/api/utils/response"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates a user and issues a token pair
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Email == "" || req.Password == "" {
		return response.BadRequest(c, "Email and password are required")
	}

	var user model.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		h.recordFailure(c)
		return response.Unauthorized(c, "Invalid email or password")
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		h.recordFailure(c)
		return response.Unauthorized(c, "Invalid email or password")
	}

	if user.Blocked {
		return response.Forbidden(c, "Account has been blocked. Contact support")
	}

	if !user.Verified {
		return response.Forbidden(c, "Email not verified. Check your inbox for the code")
	}

	if h.bruteForceProtection != nil {
		h.bruteForceProtection.RecordSuccessfulAttempt(c, c.IP())
	}

	tokens, err := h.issueTokens(c, &user)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate tokens")
	}

	return response.Success(c, tokens)
}

// Logout revokes the current access token and clears the session cookie
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	jti, _ := c.Locals("token_jti").(string)
	userID, _ := c.Locals("user_id").(uint)

	if jti != "" {
		// Blacklist until the token would have expired anyway
		expiresAt := time.Now().Add(h.jwtManager.AccessExpiry())
		if err := h.blacklistService.RevokeToken(c.Context(), jti, userID, expiresAt, "logout"); err != nil {
			return response.InternalServerError(c, "Failed to log out")
		}
	}

	clearSessionCookie(c)
	return response.SuccessWithMessage(c, "Logged out", nil)
}

func (h *AuthHandler) recordFailure(c *fiber.Ctx) {
	if h.bruteForceProtection != nil {
		h.bruteForceProtection.RecordFailedAttempt(c, c.IP())
	}
}
