package middleware

import (
	"strings"

	"github.com/courseloft/api/model"
	"github.com/courseloft/api/utils/auth"
	"github.com/courseloft/api/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CookieName is the HTTP-only cookie carrying the access token. The bearer
// header wins when both are present.
const CookieName = "courseloft_session"

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtManager       *auth.JWTManager
	blacklistService *auth.BlacklistService
	db               *gorm.DB
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:       jwtManager,
		blacklistService: auth.NewBlacklistService(db),
		db:               db,
	}
}

func (m *AuthMiddleware) tokenFrom(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return c.Cookies(CookieName)
}

func (m *AuthMiddleware) authenticate(c *fiber.Ctx, tokenString string) (*model.User, *auth.Claims, error) {
	claims, err := m.jwtManager.ValidateToken(tokenString)
	if err != nil {
		return nil, nil, err
	}

	if claims.TokenType != "access" {
		return nil, nil, auth.ErrInvalidToken
	}

	// Check if token is revoked (blacklisted)
	isRevoked, err := m.blacklistService.IsTokenRevoked(c.Context(), claims.ID)
	if err != nil {
		return nil, nil, err
	}
	if isRevoked {
		return nil, nil, auth.ErrInvalidToken
	}

	var user model.User
	if err := m.db.Preload("Entitlements").First(&user, claims.UserID).Error; err != nil {
		return nil, nil, auth.ErrInvalidToken
	}

	// Check if token version matches
	if user.TokenVersion != claims.TokenVersion {
		return nil, nil, auth.ErrInvalidToken
	}

	return &user, claims, nil
}

// Required is middleware that requires a valid JWT token
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := m.tokenFrom(c)
		if tokenString == "" {
			return response.Unauthorized(c, "Missing authorization token")
		}

		user, claims, err := m.authenticate(c, tokenString)
		if err != nil {
			if err == auth.ErrExpiredToken {
				return response.Unauthorized(c, "Token has expired")
			}
			return response.Unauthorized(c, "Invalid token")
		}

		if user.Blocked {
			return response.Forbidden(c, "Account has been blocked")
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("user_email", claims.Email)
		c.Locals("user_role", claims.Role)
		c.Locals("user", user)
		c.Locals("token_jti", claims.ID)

		return c.Next()
	}
}

// Optional is middleware that allows requests with or without a token. Used by
// checkout, where both guests and logged-in users hit the same route.
func (m *AuthMiddleware) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := m.tokenFrom(c)
		if tokenString == "" {
			return c.Next()
		}

		user, claims, err := m.authenticate(c, tokenString)
		if err != nil || user.Blocked {
			// An invalid token on an optional route is treated as anonymous
			return c.Next()
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("user_email", claims.Email)
		c.Locals("user_role", claims.Role)
		c.Locals("user", user)
		c.Locals("token_jti", claims.ID)

		return c.Next()
	}
}

// CurrentUser returns the authenticated user stored by Required/Optional, or
// nil for anonymous requests
func CurrentUser(c *fiber.Ctx) *model.User {
	user, _ := c.Locals("user").(*model.User)
	return user
}
