package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/courseloft/api/services"
	"github.com/courseloft/api/utils/middleware"
	"github.com/courseloft/api/utils/response"
)

// LibraryEntry is one purchased course in the user's library, with expiry
// information for the "access expiring soon" banner
type LibraryEntry struct {
	CourseID     uint                    `json:"course_id"`
	CourseTitle  string                  `json:"course_title"`
	PurchasedAt  time.Time               `json:"purchased_at"`
	ExpiresAt    *time.Time              `json:"expires_at"`
	Remaining    *services.RemainingTime `json:"remaining,omitempty"`
	ExpiringSoon bool                    `json:"expiring_soon"`
}

// Me returns the authenticated user's profile and course library
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return response.Unauthorized(c, "")
	}

	// Entitlements are preloaded by the auth middleware; fetch titles here
	library := make([]LibraryEntry, 0, len(user.Entitlements))
	for i := range user.Entitlements {
		ent := &user.Entitlements[i]

		entry := LibraryEntry{
			CourseID:    ent.CourseID,
			PurchasedAt: ent.PurchasedAt,
			ExpiresAt:   ent.ExpiresAt,
		}
		if ent.ExpiresAt != nil {
			now := time.Now()
			rem := services.Remaining(*ent.ExpiresAt, now)
			entry.Remaining = &rem
			entry.ExpiringSoon = services.IsExpiringSoon(ent.ExpiresAt, now)
		}

		if err := h.db.Model(ent).Association("Course").Find(&ent.Course); err == nil {
			entry.CourseTitle = ent.Course.Title
		}

		library = append(library, entry)
	}

	return response.Success(c, fiber.Map{
		"user":    toUserResponse(user),
		"library": library,
	})
}
