package admin

import (
	"github.com/gofiber/fiber/v2"

	"github.com/courseloft/api/model"
	"github.com/courseloft/api/utils/middleware"
	"github.com/courseloft/api/utils/response"
)

// ListUsers returns users with pagination and an optional email search
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 25)
	search := c.Query("search")

	query := h.db.Model(&model.User{})
	if search != "" {
		query = query.Where("email ILIKE ? OR name ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to load users")
	}

	pagination := response.CalculatePagination(page, limit, total)

	var users []model.User
	err := query.Preload("Entitlements").
		Order("created_at DESC").
		Offset((pagination.CurrentPage - 1) * pagination.PerPage).
		Limit(pagination.PerPage).
		Find(&users).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to load users")
	}

	return response.Paginated(c, users, pagination)
}

// GetUser returns one user with entitlements and payment history
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid user id")
	}

	var user model.User
	err = h.db.Preload("Entitlements.Course").Preload("Payments").First(&user, id).Error
	if err != nil {
		return response.NotFound(c, "User not found")
	}

	return response.Success(c, user)
}

// BlockUser blocks a user and bumps their token version so existing sessions
// stop working immediately.
func (h *AdminHandler) BlockUser(c *fiber.Ctx) error {
	return h.setBlocked(c, true)
}

// UnblockUser lifts a block
func (h *AdminHandler) UnblockUser(c *fiber.Ctx) error {
	return h.setBlocked(c, false)
}

func (h *AdminHandler) setBlocked(c *fiber.Ctx, blocked bool) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid user id")
	}

	var user model.User
	if err := h.db.First(&user, id).Error; err != nil {
		return response.NotFound(c, "User not found")
	}

	if admin := middleware.CurrentUser(c); admin != nil && admin.ID == user.ID {
		return response.BadRequest(c, "You cannot block your own account")
	}

	updates := map[string]interface{}{"blocked": blocked}
	if blocked {
		updates["token_version"] = user.TokenVersion + 1
	}
	if err := h.db.Model(&user).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update user")
	}

	action := "unblocked"
	if blocked {
		action = "blocked"
	}
	return response.SuccessWithMessage(c, "User "+action, fiber.Map{"id": user.ID, "blocked": blocked})
}
