package admin

import (
	"github.com/gofiber/fiber/v2"

	"github.com/courseloft/api/model"
	"github.com/courseloft/api/utils/response"
)

// Dashboard returns the headline counters for the admin landing page
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	var users, courses, activeEntitlements, settledPayments int64

	if err := h.db.Model(&model.User{}).Count(&users).Error; err != nil {
		return response.InternalServerError(c, "Failed to load dashboard")
	}
	h.db.Model(&model.Course{}).Where("published = ?", true).Count(&courses)
	h.db.Model(&model.Entitlement{}).
		Where("expires_at IS NULL OR expires_at > now()").
		Count(&activeEntitlements)
	h.db.Model(&model.PaymentRecord{}).
		Where("status = ?", model.PaymentSuccess).
		Count(&settledPayments)

	return response.Success(c, fiber.Map{
		"users":               users,
		"published_courses":   courses,
		"active_entitlements": activeEntitlements,
		"settled_payments":    settledPayments,
	})
}

// CourseRevenue returns the per-course revenue report
func (h *AdminHandler) CourseRevenue(c *fiber.Ctx) error {
	report, err := h.reporting.CourseRevenue(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to build revenue report")
	}
	return response.Success(c, report)
}

// MonthlyRevenue returns the monthly revenue report. ?months=N bounds the
// window, defaulting to 12.
func (h *AdminHandler) MonthlyRevenue(c *fiber.Ctx) error {
	months := c.QueryInt("months", 12)
	report, err := h.reporting.MonthlyRevenue(c.Context(), months)
	if err != nil {
		return response.InternalServerError(c, "Failed to build revenue report")
	}
	return response.Success(c, report)
}

// ListPayments returns payment records with pagination, newest first
func (h *AdminHandler) ListPayments(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 25)
	status := c.Query("status")

	query := h.db.Model(&model.PaymentRecord{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to load payments")
	}

	pagination := response.CalculatePagination(page, limit, total)

	var payments []model.PaymentRecord
	err := query.Preload("Course").Preload("User").
		Order("created_at DESC").
		Offset((pagination.CurrentPage - 1) * pagination.PerPage).
		Limit(pagination.PerPage).
		Find(&payments).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to load payments")
	}

	return response.Paginated(c, payments, pagination)
}
