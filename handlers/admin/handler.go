package admin

import (
	"gorm.io/gorm"

	"github.com/courseloft/api/database"
	"github.com/courseloft/api/services/storage"
	"github.com/courseloft/api/utils/validation"
)

// AdminHandler serves the admin dashboard: user management, catalog CRUD,
// content CRUD and revenue reporting.
type AdminHandler struct {
	db        *gorm.DB
	reporting *database.ReportingStore
	spaces    *storage.SpacesClient // nil when object storage is not configured
	validator *validation.Validator
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB, reporting *database.ReportingStore, spaces *storage.SpacesClient) *AdminHandler {
	return &AdminHandler{
		db:        db,
		reporting: reporting,
		spaces:    spaces,
		validator: validation.NewValidator(),
	}
}
