package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/courseloft/api/model"
	"github.com/courseloft/api/services/razorpay"
	"github.com/courseloft/api/utils/auth"
	"github.com/courseloft/api/utils/validation"
)

// CheckoutService opens gateway orders and records pending payments
type CheckoutService struct {
	db      *gorm.DB
	gateway *razorpay.Client
	email   *EmailService
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(db *gorm.DB, gateway *razorpay.Client, email *EmailService) *CheckoutService {
	return &CheckoutService{db: db, gateway: gateway, email: email}
}

// CheckoutInput identifies the buyer: an authenticated user, or a guest email
type CheckoutInput struct {
	CourseID   uint
	User       *model.User // nil for guest checkout
	GuestEmail string
}

// CourseSummary is the slice of course data the checkout widget needs
type CourseSummary struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Price    int64  `json:"price"`
	Currency string `json:"currency"`
}

// CheckoutResult is returned to the client to launch the gateway widget.
// It never carries a provisioned password.
type CheckoutResult struct {
	OrderID  string        `json:"order_id"`
	KeyID    string        `json:"key_id"`
	Amount   int64         `json:"amount"`
	Currency string        `json:"currency"`
	Course   CourseSummary `json:"course"`
}

// Begin validates eligibility, resolves or provisions the purchasing user,
// opens a gateway order and persists a pending PaymentRecord.
func (s *CheckoutService) Begin(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	var course model.Course
	if err := s.db.WithContext(ctx).First(&course, in.CourseID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	if course.IsFree() {
		return nil, ErrFreeCourse
	}

	buyer, newUser, err := s.resolveBuyer(ctx, in, course.ID)
	if err != nil {
		return nil, err
	}

	// One open order per user/course; a retry before payment reuses it
	// instead of opening a second gateway order.
	var existing model.PaymentRecord
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ? AND status = ?", buyer.ID, course.ID, model.PaymentPending).
		First(&existing).Error
	if err == nil {
		return s.result(&existing, &course), nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	receiptID := fmt.Sprintf("cl_%s", uuid.New().String()[:30])
	order, err := s.gateway.CreateOrder(ctx, course.Price, course.Currency, receiptID, map[string]string{
		"course_id": fmt.Sprintf("%d", course.ID),
		"user_id":   fmt.Sprintf("%d", buyer.ID),
	})
	if err != nil {
		return nil, fmt.Errorf("gateway order creation failed: %w", err)
	}

	record := model.PaymentRecord{
		OrderID:  order.ID,
		UserID:   &buyer.ID,
		CourseID: course.ID,
		Amount:   course.Price,
		Currency: course.Currency,
		Status:   model.PaymentPending,
	}
	meta := model.PaymentMetadata{
		Version:       model.PaymentMetadataVersion,
		GuestCheckout: in.User == nil,
		NewUser:       newUser,
		InitiatedAt:   time.Now().UTC(),
	}
	if in.User == nil {
		meta.GuestEmail = buyer.Email
	}
	if err := record.SetMetadata(meta); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		// The partial unique index catches a concurrent double-submit that
		// slipped past the existence check above. Anything else is a real
		// store fault and must not look like a business outcome.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCheckoutPending
		}
		return nil, fmt.Errorf("payment record insert failed: %w", err)
	}

	return s.result(&record, &course), nil
}

// resolveBuyer returns the purchasing user, provisioning an unverified account
// for unknown guest emails. The second return reports whether a user was just
// created.
func (s *CheckoutService) resolveBuyer(ctx context.Context, in CheckoutInput, courseID uint) (*model.User, bool, error) {
	if in.User != nil {
		ent := in.User.EntitlementFor(courseID)
		if ent != nil && !ent.IsExpired(time.Now()) {
			return nil, false, ErrAlreadyPurchased
		}
		return in.User, false, nil
	}

	if !validation.ValidateEmail(in.GuestEmail) {
		return nil, false, ErrInvalidEmail
	}

	var existing model.User
	err := s.db.WithContext(ctx).Preload("Entitlements").
		Where("email = ?", in.GuestEmail).First(&existing).Error
	if err == nil {
		ent := existing.EntitlementFor(courseID)
		if ent != nil && !ent.IsExpired(time.Now()) {
			return nil, false, ErrAlreadyPurchased
		}
		// Known email, no active entitlement: guest retry path
		return &existing, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, err
	}

	password, err := auth.GenerateRandomPassword()
	if err != nil {
		return nil, false, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, false, err
	}

	user := model.User{
		Email:        in.GuestEmail,
		PasswordHash: hash,
		Name:         in.GuestEmail,
		Role:         "student",
		Verified:     false,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, false, err
	}

	// Out-of-band credential delivery; the password never reaches the
	// checkout response.
	if err := s.email.SendAccountCredentials(user.Email, password); err != nil {
		log.Printf("credentials email for %s failed: %v", user.Email, err)
	}

	return &user, true, nil
}

func (s *CheckoutService) result(record *model.PaymentRecord, course *model.Course) *CheckoutResult {
	return &CheckoutResult{
		OrderID:  record.OrderID,
		KeyID:    s.gateway.KeyID(),
		Amount:   record.Amount,
		Currency: record.Currency,
		Course: CourseSummary{
			ID:       course.ID,
			Title:    course.Title,
			Price:    course.Price,
			Currency: course.Currency,
		},
	}
}
