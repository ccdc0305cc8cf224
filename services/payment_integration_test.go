package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/courseloft/api/database"
	"github.com/courseloft/api/model"
	"github.com/courseloft/api/services/razorpay"
	"github.com/courseloft/api/utils/auth"
)

// TestGuestPurchaseEndToEnd walks the whole guest flow against a real
// database: checkout with an unknown email, signed verification, entitlement
// grant, account materialization and duplicate-delivery idempotency.
// Requires Postgres; run with RUN_INTEGRATION_TESTS=true.
func TestGuestPurchaseEndToEnd(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	store, err := database.StartGORM()
	if err != nil {
		t.Fatalf("database connection failed: %v", err)
	}
	defer store.Close()
	if err := store.Init(); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}
	db := store.GetDB().(*gorm.DB)

	const keySecret = "integration_test_secret"
	orderID := "order_" + uuid.New().String()[:12]

	// Stub gateway: every created order gets the id above
	gatewayStub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(razorpay.Order{ID: orderID, Status: "created"})
	}))
	defer gatewayStub.Close()

	gateway := razorpay.NewClient(razorpay.Config{
		KeyID:     "rzp_test_integration",
		KeySecret: keySecret,
		BaseURL:   gatewayStub.URL,
	})
	emailService := NewEmailService(EmailConfig{From: "test@courseloft.dev"})
	jwtManager := auth.NewJWTManager(auth.JWTConfig{Secret: "integration-jwt-secret", Expiry: time.Hour})

	checkout := NewCheckoutService(db, gateway, emailService)
	payments := NewPaymentService(db, gateway, emailService, nil, jwtManager)

	course := model.Course{
		Title:      "Integration Test Course",
		Slug:       "it-course-" + uuid.New().String()[:8],
		AccessType: model.AccessMonthly,
		Price:      149900,
		Currency:   model.CurrencyRupee,
		Published:  true,
	}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("course fixture: %v", err)
	}

	guestEmail := fmt.Sprintf("guest-%s@example.com", uuid.New().String()[:8])
	ctx := context.Background()

	result, err := checkout.Begin(ctx, CheckoutInput{CourseID: course.ID, GuestEmail: guestEmail})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if result.OrderID != orderID {
		t.Fatalf("order id = %q, want %q", result.OrderID, orderID)
	}

	// The guest account exists but is not verified until payment settles
	var guest model.User
	if err := db.Where("email = ?", guestEmail).First(&guest).Error; err != nil {
		t.Fatalf("guest account was not provisioned: %v", err)
	}
	if guest.Verified {
		t.Error("guest account should be unverified before payment")
	}

	paymentID := "pay_" + uuid.New().String()[:12]
	signature := razorpay.SignCheckout(keySecret, orderID, paymentID)

	verifyResult, err := payments.Verify(ctx, VerifyInput{
		OrderID:   orderID,
		PaymentID: paymentID,
		Signature: signature,
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verifyResult.AlreadyProcessed {
		t.Error("first verification should not report already processed")
	}
	if verifyResult.ExpiresAt == nil {
		t.Error("monthly access should carry an expiry")
	}
	if verifyResult.AutoLoginToken == "" {
		t.Error("guest settlement should issue an auto-login token")
	}

	var entitlement model.Entitlement
	err = db.Where("user_id = ? AND course_id = ?", guest.ID, course.ID).First(&entitlement).Error
	if err != nil {
		t.Fatalf("entitlement was not granted: %v", err)
	}

	if err := db.First(&guest, guest.ID).Error; err != nil {
		t.Fatalf("reload guest: %v", err)
	}
	if !guest.Verified {
		t.Error("payment verification should verify the guest account")
	}

	// Invalid signature must be rejected without touching anything
	if _, err := payments.Verify(ctx, VerifyInput{
		OrderID:   orderID,
		PaymentID: paymentID,
		Signature: "deadbeef",
	}); err != ErrInvalidSignature {
		t.Errorf("got %v, want ErrInvalidSignature", err)
	}

	// A duplicate delivery of the same callback is a no-op
	dup, err := payments.Verify(ctx, VerifyInput{
		OrderID:   orderID,
		PaymentID: paymentID,
		Signature: signature,
	})
	if err != nil {
		t.Fatalf("duplicate verify: %v", err)
	}
	if !dup.AlreadyProcessed {
		t.Error("duplicate verification should report already processed")
	}

	var entitlementCount int64
	db.Model(&model.Entitlement{}).
		Where("user_id = ? AND course_id = ?", guest.ID, course.ID).
		Count(&entitlementCount)
	if entitlementCount != 1 {
		t.Errorf("entitlement rows = %d, want exactly 1", entitlementCount)
	}
}

// TestVerifyAfterFailedOrder checks that a valid callback arriving after a
// failure webhook (or the stale sweep) flipped the order to failed grants
// nothing: failed is terminal, the buyer has to start a new checkout.
// Requires Postgres; run with RUN_INTEGRATION_TESTS=true.
func TestVerifyAfterFailedOrder(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	store, err := database.StartGORM()
	if err != nil {
		t.Fatalf("database connection failed: %v", err)
	}
	defer store.Close()
	if err := store.Init(); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}
	db := store.GetDB().(*gorm.DB)

	const keySecret = "integration_test_secret"
	orderID := "order_" + uuid.New().String()[:12]

	gatewayStub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(razorpay.Order{ID: orderID, Status: "created"})
	}))
	defer gatewayStub.Close()

	gateway := razorpay.NewClient(razorpay.Config{
		KeyID:         "rzp_test_integration",
		KeySecret:     keySecret,
		WebhookSecret: "integration_webhook_secret",
		BaseURL:       gatewayStub.URL,
	})
	emailService := NewEmailService(EmailConfig{From: "test@courseloft.dev"})
	jwtManager := auth.NewJWTManager(auth.JWTConfig{Secret: "integration-jwt-secret", Expiry: time.Hour})

	checkout := NewCheckoutService(db, gateway, emailService)
	payments := NewPaymentService(db, gateway, emailService, nil, jwtManager)

	course := model.Course{
		Title:      "Failed Order Course",
		Slug:       "it-failed-" + uuid.New().String()[:8],
		AccessType: model.AccessMonthly,
		Price:      149900,
		Currency:   model.CurrencyRupee,
		Published:  true,
	}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("course fixture: %v", err)
	}

	guestEmail := fmt.Sprintf("guest-%s@example.com", uuid.New().String()[:8])
	ctx := context.Background()

	if _, err := checkout.Begin(ctx, CheckoutInput{CourseID: course.ID, GuestEmail: guestEmail}); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	paymentID := "pay_" + uuid.New().String()[:12]

	// Gateway reports the payment failed before any callback lands
	webhookBody := []byte(fmt.Sprintf(
		`{"event":"payment.failed","payload":{"payment":{"entity":{"id":%q,"order_id":%q,"error_description":"card declined"}}}}`,
		paymentID, orderID))
	webhookSig := razorpay.SignWebhook("integration_webhook_secret", webhookBody)
	if err := payments.HandleWebhook(ctx, webhookBody, webhookSig); err != nil {
		t.Fatalf("failure webhook: %v", err)
	}

	// A late but correctly signed callback must not resurrect the order
	signature := razorpay.SignCheckout(keySecret, orderID, paymentID)
	if _, err := payments.Verify(ctx, VerifyInput{
		OrderID:   orderID,
		PaymentID: paymentID,
		Signature: signature,
	}); err != ErrPaymentFailed {
		t.Fatalf("got %v, want ErrPaymentFailed", err)
	}

	var guest model.User
	if err := db.Where("email = ?", guestEmail).First(&guest).Error; err != nil {
		t.Fatalf("guest account lookup: %v", err)
	}
	if guest.Verified {
		t.Error("failed payment must not verify the guest account")
	}

	var entitlementCount int64
	db.Model(&model.Entitlement{}).
		Where("user_id = ? AND course_id = ?", guest.ID, course.ID).
		Count(&entitlementCount)
	if entitlementCount != 0 {
		t.Errorf("entitlement rows = %d, want 0", entitlementCount)
	}

	var record model.PaymentRecord
	if err := db.Where("order_id = ?", orderID).First(&record).Error; err != nil {
		t.Fatalf("payment record lookup: %v", err)
	}
	if record.Status != model.PaymentFailed {
		t.Errorf("record status = %q, want %q", record.Status, model.PaymentFailed)
	}
}

// TestCheckoutDoubleSubmitClassification checks that only the partial unique
// index violation maps to the pending-checkout outcome. A concurrent
// double-submit racing past the existence check hits the index, and with
// TranslateError enabled that surfaces as gorm.ErrDuplicatedKey; other insert
// failures must propagate as-is.
// Requires Postgres; run with RUN_INTEGRATION_TESTS=true.
func TestCheckoutDoubleSubmitClassification(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	store, err := database.StartGORM()
	if err != nil {
		t.Fatalf("database connection failed: %v", err)
	}
	defer store.Close()
	if err := store.Init(); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}
	db := store.GetDB().(*gorm.DB)

	course := model.Course{
		Title:      "Double Submit Course",
		Slug:       "it-double-" + uuid.New().String()[:8],
		AccessType: model.AccessMonthly,
		Price:      99900,
		Currency:   model.CurrencyRupee,
		Published:  true,
	}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("course fixture: %v", err)
	}
	user := model.User{
		Email:        fmt.Sprintf("double-%s@example.com", uuid.New().String()[:8]),
		PasswordHash: "x",
		Name:         "Double Submit",
		Role:         "student",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("user fixture: %v", err)
	}

	pending := func(orderID string) *model.PaymentRecord {
		return &model.PaymentRecord{
			OrderID:  orderID,
			UserID:   &user.ID,
			CourseID: course.ID,
			Amount:   course.Price,
			Currency: course.Currency,
			Status:   model.PaymentPending,
		}
	}

	if err := db.Create(pending("order_" + uuid.New().String()[:12])).Error; err != nil {
		t.Fatalf("first pending insert: %v", err)
	}

	// Second pending row for the same user/course is what a racing
	// double-submit would insert
	err = db.Create(pending("order_" + uuid.New().String()[:12])).Error
	if err == nil {
		t.Fatal("second pending insert should hit the partial unique index")
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("index violation = %v, want gorm.ErrDuplicatedKey", err)
	}
}
