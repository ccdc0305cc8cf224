package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/courseloft/api/model"
	"github.com/courseloft/api/services/razorpay"
	"github.com/courseloft/api/services/storage"
	"github.com/courseloft/api/utils/auth"
)

// PaymentService finalizes gateway payments: signature verification,
// guest-to-user materialization, entitlement grants and the settled/failed
// status transitions.
type PaymentService struct {
	db      *gorm.DB
	gateway *razorpay.Client
	email   *EmailService
	spaces  *storage.SpacesClient // nil when object storage is not configured
	jwt     *auth.JWTManager
}

// NewPaymentService creates a new payment service
func NewPaymentService(db *gorm.DB, gateway *razorpay.Client, email *EmailService, spaces *storage.SpacesClient, jwt *auth.JWTManager) *PaymentService {
	return &PaymentService{db: db, gateway: gateway, email: email, spaces: spaces, jwt: jwt}
}

// VerifyInput carries the fields the gateway checkout widget returns
type VerifyInput struct {
	OrderID    string
	PaymentID  string
	Signature  string
	GuestEmail string // fallback when checkout metadata carries no email
}

// VerifyResult reports the outcome of a successful verification
type VerifyResult struct {
	CourseID         uint       `json:"course_id"`
	CourseTitle      string     `json:"course_title"`
	ExpiresAt        *time.Time `json:"expires_at"`
	AlreadyProcessed bool       `json:"already_processed"`
	AutoLoginToken   string     `json:"-"` // set as an HTTP-only cookie, never in the body
}

// Verify validates a checkout callback and settles the payment. It is safe to
// call repeatedly with the same order: the entitlement grant is an upsert keyed
// by (user, course), and the pending->success flip is a conditional update that
// only one invocation can win.
func (s *PaymentService) Verify(ctx context.Context, in VerifyInput) (*VerifyResult, error) {
	// Signature first; nothing is touched on a mismatch.
	if !s.gateway.VerifyCheckoutSignature(in.OrderID, in.PaymentID, in.Signature) {
		return nil, ErrInvalidSignature
	}

	var record model.PaymentRecord
	err := s.db.WithContext(ctx).Preload("Course").
		Where("order_id = ?", in.OrderID).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	meta, err := record.DecodeMetadata()
	if err != nil {
		return nil, fmt.Errorf("corrupt payment metadata for order %s: %w", in.OrderID, err)
	}

	if record.Status == model.PaymentSuccess {
		// Duplicate delivery after a completed verification
		return &VerifyResult{
			CourseID:         record.CourseID,
			CourseTitle:      record.Course.Title,
			AlreadyProcessed: true,
		}, nil
	}

	// Failed is terminal too: a late callback on a failed or swept order must
	// not grant anything the books will never show. The buyer retries checkout.
	if record.Status == model.PaymentFailed {
		return nil, ErrPaymentFailed
	}

	user, err := s.resolveUser(ctx, &record, meta, in.GuestEmail)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	expiresAt, err := ExpiryFor(record.Course.AccessType, now)
	if err != nil {
		return nil, err
	}

	settled := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Idempotent grant: a duplicate webhook or a renewal updates the
		// one existing row instead of inserting a second.
		ent := model.Entitlement{
			UserID:      user.ID,
			CourseID:    record.CourseID,
			PurchasedAt: now,
			ExpiresAt:   expiresAt,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"purchased_at", "expires_at", "updated_at"}),
		}).Create(&ent).Error; err != nil {
			return err
		}

		// Guest purchases verify the account as a side effect.
		userUpdates := map[string]interface{}{"verified": true}
		if err := tx.Model(&model.User{}).Where("id = ?", user.ID).Updates(userUpdates).Error; err != nil {
			return err
		}

		meta.SettledAt = &now
		settledRecord := model.PaymentRecord{}
		if err := settledRecord.SetMetadata(meta); err != nil {
			return err
		}

		// The authoritative guard: only the invocation that wins this
		// conditional update performs side effects.
		res := tx.Model(&model.PaymentRecord{}).
			Where("id = ? AND status = ?", record.ID, model.PaymentPending).
			Updates(map[string]interface{}{
				"status":     model.PaymentSuccess,
				"payment_id": in.PaymentID,
				"user_id":    user.ID,
				"metadata":   settledRecord.Metadata,
			})
		if res.Error != nil {
			return res.Error
		}
		settled = res.RowsAffected == 1
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &VerifyResult{
		CourseID:    record.CourseID,
		CourseTitle: record.Course.Title,
		ExpiresAt:   expiresAt,
	}

	if !settled {
		// A concurrent delivery won the flip; the grant above was a no-op
		// upsert of the same row.
		result.AlreadyProcessed = true
		return result, nil
	}

	record.PaymentID = in.PaymentID
	record.Status = model.PaymentSuccess
	record.UserID = &user.ID
	record.UpdatedAt = now

	// Best-effort tail: receipt and email failures are logged and swallowed,
	// the grant is already durable.
	s.attachReceipt(ctx, &record, meta, user)

	if meta.GuestCheckout || meta.NewUser {
		token, _, err := s.jwt.GenerateAccessToken(user.ID, user.Email, user.Role, user.TokenVersion)
		if err != nil {
			log.Printf("auto-login token for user %d failed: %v", user.ID, err)
		} else {
			result.AutoLoginToken = token
		}
	}

	return result, nil
}

// resolveUser loads the purchasing user, or materializes an account from the
// guest email captured at checkout. Accounts created here are auto-verified.
func (s *PaymentService) resolveUser(ctx context.Context, record *model.PaymentRecord, meta model.PaymentMetadata, fallbackEmail string) (*model.User, error) {
	if record.UserID != nil {
		var user model.User
		if err := s.db.WithContext(ctx).First(&user, *record.UserID).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}

	email := meta.GuestEmail
	if email == "" {
		email = fallbackEmail
	}
	if email == "" {
		return nil, ErrUserNotFound
	}

	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	password, err := auth.GenerateRandomPassword()
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user = model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         email,
		Role:         "student",
		Verified:     true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	if err := s.email.SendAccountCredentials(user.Email, password); err != nil {
		log.Printf("credentials email for %s failed: %v", user.Email, err)
	}

	return &user, nil
}

// attachReceipt builds the HTML receipt, uploads it and emails the buyer.
// Every step is best-effort.
func (s *PaymentService) attachReceipt(ctx context.Context, record *model.PaymentRecord, meta model.PaymentMetadata, user *model.User) {
	html, err := BuildReceipt(record, &record.Course, user)
	if err != nil {
		log.Printf("receipt build for order %s failed: %v", record.OrderID, err)
		return
	}

	if s.spaces == nil {
		return
	}

	key := ReceiptKey(record, time.Now().UTC())
	url, err := s.spaces.UploadBytes(ctx, key, []byte(html), "text/html")
	if err != nil {
		log.Printf("receipt upload for order %s failed: %v", record.OrderID, err)
		return
	}

	meta.ReceiptKey = key
	meta.ReceiptURL = url
	stub := model.PaymentRecord{}
	if err := stub.SetMetadata(meta); err == nil {
		if err := s.db.WithContext(ctx).Model(&model.PaymentRecord{}).
			Where("id = ?", record.ID).
			Update("metadata", stub.Metadata).Error; err != nil {
			log.Printf("receipt metadata update for order %s failed: %v", record.OrderID, err)
		}
	}

	if err := s.email.SendReceiptEmail(user.Email, user.Name, record.Course.Title, url); err != nil {
		log.Printf("receipt email for order %s failed: %v", record.OrderID, err)
	}
}

// webhookEvent is the envelope the gateway posts to the webhook endpoint
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID               string `json:"id"`
				OrderID          string `json:"order_id"`
				ErrorDescription string `json:"error_description"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// HandleWebhook processes a signed gateway webhook delivery. Only failure
// events mutate state here; success is settled by Verify, and a duplicate
// success delivery is a no-op against the conditional update.
func (s *PaymentService) HandleWebhook(ctx context.Context, rawBody []byte, signature string) error {
	if !s.gateway.VerifyWebhookSignature(rawBody, signature) {
		return ErrInvalidSignature
	}

	var event webhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return fmt.Errorf("malformed webhook body: %w", err)
	}

	switch event.Event {
	case "payment.failed":
		return s.markFailed(ctx, event.Payload.Payment.Entity.OrderID,
			event.Payload.Payment.Entity.ID, event.Payload.Payment.Entity.ErrorDescription)
	default:
		// Unhandled events are acknowledged so the gateway stops retrying
		log.Printf("ignoring webhook event %q", event.Event)
		return nil
	}
}

// markFailed flips a pending record to failed with a reason. It never touches
// entitlements.
func (s *PaymentService) markFailed(ctx context.Context, orderID, paymentID, reason string) error {
	var record model.PaymentRecord
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrOrderNotFound
		}
		return err
	}

	meta, err := record.DecodeMetadata()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	meta.FailedAt = &now
	meta.FailureReason = reason

	stub := model.PaymentRecord{}
	if err := stub.SetMetadata(meta); err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Model(&model.PaymentRecord{}).
		Where("id = ? AND status = ?", record.ID, model.PaymentPending).
		Updates(map[string]interface{}{
			"status":     model.PaymentFailed,
			"payment_id": paymentID,
			"metadata":   stub.Metadata,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		log.Printf("failure webhook for order %s arrived after settlement, ignored", orderID)
	}
	return nil
}
