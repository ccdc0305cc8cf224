package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Payment record statuses. A record only ever moves pending -> success or
// pending -> failed; the success flip is done with a conditional update so a
// duplicate webhook can never process the same order twice.
const (
	PaymentPending = "pending"
	PaymentSuccess = "success"
	PaymentFailed  = "failed"
)

// PaymentMetadataVersion is the current schema version of the metadata column.
const PaymentMetadataVersion = 1

// PaymentMetadata is the closed schema stored in PaymentRecord.Metadata.
// Free-form maps are deliberately avoided; new fields bump the version.
type PaymentMetadata struct {
	Version       int        `json:"version"`
	GuestEmail    string     `json:"guest_email,omitempty"`
	GuestCheckout bool       `json:"guest_checkout"`
	NewUser       bool       `json:"new_user"` // user was provisioned during this checkout
	InitiatedAt   time.Time  `json:"initiated_at"`
	SettledAt     *time.Time `json:"settled_at,omitempty"`
	FailedAt      *time.Time `json:"failed_at,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
	ReceiptKey    string     `json:"receipt_key,omitempty"`
	ReceiptURL    string     `json:"receipt_url,omitempty"`
}

// PaymentRecord represents one checkout attempt against the payment gateway.
// UserID stays nil for guest checkouts until verification resolves the user.
type PaymentRecord struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	OrderID   string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"order_id"`
	PaymentID string         `gorm:"type:varchar(100)" json:"payment_id"`
	UserID    *uint          `gorm:"index" json:"user_id"`
	CourseID  uint           `gorm:"not null;index" json:"course_id"`
	Amount    int64          `gorm:"not null" json:"amount"` // minor currency units
	Currency  string         `gorm:"type:varchar(10);not null" json:"currency"`
	Status    string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`

	// Relationships
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

// TableName specifies the table name for PaymentRecord
func (PaymentRecord) TableName() string {
	return "payment_records"
}

// DecodeMetadata unmarshals the metadata column into its typed schema
func (p *PaymentRecord) DecodeMetadata() (PaymentMetadata, error) {
	var meta PaymentMetadata
	if len(p.Metadata) == 0 {
		return PaymentMetadata{Version: PaymentMetadataVersion}, nil
	}
	if err := json.Unmarshal(p.Metadata, &meta); err != nil {
		return meta, err
	}
	return meta, nil
}

// SetMetadata marshals the typed schema back into the metadata column
func (p *PaymentRecord) SetMetadata(meta PaymentMetadata) error {
	if meta.Version == 0 {
		meta.Version = PaymentMetadataVersion
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	p.Metadata = datatypes.JSON(raw)
	return nil
}
