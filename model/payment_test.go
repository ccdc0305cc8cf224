package model

import (
	"testing"
	"time"
)

func TestPaymentMetadataRoundTrip(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	var record PaymentRecord
	err := record.SetMetadata(PaymentMetadata{
		GuestEmail:    "guest@example.com",
		GuestCheckout: true,
		NewUser:       true,
		InitiatedAt:   now,
	})
	if err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}

	meta, err := record.DecodeMetadata()
	if err != nil {
		t.Fatalf("DecodeMetadata: %v", err)
	}
	if meta.Version != PaymentMetadataVersion {
		t.Errorf("Version = %d, want %d", meta.Version, PaymentMetadataVersion)
	}
	if meta.GuestEmail != "guest@example.com" || !meta.GuestCheckout || !meta.NewUser {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if !meta.InitiatedAt.Equal(now) {
		t.Errorf("InitiatedAt = %v, want %v", meta.InitiatedAt, now)
	}
}

func TestDecodeMetadataEmptyColumn(t *testing.T) {
	var record PaymentRecord

	meta, err := record.DecodeMetadata()
	if err != nil {
		t.Fatalf("DecodeMetadata: %v", err)
	}
	if meta.Version != PaymentMetadataVersion {
		t.Errorf("empty metadata should default to version %d, got %d", PaymentMetadataVersion, meta.Version)
	}
}

func TestEntitlementIsExpired(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	perpetual := Entitlement{}
	if perpetual.IsExpired(now) {
		t.Error("nil ExpiresAt must never expire")
	}

	active := Entitlement{ExpiresAt: &future}
	if active.IsExpired(now) {
		t.Error("a future expiry is not expired")
	}

	lapsed := Entitlement{ExpiresAt: &past}
	if !lapsed.IsExpired(now) {
		t.Error("a past expiry is expired")
	}
}
