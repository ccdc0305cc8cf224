package services

import (
	"strings"
	"testing"
	"time"

	"github.com/courseloft/api/model"
)

func receiptFixtures() (*model.PaymentRecord, *model.Course, *model.User) {
	payment := &model.PaymentRecord{
		OrderID:   "order_ABC123",
		PaymentID: "pay_XYZ789",
		Amount:    499900,
		Currency:  model.CurrencyRupee,
		Status:    model.PaymentSuccess,
	}
	payment.ID = 42
	payment.UpdatedAt = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	course := &model.Course{
		Title:      "Data Structures and Algorithms Masterclass",
		AccessType: model.AccessLifetime,
	}
	user := &model.User{Name: "Priya S.", Email: "priya@example.com"}

	return payment, course, user
}

func TestBuildReceiptContainsRequiredFields(t *testing.T) {
	payment, course, user := receiptFixtures()

	html, err := BuildReceipt(payment, course, user)
	if err != nil {
		t.Fatalf("BuildReceipt: %v", err)
	}

	for _, want := range []string{
		"CL-42",
		"15 Jun 2024",
		"Priya S.",
		"priya@example.com",
		course.Title,
		"Lifetime access",
		"order_ABC123",
		"pay_XYZ789",
		"₹4999.00",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("receipt is missing %q", want)
		}
	}
}

func TestBuildReceiptIsDeterministic(t *testing.T) {
	payment, course, user := receiptFixtures()

	first, err := BuildReceipt(payment, course, user)
	if err != nil {
		t.Fatalf("BuildReceipt: %v", err)
	}
	second, err := BuildReceipt(payment, course, user)
	if err != nil {
		t.Fatalf("BuildReceipt: %v", err)
	}
	if first != second {
		t.Error("the same inputs must render the same receipt")
	}
}

func TestBuildReceiptRejectsNilInputs(t *testing.T) {
	payment, course, user := receiptFixtures()

	if _, err := BuildReceipt(nil, course, user); err == nil {
		t.Error("nil payment must be rejected")
	}
	if _, err := BuildReceipt(payment, nil, user); err == nil {
		t.Error("nil course must be rejected")
	}
	if _, err := BuildReceipt(payment, course, nil); err == nil {
		t.Error("nil user must be rejected")
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   int64
		currency string
		want     string
	}{
		{499900, model.CurrencyRupee, "₹4999.00"},
		{9999, model.CurrencyDollar, "$99.99"},
		{100, model.CurrencyRupee, "₹1.00"},
		{5, model.CurrencyRupee, "₹0.05"},
	}

	for _, tt := range tests {
		if got := FormatAmount(tt.amount, tt.currency); got != tt.want {
			t.Errorf("FormatAmount(%d, %s) = %q, want %q", tt.amount, tt.currency, got, tt.want)
		}
	}
}

func TestReceiptKey(t *testing.T) {
	payment := &model.PaymentRecord{OrderID: "order_1"}
	at := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	if got := ReceiptKey(payment, at); got != "receipts/2024/order_1.html" {
		t.Errorf("ReceiptKey = %q", got)
	}
}
