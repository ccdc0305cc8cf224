package razorpay

import (
	"testing"
)

const testSecret = "test_key_secret"

func TestSignCheckoutMatchesVerify(t *testing.T) {
	signature := SignCheckout(testSecret, "order_ABC123", "pay_XYZ789")

	if !VerifyCheckoutSignature(testSecret, "order_ABC123", "pay_XYZ789", signature) {
		t.Error("a freshly computed signature must verify")
	}
}

func TestVerifyCheckoutSignatureRejectsTampering(t *testing.T) {
	orderID, paymentID := "order_ABC123", "pay_XYZ789"
	signature := SignCheckout(testSecret, orderID, paymentID)

	tests := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
	}{
		{"different order id", "order_ABC124", paymentID, signature},
		{"different payment id", orderID, "pay_XYZ780", signature},
		{"truncated signature", orderID, paymentID, signature[:len(signature)-1]},
		{"empty signature", orderID, paymentID, ""},
		{"wrong secret", orderID, paymentID, SignCheckout("other_secret", orderID, paymentID)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if VerifyCheckoutSignature(testSecret, tt.orderID, tt.paymentID, tt.signature) {
				t.Error("tampered input must not verify")
			}
		})
	}
}

func TestVerifyCheckoutSignatureFlipsOnAnyCharacter(t *testing.T) {
	orderID, paymentID := "order_ABC123", "pay_XYZ789"
	signature := SignCheckout(testSecret, orderID, paymentID)

	for i := 0; i < len(signature); i++ {
		tampered := []byte(signature)
		if tampered[i] == 'a' {
			tampered[i] = 'b'
		} else {
			tampered[i] = 'a'
		}
		if VerifyCheckoutSignature(testSecret, orderID, paymentID, string(tampered)) {
			t.Fatalf("signature with byte %d flipped must not verify", i)
		}
	}
}

func TestCheckoutSignaturePayloadFormat(t *testing.T) {
	payload := CheckoutSignaturePayload("order_1", "pay_2")
	if string(payload) != "order_1|pay_2" {
		t.Errorf("payload = %q, want %q", payload, "order_1|pay_2")
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"event":"payment.failed","payload":{}}`)
	signature := signPayload("webhook_secret", body)

	if !VerifyWebhookSignature("webhook_secret", body, signature) {
		t.Error("a valid webhook signature must verify")
	}
	if VerifyWebhookSignature("webhook_secret", append(body, ' '), signature) {
		t.Error("a modified body must not verify")
	}
	if VerifyWebhookSignature("other_secret", body, signature) {
		t.Error("a signature under another secret must not verify")
	}
}

func TestCurrencyCode(t *testing.T) {
	if got := CurrencyCode("rupee"); got != "INR" {
		t.Errorf("rupee = %q, want INR", got)
	}
	if got := CurrencyCode("dollar"); got != "USD" {
		t.Errorf("dollar = %q, want USD", got)
	}
	if got := CurrencyCode("unknown"); got != "INR" {
		t.Errorf("unknown = %q, want INR fallback", got)
	}
}
