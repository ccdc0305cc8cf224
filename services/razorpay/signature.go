package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// signPayload computes the hex-encoded HMAC-SHA256 of payload under secret,
// which is the signature scheme Razorpay uses for both checkout callbacks and
// webhooks.
func signPayload(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// CheckoutSignaturePayload builds the signed payload for a checkout callback:
// the order id and payment id joined by a pipe.
func CheckoutSignaturePayload(orderID, paymentID string) []byte {
	return []byte(orderID + "|" + paymentID)
}

// SignCheckout computes the expected checkout callback signature
func SignCheckout(secret, orderID, paymentID string) string {
	return signPayload(secret, CheckoutSignaturePayload(orderID, paymentID))
}

// VerifyCheckoutSignature verifies a checkout callback signature in constant
// time
func VerifyCheckoutSignature(secret, orderID, paymentID, signature string) bool {
	expected := SignCheckout(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignWebhook computes the expected webhook signature over the raw request
// body
func SignWebhook(secret string, rawBody []byte) string {
	return signPayload(secret, rawBody)
}

// VerifyWebhookSignature verifies a webhook signature computed over the raw
// request body in constant time
func VerifyWebhookSignature(secret string, rawBody []byte, signature string) bool {
	expected := signPayload(secret, rawBody)
	return hmac.Equal([]byte(expected), []byte(signature))
}
