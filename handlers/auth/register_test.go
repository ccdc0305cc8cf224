package auth

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

// When Redis is down the router wires the handler with a nil OTP store. Every
// OTP-backed endpoint must refuse with 503 instead of dereferencing it.
func TestOTPEndpointsDegradeWithoutStore(t *testing.T) {
	h := NewAuthHandler(nil, nil, nil, nil, nil)

	app := fiber.New()
	app.Post("/register", h.Register)
	app.Post("/verify-email", h.VerifyEmail)
	app.Post("/resend-otp", h.ResendOTP)
	app.Post("/forgot-password", h.ForgotPassword)
	app.Post("/reset-password", h.ResetPassword)

	paths := []string{"/register", "/verify-email", "/resend-otp", "/forgot-password", "/reset-password"}
	for _, path := range paths {
		req := httptest.NewRequest("POST", path, strings.NewReader(`{"email":"a@example.com"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if resp.StatusCode != fiber.StatusServiceUnavailable {
			t.Errorf("%s: status = %d, want %d", path, resp.StatusCode, fiber.StatusServiceUnavailable)
		}
	}
}
