package validation

import (
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"user@example.com", true},
		{"first.last+tag@sub.example.co.in", true},
		{"UPPER@EXAMPLE.COM", true},
		{"", false},
		{"no-at-sign", false},
		{"@example.com", false},
		{"user@", false},
		{"user@nodot", false},
		{"user @example.com", false},
		{"a@" + strings.Repeat("x", 250) + ".com", false}, // over 254 chars
	}

	for _, tt := range tests {
		if got := ValidateEmail(tt.email); got != tt.valid {
			t.Errorf("ValidateEmail(%q) = %v, want %v", tt.email, got, tt.valid)
		}
	}
}

func TestValidateStruct(t *testing.T) {
	type checkoutRequest struct {
		CourseID uint   `validate:"required"`
		Email    string `validate:"omitempty,email"`
	}

	v := NewValidator()

	if err := v.ValidateStruct(&checkoutRequest{CourseID: 1, Email: "a@b.co"}); err != nil {
		t.Errorf("valid struct rejected: %v", err)
	}
	if err := v.ValidateStruct(&checkoutRequest{CourseID: 1}); err != nil {
		t.Errorf("omitempty email should pass when empty: %v", err)
	}
	if err := v.ValidateStruct(&checkoutRequest{Email: "a@b.co"}); err == nil {
		t.Error("missing required field should fail")
	}
	if err := v.ValidateStruct(&checkoutRequest{CourseID: 1, Email: "not-an-email"}); err == nil {
		t.Error("malformed email should fail")
	}
}
