package razorpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateOrder(t *testing.T) {
	var gotPath, gotUser string
	var gotPayload map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, _, _ = r.BasicAuth()
		json.NewDecoder(r.Body).Decode(&gotPayload)

		json.NewEncoder(w).Encode(Order{
			ID:       "order_test_1",
			Amount:   499900,
			Currency: "INR",
			Receipt:  "cl_receipt",
			Status:   "created",
		})
	}))
	defer server.Close()

	client := NewClient(Config{
		KeyID:     "rzp_test_key",
		KeySecret: "secret",
		BaseURL:   server.URL,
	})

	order, err := client.CreateOrder(context.Background(), 499900, "rupee", "cl_receipt", map[string]string{"course_id": "1"})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if gotPath != "/orders" {
		t.Errorf("path = %q, want /orders", gotPath)
	}
	if gotUser != "rzp_test_key" {
		t.Errorf("basic auth user = %q, want the key id", gotUser)
	}
	if gotPayload["currency"] != "INR" {
		t.Errorf("currency = %v, want INR", gotPayload["currency"])
	}
	if order.ID != "order_test_1" {
		t.Errorf("order id = %q, want order_test_1", order.ID)
	}
}

func TestCreateOrderGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":"BAD_REQUEST_ERROR"}}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(Config{KeyID: "k", KeySecret: "s", BaseURL: server.URL})

	_, err := client.CreateOrder(context.Background(), 100, "rupee", "r", nil)
	if err == nil {
		t.Fatal("expected an error on a non-2xx reply")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", apiErr.StatusCode)
	}
}
