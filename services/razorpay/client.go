package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/courseloft/api/model"
)

const (
	defaultBaseURL = "https://api.razorpay.com/v1"
	requestTimeout = 15 * time.Second
)

// Config holds gateway credentials. It is injected at construction so tests
// can run against fake keys and a stub server.
type Config struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	BaseURL       string // defaults to the Razorpay API, overridable in tests
}

// Client talks to the Razorpay orders API
type Client struct {
	config Config
	http   *http.Client
}

// NewClient creates a new gateway client
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	return &Client{
		config: config,
		http:   &http.Client{Timeout: requestTimeout},
	}
}

// KeyID returns the public key the checkout widget needs
func (c *Client) KeyID() string {
	return c.config.KeyID
}

// Order is the gateway's representation of a created order
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// APIError is a non-2xx reply from the gateway
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("razorpay: http %d: %s", e.StatusCode, e.Body)
}

// CurrencyCode maps a display currency to the ISO code the gateway expects
func CurrencyCode(currency string) string {
	switch currency {
	case model.CurrencyDollar:
		return "USD"
	case model.CurrencyRupee:
		return "INR"
	default:
		return "INR"
	}
}

// CreateOrder opens a gateway order for the given amount in minor currency
// units. The notes are echoed back on webhooks and used for reconciliation.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*Order, error) {
	payload := map[string]any{
		"amount":   amount,
		"currency": CurrencyCode(currency),
		"receipt":  receipt,
		"notes":    notes,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.config.KeyID, c.config.KeySecret)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resBody, _ := io.ReadAll(res.Body)
	if res.StatusCode >= 300 {
		return nil, &APIError{StatusCode: res.StatusCode, Body: string(resBody)}
	}

	var order Order
	if err := json.Unmarshal(resBody, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// VerifyCheckoutSignature verifies the signature the checkout widget returns
// after a successful payment
func (c *Client) VerifyCheckoutSignature(orderID, paymentID, signature string) bool {
	return VerifyCheckoutSignature(c.config.KeySecret, orderID, paymentID, signature)
}

// VerifyWebhookSignature verifies a webhook delivery over the raw request body
func (c *Client) VerifyWebhookSignature(rawBody []byte, signature string) bool {
	return VerifyWebhookSignature(c.config.WebhookSecret, rawBody, signature)
}
