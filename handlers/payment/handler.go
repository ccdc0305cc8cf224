package payment

import (
	"github.com/courseloft/api/services"
	authutil "github.com/courseloft/api/utils/auth"
	"github.com/courseloft/api/utils/validation"
)

// PaymentHandler handles checkout, verification callbacks and gateway webhooks
type PaymentHandler struct {
	checkout  *services.CheckoutService
	payments  *services.PaymentService
	jwt       *authutil.JWTManager
	validator *validation.Validator
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(checkout *services.CheckoutService, payments *services.PaymentService, jwt *authutil.JWTManager) *PaymentHandler {
	return &PaymentHandler{
		checkout:  checkout,
		payments:  payments,
		jwt:       jwt,
		validator: validation.NewValidator(),
	}
}
