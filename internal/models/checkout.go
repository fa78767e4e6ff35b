package models

import (
	"time"

	"github.com/google/uuid"
)

// Checkout order purposes.
const (
	CheckoutPurposeOfferPayment       = "offer_payment"
	CheckoutPurposeMethodVerification = "payment_method_verification"
)

// Checkout order statuses.
const (
	CheckoutStatusCreated = "created"
	CheckoutStatusPaid    = "paid"
	CheckoutStatusFailed  = "failed"
)

// CheckoutOrder ties a gateway order to a user and an optional offer.
// For method verification orders, Method records which payment method the
// gateway confirmation should flip.
type CheckoutOrder struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	UserID         uuid.UUID  `db:"user_id" json:"user_id"`
	OfferID        *uuid.UUID `db:"offer_id" json:"offer_id,omitempty"`
	Purpose        string     `db:"purpose" json:"purpose"`
	Method         *string    `db:"method" json:"method,omitempty"`
	GatewayOrderID string     `db:"gateway_order_id" json:"gateway_order_id"`
	Amount         int64      `db:"amount" json:"amount"`
	Currency       string     `db:"currency" json:"currency"`
	Receipt        string     `db:"receipt" json:"receipt"`
	Status         string     `db:"status" json:"status"`
	PaymentID      *string    `db:"payment_id" json:"payment_id,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	PaidAt         *time.Time `db:"paid_at" json:"paid_at,omitempty"`
}
