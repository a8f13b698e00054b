package provider

import (
	"context"
	"math"
	"time"
)

// Status represents the canonical outcome status of a payment
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Result status strings as reported by the redirect gateway's order-status API.
// All adapters converge on these for the stored result info.
const (
	ResultTxnSuccess = "TXN_SUCCESS"
	ResultTxnFailure = "TXN_FAILURE"
)

// ResultInfo carries the provider's result triple for a transaction
type ResultInfo struct {
	ResultStatus string `json:"resultStatus"`
	ResultCode   string `json:"resultCode"`
	ResultMsg    string `json:"resultMsg"`
}

// Outcome is the provider-agnostic result shape all gateway adapters
// converge on before reaching the reconciler.
type Outcome struct {
	Provider   string     `json:"provider"`
	OrderID    string     `json:"orderId"`
	TxnID      string     `json:"txnId"`
	Status     Status     `json:"status"`
	Amount     float64    `json:"amount"`
	Currency   string     `json:"currency"`
	ResultInfo ResultInfo `json:"resultInfo"`
	Raw        any        `json:"raw,omitempty"`
}

// Payment is the durable record created exactly once per reconciled
// provider transaction. It is immutable after creation.
type Payment struct {
	ID         string     `json:"id"`
	Provider   string     `json:"provider"`
	OrderID    string     `json:"orderId"`
	TxnID      string     `json:"txnId"`
	Status     Status     `json:"status"`
	Amount     float64    `json:"amount"`
	Currency   string     `json:"currency"`
	ResultInfo ResultInfo `json:"resultInfo"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Customer represents the buyer information passed to a gateway
type Customer struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// InitiateRequest contains all information required to start a payment
type InitiateRequest struct {
	Amount   float64  `json:"amount" validate:"required,gt=0"`
	Currency string   `json:"currency,omitempty"`
	Receipt  string   `json:"receipt,omitempty"`
	Customer Customer `json:"customer"`
}

// InitiateResponse contains the provider handle returned to the client.
// Which fields are set depends on the gateway's handshake shape.
type InitiateResponse struct {
	Provider string `json:"provider"`
	OrderID  string `json:"orderId,omitempty"`

	// Redirect-checksum gateway: full parameter set for the hosted form
	Params map[string]string `json:"params,omitempty"`

	// Signature-order gateway: the provider order object, returned verbatim
	Order map[string]any `json:"order,omitempty"`

	// Card-intent gateway: client-side secret plus intent id
	ClientSecret    string `json:"clientSecret,omitempty"`
	PaymentIntentID string `json:"paymentIntentId,omitempty"`
}

// Gateway defines the interface that all payment gateway adapters implement
type Gateway interface {
	// Initialize sets up the gateway with authentication and configuration
	Initialize(config map[string]string) error

	// Initiate starts a payment with the external provider and returns
	// the handle the client needs to complete it
	Initiate(ctx context.Context, request InitiateRequest) (*InitiateResponse, error)

	// Reconcile verifies an inbound provider response and maps it to a
	// canonical outcome. Verification failure never yields an outcome.
	Reconcile(ctx context.Context, data map[string]string) (*Outcome, error)
}

// GatewayFactory is a function type that creates a new Gateway
type GatewayFactory func() Gateway

// ToMinorUnits converts a major-unit decimal amount to integer
// minor currency units (e.g. rupees to paise).
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// ToMajorUnits converts integer minor currency units back to a
// major-unit decimal amount.
func ToMajorUnits(amount int64) float64 {
	return float64(amount) / 100
}
