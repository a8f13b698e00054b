package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	stripeapi "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/pankajcr7/flipkart-clone/provider"
)

const (
	defaultCurrency = "inr"
	metadataCompany = "Flipkart"
)

// paymentIntents is the slice of the Stripe SDK the gateway needs
type paymentIntents interface {
	New(params *stripeapi.PaymentIntentParams) (*stripeapi.PaymentIntent, error)
	Confirm(id string, params *stripeapi.PaymentIntentConfirmParams) (*stripeapi.PaymentIntent, error)
}

// StripeGateway implements the provider.Gateway interface for Stripe's
// PaymentIntents flow
type StripeGateway struct {
	secretKey      string
	publishableKey string
	intents        paymentIntents
}

// NewGateway creates a new Stripe payment gateway
func NewGateway() provider.Gateway {
	return &StripeGateway{}
}

// Initialize sets up the Stripe gateway with API keys
func (s *StripeGateway) Initialize(conf map[string]string) error {
	s.secretKey = conf["secretKey"]
	if s.secretKey == "" {
		return errors.New("stripe: secretKey is required")
	}
	s.publishableKey = conf["publishableKey"]

	sc := &client.API{}
	sc.Init(s.secretKey, nil)
	s.intents = sc.PaymentIntents

	return nil
}

// PublishableKey returns the client-side key for Stripe.js
func (s *StripeGateway) PublishableKey() string {
	return s.publishableKey
}

// Initiate creates a PaymentIntent and returns its client secret for
// the browser-side confirmation flow
func (s *StripeGateway) Initiate(ctx context.Context, request provider.InitiateRequest) (*provider.InitiateResponse, error) {
	if request.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than zero", provider.ErrProviderRejected)
	}

	currency := strings.ToLower(request.Currency)
	if currency == "" {
		currency = defaultCurrency
	}

	params := &stripeapi.PaymentIntentParams{
		Amount:   stripeapi.Int64(provider.ToMinorUnits(request.Amount)),
		Currency: stripeapi.String(currency),
	}
	// The SDK's own 80s timeout is far looser than the handler deadline;
	// the request context keeps the caller's deadline authoritative.
	params.Context = ctx
	params.AddMetadata("company", metadataCompany)
	if request.Customer.Email != "" {
		params.ReceiptEmail = stripeapi.String(request.Customer.Email)
	}

	intent, err := s.intents.New(params)
	if err != nil {
		return nil, translateStripeError(err)
	}

	return &provider.InitiateResponse{
		Provider:        "stripe",
		OrderID:         intent.ID,
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	}, nil
}

// Reconcile confirms the PaymentIntent with the supplied payment method
// and maps the terminal status. Anything other than "succeeded" is a
// provider rejection carrying Stripe's status string.
func (s *StripeGateway) Reconcile(ctx context.Context, data map[string]string) (*provider.Outcome, error) {
	intentID := data["payment_intent_id"]
	paymentMethod := data["payment_method_id"]

	if intentID == "" || paymentMethod == "" {
		return nil, fmt.Errorf("%w: missing payment intent id or payment method id", provider.ErrVerificationFailed)
	}

	confirmParams := &stripeapi.PaymentIntentConfirmParams{
		PaymentMethod: stripeapi.String(paymentMethod),
	}
	confirmParams.Context = ctx

	intent, err := s.intents.Confirm(intentID, confirmParams)
	if err != nil {
		return nil, translateStripeError(err)
	}

	if intent.Status != stripeapi.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("%w: payment intent status %s", provider.ErrProviderRejected, intent.Status)
	}

	return &provider.Outcome{
		Provider: "stripe",
		OrderID:  intent.ID,
		TxnID:    intent.ID,
		Status:   provider.StatusSuccess,
		Amount:   provider.ToMajorUnits(intent.Amount),
		Currency: strings.ToUpper(string(intent.Currency)),
		ResultInfo: provider.ResultInfo{
			ResultStatus: provider.ResultTxnSuccess,
			ResultCode:   "01",
			ResultMsg:    "Payment succeeded",
		},
		Raw: intent,
	}, nil
}

// translateStripeError maps SDK errors into the payment error taxonomy
func translateStripeError(err error) error {
	var stripeErr *stripeapi.Error
	if errors.As(err, &stripeErr) {
		switch stripeErr.Type {
		case stripeapi.ErrorTypeCard, stripeapi.ErrorTypeInvalidRequest:
			return fmt.Errorf("%w: %s", provider.ErrProviderRejected, stripeErr.Msg)
		default:
			return fmt.Errorf("%w: %s", provider.ErrNetworkFailure, stripeErr.Msg)
		}
	}
	return fmt.Errorf("%w: %v", provider.ErrNetworkFailure, err)
}
