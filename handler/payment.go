package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/pankajcr7/flipkart-clone/infra/logger"
	"github.com/pankajcr7/flipkart-clone/infra/response"
	"github.com/pankajcr7/flipkart-clone/provider"
)

const handlerTimeout = 30 * time.Second

// PaymentServiceInterface defines the interface for payment operations
type PaymentServiceInterface interface {
	Initiate(ctx context.Context, gatewayName string, request provider.InitiateRequest) (*provider.InitiateResponse, error)
	Reconcile(ctx context.Context, gatewayName string, data map[string]string, async bool) (*provider.Payment, error)
	GetPaymentStatus(ctx context.Context, orderID string) (*provider.Payment, error)
}

// PaymentHandler handles payment related HTTP requests
type PaymentHandler struct {
	paymentService PaymentServiceInterface
	validate       *validator.Validate

	frontendURL          string
	razorpayKeyID        string
	stripePublishableKey string
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService PaymentServiceInterface, validate *validator.Validate, frontendURL, razorpayKeyID, stripePublishableKey string) *PaymentHandler {
	return &PaymentHandler{
		paymentService:       paymentService,
		validate:             validate,
		frontendURL:          frontendURL,
		razorpayKeyID:        razorpayKeyID,
		stripePublishableKey: stripePublishableKey,
	}
}

type processPaymentRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Email  string  `json:"email" validate:"omitempty,email"`
	Phone  string  `json:"phoneNo"`
}

// ProcessPayment starts a hosted-redirect payment and returns the signed
// parameter set the client posts to the payment page
func (h *PaymentHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	var req processPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	resp, err := h.paymentService.Initiate(ctx, "paytm", provider.InitiateRequest{
		Amount: req.Amount,
		Customer: provider.Customer{
			Email:       req.Email,
			PhoneNumber: req.Phone,
		},
	})
	if err != nil {
		response.Error(w, provider.HTTPStatus(err), "Payment initiation failed", nil)
		return
	}

	_ = response.WriteJSON(w, http.StatusOK, map[string]any{
		"paytmParams": resp.Params,
	})
}

// PaymentCallback receives the gateway's form-encoded redirect, reconciles
// the transaction and sends the shopper back to the order page. The order
// page reads the verdict from the status endpoint; only a verification or
// gateway failure stops the redirect.
func (h *PaymentHandler) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	if err := r.ParseForm(); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid callback format", err)
		return
	}

	data := make(map[string]string, len(r.PostForm))
	for key := range r.PostForm {
		data[key] = r.PostForm.Get(key)
	}

	payment, err := h.paymentService.Reconcile(ctx, "paytm", data, true)
	if err != nil {
		logger.Error("Payment callback reconciliation failed", err, logger.LogContext{
			Provider: "paytm",
		})
		response.Error(w, provider.HTTPStatus(err), "Payment verification failed", nil)
		return
	}

	http.Redirect(w, r, h.frontendURL+"/order/"+payment.OrderID, http.StatusFound)
}

type razorpayOrderRequest struct {
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Currency string  `json:"currency"`
	Receipt  string  `json:"receipt"`
}

// CreateRazorpayOrder creates a provider order for the checkout widget
func (h *PaymentHandler) CreateRazorpayOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	var req razorpayOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	resp, err := h.paymentService.Initiate(ctx, "razorpay", provider.InitiateRequest{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
	})
	if err != nil {
		response.Error(w, provider.HTTPStatus(err), "Failed to create order", nil)
		return
	}

	_ = response.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"order":   resp.Order,
	})
}

type razorpayVerifyRequest struct {
	OrderID   string  `json:"razorpay_order_id" validate:"required"`
	PaymentID string  `json:"razorpay_payment_id" validate:"required"`
	Signature string  `json:"razorpay_signature" validate:"required"`
	Amount    float64 `json:"amount"`
}

// VerifyRazorpayPayment checks the checkout signature and records the payment
func (h *PaymentHandler) VerifyRazorpayPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	var req razorpayVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	payment, err := h.paymentService.Reconcile(ctx, "razorpay", map[string]string{
		"razorpay_order_id":   req.OrderID,
		"razorpay_payment_id": req.PaymentID,
		"razorpay_signature":  req.Signature,
		"amount":              strconv.FormatFloat(req.Amount, 'f', -1, 64),
	}, false)
	if err != nil {
		response.Error(w, provider.HTTPStatus(err), "Payment verification failed", nil)
		return
	}

	_ = response.WriteJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    "Payment verified successfully",
		"payment_id": payment.TxnID,
		"order_id":   payment.OrderID,
	})
}

// GetRazorpayKey exposes the public key id for the checkout widget
func (h *PaymentHandler) GetRazorpayKey(w http.ResponseWriter, _ *http.Request) {
	_ = response.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"key":     h.razorpayKeyID,
	})
}

type stripeIntentRequest struct {
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Currency string  `json:"currency"`
	Email    string  `json:"email" validate:"omitempty,email"`
}

// CreateStripePaymentIntent creates a PaymentIntent and returns its client secret
func (h *PaymentHandler) CreateStripePaymentIntent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	var req stripeIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	resp, err := h.paymentService.Initiate(ctx, "stripe", provider.InitiateRequest{
		Amount:   req.Amount,
		Currency: req.Currency,
		Customer: provider.Customer{Email: req.Email},
	})
	if err != nil {
		response.Error(w, provider.HTTPStatus(err), "Failed to create payment intent", nil)
		return
	}

	_ = response.WriteJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"client_secret":     resp.ClientSecret,
		"payment_intent_id": resp.PaymentIntentID,
	})
}

type stripeConfirmRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
	PaymentMethodID string `json:"payment_method_id" validate:"required"`
}

// ConfirmStripePayment confirms a PaymentIntent and records the payment
func (h *PaymentHandler) ConfirmStripePayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	var req stripeConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	payment, err := h.paymentService.Reconcile(ctx, "stripe", map[string]string{
		"payment_intent_id": req.PaymentIntentID,
		"payment_method_id": req.PaymentMethodID,
	}, false)
	if err != nil {
		// Rejections carry the provider's intent status, which the client
		// needs to drive retry flows. Anything else stays server-side.
		if errors.Is(err, provider.ErrProviderRejected) {
			response.Error(w, provider.HTTPStatus(err), "Payment confirmation failed", err)
			return
		}
		response.Error(w, provider.HTTPStatus(err), "Payment confirmation failed", nil)
		return
	}

	_ = response.WriteJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"message":        "Payment successful",
		"payment_intent": payment.TxnID,
	})
}

// GetStripePublishableKey exposes the client-side key for Stripe.js
func (h *PaymentHandler) GetStripePublishableKey(w http.ResponseWriter, _ *http.Request) {
	_ = response.WriteJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"publishableKey": h.stripePublishableKey,
	})
}

// GetPaymentStatus returns the stored payment for an order
func (h *PaymentHandler) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		response.Error(w, http.StatusBadRequest, "Order ID is required", nil)
		return
	}

	payment, err := h.paymentService.GetPaymentStatus(ctx, orderID)
	if err != nil {
		if errors.Is(err, provider.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "Payment Details Not Found", nil)
			return
		}
		response.Error(w, provider.HTTPStatus(err), "Failed to fetch payment details", nil)
		return
	}

	_ = response.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"txn": map[string]string{
			"id":     payment.TxnID,
			"status": payment.ResultInfo.ResultStatus,
		},
	})
}
