package razorpay

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/pankajcr7/flipkart-clone/provider"
)

const (
	// API URLs
	apiProductionURL = "https://api.razorpay.com"

	// API Endpoints
	endpointCreateOrder = "/v1/orders"

	// Callback field names from Razorpay checkout
	fieldOrderID   = "razorpay_order_id"
	fieldPaymentID = "razorpay_payment_id"
	fieldSignature = "razorpay_signature"

	defaultCurrency = "INR"
	defaultTimeout  = 30 * time.Second
)

// RazorpayGateway implements the provider.Gateway interface for
// Razorpay's order-plus-checkout flow
type RazorpayGateway struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *provider.GatewayHTTPClient
}

// NewGateway creates a new Razorpay payment gateway
func NewGateway() provider.Gateway {
	return &RazorpayGateway{}
}

// Initialize sets up the Razorpay gateway with API credentials
func (r *RazorpayGateway) Initialize(conf map[string]string) error {
	r.keyID = conf["keyId"]
	r.keySecret = conf["keySecret"]

	if r.keyID == "" || r.keySecret == "" {
		return errors.New("razorpay: keyId and keySecret are required")
	}

	r.baseURL = apiProductionURL
	if baseURL, ok := conf["baseUrl"]; ok && baseURL != "" {
		r.baseURL = baseURL
	}

	isProduction := conf["environment"] == "production"
	r.client = provider.NewGatewayHTTPClient(provider.CreateHTTPClientConfig(r.baseURL, isProduction, defaultTimeout))

	return nil
}

type createOrderRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	PaymentCapture int    `json:"payment_capture"`
}

// Initiate creates a Razorpay order and returns it verbatim for the
// client-side checkout widget
func (r *RazorpayGateway) Initiate(ctx context.Context, request provider.InitiateRequest) (*provider.InitiateResponse, error) {
	if request.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than zero", provider.ErrProviderRejected)
	}

	currency := request.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	receipt := request.Receipt
	if receipt == "" {
		receipt = fmt.Sprintf("receipt_order_%d", time.Now().UnixMilli())
	}

	resp, err := r.client.SendJSON(ctx, &provider.HTTPRequest{
		Method:   "POST",
		Endpoint: endpointCreateOrder,
		Headers:  map[string]string{"Authorization": r.basicAuth()},
		Body: createOrderRequest{
			Amount:         provider.ToMinorUnits(request.Amount),
			Currency:       currency,
			Receipt:        receipt,
			PaymentCapture: 1,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create order: %v", provider.ErrNetworkFailure, err)
	}

	var order map[string]any
	if err := r.client.ParseJSONResponse(resp, &order); err != nil {
		return nil, fmt.Errorf("%w: malformed order response: %v", provider.ErrNetworkFailure, err)
	}

	orderID, _ := order["id"].(string)
	if orderID == "" {
		return nil, fmt.Errorf("%w: order response missing id", provider.ErrNetworkFailure)
	}

	return &provider.InitiateResponse{
		Provider: "razorpay",
		OrderID:  orderID,
		Order:    order,
	}, nil
}

// Reconcile verifies the checkout signature against the order and
// payment identifiers. A matching signature is the provider's verdict;
// no further network call is needed.
func (r *RazorpayGateway) Reconcile(_ context.Context, data map[string]string) (*provider.Outcome, error) {
	orderID := data[fieldOrderID]
	paymentID := data[fieldPaymentID]
	signature := data[fieldSignature]

	if orderID == "" || paymentID == "" || signature == "" {
		return nil, fmt.Errorf("%w: missing order id, payment id or signature", provider.ErrVerificationFailed)
	}

	if !VerifySignature(orderID, paymentID, r.keySecret, signature) {
		return nil, fmt.Errorf("%w: signature mismatch", provider.ErrVerificationFailed)
	}

	currency := data["currency"]
	if currency == "" {
		currency = defaultCurrency
	}

	var amount float64
	if raw, ok := data["amount"]; ok && raw != "" {
		amount, _ = strconv.ParseFloat(raw, 64)
	}

	return &provider.Outcome{
		Provider: "razorpay",
		OrderID:  orderID,
		TxnID:    paymentID,
		Status:   provider.StatusSuccess,
		Amount:   amount,
		Currency: currency,
		ResultInfo: provider.ResultInfo{
			ResultStatus: provider.ResultTxnSuccess,
			ResultCode:   "01",
			ResultMsg:    "Payment verified successfully",
		},
	}, nil
}

func (r *RazorpayGateway) basicAuth() string {
	credentials := base64.StdEncoding.EncodeToString([]byte(r.keyID + ":" + r.keySecret))
	return "Basic " + credentials
}
