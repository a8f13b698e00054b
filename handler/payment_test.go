package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/pankajcr7/flipkart-clone/provider"
)

// Mock PaymentService for testing
type mockPaymentService struct {
	initiateFunc         func(ctx context.Context, gatewayName string, request provider.InitiateRequest) (*provider.InitiateResponse, error)
	reconcileFunc        func(ctx context.Context, gatewayName string, data map[string]string, async bool) (*provider.Payment, error)
	getPaymentStatusFunc func(ctx context.Context, orderID string) (*provider.Payment, error)
}

func (m *mockPaymentService) Initiate(ctx context.Context, gatewayName string, request provider.InitiateRequest) (*provider.InitiateResponse, error) {
	if m.initiateFunc != nil {
		return m.initiateFunc(ctx, gatewayName, request)
	}
	return &provider.InitiateResponse{
		Provider: gatewayName,
		OrderID:  "oid-test-1",
		Params:   map[string]string{"ORDER_ID": "oid-test-1", "CHECKSUMHASH": "abc"},
	}, nil
}

func (m *mockPaymentService) Reconcile(ctx context.Context, gatewayName string, data map[string]string, async bool) (*provider.Payment, error) {
	if m.reconcileFunc != nil {
		return m.reconcileFunc(ctx, gatewayName, data, async)
	}
	return &provider.Payment{
		ID:       "pay-1",
		Provider: gatewayName,
		OrderID:  "oid-test-1",
		TxnID:    "TXN-1",
		Status:   provider.StatusSuccess,
	}, nil
}

func (m *mockPaymentService) GetPaymentStatus(ctx context.Context, orderID string) (*provider.Payment, error) {
	if m.getPaymentStatusFunc != nil {
		return m.getPaymentStatusFunc(ctx, orderID)
	}
	return &provider.Payment{
		ID:      "pay-1",
		OrderID: orderID,
		TxnID:   "TXN-1",
		Status:  provider.StatusSuccess,
		ResultInfo: provider.ResultInfo{
			ResultStatus: "TXN_SUCCESS",
			ResultCode:   "01",
			ResultMsg:    "Txn Success",
		},
	}, nil
}

func newTestHandler(service PaymentServiceInterface) *PaymentHandler {
	return NewPaymentHandler(service, validator.New(), "http://localhost:3000", "rzp_test_key", "pk_test_123")
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return body
}

func TestProcessPayment(t *testing.T) {
	handler := newTestHandler(&mockPaymentService{})

	req := httptest.NewRequest("POST", "/api/v1/payment/process",
		strings.NewReader(`{"amount": 499, "email": "buyer@example.com", "phoneNo": "9999999999"}`))
	rec := httptest.NewRecorder()

	handler.ProcessPayment(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	params, ok := body["paytmParams"].(map[string]any)
	if !ok {
		t.Fatalf("response missing paytmParams: %v", body)
	}
	if params["ORDER_ID"] != "oid-test-1" {
		t.Errorf("ORDER_ID = %v", params["ORDER_ID"])
	}
}

func TestProcessPayment_InvalidBody(t *testing.T) {
	handler := newTestHandler(&mockPaymentService{})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"amount": `},
		{"missing amount", `{"email": "buyer@example.com"}`},
		{"negative amount", `{"amount": -5}`},
		{"bad email", `{"amount": 100, "email": "not-an-email"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/v1/payment/process", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			handler.ProcessPayment(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestPaymentCallback_RedirectsToOrderPage(t *testing.T) {
	service := &mockPaymentService{
		reconcileFunc: func(_ context.Context, gatewayName string, data map[string]string, async bool) (*provider.Payment, error) {
			if gatewayName != "paytm" {
				t.Errorf("gateway = %q, want paytm", gatewayName)
			}
			if !async {
				t.Error("callback reconciliation should be async")
			}
			if data["ORDERID"] != "oid-cb-1" {
				t.Errorf("ORDERID = %q", data["ORDERID"])
			}
			return &provider.Payment{OrderID: "oid-cb-1", Status: provider.StatusSuccess}, nil
		},
	}
	handler := newTestHandler(service)

	form := "ORDERID=oid-cb-1&TXNID=TXN-1&STATUS=TXN_SUCCESS&CHECKSUMHASH=abc"
	req := httptest.NewRequest("POST", "/api/v1/callback", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	handler.PaymentCallback(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	location := rec.Header().Get("Location")
	if location != "http://localhost:3000/order/oid-cb-1" {
		t.Errorf("Location = %q", location)
	}
}

func TestPaymentCallback_VerificationFailure(t *testing.T) {
	service := &mockPaymentService{
		reconcileFunc: func(_ context.Context, _ string, _ map[string]string, _ bool) (*provider.Payment, error) {
			return nil, provider.ErrVerificationFailed
		},
	}
	handler := newTestHandler(service)

	req := httptest.NewRequest("POST", "/api/v1/callback", strings.NewReader("ORDERID=oid-x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	handler.PaymentCallback(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
	if body["message"] != "Payment verification failed" {
		t.Errorf("message = %q", body["message"])
	}
}

func TestCreateRazorpayOrder(t *testing.T) {
	service := &mockPaymentService{
		initiateFunc: func(_ context.Context, gatewayName string, request provider.InitiateRequest) (*provider.InitiateResponse, error) {
			if gatewayName != "razorpay" {
				t.Errorf("gateway = %q, want razorpay", gatewayName)
			}
			if request.Amount != 499 {
				t.Errorf("amount = %v, want 499", request.Amount)
			}
			return &provider.InitiateResponse{
				Provider: "razorpay",
				OrderID:  "order_test_1",
				Order:    map[string]any{"id": "order_test_1", "status": "created"},
			}, nil
		},
	}
	handler := newTestHandler(service)

	req := httptest.NewRequest("POST", "/api/v1/razorpay/order", strings.NewReader(`{"amount": 499}`))
	rec := httptest.NewRecorder()

	handler.CreateRazorpayOrder(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
	order, ok := body["order"].(map[string]any)
	if !ok || order["id"] != "order_test_1" {
		t.Errorf("order = %v", body["order"])
	}
}

func TestCreateRazorpayOrder_GatewayErrorNotEchoed(t *testing.T) {
	service := &mockPaymentService{
		initiateFunc: func(_ context.Context, _ string, _ provider.InitiateRequest) (*provider.InitiateResponse, error) {
			return nil, fmt.Errorf("%w: create order: %s", provider.ErrNetworkFailure,
				`{"error":{"description":"authentication failed for rzp_live_secret"}}`)
		},
	}
	handler := newTestHandler(service)

	req := httptest.NewRequest("POST", "/api/v1/razorpay/order", strings.NewReader(`{"amount": 499}`))
	rec := httptest.NewRecorder()

	handler.CreateRazorpayOrder(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["message"] != "Failed to create order" {
		t.Errorf("message = %q", body["message"])
	}
	if _, ok := body["error"]; ok {
		t.Errorf("error detail leaked to client: %v", body["error"])
	}
	if strings.Contains(rec.Body.String(), "rzp_live_secret") {
		t.Errorf("provider payload leaked: %s", rec.Body.String())
	}
}

func TestProcessPayment_GatewayErrorNotEchoed(t *testing.T) {
	service := &mockPaymentService{
		initiateFunc: func(_ context.Context, _ string, _ provider.InitiateRequest) (*provider.InitiateResponse, error) {
			return nil, fmt.Errorf("%w: initiate transaction: merchant key mismatch", provider.ErrNetworkFailure)
		},
	}
	handler := newTestHandler(service)

	req := httptest.NewRequest("POST", "/api/v1/payment/process",
		strings.NewReader(`{"amount": 499, "email": "buyer@example.com"}`))
	rec := httptest.NewRecorder()

	handler.ProcessPayment(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := decodeBody(t, rec)
	if _, ok := body["error"]; ok {
		t.Errorf("error detail leaked to client: %v", body["error"])
	}
}

func TestVerifyRazorpayPayment(t *testing.T) {
	handler := newTestHandler(&mockPaymentService{})

	body := `{"razorpay_order_id": "order_1", "razorpay_payment_id": "pay_1", "razorpay_signature": "sig"}`
	req := httptest.NewRequest("POST", "/api/v1/razorpay/verify", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.VerifyRazorpayPayment(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeBody(t, rec)
	if resp["message"] != "Payment verified successfully" {
		t.Errorf("message = %q", resp["message"])
	}
	if resp["payment_id"] != "TXN-1" {
		t.Errorf("payment_id = %v", resp["payment_id"])
	}
}

func TestVerifyRazorpayPayment_SignatureMismatch(t *testing.T) {
	service := &mockPaymentService{
		reconcileFunc: func(_ context.Context, _ string, _ map[string]string, _ bool) (*provider.Payment, error) {
			return nil, provider.ErrVerificationFailed
		},
	}
	handler := newTestHandler(service)

	body := `{"razorpay_order_id": "order_1", "razorpay_payment_id": "pay_1", "razorpay_signature": "bad"}`
	req := httptest.NewRequest("POST", "/api/v1/razorpay/verify", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.VerifyRazorpayPayment(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	resp := decodeBody(t, rec)
	if resp["success"] != false {
		t.Errorf("success = %v, want false", resp["success"])
	}
	if resp["message"] != "Payment verification failed" {
		t.Errorf("message = %q", resp["message"])
	}
}

func TestGetRazorpayKey(t *testing.T) {
	handler := newTestHandler(&mockPaymentService{})

	req := httptest.NewRequest("GET", "/api/v1/razorpay/key", nil)
	rec := httptest.NewRecorder()

	handler.GetRazorpayKey(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["key"] != "rzp_test_key" {
		t.Errorf("key = %v", body["key"])
	}
}

func TestCreateStripePaymentIntent(t *testing.T) {
	service := &mockPaymentService{
		initiateFunc: func(_ context.Context, gatewayName string, _ provider.InitiateRequest) (*provider.InitiateResponse, error) {
			if gatewayName != "stripe" {
				t.Errorf("gateway = %q, want stripe", gatewayName)
			}
			return &provider.InitiateResponse{
				Provider:        "stripe",
				OrderID:         "pi_test_1",
				ClientSecret:    "pi_test_1_secret",
				PaymentIntentID: "pi_test_1",
			}, nil
		},
	}
	handler := newTestHandler(service)

	req := httptest.NewRequest("POST", "/api/v1/stripe/payment-intent", strings.NewReader(`{"amount": 499}`))
	rec := httptest.NewRecorder()

	handler.CreateStripePaymentIntent(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["client_secret"] != "pi_test_1_secret" {
		t.Errorf("client_secret = %v", body["client_secret"])
	}
	if body["payment_intent_id"] != "pi_test_1" {
		t.Errorf("payment_intent_id = %v", body["payment_intent_id"])
	}
}

func TestConfirmStripePayment(t *testing.T) {
	handler := newTestHandler(&mockPaymentService{})

	body := `{"payment_intent_id": "pi_1", "payment_method_id": "pm_card_visa"}`
	req := httptest.NewRequest("POST", "/api/v1/stripe/confirm-payment", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ConfirmStripePayment(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeBody(t, rec)
	if resp["message"] != "Payment successful" {
		t.Errorf("message = %q", resp["message"])
	}
}

func TestConfirmStripePayment_RejectionCarriesIntentStatus(t *testing.T) {
	service := &mockPaymentService{
		reconcileFunc: func(_ context.Context, _ string, _ map[string]string, _ bool) (*provider.Payment, error) {
			return nil, fmt.Errorf("%w: payment intent status requires_action", provider.ErrProviderRejected)
		},
	}
	handler := newTestHandler(service)

	body := `{"payment_intent_id": "pi_1", "payment_method_id": "pm_card_visa"}`
	req := httptest.NewRequest("POST", "/api/v1/stripe/confirm-payment", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ConfirmStripePayment(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	resp := decodeBody(t, rec)
	errDetail, _ := resp["error"].(string)
	if !strings.Contains(errDetail, "requires_action") {
		t.Errorf("error = %q, want the intent status", errDetail)
	}
}

func TestConfirmStripePayment_NetworkErrorNotEchoed(t *testing.T) {
	service := &mockPaymentService{
		reconcileFunc: func(_ context.Context, _ string, _ map[string]string, _ bool) (*provider.Payment, error) {
			return nil, fmt.Errorf("%w: confirm intent: upstream response sk_live_secret", provider.ErrNetworkFailure)
		},
	}
	handler := newTestHandler(service)

	body := `{"payment_intent_id": "pi_1", "payment_method_id": "pm_card_visa"}`
	req := httptest.NewRequest("POST", "/api/v1/stripe/confirm-payment", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ConfirmStripePayment(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "sk_live_secret") {
		t.Errorf("provider payload leaked: %s", rec.Body.String())
	}
}

func TestGetStripePublishableKey(t *testing.T) {
	handler := newTestHandler(&mockPaymentService{})

	req := httptest.NewRequest("GET", "/api/v1/stripe/publishable-key", nil)
	rec := httptest.NewRecorder()

	handler.GetStripePublishableKey(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["publishableKey"] != "pk_test_123" {
		t.Errorf("publishableKey = %v", body["publishableKey"])
	}
}

func requestWithURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestGetPaymentStatus(t *testing.T) {
	handler := newTestHandler(&mockPaymentService{})

	req := httptest.NewRequest("GET", "/api/v1/payment/status/oid-test-1", nil)
	req = requestWithURLParam(req, "id", "oid-test-1")
	rec := httptest.NewRecorder()

	handler.GetPaymentStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	txn, ok := body["txn"].(map[string]any)
	if !ok {
		t.Fatalf("response missing txn: %v", body)
	}
	if txn["id"] != "TXN-1" {
		t.Errorf("id = %v, want TXN-1", txn["id"])
	}
	if txn["status"] != "TXN_SUCCESS" {
		t.Errorf("status = %v, want TXN_SUCCESS", txn["status"])
	}
	// The stored record stays internal; only the gateway's transaction id
	// and result status go out.
	if len(txn) != 2 {
		t.Errorf("txn has extra fields: %v", txn)
	}
}

func TestGetPaymentStatus_NotFound(t *testing.T) {
	service := &mockPaymentService{
		getPaymentStatusFunc: func(_ context.Context, _ string) (*provider.Payment, error) {
			return nil, provider.ErrNotFound
		},
	}
	handler := newTestHandler(service)

	req := httptest.NewRequest("GET", "/api/v1/payment/status/missing", nil)
	req = requestWithURLParam(req, "id", "missing")
	rec := httptest.NewRecorder()

	handler.GetPaymentStatus(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["message"] != "Payment Details Not Found" {
		t.Errorf("message = %q", body["message"])
	}
}
