package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pankajcr7/flipkart-clone/handler"
	"github.com/pankajcr7/flipkart-clone/provider"
)

type noopPaymentService struct{}

func (noopPaymentService) Initiate(context.Context, string, provider.InitiateRequest) (*provider.InitiateResponse, error) {
	return &provider.InitiateResponse{}, nil
}

func (noopPaymentService) Reconcile(context.Context, string, map[string]string, bool) (*provider.Payment, error) {
	return &provider.Payment{}, nil
}

func (noopPaymentService) GetPaymentStatus(context.Context, string) (*provider.Payment, error) {
	return &provider.Payment{}, nil
}

func testRouter(t *testing.T) chi.Router {
	t.Helper()
	r := chi.NewRouter()
	paymentHandler := handler.NewPaymentHandler(noopPaymentService{}, validator.New(), "http://localhost:3000", "key", "pk")

	require.NotPanics(t, func() {
		Routes(r, paymentHandler)
	})
	return r
}

func TestRoutes(t *testing.T) {
	r := testRouter(t)

	// The open endpoints must not require an API key
	open := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/payment/process"},
		{http.MethodPost, "/callback"},
	}
	for _, tt := range open {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.NotEqual(t, http.StatusUnauthorized, rec.Code, "%s %s should be open", tt.method, tt.path)
		assert.NotEqual(t, http.StatusNotFound, rec.Code, "%s %s should be routed", tt.method, tt.path)
	}
}

func TestRoutes_GatedEndpointsRequireAuth(t *testing.T) {
	t.Setenv("API_KEY", "test-api-key")
	r := testRouter(t)

	gated := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/razorpay/order"},
		{http.MethodPost, "/razorpay/verify"},
		{http.MethodGet, "/razorpay/key"},
		{http.MethodPost, "/stripe/payment-intent"},
		{http.MethodPost, "/stripe/confirm-payment"},
		{http.MethodGet, "/stripe/publishable-key"},
		{http.MethodGet, "/payment/status/oid-1"},
	}
	for _, tt := range gated {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s should require an API key", tt.method, tt.path)
	}
}

func TestGatewaysRegistered(t *testing.T) {
	// The side-effect imports register all three gateway adapters
	names := provider.DefaultRegistry.GetGatewayNames()
	assert.Contains(t, names, "paytm")
	assert.Contains(t, names, "razorpay")
	assert.Contains(t, names, "stripe")
}
