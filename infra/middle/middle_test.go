package middle

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

func TestAuthMiddleware(t *testing.T) {
	// Set test API key
	os.Setenv("API_KEY", "test-api-key")
	defer os.Unsetenv("API_KEY")

	middleware := AuthMiddleware()

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("success"))
	}))

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{
			name:           "Valid API key",
			authHeader:     "Bearer test-api-key",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Invalid API key",
			authHeader:     "Bearer wrong-key",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Missing Authorization header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid format",
			authHeader:     "Basic test-api-key",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	middleware := SecurityHeadersMiddleware()

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	expectedHeaders := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
	}

	for header, expected := range expectedHeaders {
		if got := w.Header().Get(header); got != expected {
			t.Errorf("Expected header %s=%s, got %s", header, expected, got)
		}
	}
}

func TestRequestValidationMiddleware(t *testing.T) {
	middleware := RequestValidationMiddleware()

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name           string
		method         string
		path           string
		contentType    string
		expectedStatus int
	}{
		{
			name:           "JSON content type accepted",
			method:         "POST",
			path:           "/api/v1/razorpay/order",
			contentType:    "application/json",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Form content type accepted on callback",
			method:         "POST",
			path:           "/api/v1/callback",
			contentType:    "application/x-www-form-urlencoded",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Form content type rejected on API route",
			method:         "POST",
			path:           "/api/v1/razorpay/order",
			contentType:    "application/x-www-form-urlencoded",
			expectedStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:           "Missing content type on API route",
			method:         "POST",
			path:           "/api/v1/razorpay/order",
			contentType:    "",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "GET passes without content type",
			method:         "GET",
			path:           "/api/v1/payment/status/abc",
			contentType:    "",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     2,
		window:   time.Minute,
	}

	if !rl.Allow("1.2.3.4") {
		t.Error("First request should be allowed")
	}
	if !rl.Allow("1.2.3.4") {
		t.Error("Second request should be allowed")
	}
	if rl.Allow("1.2.3.4") {
		t.Error("Third request should be rate limited")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("Different IP should be allowed")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		expected   string
	}{
		{
			name:       "X-Forwarded-For single",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.5"},
			expected:   "203.0.113.5",
		},
		{
			name:       "X-Forwarded-For multiple",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.5, 70.41.3.18"},
			expected:   "203.0.113.5",
		},
		{
			name:       "X-Real-IP",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Real-IP": "198.51.100.7"},
			expected:   "198.51.100.7",
		},
		{
			name:       "RemoteAddr fallback",
			remoteAddr: "192.0.2.9:5678",
			headers:    nil,
			expected:   "192.0.2.9",
		},
		{
			name:       "IPv6 localhost",
			remoteAddr: "[::1]:5678",
			headers:    nil,
			expected:   "127.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			if got := GetClientIP(req); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestExtractGatewayFromURL(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/api/v1/razorpay/order", "razorpay"},
		{"/api/v1/stripe/payment-intent", "stripe"},
		{"/api/v1/payment/process", "paytm"},
		{"/api/v1/callback", "paytm"},
	}

	for _, tt := range tests {
		if got := extractGatewayFromURL(tt.path); got != tt.expected {
			t.Errorf("extractGatewayFromURL(%s) = %s, want %s", tt.path, got, tt.expected)
		}
	}
}
