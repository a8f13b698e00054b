package middle

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pankajcr7/flipkart-clone/infra/opensearch"
)

// responseWriter wraps http.ResponseWriter to capture response data
type responseWriter struct {
	http.ResponseWriter
	body       *bytes.Buffer
	statusCode int
	startTime  time.Time
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		body:           &bytes.Buffer{},
		statusCode:     http.StatusOK,
		startTime:      time.Now(),
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// PaymentLoggingMiddleware creates a middleware for logging payment requests/responses
func PaymentLoggingMiddleware(logger *opensearch.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip logging for non-payment endpoints
			if !isPaymentEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			requestID := uuid.New().String()
			r.Header.Set("X-Request-ID", requestID)

			gateway := extractGatewayFromURL(r.URL.Path)

			// Capture request body
			var requestBody []byte
			if r.Body != nil {
				requestBody, _ = io.ReadAll(r.Body)
				r.Body = io.NopCloser(bytes.NewBuffer(requestBody))
			}

			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			paymentLog := opensearch.PaymentLog{
				Timestamp:        rw.startTime,
				Provider:         gateway,
				Method:           r.Method,
				Endpoint:         r.URL.Path,
				RequestID:        requestID,
				ClientIP:         GetClientIP(r),
				ProcessingTimeMs: time.Since(rw.startTime).Milliseconds(),
			}

			fillPaymentFields(&paymentLog, requestBody, rw.body.Bytes())

			if rw.statusCode >= 400 {
				paymentLog.Error = extractErrorInfo(rw.statusCode, rw.body.Bytes())
			}

			// Log asynchronously to avoid blocking the response
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = logger.LogPaymentEvent(ctx, paymentLog)
			}()
		})
	}
}

// isPaymentEndpoint checks if the URL path is a payment-related endpoint
func isPaymentEndpoint(path string) bool {
	paymentPaths := []string{
		"/api/v1/payment",
		"/api/v1/callback",
		"/api/v1/razorpay",
		"/api/v1/stripe",
	}

	for _, paymentPath := range paymentPaths {
		if strings.HasPrefix(path, paymentPath) {
			return true
		}
	}

	return false
}

// extractGatewayFromURL maps the URL path to the gateway handling it
func extractGatewayFromURL(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/v1/razorpay"):
		return "razorpay"
	case strings.HasPrefix(path, "/api/v1/stripe"):
		return "stripe"
	case strings.HasPrefix(path, "/api/v1/payment/process"), strings.HasPrefix(path, "/api/v1/callback"):
		return "paytm"
	default:
		return "paytm"
	}
}

// fillPaymentFields pulls order/amount details out of request and response bodies
func fillPaymentFields(log *opensearch.PaymentLog, requestBody, responseBody []byte) {
	if len(requestBody) > 0 {
		var requestData map[string]any
		if err := json.Unmarshal(requestBody, &requestData); err == nil {
			if amount, ok := requestData["amount"].(float64); ok {
				log.Amount = amount
			}
			if currency, ok := requestData["currency"].(string); ok {
				log.Currency = currency
			}
		}
	}

	if len(responseBody) > 0 {
		var responseData map[string]any
		if err := json.Unmarshal(responseBody, &responseData); err == nil {
			if orderID, ok := responseData["order_id"].(string); ok {
				log.OrderID = orderID
			}
			if txn, ok := responseData["txn"].(map[string]any); ok {
				if id, ok := txn["id"].(string); ok {
					log.TxnID = id
				}
				if status, ok := txn["status"].(string); ok {
					log.Status = status
				}
			}
		}
	}
}

// extractErrorInfo builds error details from an error response body
func extractErrorInfo(statusCode int, responseBody []byte) opensearch.ErrorInfo {
	info := opensearch.ErrorInfo{Code: http.StatusText(statusCode)}

	var responseData map[string]any
	if err := json.Unmarshal(responseBody, &responseData); err == nil {
		if msg, ok := responseData["message"].(string); ok {
			info.Message = msg
		}
	}

	return info
}
