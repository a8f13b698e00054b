package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// ComputeSignature returns the hex HMAC-SHA256 of "orderID|paymentID"
// under the key secret, the signature Razorpay's checkout hands back
// after a successful payment.
func ComputeSignature(orderID, paymentID, keySecret string) string {
	mac := hmac.New(sha256.New, []byte(keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a client-supplied signature in constant time
func VerifySignature(orderID, paymentID, keySecret, signature string) bool {
	expected := ComputeSignature(orderID, paymentID, keySecret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
