package razorpay

import "github.com/pankajcr7/flipkart-clone/provider"

// Register Razorpay gateway with the gateway registry
func init() {
	provider.Register("razorpay", NewGateway)
}
