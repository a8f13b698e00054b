package paytm

import "github.com/pankajcr7/flipkart-clone/provider"

// Register Paytm gateway with the gateway registry
func init() {
	provider.Register("paytm", NewGateway)
}
