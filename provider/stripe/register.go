package stripe

import "github.com/pankajcr7/flipkart-clone/provider"

// Register Stripe gateway with the gateway registry
func init() {
	provider.Register("stripe", NewGateway)
}
