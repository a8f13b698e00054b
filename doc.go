// Package flipkartclone provides the payment core of an e-commerce
// backend: three payment gateway adapters behind one Gateway interface,
// signature and checksum verification for inbound provider responses,
// and an idempotent reconciler that records each confirmed transaction
// exactly once.
//
// # Supported Gateways
//
//   - Paytm: hosted redirect flow with checksum-signed parameters and an
//     order-status confirmation call
//   - Razorpay: server-side order creation plus HMAC verification of the
//     checkout widget's response
//   - Stripe: PaymentIntents created and confirmed through the official SDK
//
// # Quick Start
//
// Basic usage example:
//
//	package main
//
//	import (
//	    "context"
//
//	    "github.com/pankajcr7/flipkart-clone/provider"
//	    _ "github.com/pankajcr7/flipkart-clone/provider/razorpay" // Import to register gateway
//	)
//
//	func main() {
//	    service := provider.NewPaymentService(store)
//
//	    service.AddGatewayConfig("razorpay", map[string]string{
//	        "keyId":     "your-key-id",
//	        "keySecret": "your-key-secret",
//	    })
//
//	    resp, err := service.Initiate(context.Background(), "razorpay", provider.InitiateRequest{
//	        Amount:   499,
//	        Currency: "INR",
//	    })
//	    if err != nil {
//	        panic(err)
//	    }
//	    _ = resp
//	}
//
// Each gateway package registers itself with the default registry on
// import, mirroring database/sql driver registration.
package flipkartclone
