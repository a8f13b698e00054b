package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/pankajcr7/flipkart-clone/handler"
	"github.com/pankajcr7/flipkart-clone/infra/middle"

	// Import for side-effect registration
	_ "github.com/pankajcr7/flipkart-clone/provider/paytm"
	_ "github.com/pankajcr7/flipkart-clone/provider/razorpay"
	_ "github.com/pankajcr7/flipkart-clone/provider/stripe"
)

// Routes registers the payment API routes. The hosted-redirect endpoints
// stay open: the process endpoint is hit before the shopper authenticates
// with the gateway and the callback arrives from the gateway itself.
func Routes(r chi.Router, paymentHandler *handler.PaymentHandler) {
	r.Post("/payment/process", paymentHandler.ProcessPayment)
	r.Post("/callback", paymentHandler.PaymentCallback)

	r.Group(func(r chi.Router) {
		r.Use(middle.AuthMiddleware())

		r.Route("/razorpay", func(r chi.Router) {
			r.Post("/order", paymentHandler.CreateRazorpayOrder)
			r.Post("/verify", paymentHandler.VerifyRazorpayPayment)
			r.Get("/key", paymentHandler.GetRazorpayKey)
		})

		r.Route("/stripe", func(r chi.Router) {
			r.Post("/payment-intent", paymentHandler.CreateStripePaymentIntent)
			r.Post("/confirm-payment", paymentHandler.ConfirmStripePayment)
			r.Get("/publishable-key", paymentHandler.GetStripePublishableKey)
		})

		r.Get("/payment/status/{id}", paymentHandler.GetPaymentStatus)
	})
}
