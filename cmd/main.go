package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/pankajcr7/flipkart-clone/handler"
	"github.com/pankajcr7/flipkart-clone/infra/config"
	"github.com/pankajcr7/flipkart-clone/infra/conn"
	"github.com/pankajcr7/flipkart-clone/infra/logger"
	"github.com/pankajcr7/flipkart-clone/infra/middle"
	"github.com/pankajcr7/flipkart-clone/infra/opensearch"
	"github.com/pankajcr7/flipkart-clone/provider"
	"github.com/pankajcr7/flipkart-clone/router"
)

var (
	PORT             string
	openSearchLogger *opensearch.Logger
)

func init() {
	// Load Env
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}
	// init conf
	_ = config.App()

	PORT = config.GetEnv("APP_PORT", "4000")

	// Initialize OpenSearch client and logger
	cfg := config.GetAppConfig()
	if cfg.EnableLogging {
		osClient, err := opensearch.NewClient(cfg)
		if err != nil {
			log.Printf("Failed to initialize OpenSearch client: %v", err)
			log.Println("Continuing without OpenSearch logging...")
		} else {
			openSearchLogger = opensearch.NewLogger(osClient)
			log.Println("OpenSearch logging initialized successfully")
		}
	} else {
		log.Println("OpenSearch logging is disabled")
	}

	logger.InitGlobalLogger(openSearchLogger)
}

func main() {
	cfg := config.GetAppConfig()

	// Database
	db := &conn.DB{}
	if err := db.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	defer db.CloseDatabase()

	store, err := provider.NewSQLitePaymentStore(db)
	if err != nil {
		log.Fatalf("Failed to initialize payment store: %v", err)
	}

	// Payment service with all configured gateways
	environment := config.GetEnv("ENVIRONMENT", "development")
	paymentService := provider.NewPaymentService(store)
	paymentService.AddGatewayConfig("paytm", map[string]string{
		"merchantId":   cfg.PaytmMID,
		"merchantKey":  cfg.PaytmMerchantKey,
		"website":      cfg.PaytmWebsite,
		"channelId":    cfg.PaytmChannelID,
		"industryType": cfg.PaytmIndustryType,
		"custId":       cfg.PaytmCustID,
		"baseUrl":      cfg.PaytmBaseURL,
		"callbackUrl":  cfg.AppURL + "/api/v1/callback",
		"environment":  environment,
	})
	paymentService.AddGatewayConfig("razorpay", map[string]string{
		"keyId":       cfg.RazorpayKeyID,
		"keySecret":   cfg.RazorpayKeySecret,
		"baseUrl":     cfg.RazorpayBaseURL,
		"environment": environment,
	})
	paymentService.AddGatewayConfig("stripe", map[string]string{
		"secretKey":      cfg.StripeSecretKey,
		"publishableKey": cfg.StripePublishableKey,
	})

	frontendURL := config.GetEnv("FRONTEND_URL", "http://localhost:3000")
	paymentHandler := handler.NewPaymentHandler(
		paymentService,
		config.App().Validator,
		frontendURL,
		cfg.RazorpayKeyID,
		cfg.StripePublishableKey,
	)
	healthHandler := handler.NewHealthHandler(db)

	// Chi Define Routes
	r := chi.NewRouter()

	// Basic Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Security Middleware
	rateLimiter := middle.NewRateLimiter()
	r.Use(middle.SecurityHeadersMiddleware())
	r.Use(middle.IPWhitelistMiddleware())
	r.Use(middle.RateLimitMiddleware(rateLimiter))
	r.Use(middle.RequestValidationMiddleware())

	// OpenSearch Logging Middleware (add before authentication to log all requests)
	if openSearchLogger != nil {
		r.Use(middle.PaymentLoggingMiddleware(openSearchLogger))
		log.Println("Payment logging middleware enabled")
	}

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Origin", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "Content-Length", "Access-Control-Allow-Origin"},
		AllowCredentials: true,
		MaxAge:           300, // Preflight cache time (second)
	}))

	// Health check endpoint (no auth required)
	r.Get("/health", healthHandler.Check)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		router.Routes(r, paymentHandler)
	})

	// Create a context that listens for interrupt and terminate signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", PORT),
		Handler:           r,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 60 * time.Second,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal(err.Error())
		}
	}()

	log.Println("API is running on", PORT)

	// Block until a signal is received
	<-ctx.Done()

	log.Println("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
