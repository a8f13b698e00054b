package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pankajcr7/flipkart-clone/infra/logger"
)

// PaymentStore abstracts the durable payment record storage
type PaymentStore interface {
	SavePayment(ctx context.Context, outcome *Outcome) (*Payment, error)
	FindByOrderID(ctx context.Context, orderID string) (*Payment, error)
}

// PaymentService orchestrates gateway operations and outcome persistence
type PaymentService struct {
	registry *GatewayRegistry
	store    PaymentStore
	mu       sync.RWMutex
	gateways map[string]Gateway
	configs  map[string]map[string]string
}

// NewPaymentService creates a payment service backed by the default gateway registry
func NewPaymentService(store PaymentStore) *PaymentService {
	return &PaymentService{
		registry: DefaultRegistry,
		store:    store,
		gateways: make(map[string]Gateway),
		configs:  make(map[string]map[string]string),
	}
}

// AddGatewayConfig registers configuration for a gateway by name
func (s *PaymentService) AddGatewayConfig(name string, config map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[name] = config
}

// GetGateway returns an initialized gateway instance, creating it on first use.
// Safe for concurrent use; each gateway is initialized exactly once.
func (s *PaymentService) GetGateway(name string) (Gateway, error) {
	s.mu.RLock()
	gateway, ok := s.gateways[name]
	s.mu.RUnlock()
	if ok {
		return gateway, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gateway, ok := s.gateways[name]; ok {
		return gateway, nil
	}

	gateway, err := s.registry.CreateGateway(name)
	if err != nil {
		return nil, err
	}

	config, ok := s.configs[name]
	if !ok {
		return nil, fmt.Errorf("no configuration registered for gateway: %s", name)
	}

	if err := gateway.Initialize(config); err != nil {
		return nil, fmt.Errorf("failed to initialize gateway %s: %w", name, err)
	}

	s.gateways[name] = gateway
	return gateway, nil
}

// Initiate starts a payment on the named gateway
func (s *PaymentService) Initiate(ctx context.Context, gatewayName string, req InitiateRequest) (*InitiateResponse, error) {
	gateway, err := s.GetGateway(gatewayName)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := gateway.Initiate(ctx, req)
	if err != nil {
		logger.Error("Payment initiation failed", err, logger.LogContext{
			Provider: gatewayName,
			Fields: map[string]any{
				"amount":   req.Amount,
				"currency": req.Currency,
			},
		})
		return nil, err
	}

	logger.Info("Payment initiated", logger.LogContext{
		Provider: gatewayName,
		Fields: map[string]any{
			"order_id":           resp.OrderID,
			"amount":             req.Amount,
			"processing_time_ms": time.Since(start).Milliseconds(),
		},
	})
	return resp, nil
}

// Reconcile confirms a payment handshake on the named gateway and persists the
// confirmed outcome. On the asynchronous callback path a persistence failure is
// logged but not surfaced, so the shopper still sees the gateway's verdict; on
// synchronous paths it is returned to the caller.
func (s *PaymentService) Reconcile(ctx context.Context, gatewayName string, data map[string]string, async bool) (*Payment, error) {
	gateway, err := s.GetGateway(gatewayName)
	if err != nil {
		return nil, err
	}

	outcome, err := gateway.Reconcile(ctx, data)
	if err != nil {
		logger.Error("Payment reconciliation failed", err, logger.LogContext{
			Provider: gatewayName,
		})
		return nil, err
	}

	payment, saveErr := s.store.SavePayment(ctx, outcome)
	if saveErr != nil {
		logger.Error("Failed to persist payment outcome", saveErr, logger.LogContext{
			Provider: gatewayName,
			Fields: map[string]any{
				"order_id": outcome.OrderID,
				"txn_id":   outcome.TxnID,
				"async":    async,
			},
		})
		if async {
			return outcomeAsPayment(outcome), nil
		}
		return nil, saveErr
	}

	logger.Info("Payment reconciled", logger.LogContext{
		Provider: gatewayName,
		Fields: map[string]any{
			"order_id": payment.OrderID,
			"txn_id":   payment.TxnID,
			"status":   string(payment.Status),
		},
	})
	return payment, nil
}

// GetPaymentStatus returns the stored payment for the given order identifier
func (s *PaymentService) GetPaymentStatus(ctx context.Context, orderID string) (*Payment, error) {
	return s.store.FindByOrderID(ctx, orderID)
}

// outcomeAsPayment wraps an unpersisted outcome so callback handling can still
// report the gateway's verdict when storage is unavailable.
func outcomeAsPayment(outcome *Outcome) *Payment {
	return &Payment{
		Provider:   outcome.Provider,
		OrderID:    outcome.OrderID,
		TxnID:      outcome.TxnID,
		Status:     outcome.Status,
		Amount:     outcome.Amount,
		Currency:   outcome.Currency,
		ResultInfo: outcome.ResultInfo,
		CreatedAt:  time.Now().UTC(),
	}
}
