package provider

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pankajcr7/flipkart-clone/infra/conn"
)

// SQLitePaymentStore persists confirmed payment outcomes in SQLite
type SQLitePaymentStore struct {
	db *conn.DB
}

// NewSQLitePaymentStore creates a payment store backed by the given connection
func NewSQLitePaymentStore(db *conn.DB) (*SQLitePaymentStore, error) {
	store := &SQLitePaymentStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate payments schema: %w", err)
	}
	return store, nil
}

func (s *SQLitePaymentStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		provider TEXT NOT NULL,
		order_id TEXT NOT NULL,
		txn_id TEXT NOT NULL,
		status TEXT NOT NULL,
		amount REAL NOT NULL,
		currency TEXT NOT NULL,
		result_status TEXT,
		result_code TEXT,
		result_msg TEXT,
		created_at DATETIME NOT NULL,
		UNIQUE(provider, order_id, txn_id)
	);
	CREATE INDEX IF NOT EXISTS idx_payments_order_id ON payments(order_id);
	`
	return s.db.RetryOperation(func() error {
		_, err := s.db.Exec(schema)
		return err
	}, 3)
}

// SavePayment stores a confirmed outcome exactly once. A second call with the
// same (provider, order_id, txn_id) returns the already-stored payment
// without modifying it.
func (s *SQLitePaymentStore) SavePayment(ctx context.Context, outcome *Outcome) (*Payment, error) {
	payment := &Payment{
		ID:         uuid.New().String(),
		Provider:   outcome.Provider,
		OrderID:    outcome.OrderID,
		TxnID:      outcome.TxnID,
		Status:     outcome.Status,
		Amount:     outcome.Amount,
		Currency:   outcome.Currency,
		ResultInfo: outcome.ResultInfo,
		CreatedAt:  time.Now().UTC(),
	}

	insert := `INSERT INTO payments
		(id, provider, order_id, txn_id, status, amount, currency, result_status, result_code, result_msg, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	err := s.db.RetryOperation(func() error {
		_, execErr := s.db.ExecContext(ctx, insert,
			payment.ID, payment.Provider, payment.OrderID, payment.TxnID,
			string(payment.Status), payment.Amount, payment.Currency,
			payment.ResultInfo.ResultStatus, payment.ResultInfo.ResultCode, payment.ResultInfo.ResultMsg,
			payment.CreatedAt)
		return execErr
	}, 3)
	if err != nil {
		if isUniqueViolation(err) {
			existing, findErr := s.findByKey(ctx, outcome.Provider, outcome.OrderID, outcome.TxnID)
			if findErr != nil {
				return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, findErr)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	return payment, nil
}

// FindByOrderID returns the stored payment for the given order identifier
func (s *SQLitePaymentStore) FindByOrderID(ctx context.Context, orderID string) (*Payment, error) {
	query := `SELECT id, provider, order_id, txn_id, status, amount, currency,
		result_status, result_code, result_msg, created_at
		FROM payments WHERE order_id = ? ORDER BY created_at DESC LIMIT 1`

	row := s.db.QueryRowContext(ctx, query, orderID)
	return scanPayment(row)
}

func (s *SQLitePaymentStore) findByKey(ctx context.Context, provider, orderID, txnID string) (*Payment, error) {
	query := `SELECT id, provider, order_id, txn_id, status, amount, currency,
		result_status, result_code, result_msg, created_at
		FROM payments WHERE provider = ? AND order_id = ? AND txn_id = ?`

	row := s.db.QueryRowContext(ctx, query, provider, orderID, txnID)
	return scanPayment(row)
}

func scanPayment(row *sql.Row) (*Payment, error) {
	var p Payment
	var status string
	err := row.Scan(&p.ID, &p.Provider, &p.OrderID, &p.TxnID, &status,
		&p.Amount, &p.Currency,
		&p.ResultInfo.ResultStatus, &p.ResultInfo.ResultCode, &p.ResultInfo.ResultMsg,
		&p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	p.Status = Status(status)
	return &p, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed")
}
