package transaction

import (
	"log/slog"
	"time"

	txmodel "github.com/feebook/feebook/internal/core/datamodel/transaction"
)

// Service is the durable, idempotent record of payment attempts. It is the
// source of truth for "was this fee paid".
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// RecordAttempt upserts one payment attempt. Calling it any number of times
// with the same external payment id merges into a single row; it never
// duplicate-inserts and never downgrades a terminal status.
func (s *Service) RecordAttempt(a Attempt) (*txmodel.Transaction, error) {
	if a.ExternalPaymentID != "" {
		return s.recordIdentified(a)
	}
	return s.recordPlaceholder(a)
}

func (s *Service) recordIdentified(a Attempt) (*txmodel.Transaction, error) {
	existing, err := s.repo.GetByExternalPaymentID(a.ExternalPaymentID)
	if err == nil && existing != nil {
		return s.merge(existing, a)
	}

	// A placeholder created before the gateway assigned a payment id gets
	// claimed instead of multiplied.
	placeholder, err := s.repo.GetPlaceholderByOrderID(a.OrderID)
	if err == nil && placeholder != nil {
		placeholder.ExternalPaymentID = &a.ExternalPaymentID
		return s.merge(placeholder, a)
	}

	return s.insert(a)
}

func (s *Service) recordPlaceholder(a Attempt) (*txmodel.Transaction, error) {
	placeholder, err := s.repo.GetPlaceholderByOrderID(a.OrderID)
	if err == nil && placeholder != nil {
		return s.merge(placeholder, a)
	}
	return s.insert(a)
}

func (s *Service) insert(a Attempt) (*txmodel.Transaction, error) {
	now := time.Now()
	t := &txmodel.Transaction{
		OrderID:         a.OrderID,
		FeePlanID:       a.FeePlanID,
		ConsumerID:      a.ConsumerID,
		Amount:          a.Amount,
		Status:          a.Status,
		PaymentTime:     a.PaymentTime,
		PaymentCurrency: a.Currency,
		PaymentMethod:   a.Method,
		BankReference:   a.BankReference,
		PaymentGateway:  a.Gateway,
		PaymentMessage:  a.Message,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if a.ExternalPaymentID != "" {
		t.ExternalPaymentID = &a.ExternalPaymentID
	}
	if t.Status == "" {
		t.Status = txmodel.StatusNotAttempted
	}

	if err := s.repo.Create(t); err != nil {
		s.logger.Error("failed to insert transaction",
			"error", err,
			"order_id", a.OrderID,
			"external_payment_id", a.ExternalPaymentID)
		return nil, err
	}

	s.logger.Info("transaction recorded",
		"transaction_id", t.ID,
		"order_id", t.OrderID,
		"external_payment_id", a.ExternalPaymentID,
		"status", t.Status)

	return t, nil
}

func (s *Service) merge(existing *txmodel.Transaction, a Attempt) (*txmodel.Transaction, error) {
	resolved, conflict := ResolveStatus(existing.Status, a.Status)
	if conflict {
		s.logger.Warn("conflicting terminal statuses for payment, keeping authoritative state",
			"transaction_id", existing.ID,
			"order_id", existing.OrderID,
			"external_payment_id", a.ExternalPaymentID,
			"existing_status", existing.Status,
			"incoming_status", a.Status,
			"resolved_status", resolved)
	}

	if resolved == existing.Status && !s.metadataChanged(existing, a) {
		return existing, nil
	}

	existing.Status = resolved
	if a.PaymentTime != nil {
		existing.PaymentTime = a.PaymentTime
	}
	if a.Currency != "" {
		existing.PaymentCurrency = a.Currency
	}
	if len(a.Method) > 0 {
		existing.PaymentMethod = a.Method
	}
	if a.BankReference != "" {
		existing.BankReference = a.BankReference
	}
	if a.Gateway != "" {
		existing.PaymentGateway = a.Gateway
	}
	if a.Message != "" {
		existing.PaymentMessage = a.Message
	}
	if !a.Amount.IsZero() {
		existing.Amount = a.Amount
	}
	existing.UpdatedAt = time.Now()

	if err := s.repo.Update(existing); err != nil {
		s.logger.Error("failed to update transaction",
			"error", err,
			"transaction_id", existing.ID,
			"external_payment_id", a.ExternalPaymentID)
		return nil, err
	}

	s.logger.Info("transaction updated",
		"transaction_id", existing.ID,
		"order_id", existing.OrderID,
		"status", existing.Status)

	return existing, nil
}

func (s *Service) metadataChanged(existing *txmodel.Transaction, a Attempt) bool {
	if a.ExternalPaymentID != "" && existing.ExternalPaymentID == nil {
		return true
	}
	if a.PaymentTime != nil && existing.PaymentTime == nil {
		return true
	}
	if a.BankReference != "" && existing.BankReference != a.BankReference {
		return true
	}
	if a.Message != "" && existing.PaymentMessage != a.Message {
		return true
	}
	return false
}

// ListByOrder returns all attempts against an order, newest first.
func (s *Service) ListByOrder(orderID int64) ([]*txmodel.Transaction, error) {
	return s.repo.ListByOrderID(orderID)
}

// LatestByOrder returns the most recent attempt, preferring a successful one.
func (s *Service) LatestByOrder(orderID int64) (*txmodel.Transaction, error) {
	return s.repo.GetLatestByOrderID(orderID)
}

// ListByConsumer serves payment-history views. Read-only, no core invariant.
func (s *Service) ListByConsumer(consumerID int64, filters Filters, limit, offset int) ([]*txmodel.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	txs, err := s.repo.ListByConsumer(consumerID, filters, limit, offset)
	if err != nil {
		s.logger.Error("failed to list consumer transactions", "error", err, "consumer_id", consumerID)
		return nil, err
	}
	return txs, nil
}
