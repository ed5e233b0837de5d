package services

import (
	"context"
	"fmt"
	"log/slog"

	"duit/internal/amqp"
	"duit/internal/cache"
	"duit/internal/core"
	"duit/internal/storage"
)

// LedgerService orchestrates transaction writes and month aggregation
// across SQLite, the summary cache, and AMQP.
type LedgerService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	summaries  *cache.LRU[core.MonthSummary]
}

func NewLedgerService(storage *storage.SQLiteRepository, amqpClient *amqp.Client, summaries *cache.LRU[core.MonthSummary]) *LedgerService {
	return &LedgerService{
		storage:    storage,
		amqpClient: amqpClient,
		summaries:  summaries,
	}
}

// Record validates and stores a transaction for userID, then publishes
// an event and drops the user's cached summaries. Publish failures do
// not fail the request, the row is already durable.
func (s *LedgerService) Record(ctx context.Context, userID int64, tx core.Transaction) (core.Transaction, error) {
	tx.UserID = userID
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.storage.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if s.summaries != nil {
		s.summaries.DeletePrefix(cache.UserKeyPrefix(userID))
	}

	if err := s.publishRecorded(ctx, created); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction recorded message",
			"id", created.ID, "error", err)
	}

	return created, nil
}

// ListForUser returns every transaction owned by userID, newest first.
func (s *LedgerService) ListForUser(ctx context.Context, userID int64) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx, userID)
}

// ListForMonth returns userID's transactions within the given month
// together with their income, outcome, and balance totals.
func (s *LedgerService) ListForMonth(ctx context.Context, userID int64, year, month int) ([]core.Transaction, core.MonthSummary, error) {
	if err := core.ValidateMonth(year, month); err != nil {
		return nil, core.MonthSummary{}, err
	}

	start, end := core.MonthInterval(year, month)
	entries, err := s.storage.ListTransactionsInRange(ctx, userID, start, end)
	if err != nil {
		return nil, core.MonthSummary{}, fmt.Errorf("list transactions: %w", err)
	}

	key := cache.MonthKey(userID, year, month)
	if s.summaries != nil {
		if summary, ok := s.summaries.Get(key); ok {
			return entries, summary, nil
		}
	}

	summary := core.Summarize(entries)
	if s.summaries != nil {
		s.summaries.Set(key, summary)
	}
	return entries, summary, nil
}

func (s *LedgerService) publishRecorded(ctx context.Context, tx core.Transaction) error {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping transaction recorded message")
		return nil
	}

	msg := amqp.NewTransactionRecordedMessage(
		tx.ID,
		tx.UserID,
		string(tx.Direction),
		tx.Nominal.StringFixed(2),
		tx.OccurredAt,
	)
	return s.amqpClient.PublishTransactionRecorded(ctx, msg)
}

// Close releases storage and AMQP resources.
func (s *LedgerService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
