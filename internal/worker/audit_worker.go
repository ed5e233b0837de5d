package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"duit/internal/amqp"
	"duit/internal/core"
	"duit/internal/storage"
)

// AuditWorker turns recorded-transaction events into a structured audit
// log. It fetches the full row so the log carries the durable state, not
// whatever the publisher happened to put on the wire.
type AuditWorker struct {
	storage *storage.SQLiteRepository
}

func NewAuditWorker(storage *storage.SQLiteRepository) *AuditWorker {
	return &AuditWorker{storage: storage}
}

// HandleRecordedMessage processes one event from the queue. A missing
// row is logged and acked rather than requeued, the transaction may
// live in a database this worker cannot see.
func (w *AuditWorker) HandleRecordedMessage(ctx context.Context, msg *amqp.TransactionRecordedMessage) error {
	tx, err := w.storage.GetTransaction(ctx, msg.ID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			slog.WarnContext(ctx, "Audit event for unknown transaction",
				"transaction_id", msg.ID,
				"user_id", msg.UserID,
				"published_at", msg.Timestamp)
			return nil
		}
		return fmt.Errorf("get transaction for audit: %w", err)
	}

	user, err := w.storage.GetUserByID(ctx, tx.UserID)
	if err != nil {
		return fmt.Errorf("get user for audit: %w", err)
	}

	slog.InfoContext(ctx, "Transaction audit",
		"transaction_id", tx.ID,
		"user_id", tx.UserID,
		"username", user.Username,
		"direction", string(tx.Direction),
		"nominal", tx.Nominal.StringFixed(2),
		"occurred_at", tx.OccurredAt,
		"description", tx.Description,
		"published_at", msg.Timestamp)

	return nil
}
