package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

// TransactionReader is the part of the store the worker reads from.
type TransactionReader interface {
	Get(ctx context.Context, owner, id string) (core.Transaction, error)
	FindMany(ctx context.Context, f core.TransactionFilter, opts core.FindOptions) ([]core.Transaction, error)
	ListCustomCategories(ctx context.Context, owner string) ([]core.CustomCategory, error)
}

// SyncWorker mirrors stored transactions into a spreadsheet.
type SyncWorker struct {
	store    TransactionReader
	exporter sheets.TransactionExporter
}

func NewSyncWorker(store TransactionReader, exporter sheets.TransactionExporter) *SyncWorker {
	return &SyncWorker{store: store, exporter: exporter}
}

// HandleSyncMessage re-reads the transaction named by msg and mirrors its
// current state. A transaction that no longer exists is removed from the
// sheet whatever the action says.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"owner_id", msg.OwnerID,
		"action", msg.Action)

	if msg.Action == amqp.ActionDelete {
		return w.delete(ctx, msg.ID)
	}

	t, err := w.store.Get(ctx, msg.OwnerID, msg.ID)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Transaction vanished before sync, clearing row", "id", msg.ID)
		return w.delete(ctx, msg.ID)
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	customs, err := w.customs(ctx, msg.OwnerID)
	if err != nil {
		return err
	}
	if err := w.exporter.UpsertTransaction(ctx, t, core.Label(t.Category, customs)); err != nil {
		return fmt.Errorf("export transaction: %w", err)
	}
	slog.InfoContext(ctx, "Successfully synced transaction", "id", t.ID, "type", t.Type)
	return nil
}

// ResyncPeriod exports every transaction of owner in p. It recovers rows
// lost while the worker or broker was down.
func (w *SyncWorker) ResyncPeriod(ctx context.Context, owner string, p core.Period) (int, error) {
	txs, err := w.store.FindMany(ctx, core.ForPeriod(owner, p), core.FindOptions{Ascending: true})
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}
	customs, err := w.customs(ctx, owner)
	if err != nil {
		return 0, err
	}

	synced, failed := 0, 0
	for _, t := range txs {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if err := w.exporter.UpsertTransaction(ctx, t, core.Label(t.Category, customs)); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction", "id", t.ID, "error", err)
			failed++
			continue
		}
		synced++
	}
	slog.InfoContext(ctx, "Resync completed",
		"period", p.Key(),
		"total", len(txs),
		"synced", synced,
		"errors", failed)
	return synced, nil
}

func (w *SyncWorker) delete(ctx context.Context, id string) error {
	if err := w.exporter.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction row: %w", err)
	}
	slog.InfoContext(ctx, "Successfully removed transaction row", "id", id)
	return nil
}

func (w *SyncWorker) customs(ctx context.Context, owner string) ([]core.CustomCategory, error) {
	customs, err := w.store.ListCustomCategories(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list custom categories: %w", err)
	}
	return customs, nil
}
