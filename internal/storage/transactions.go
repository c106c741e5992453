package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fintrack/internal/core"
)

const transactionColumns = "id, user_id, name, amount_cents, type, category, payment_method, date_ms, created_at_ms, updated_at_ms"

var groupColumns = map[core.GroupKey]string{
	core.GroupByType:     "type",
	core.GroupByCategory: "category",
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// where renders the filter as a WHERE clause. The owner predicate is always
// present.
func where(f core.TransactionFilter) (string, []any) {
	conds := []string{"user_id = ?"}
	args := []any{f.OwnerID}
	if f.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, string(f.Type))
	}
	if !f.DateFrom.IsZero() {
		conds = append(conds, "date_ms >= ?")
		args = append(args, toMillis(f.DateFrom))
	}
	if !f.DateTo.IsZero() {
		conds = append(conds, "date_ms <= ?")
		args = append(args, toMillis(f.DateTo))
	}
	if !f.CreatedFrom.IsZero() {
		conds = append(conds, "created_at_ms >= ?")
		args = append(args, toMillis(f.CreatedFrom))
	}
	if !f.CreatedTo.IsZero() {
		conds = append(conds, "created_at_ms <= ?")
		args = append(args, toMillis(f.CreatedTo))
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *SQLiteRepository) Sum(ctx context.Context, f core.TransactionFilter) (core.GroupValue, error) {
	clause, args := where(f)
	var cents sql.NullInt64
	var count int64
	err := r.db.QueryRowContext(ctx, "SELECT SUM(amount_cents), COUNT(*) FROM transactions"+clause, args...).Scan(&cents, &count)
	if err != nil {
		return core.GroupValue{}, fmt.Errorf("sum transactions: %w", err)
	}
	return core.GroupValue{Count: count, Sum: core.FromCents(cents.Int64)}, nil
}

func (r *SQLiteRepository) GroupCount(ctx context.Context, f core.TransactionFilter, key core.GroupKey) ([]core.GroupValue, error) {
	return r.group(ctx, f, key)
}

func (r *SQLiteRepository) GroupSum(ctx context.Context, f core.TransactionFilter, key core.GroupKey) ([]core.GroupValue, error) {
	return r.group(ctx, f, key)
}

func (r *SQLiteRepository) group(ctx context.Context, f core.TransactionFilter, key core.GroupKey) ([]core.GroupValue, error) {
	col, ok := groupColumns[key]
	if !ok {
		return nil, fmt.Errorf("unsupported group key %q", key)
	}
	clause, args := where(f)
	query := "SELECT " + col + ", COUNT(*), SUM(amount_cents) FROM transactions" + clause +
		" GROUP BY " + col + " ORDER BY " + col
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("group transactions by %s: %w", col, err)
	}
	defer rows.Close()

	var out []core.GroupValue
	for rows.Next() {
		var g core.GroupValue
		var cents int64
		if err := rows.Scan(&g.Key, &g.Count, &cents); err != nil {
			return nil, fmt.Errorf("scan group row: %w", err)
		}
		g.Sum = core.FromCents(cents)
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) FindMany(ctx context.Context, f core.TransactionFilter, opts core.FindOptions) ([]core.Transaction, error) {
	clause, args := where(f)
	dir := "DESC"
	if opts.Ascending {
		dir = "ASC"
	}
	query := "SELECT " + transactionColumns + " FROM transactions" + clause +
		fmt.Sprintf(" ORDER BY date_ms %[1]s, created_at_ms %[1]s, id %[1]s", dir)
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Count(ctx context.Context, f core.TransactionFilter) (int64, error) {
	clause, args := where(f)
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions"+clause, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, t core.Transaction) error {
	args, err := insertArgs(t)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO transactions ("+transactionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		args...)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction saved to SQLite", "id", t.ID, "type", t.Type, "amount", t.Amount.StringFixed(2))
	return nil
}

// CreateWithinCap inserts t only while fewer than limit rows match capFilter.
// Count and insert run as one statement.
func (r *SQLiteRepository) CreateWithinCap(ctx context.Context, t core.Transaction, capFilter core.TransactionFilter, limit int) error {
	args, err := insertArgs(t)
	if err != nil {
		return err
	}
	clause, capArgs := where(capFilter)
	query := "INSERT INTO transactions (" + transactionColumns + ") " +
		"SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ? " +
		"WHERE (SELECT COUNT(*) FROM transactions" + clause + ") < ?"
	args = append(args, capArgs...)
	args = append(args, limit)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert transaction within cap: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrMonthlyLimitReached
	}
	slog.InfoContext(ctx, "Transaction saved to SQLite", "id", t.ID, "type", t.Type, "amount", t.Amount.StringFixed(2))
	return nil
}

// Update replaces the mutable fields of the row matching id and owner.
func (r *SQLiteRepository) Update(ctx context.Context, t core.Transaction) error {
	cents, err := core.ToCents(t.Amount)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		    SET name = ?, amount_cents = ?, type = ?, category = ?, payment_method = ?, date_ms = ?, updated_at_ms = ?
		  WHERE id = ? AND user_id = ?`,
		t.Name, cents, string(t.Type), t.Category, string(t.PaymentMethod),
		toMillis(t.Date), toMillis(t.UpdatedAt), t.ID, t.OwnerID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, owner, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ? AND user_id = ?", id, owner)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, err
}

func (r *SQLiteRepository) Delete(ctx context.Context, owner, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ? AND user_id = ?", id, owner)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func insertArgs(t core.Transaction) ([]any, error) {
	cents, err := core.ToCents(t.Amount)
	if err != nil {
		return nil, err
	}
	return []any{
		t.ID, t.OwnerID, t.Name, cents, string(t.Type), t.Category,
		string(t.PaymentMethod), toMillis(t.Date), toMillis(t.CreatedAt), toMillis(t.UpdatedAt),
	}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		t                            core.Transaction
		cents                        int64
		typ, method                  string
		dateMs, createdMs, updatedMs int64
	)
	err := s.Scan(&t.ID, &t.OwnerID, &t.Name, &cents, &typ, &t.Category, &method, &dateMs, &createdMs, &updatedMs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Amount = core.FromCents(cents)
	t.Type = core.TransactionType(typ)
	t.PaymentMethod = core.PaymentMethod(method)
	t.Date = fromMillis(dateMs)
	t.CreatedAt = fromMillis(createdMs)
	t.UpdatedAt = fromMillis(updatedMs)
	return t, nil
}
