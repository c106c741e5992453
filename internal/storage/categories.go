package storage

import (
	"context"
	"fmt"
	"strings"

	"fintrack/internal/core"
)

func (r *SQLiteRepository) ListCustomCategories(ctx context.Context, owner string) ([]core.CustomCategory, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT user_id, value, label, created_at_ms FROM custom_categories WHERE user_id = ? ORDER BY id", owner)
	if err != nil {
		return nil, fmt.Errorf("list custom categories: %w", err)
	}
	defer rows.Close()

	out := []core.CustomCategory{}
	for rows.Next() {
		var c core.CustomCategory
		var created int64
		if err := rows.Scan(&c.OwnerID, &c.Value, &c.Label, &created); err != nil {
			return nil, fmt.Errorf("scan custom category: %w", err)
		}
		c.CreatedAt = fromMillis(created)
		out = append(out, c)
	}
	return out, rows.Err()
}

// AddCustomCategory stores c. A label already present for the owner,
// compared case-insensitively, is reported as a validation error.
func (r *SQLiteRepository) AddCustomCategory(ctx context.Context, c core.CustomCategory) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO custom_categories (user_id, value, label, created_at_ms) VALUES (?, ?, ?, ?)",
		c.OwnerID, c.Value, c.Label, toMillis(c.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return core.NewValidationError("label", "category already exists")
		}
		return fmt.Errorf("insert custom category: %w", err)
	}
	return nil
}

// RemoveCustomCategories deletes every entry of owner with value and returns
// how many were removed.
func (r *SQLiteRepository) RemoveCustomCategories(ctx context.Context, owner, value string) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM custom_categories WHERE user_id = ? AND value = ?", owner, value)
	if err != nil {
		return 0, fmt.Errorf("delete custom category: %w", err)
	}
	return res.RowsAffected()
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
