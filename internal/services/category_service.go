package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
)

// CategoryService manages per-owner custom categories. Dashboards show
// category labels, so every change rotates the owner's dashboard generation.
type CategoryService struct {
	store       CategoryStore
	generations *cache.Generations
	now         Clock
}

func NewCategoryService(store CategoryStore, generations *cache.Generations, now Clock) *CategoryService {
	if generations == nil {
		generations = cache.NewGenerations(nil)
	}
	if now == nil {
		now = time.Now
	}
	return &CategoryService{store: store, generations: generations, now: now}
}

func (s *CategoryService) List(ctx context.Context, owner string) ([]core.CustomCategory, error) {
	if owner == "" {
		return nil, core.ErrUnauthorized
	}
	out, err := s.store.ListCustomCategories(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list custom categories: %w", err)
	}
	return out, nil
}

// Options lists the standard categories followed by the owner's own.
func (s *CategoryService) Options(ctx context.Context, owner string) ([]core.CategoryOption, error) {
	customs, err := s.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	return core.Options(customs), nil
}

// Create adds a custom category. Labels are unique per owner ignoring case;
// distinct labels that derive the same key are both kept.
func (s *CategoryService) Create(ctx context.Context, owner, label string) (core.CustomCategory, error) {
	if owner == "" {
		return core.CustomCategory{}, core.ErrUnauthorized
	}
	label, err := core.NormalizeCustomLabel(label)
	if err != nil {
		return core.CustomCategory{}, err
	}

	existing, err := s.store.ListCustomCategories(ctx, owner)
	if err != nil {
		return core.CustomCategory{}, fmt.Errorf("list custom categories: %w", err)
	}
	if core.HasLabel(existing, label) {
		return core.CustomCategory{}, core.NewValidationError("label", "category already exists")
	}

	c := core.CustomCategory{
		OwnerID:   owner,
		Value:     core.CustomCategoryKey(label),
		Label:     label,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.AddCustomCategory(ctx, c); err != nil {
		if core.IsValidation(err) {
			return core.CustomCategory{}, err
		}
		return core.CustomCategory{}, fmt.Errorf("add custom category: %w", err)
	}
	slog.InfoContext(ctx, "Custom category created", "value", c.Value)
	s.invalidate(ctx, owner)
	return c, nil
}

// Remove deletes every custom category of the owner with value.
func (s *CategoryService) Remove(ctx context.Context, owner, value string) error {
	if owner == "" {
		return core.ErrUnauthorized
	}
	value = strings.TrimSpace(value)
	if !core.IsCustomCategory(value) {
		return core.NewValidationError("value", "not a custom category")
	}
	n, err := s.store.RemoveCustomCategories(ctx, owner, value)
	if err != nil {
		return fmt.Errorf("remove custom category: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	slog.InfoContext(ctx, "Custom category removed", "value", value, "count", n)
	s.invalidate(ctx, owner)
	return nil
}

func (s *CategoryService) invalidate(ctx context.Context, owner string) {
	if _, err := s.generations.Rotate(ctx, owner); err != nil {
		slog.WarnContext(ctx, "Dashboard cache invalidation failed", "owner_id", owner, "error", err)
	}
}
