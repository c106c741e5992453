package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/cache"
	"fintrack/internal/core"
)

const defaultRecentLimit = 15

// DashboardService builds monthly summaries from the transaction store.
type DashboardService struct {
	transactions TransactionStore
	categories   CategoryStore
	cache        cache.Cache[core.DashboardSummary]
	generations  *cache.Generations
	loc          *time.Location
	recentLimit  int
	now          Clock
}

// DashboardOptions configures caching. Summaries are only reused when
// Generations is shared with every service that writes the owner's data.
type DashboardOptions struct {
	Cache       cache.Cache[core.DashboardSummary]
	Generations *cache.Generations
	Location    *time.Location
	RecentLimit int
	Clock       Clock
}

func NewDashboardService(transactions TransactionStore, categories CategoryStore, opts DashboardOptions) *DashboardService {
	s := &DashboardService{
		transactions: transactions,
		categories:   categories,
		cache:        opts.Cache,
		generations:  opts.Generations,
		loc:          opts.Location,
		recentLimit:  opts.RecentLimit,
		now:          opts.Clock,
	}
	if s.cache == nil {
		s.cache = cache.Noop[core.DashboardSummary]{}
	}
	if s.generations == nil {
		s.generations = cache.NewGenerations(nil)
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.recentLimit <= 0 {
		s.recentLimit = defaultRecentLimit
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Summary returns the owner's summary for year/month. A zero year means the
// current year.
func (s *DashboardService) Summary(ctx context.Context, owner string, year, month int) (core.DashboardSummary, error) {
	if owner == "" {
		return core.DashboardSummary{}, core.ErrUnauthorized
	}
	if year == 0 {
		year = s.now().In(s.loc).Year()
	}
	period, err := core.MonthPeriod(year, time.Month(month), s.loc)
	if err != nil {
		return core.DashboardSummary{}, err
	}

	// The generation is read before any data so that a write committed
	// mid-build rotates it away from the key used below.
	gen, err := s.generations.Current(ctx, owner)
	if err != nil {
		slog.WarnContext(ctx, "Dashboard cache generation unavailable", "owner_id", owner, "error", err)
		return s.build(ctx, owner, period)
	}
	key := cache.DashboardKey(owner, gen, year, month)
	if cached, ok, err := s.cache.Get(ctx, key); err != nil {
		slog.WarnContext(ctx, "Dashboard cache read failed", "key", key, "error", err)
	} else if ok {
		slog.DebugContext(ctx, "Dashboard cache hit", "key", key)
		return cached, nil
	}

	summary, err := s.build(ctx, owner, period)
	if err != nil {
		return core.DashboardSummary{}, err
	}
	if err := s.cache.Set(ctx, key, summary); err != nil {
		slog.WarnContext(ctx, "Dashboard cache write failed", "key", key, "error", err)
	}
	return summary, nil
}

// build issues the period reads concurrently. Any failure fails the whole
// summary.
func (s *DashboardService) build(ctx context.Context, owner string, p core.Period) (core.DashboardSummary, error) {
	base := core.ForPeriod(owner, p)
	ofType := func(t core.TransactionType) core.TransactionFilter {
		f := base
		f.Type = t
		return f
	}

	var (
		deposits, expenses, investments core.GroupValue
		typeCounts, categorySums        []core.GroupValue
		recent                          []core.Transaction
		customs                         []core.CustomCategory
	)

	g, gctx := errgroup.WithContext(ctx)
	sum := func(t core.TransactionType, dst *core.GroupValue) {
		g.Go(func() error {
			v, err := s.transactions.Sum(gctx, ofType(t))
			if err != nil {
				return fmt.Errorf("sum %s: %w", t, err)
			}
			*dst = v
			return nil
		})
	}
	sum(core.Deposit, &deposits)
	sum(core.Expense, &expenses)
	sum(core.Investment, &investments)
	g.Go(func() error {
		v, err := s.transactions.GroupCount(gctx, base, core.GroupByType)
		if err != nil {
			return fmt.Errorf("count by type: %w", err)
		}
		typeCounts = v
		return nil
	})
	g.Go(func() error {
		v, err := s.transactions.GroupSum(gctx, ofType(core.Expense), core.GroupByCategory)
		if err != nil {
			return fmt.Errorf("sum by category: %w", err)
		}
		categorySums = v
		return nil
	})
	g.Go(func() error {
		v, err := s.transactions.FindMany(gctx, base, core.FindOptions{Limit: s.recentLimit})
		if err != nil {
			return fmt.Errorf("recent transactions: %w", err)
		}
		recent = v
		return nil
	})
	g.Go(func() error {
		v, err := s.categories.ListCustomCategories(gctx, owner)
		if err != nil {
			return fmt.Errorf("custom categories: %w", err)
		}
		customs = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.DashboardSummary{}, fmt.Errorf("build dashboard summary: %w", err)
	}

	depositsTotal := deposits.Sum
	summary := core.DashboardSummary{
		Year:                    p.Year,
		Month:                   int(p.Month),
		DepositsTotal:           depositsTotal,
		ExpensesTotal:           expenses.Sum,
		InvestmentsTotal:        investments.Sum,
		Balance:                 depositsTotal.Sub(expenses.Sum).Sub(investments.Sum),
		TypesPercentage:         typePercentages(typeCounts),
		TotalExpensePerCategory: categoryExpenses(categorySums, depositsTotal, customs),
		LastTransactions:        recent,
	}
	if summary.LastTransactions == nil {
		summary.LastTransactions = []core.Transaction{}
	}
	return summary, nil
}

// typePercentages always yields every type, in enum order.
func typePercentages(counts []core.GroupValue) core.TypePercentages {
	var total int64
	byType := make(map[string]int64, len(counts))
	for _, c := range counts {
		byType[c.Key] = c.Count
		total += c.Count
	}
	out := make(core.TypePercentages, 0, 3)
	for _, t := range core.TransactionTypes() {
		out = append(out, core.TypeShare{
			Type:       t,
			Percentage: core.Percentage(decimal.NewFromInt(byType[string(t)]), decimal.NewFromInt(total)),
		})
	}
	return out
}

// categoryExpenses relates each category's expenses to the period's
// deposits, largest first.
func categoryExpenses(sums []core.GroupValue, deposits decimal.Decimal, customs []core.CustomCategory) []core.CategoryExpense {
	out := make([]core.CategoryExpense, 0, len(sums))
	for _, g := range sums {
		out = append(out, core.CategoryExpense{
			Category:          g.Key,
			Label:             core.Label(g.Key, customs),
			TotalAmount:       g.Sum,
			PercentageOfTotal: core.Percentage(g.Sum, deposits),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].TotalAmount.Cmp(out[j].TotalAmount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}
