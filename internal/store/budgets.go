package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// BudgetStore holds spending budgets.
type BudgetStore struct {
	*Store[core.Budget]
}

func NewBudgetStore(seed []core.Budget, opts ...Option) *BudgetStore {
	return &BudgetStore{Store: New("budgets", seed, opts...)}
}

func (s *BudgetStore) Create(ctx context.Context, req core.CreateBudgetRequest) (core.Budget, error) {
	return s.Insert(ctx, func(id string, now time.Time) (core.Budget, error) {
		return core.NewBudget(id, now, req)
	})
}

func (s *BudgetStore) Update(ctx context.Context, id string, req core.UpdateBudgetRequest) (core.Budget, error) {
	return s.Replace(ctx, id, req.Apply)
}

func (s *BudgetStore) Delete(ctx context.Context, id string) error {
	return s.Remove(ctx, id)
}

// AdjustSpent adds delta to the spent amount of every budget tracking
// category and returns how many were adjusted. Zero is not an error.
func (s *BudgetStore) AdjustSpent(ctx context.Context, category core.Category, delta decimal.Decimal) int {
	return s.ApplyWhere(ctx,
		func(b core.Budget) bool { return b.Category == category },
		func(b core.Budget, now time.Time) core.Budget {
			b.Spent = b.Spent.Add(delta)
			b.UpdatedAt = now
			return b
		})
}
