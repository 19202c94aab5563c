// Package derive computes read-only aggregates over store snapshots.
//
// Every function here is pure: it reads its arguments and returns fresh
// values. Callers bind them to live stores either by calling them on each
// read or through Computed, which recomputes whenever the source generation
// moves.
package derive

import (
	"math"
	"slices"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/filter"
)

// WarningThreshold is the progress percentage at which a budget is flagged.
const WarningThreshold = 80

const (
	StatusGood    = "good"
	StatusWarning = "warning"
	StatusOver    = "over"
)

var hundred = decimal.NewFromInt(100)

// Totals aggregates a set of transactions. Balance is always Income minus Expenses.
type Totals struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
}

// BudgetProgress is a budget with its spending ratio.
type BudgetProgress struct {
	core.Budget
	Progress     float64         `json:"progress"` // percentage, may exceed 100 or be +Inf
	Remaining    decimal.Decimal `json:"remaining"`
	IsOverBudget bool            `json:"isOverBudget"`
	Status       string          `json:"status"`
}

// TotalAccountBalance sums every account balance. Currencies are not converted.
func TotalAccountBalance(accounts []core.Account) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	return total
}

func SumTransactions(txs []core.Transaction) Totals {
	t := Totals{Income: decimal.Zero, Expenses: decimal.Zero}
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			t.Income = t.Income.Add(tx.Amount)
		case core.Expense:
			t.Expenses = t.Expenses.Add(tx.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expenses)
	return t
}

func TotalIncome(txs []core.Transaction) decimal.Decimal { return SumTransactions(txs).Income }

func TotalExpenses(txs []core.Transaction) decimal.Decimal { return SumTransactions(txs).Expenses }

func TransactionBalance(txs []core.Transaction) decimal.Decimal { return SumTransactions(txs).Balance }

// Progress returns spent/amount as a percentage. A zero amount yields 0 when
// nothing was spent and +Inf otherwise.
func Progress(spent, amount decimal.Decimal) float64 {
	if amount.IsZero() {
		if spent.IsPositive() {
			return math.Inf(1)
		}
		return 0
	}
	p, _ := spent.Div(amount).Mul(hundred).Float64()
	return p
}

// Status classifies a budget by its progress.
func Status(b core.Budget, progress float64) string {
	switch {
	case b.Spent.GreaterThan(b.Amount):
		return StatusOver
	case progress >= WarningThreshold:
		return StatusWarning
	default:
		return StatusGood
	}
}

func BudgetsWithProgress(budgets []core.Budget) []BudgetProgress {
	out := make([]BudgetProgress, 0, len(budgets))
	for _, b := range budgets {
		p := Progress(b.Spent, b.Amount)
		out = append(out, BudgetProgress{
			Budget:       b,
			Progress:     p,
			Remaining:    b.Amount.Sub(b.Spent),
			IsOverBudget: b.Spent.GreaterThan(b.Amount),
			Status:       Status(b, p),
		})
	}
	return out
}

// FilterTransactions returns the transactions matching c, newest first.
// Transactions on the same day keep their relative order.
func FilterTransactions(txs []core.Transaction, c filter.Criteria) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if c.Match(t) {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		return b.Date.Compare(a.Date.Time)
	})
	return out
}

func FilteredTotals(txs []core.Transaction, c filter.Criteria) Totals {
	return SumTransactions(FilterTransactions(txs, c))
}
