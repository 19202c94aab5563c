// Package coordinator propagates transaction side effects to accounts and
// budgets.
//
// Creating a transaction through the transaction store never touches the
// other stores. Callers that want the ledger to move use Record, Remove and
// Amend here, or Link and Unlink for transactions that already exist.
package coordinator

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// LinkResult reports which side effects found their target.
type LinkResult struct {
	AccountAdjusted bool `json:"accountAdjusted"`
	BudgetsAdjusted int  `json:"budgetsAdjusted"`
}

type Coordinator struct {
	accounts     *store.AccountStore
	transactions *store.TransactionStore
	budgets      *store.BudgetStore
	logger       *log.Logger
}

func New(accounts *store.AccountStore, transactions *store.TransactionStore, budgets *store.BudgetStore, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.Nop()
	}
	return &Coordinator{
		accounts:     accounts,
		transactions: transactions,
		budgets:      budgets,
		logger:       logger.WithComponent(log.ComponentCoordinator),
	}
}

// Link applies tx to its account (credit for income, debit for expense) and,
// for expenses, adds the amount to every budget of its category. A missing
// account or budget is logged and reported, never returned as an error.
func (c *Coordinator) Link(ctx context.Context, tx core.Transaction) LinkResult {
	return c.apply(ctx, log.OpLink, tx, tx.Type == core.Income, tx.Amount)
}

// Unlink reverses Link.
func (c *Coordinator) Unlink(ctx context.Context, tx core.Transaction) LinkResult {
	return c.apply(ctx, log.OpUnlink, tx, tx.Type != core.Income, tx.Amount.Neg())
}

func (c *Coordinator) apply(ctx context.Context, op string, tx core.Transaction, credit bool, spentDelta decimal.Decimal) LinkResult {
	var res LinkResult
	var g errgroup.Group
	g.Go(func() error {
		res.AccountAdjusted = c.accounts.AdjustBalance(ctx, tx.AccountID, tx.Amount, credit)
		return nil
	})
	if tx.Type == core.Expense {
		g.Go(func() error {
			res.BudgetsAdjusted = c.budgets.AdjustSpent(ctx, tx.Category, spentDelta)
			return nil
		})
	}
	_ = g.Wait()

	fields := log.NewFields().
		WithOperation(op).
		WithTransaction(tx.ID, tx.AccountID, string(tx.Type), string(tx.Category), tx.Amount.String())
	if !res.AccountAdjusted {
		c.logger.WarnContext(ctx, "Transaction account not found, balance unchanged", fields.ToSlice()...)
	}
	if tx.Type == core.Expense && res.BudgetsAdjusted == 0 {
		c.logger.DebugContext(ctx, "No budget tracks this category", fields.ToSlice()...)
	}
	c.logger.InfoContext(ctx, "Transaction side effects applied",
		append(fields.ToSlice(), log.FieldMatched, res.BudgetsAdjusted)...)
	return res
}

// Record creates a transaction and links it.
func (c *Coordinator) Record(ctx context.Context, req core.CreateTransactionRequest) (core.Transaction, LinkResult, error) {
	tx, err := c.transactions.Create(ctx, req)
	if err != nil {
		return core.Transaction{}, LinkResult{}, fmt.Errorf("record transaction: %w", err)
	}
	return tx, c.Link(ctx, tx), nil
}

// Remove deletes the transaction with id and unlinks the value it held
// when deleted.
func (c *Coordinator) Remove(ctx context.Context, id string) (LinkResult, error) {
	tx, err := c.transactions.Take(ctx, id)
	if err != nil {
		return LinkResult{}, fmt.Errorf("remove transaction %q: %w", id, err)
	}
	return c.Unlink(ctx, tx), nil
}

// Amend updates a transaction, moving its side effects from the old values
// to the new ones. A rejected update leaves every store untouched. The old
// values are the ones the update actually replaced, even when another
// writer changed the transaction while Amend was waiting.
func (c *Coordinator) Amend(ctx context.Context, id string, req core.UpdateTransactionRequest) (core.Transaction, error) {
	old, updated, err := c.transactions.Swap(ctx, id, req)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amend transaction %q: %w", id, err)
	}
	c.Unlink(ctx, old)
	c.Link(ctx, updated)
	return updated, nil
}
