// Package view binds the stores and the filter state to the derivation
// layer, giving the CLI a single read model for the dashboard.
package view

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/derive"
	"fintrack/internal/filter"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// UnknownAccount is shown for transactions whose account no longer exists.
const UnknownAccount = "Unknown Account"

const (
	defaultCacheSize = 64
	defaultCacheTTL  = 10 * time.Minute
)

// filterKey identifies one filtered view. Any commit to the transaction
// store or any filter change produces a new key.
type filterKey struct {
	transactions uint64
	filter       uint64
}

type filtered struct {
	items  []core.Transaction
	totals derive.Totals
}

// Dashboard is the live read model. It is safe for concurrent use.
type Dashboard struct {
	accounts     *store.AccountStore
	transactions *store.TransactionStore
	budgets      *store.BudgetStore
	filter       *filter.State
	logger       *log.Logger

	balance  *derive.Computed[decimal.Decimal]
	totals   *derive.Computed[derive.Totals]
	progress *derive.Computed[[]derive.BudgetProgress]
	views    *cache.LRUCache[filterKey, filtered]
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithLogger sets the dashboard logger.
func WithLogger(l *log.Logger) Option {
	return func(d *Dashboard) { d.logger = l.WithComponent(log.ComponentView) }
}

// WithCacheSize bounds the filtered-view cache. A zero ttl keeps entries
// until they are evicted.
func WithCacheSize(size int, ttl time.Duration) Option {
	return func(d *Dashboard) { d.views = cache.NewLRUCache[filterKey, filtered](size, ttl) }
}

func New(accounts *store.AccountStore, transactions *store.TransactionStore, budgets *store.BudgetStore, state *filter.State, opts ...Option) *Dashboard {
	d := &Dashboard{
		accounts:     accounts,
		transactions: transactions,
		budgets:      budgets,
		filter:       state,
		logger:       log.Nop(),
		views:        cache.NewLRUCache[filterKey, filtered](defaultCacheSize, defaultCacheTTL),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.balance = derive.NewComputed(func() decimal.Decimal {
		return derive.TotalAccountBalance(accounts.List())
	}, accounts)
	d.totals = derive.NewComputed(func() derive.Totals {
		return derive.SumTransactions(transactions.List())
	}, transactions)
	d.progress = derive.NewComputed(func() []derive.BudgetProgress {
		return derive.BudgetsWithProgress(budgets.List())
	}, budgets)
	return d
}

// Cache exposes the filtered-view cache so it can be swept.
func (d *Dashboard) Cache() cache.Cleaner { return d.views }

// Filter returns the filter state the dashboard reads.
func (d *Dashboard) Filter() *filter.State { return d.filter }

// TotalBalance is the sum of every account balance.
func (d *Dashboard) TotalBalance() decimal.Decimal { return d.balance.Get() }

// TransactionTotals aggregates every transaction, ignoring the filter.
func (d *Dashboard) TransactionTotals() derive.Totals { return d.totals.Get() }

func (d *Dashboard) BudgetsWithProgress() []derive.BudgetProgress {
	return append([]derive.BudgetProgress(nil), d.progress.Get()...)
}

// FilteredTransactions returns the transactions matching the current filter, newest first.
func (d *Dashboard) FilteredTransactions() []core.Transaction {
	return append([]core.Transaction(nil), d.current().items...)
}

// FilteredTotals aggregates FilteredTransactions.
func (d *Dashboard) FilteredTotals() derive.Totals { return d.current().totals }

// AccountName resolves an account id for display.
func (d *Dashboard) AccountName(id string) string {
	if a, ok := d.accounts.Get(id); ok && a.Name != "" {
		return a.Name
	}
	return UnknownAccount
}

func (d *Dashboard) current() filtered {
	// Items and filter are read together with their generations so the
	// cached entry always matches its key.
	snap := d.transactions.Snapshot()
	f, fgen := d.filter.Load()
	key := filterKey{transactions: snap.Generation, filter: fgen}

	return d.views.GetOrCompute(key, func() filtered {
		items := derive.FilterTransactions(snap.Items, f.Criteria())
		d.logger.DebugContext(context.Background(), "Filtered view recomputed",
			log.FieldFilterType, f.Type,
			log.FieldFilterCat, f.Category,
			log.FieldDateFrom, f.DateFrom,
			log.FieldDateTo, f.DateTo,
			log.FieldResultCount, len(items))
		return filtered{items: items, totals: derive.SumTransactions(items)}
	})
}
