package store

import (
	"context"
	"time"

	"fintrack/internal/core"
)

// TransactionStore holds transactions. Creating or deleting one never
// touches accounts or budgets; see the coordinator package for that.
type TransactionStore struct {
	*Store[core.Transaction]
}

func NewTransactionStore(seed []core.Transaction, opts ...Option) *TransactionStore {
	return &TransactionStore{Store: New("transactions", seed, opts...)}
}

func (s *TransactionStore) Create(ctx context.Context, req core.CreateTransactionRequest) (core.Transaction, error) {
	return s.Insert(ctx, func(id string, now time.Time) (core.Transaction, error) {
		return core.NewTransaction(id, now, req)
	})
}

func (s *TransactionStore) Update(ctx context.Context, id string, req core.UpdateTransactionRequest) (core.Transaction, error) {
	return s.Replace(ctx, id, req.Apply)
}

// Swap is Update that also returns the transaction it replaced. Both values
// come from the same commit, so a concurrent writer cannot slip in between.
func (s *TransactionStore) Swap(ctx context.Context, id string, req core.UpdateTransactionRequest) (prev, next core.Transaction, err error) {
	next, err = s.Replace(ctx, id, func(cur core.Transaction, now time.Time) (core.Transaction, error) {
		prev = cur
		return req.Apply(cur, now)
	})
	if err != nil {
		return core.Transaction{}, core.Transaction{}, err
	}
	return prev, next, nil
}

func (s *TransactionStore) Delete(ctx context.Context, id string) error {
	return s.Remove(ctx, id)
}

// ListByAccount returns the transactions booked on accountID, in insertion order.
func (s *TransactionStore) ListByAccount(accountID string) []core.Transaction {
	var out []core.Transaction
	for _, t := range s.current.Load().Items {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	return out
}
