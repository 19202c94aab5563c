package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// AccountStore holds the owner's accounts.
type AccountStore struct {
	*Store[core.Account]
}

func NewAccountStore(seed []core.Account, opts ...Option) *AccountStore {
	return &AccountStore{Store: New("accounts", seed, opts...)}
}

func (s *AccountStore) Create(ctx context.Context, req core.CreateAccountRequest) (core.Account, error) {
	return s.Insert(ctx, func(id string, now time.Time) (core.Account, error) {
		return core.NewAccount(id, now, req)
	})
}

func (s *AccountStore) Update(ctx context.Context, id string, req core.UpdateAccountRequest) (core.Account, error) {
	return s.Replace(ctx, id, req.Apply)
}

func (s *AccountStore) Delete(ctx context.Context, id string) error {
	return s.Remove(ctx, id)
}

// AdjustBalance credits (isCredit) or debits amount on the account with
// accountID. It reports whether the account existed; a missing account is
// left alone without error.
func (s *AccountStore) AdjustBalance(ctx context.Context, accountID string, amount decimal.Decimal, isCredit bool) bool {
	delta := amount
	if !isCredit {
		delta = amount.Neg()
	}
	n := s.ApplyWhere(ctx,
		func(a core.Account) bool { return a.ID == accountID },
		func(a core.Account, now time.Time) core.Account {
			a.Balance = a.Balance.Add(delta)
			a.UpdatedAt = now
			return a
		})
	return n > 0
}
