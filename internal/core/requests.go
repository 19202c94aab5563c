package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Create requests carry every caller-supplied field; update requests use
// pointers so that nil keeps the existing value (shallow merge).
type (
	CreateAccountRequest struct {
		Name     string
		Type     AccountType
		Balance  decimal.Decimal
		Currency string
	}

	// UpdateAccountRequest cannot touch the balance; use AdjustBalance.
	UpdateAccountRequest struct {
		Name     *string
		Type     *AccountType
		Currency *string
	}

	CreateTransactionRequest struct {
		AccountID   string
		Type        TransactionType
		Category    Category
		Amount      decimal.Decimal
		Description string
		Date        Date
	}

	UpdateTransactionRequest struct {
		Type        *TransactionType
		Category    *Category
		Amount      *decimal.Decimal
		Description *string
		Date        *Date
	}

	CreateBudgetRequest struct {
		Category  Category
		Amount    decimal.Decimal
		Period    BudgetPeriod
		StartDate Date
	}

	UpdateBudgetRequest struct {
		Category *Category
		Amount   *decimal.Decimal
		Period   *BudgetPeriod
	}
)

// NewAccount builds a validated account from req.
func NewAccount(id string, now time.Time, req CreateAccountRequest) (Account, error) {
	a := Account{
		ID:        id,
		UserID:    OwnerID,
		Name:      req.Name,
		Type:      req.Type,
		Balance:   req.Balance,
		Currency:  req.Currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return a, a.Validate()
}

// Apply merges the non-nil fields of req over a and validates the result.
func (req UpdateAccountRequest) Apply(a Account, now time.Time) (Account, error) {
	if req.Name != nil {
		a.Name = *req.Name
	}
	if req.Type != nil {
		a.Type = *req.Type
	}
	if req.Currency != nil {
		a.Currency = *req.Currency
	}
	a.UpdatedAt = now
	return a, a.Validate()
}

// NewTransaction builds a validated transaction from req.
func NewTransaction(id string, now time.Time, req CreateTransactionRequest) (Transaction, error) {
	t := Transaction{
		ID:          id,
		AccountID:   req.AccountID,
		Type:        req.Type,
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        req.Date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return t, t.Validate()
}

// Apply merges the non-nil fields of req over t and validates the result.
func (req UpdateTransactionRequest) Apply(t Transaction, now time.Time) (Transaction, error) {
	if req.Type != nil {
		t.Type = *req.Type
	}
	if req.Category != nil {
		t.Category = *req.Category
	}
	if req.Amount != nil {
		t.Amount = *req.Amount
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Date != nil {
		t.Date = *req.Date
	}
	t.UpdatedAt = now
	return t, t.Validate()
}

// NewBudget builds a validated budget from req. Spent starts at zero and the
// end date is derived from the period once, here.
func NewBudget(id string, now time.Time, req CreateBudgetRequest) (Budget, error) {
	b := Budget{
		ID:        id,
		UserID:    OwnerID,
		Category:  req.Category,
		Amount:    req.Amount,
		Spent:     decimal.Zero,
		Period:    req.Period,
		StartDate: req.StartDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := b.Validate(); err != nil {
		return Budget{}, err
	}
	end, err := EndDateFor(b.StartDate, b.Period)
	if err != nil {
		return Budget{}, err
	}
	b.EndDate = end
	return b, nil
}

// Apply merges the non-nil fields of req over b. The end date is left as it
// was computed at creation, even when the period changes.
func (req UpdateBudgetRequest) Apply(b Budget, now time.Time) (Budget, error) {
	if req.Category != nil {
		b.Category = *req.Category
	}
	if req.Amount != nil {
		b.Amount = *req.Amount
	}
	if req.Period != nil {
		b.Period = *req.Period
	}
	b.UpdatedAt = now
	return b, b.Validate()
}
