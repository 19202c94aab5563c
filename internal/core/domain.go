package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// OwnerID is the single implicit owner of every account and budget.
const OwnerID = "1"

const maxDescriptionLen = 200

const (
	Checking   AccountType = "Checking"
	Savings    AccountType = "Savings"
	CreditCard AccountType = "Credit Card"
	Investment AccountType = "Investment"
	Cash       AccountType = "Cash"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

const (
	CategorySalary        Category = "Salary"
	CategoryFreelance     Category = "Freelance"
	CategoryInvestment    Category = "Investment"
	CategoryFood          Category = "Food"
	CategoryTransport     Category = "Transport"
	CategoryEntertainment Category = "Entertainment"
	CategoryUtilities     Category = "Utilities"
	CategoryHealthcare    Category = "Healthcare"
	CategoryShopping      Category = "Shopping"
	CategoryOther         Category = "Other"
)

type (
	AccountType     string
	TransactionType string
	Category        string

	Account struct {
		ID        string
		UserID    string
		Name      string
		Type      AccountType
		Balance   decimal.Decimal
		Currency  string
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	Transaction struct {
		ID          string
		AccountID   string
		Type        TransactionType
		Category    Category
		Amount      decimal.Decimal // always positive, the sign is carried by Type
		Description string
		Date        Date // economic date, not an audit timestamp
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	Budget struct {
		ID        string
		UserID    string
		Category  Category
		Amount    decimal.Decimal
		Spent     decimal.Decimal
		Period    BudgetPeriod
		StartDate Date
		EndDate   Date // fixed at creation
		CreatedAt time.Time
		UpdatedAt time.Time
	}
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrUnknown    = errors.New("unexpected internal error")

	ErrEmptyName          = fmt.Errorf("%w: empty name", ErrValidation)
	ErrEmptyDescription   = fmt.Errorf("%w: empty description", ErrValidation)
	ErrDescriptionTooLong = fmt.Errorf("%w: description too long (max %d characters)", ErrValidation, maxDescriptionLen)
	ErrEmptyAccountID     = fmt.Errorf("%w: empty account id", ErrValidation)
	ErrInvalidAmount      = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrInvalidCurrency    = fmt.Errorf("%w: invalid currency", ErrValidation)
	ErrInvalidAccountType = fmt.Errorf("%w: invalid account type", ErrValidation)
	ErrInvalidType        = fmt.Errorf("%w: invalid transaction type", ErrValidation)
	ErrInvalidCategory    = fmt.Errorf("%w: invalid category", ErrValidation)
	ErrIncomeCategory     = fmt.Errorf("%w: budgets only track expense categories", ErrValidation)
	ErrInvalidPeriod      = fmt.Errorf("%w: invalid budget period", ErrValidation)
	ErrInvalidDate        = fmt.Errorf("%w: invalid date", ErrValidation)
)

// EntityID implements store.Entity.
func (a Account) EntityID() string { return a.ID }

// EntityID implements store.Entity.
func (t Transaction) EntityID() string { return t.ID }

// EntityID implements store.Entity.
func (b Budget) EntityID() string { return b.ID }

// AccountTypes lists every account type in display order.
func AccountTypes() []AccountType {
	return []AccountType{Checking, Savings, CreditCard, Investment, Cash}
}

// ParseAccountType matches an account type name case-insensitively.
func ParseAccountType(s string) (AccountType, error) {
	s = strings.TrimSpace(s)
	for _, t := range AccountTypes() {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrInvalidAccountType, s)
}

func (t AccountType) Validate() error {
	for _, v := range AccountTypes() {
		if t == v {
			return nil
		}
	}
	return fmt.Errorf("%w %q", ErrInvalidAccountType, string(t))
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return fmt.Errorf("%w %q", ErrInvalidType, string(t))
	}
}

// ParseTransactionType accepts the canonical value or its lowercase form.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.Validate()
}

// Categories lists the closed category enumeration in display order.
func Categories() []Category {
	return []Category{
		CategorySalary, CategoryFreelance, CategoryInvestment,
		CategoryFood, CategoryTransport, CategoryEntertainment,
		CategoryUtilities, CategoryHealthcare, CategoryShopping,
		CategoryOther,
	}
}

// ExpenseCategories lists the categories a budget may track.
func ExpenseCategories() []Category {
	var out []Category
	for _, c := range Categories() {
		if c.IsExpenseLike() {
			out = append(out, c)
		}
	}
	return out
}

func (c Category) Validate() error {
	for _, v := range Categories() {
		if c == v {
			return nil
		}
	}
	return fmt.Errorf("%w %q", ErrInvalidCategory, string(c))
}

// IsExpenseLike reports whether the category describes spending.
func (c Category) IsExpenseLike() bool {
	switch c {
	case CategorySalary, CategoryFreelance, CategoryInvestment:
		return false
	default:
		return true
	}
}

// ParseCategory matches a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrInvalidCategory, s)
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if err := a.Type.Validate(); err != nil {
		return err
	}
	return ValidateCurrency(a.Currency)
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.AccountID) == "" {
		return ErrEmptyAccountID
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if err := t.Category.Validate(); err != nil {
		return err
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(t.Description) > maxDescriptionLen {
		return ErrDescriptionTooLong
	}
	return t.Date.Validate()
}

func (b Budget) Validate() error {
	if err := b.Category.Validate(); err != nil {
		return err
	}
	if !b.Category.IsExpenseLike() {
		return ErrIncomeCategory
	}
	if !b.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if err := b.Period.Validate(); err != nil {
		return err
	}
	return b.StartDate.Validate()
}

// Signed returns the amount with the sign implied by the transaction type.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == Income {
		return t.Amount
	}
	return t.Amount.Neg()
}
