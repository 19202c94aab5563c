// Package seed loads fixture data and builds the entity stores from it.
package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

type accountRow struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Balance   string `yaml:"balance"`
	Currency  string `yaml:"currency"`
	CreatedAt string `yaml:"createdAt,omitempty"`
	UpdatedAt string `yaml:"updatedAt,omitempty"`
}

type transactionRow struct {
	ID          string `yaml:"id"`
	AccountID   string `yaml:"accountId"`
	Type        string `yaml:"type"`
	Category    string `yaml:"category"`
	Amount      string `yaml:"amount"`
	Description string `yaml:"description"`
	Date        string `yaml:"date"`
	CreatedAt   string `yaml:"createdAt,omitempty"`
	UpdatedAt   string `yaml:"updatedAt,omitempty"`
}

type budgetRow struct {
	ID        string `yaml:"id"`
	Category  string `yaml:"category"`
	Amount    string `yaml:"amount"`
	Spent     string `yaml:"spent"`
	Period    string `yaml:"period"`
	StartDate string `yaml:"startDate,omitempty"`
	EndDate   string `yaml:"endDate,omitempty"`
	CreatedAt string `yaml:"createdAt,omitempty"`
	UpdatedAt string `yaml:"updatedAt,omitempty"`
}

type document struct {
	Accounts     []accountRow     `yaml:"accounts"`
	Transactions []transactionRow `yaml:"transactions"`
	Budgets      []budgetRow      `yaml:"budgets"`
}

// Fixtures is the decoded, validated seed data.
type Fixtures struct {
	Accounts     []core.Account
	Transactions []core.Transaction
	Budgets      []core.Budget
}

// Stores groups the three entity stores built from fixtures.
type Stores struct {
	Accounts     *store.AccountStore
	Transactions *store.TransactionStore
	Budgets      *store.BudgetStore
}

// Default decodes the embedded fixtures relative to now.
func Default(now time.Time) (Fixtures, error) {
	return Decode(defaultFixtures, now)
}

// LoadFile decodes the fixtures at path, or the embedded set when path is empty.
func LoadFile(path string, now time.Time) (Fixtures, error) {
	if path == "" {
		return Default(now)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixtures{}, fmt.Errorf("read fixtures: %w", err)
	}
	return Decode(data, now)
}

// Decode parses a YAML fixture document. Budgets without a start date cover
// the calendar month of now; missing timestamps default to the economic
// date or, failing that, now.
func Decode(data []byte, now time.Time) (Fixtures, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return Fixtures{}, fmt.Errorf("decode fixtures: %w", err)
	}

	var fx Fixtures
	var errs []error
	for i, r := range doc.Accounts {
		a, err := r.account(now)
		if err != nil {
			errs = append(errs, fmt.Errorf("accounts[%d]: %w", i, err))
			continue
		}
		fx.Accounts = append(fx.Accounts, a)
	}
	for i, r := range doc.Transactions {
		t, err := r.transaction(now)
		if err != nil {
			errs = append(errs, fmt.Errorf("transactions[%d]: %w", i, err))
			continue
		}
		fx.Transactions = append(fx.Transactions, t)
	}
	for i, r := range doc.Budgets {
		b, err := r.budget(now)
		if err != nil {
			errs = append(errs, fmt.Errorf("budgets[%d]: %w", i, err))
			continue
		}
		fx.Budgets = append(fx.Budgets, b)
	}
	if err := errors.Join(errs...); err != nil {
		return Fixtures{}, err
	}
	if err := uniqueIDs(fx); err != nil {
		return Fixtures{}, err
	}
	return fx, nil
}

// Build creates the stores holding fx. opts apply to all three.
func Build(fx Fixtures, opts ...store.Option) Stores {
	return Stores{
		Accounts:     store.NewAccountStore(fx.Accounts, opts...),
		Transactions: store.NewTransactionStore(fx.Transactions, opts...),
		Budgets:      store.NewBudgetStore(fx.Budgets, opts...),
	}
}

// Encode writes the current contents of s in the fixture format, so a
// session can be saved and reloaded through SEED_FILE.
func Encode(s Stores) ([]byte, error) {
	var doc document
	for _, a := range s.Accounts.List() {
		doc.Accounts = append(doc.Accounts, accountRow{
			ID: a.ID, Name: a.Name, Type: string(a.Type), Balance: a.Balance.String(), Currency: a.Currency,
			CreatedAt: stamp(a.CreatedAt), UpdatedAt: stamp(a.UpdatedAt),
		})
	}
	for _, t := range s.Transactions.List() {
		doc.Transactions = append(doc.Transactions, transactionRow{
			ID: t.ID, AccountID: t.AccountID, Type: string(t.Type), Category: string(t.Category),
			Amount: t.Amount.String(), Description: t.Description, Date: t.Date.String(),
			CreatedAt: stamp(t.CreatedAt), UpdatedAt: stamp(t.UpdatedAt),
		})
	}
	for _, b := range s.Budgets.List() {
		doc.Budgets = append(doc.Budgets, budgetRow{
			ID: b.ID, Category: string(b.Category), Amount: b.Amount.String(), Spent: b.Spent.String(),
			Period: string(b.Period), StartDate: b.StartDate.String(), EndDate: b.EndDate.String(),
			CreatedAt: stamp(b.CreatedAt), UpdatedAt: stamp(b.UpdatedAt),
		})
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode fixtures: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode fixtures: %w", err)
	}
	return buf.Bytes(), nil
}

func (r accountRow) account(now time.Time) (core.Account, error) {
	balance, err := decimal.NewFromString(r.Balance)
	if err != nil {
		return core.Account{}, fmt.Errorf("balance %q: %w", r.Balance, core.ErrInvalidAmount)
	}
	created, err := parseStamp(r.CreatedAt, now)
	if err != nil {
		return core.Account{}, err
	}
	updated, err := parseStamp(r.UpdatedAt, created)
	if err != nil {
		return core.Account{}, err
	}
	a := core.Account{
		ID:        r.ID,
		UserID:    core.OwnerID,
		Name:      r.Name,
		Type:      core.AccountType(r.Type),
		Balance:   balance,
		Currency:  r.Currency,
		CreatedAt: created,
		UpdatedAt: updated,
	}
	if a.ID == "" {
		return a, errors.New("missing id")
	}
	return a, a.Validate()
}

func (r transactionRow) transaction(now time.Time) (core.Transaction, error) {
	typ, err := core.ParseTransactionType(r.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	cat, err := core.ParseCategory(r.Category)
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(r.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", r.Amount, err)
	}
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	created, err := parseStamp(r.CreatedAt, date.Time)
	if err != nil {
		return core.Transaction{}, err
	}
	updated, err := parseStamp(r.UpdatedAt, created)
	if err != nil {
		return core.Transaction{}, err
	}
	t := core.Transaction{
		ID:          r.ID,
		AccountID:   r.AccountID,
		Type:        typ,
		Category:    cat,
		Amount:      amount,
		Description: r.Description,
		Date:        date,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}
	if t.ID == "" {
		return t, errors.New("missing id")
	}
	return t, t.Validate()
}

func (r budgetRow) budget(now time.Time) (core.Budget, error) {
	cat, err := core.ParseCategory(r.Category)
	if err != nil {
		return core.Budget{}, err
	}
	period, err := core.ParsePeriod(r.Period)
	if err != nil {
		return core.Budget{}, err
	}
	amount, err := core.ParseAmount(r.Amount)
	if err != nil {
		return core.Budget{}, fmt.Errorf("amount %q: %w", r.Amount, err)
	}
	spent := decimal.Zero
	if r.Spent != "" {
		if spent, err = decimal.NewFromString(r.Spent); err != nil {
			return core.Budget{}, fmt.Errorf("spent %q: %w", r.Spent, core.ErrInvalidAmount)
		}
	}

	// Without an explicit window the budget covers the current month,
	// ending on its last day.
	today := core.DateOf(now)
	start, end := today.StartOfMonth(), today.EndOfMonth()
	if r.StartDate != "" {
		if start, err = core.ParseDate(r.StartDate); err != nil {
			return core.Budget{}, err
		}
		if end, err = core.EndDateFor(start, period); err != nil {
			return core.Budget{}, err
		}
	}
	if r.EndDate != "" {
		if end, err = core.ParseDate(r.EndDate); err != nil {
			return core.Budget{}, err
		}
	}

	created, err := parseStamp(r.CreatedAt, start.Time)
	if err != nil {
		return core.Budget{}, err
	}
	updated, err := parseStamp(r.UpdatedAt, now)
	if err != nil {
		return core.Budget{}, err
	}
	b := core.Budget{
		ID:        r.ID,
		UserID:    core.OwnerID,
		Category:  cat,
		Amount:    amount,
		Spent:     spent,
		Period:    period,
		StartDate: start,
		EndDate:   end,
		CreatedAt: created,
		UpdatedAt: updated,
	}
	if b.ID == "" {
		return b, errors.New("missing id")
	}
	return b, b.Validate()
}

// parseStamp accepts an RFC 3339 timestamp or a plain date; empty yields def.
func parseStamp(s string, def time.Time) (time.Time, error) {
	if s == "" {
		return def, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	return d.Time, nil
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func uniqueIDs(fx Fixtures) error {
	check := func(kind string, ids []string) error {
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				return fmt.Errorf("%s: duplicate id %q", kind, id)
			}
			seen[id] = true
		}
		return nil
	}
	var a, t, b []string
	for _, x := range fx.Accounts {
		a = append(a, x.ID)
	}
	for _, x := range fx.Transactions {
		t = append(t, x.ID)
	}
	for _, x := range fx.Budgets {
		b = append(b, x.ID)
	}
	return errors.Join(check("accounts", a), check("transactions", t), check("budgets", b))
}
