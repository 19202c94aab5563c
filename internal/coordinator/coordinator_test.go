package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type fixture struct {
	accounts     *store.AccountStore
	transactions *store.TransactionStore
	budgets      *store.BudgetStore
	coord        *Coordinator
}

func newFixture() fixture {
	opts := []store.Option{store.WithLatency(0)}
	f := fixture{
		accounts: store.NewAccountStore([]core.Account{
			{ID: "1", Name: "Main Checking", Type: core.Checking, Balance: d(15420), Currency: "USD"},
			{ID: "2", Name: "Savings Account", Type: core.Savings, Balance: d(25000), Currency: "USD"},
		}, opts...),
		transactions: store.NewTransactionStore(nil, opts...),
		budgets: store.NewBudgetStore([]core.Budget{
			{ID: "1", Category: core.CategoryFood, Amount: d(600), Spent: d(250), Period: core.Monthly, StartDate: core.NewDate(2025, 10, 1)},
		}, opts...),
	}
	f.coord = New(f.accounts, f.transactions, f.budgets, nil)
	return f
}

func (f fixture) balance(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	a, ok := f.accounts.Get(id)
	if !ok {
		t.Fatalf("account %s missing", id)
	}
	return a.Balance
}

func (f fixture) spent(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	b, ok := f.budgets.Get(id)
	if !ok {
		t.Fatalf("budget %s missing", id)
	}
	return b.Spent
}

func groceries() core.CreateTransactionRequest {
	return core.CreateTransactionRequest{
		AccountID: "1", Type: core.Expense, Category: core.CategoryFood,
		Amount: d(250), Description: "Groceries", Date: core.NewDate(2025, 10, 5),
	}
}

func TestPlainCreateDoesNotTouchOtherStores(t *testing.T) {
	f := newFixture()
	if _, err := f.transactions.Create(context.Background(), groceries()); err != nil {
		t.Fatal(err)
	}
	if !f.balance(t, "1").Equal(d(15420)) || !f.spent(t, "1").Equal(d(250)) {
		t.Errorf("store-level create leaked into accounts or budgets")
	}
}

func TestRecordExpense(t *testing.T) {
	f := newFixture()
	tx, res, err := f.coord.Record(context.Background(), groceries())
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if _, ok := f.transactions.Get(tx.ID); !ok {
		t.Errorf("transaction not stored")
	}
	if !res.AccountAdjusted || res.BudgetsAdjusted != 1 {
		t.Errorf("LinkResult = %+v", res)
	}
	if got := f.balance(t, "1"); !got.Equal(d(15170)) {
		t.Errorf("balance = %s, want 15170", got)
	}
	if got := f.spent(t, "1"); !got.Equal(d(500)) {
		t.Errorf("spent = %s, want 500", got)
	}
}

func TestRecordIncomeSkipsBudgets(t *testing.T) {
	f := newFixture()
	_, res, err := f.coord.Record(context.Background(), core.CreateTransactionRequest{
		AccountID: "2", Type: core.Income, Category: core.CategoryFreelance,
		Amount: d(1200), Description: "Web Development Project", Date: core.NewDate(2025, 10, 8),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.BudgetsAdjusted != 0 || !res.AccountAdjusted {
		t.Errorf("LinkResult = %+v", res)
	}
	if got := f.balance(t, "2"); !got.Equal(d(26200)) {
		t.Errorf("balance = %s, want 26200", got)
	}
}

func TestRecordRejectsInvalidRequest(t *testing.T) {
	f := newFixture()
	req := groceries()
	req.Description = ""
	_, _, err := f.coord.Record(context.Background(), req)
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("Record() error = %v, want ErrValidation", err)
	}
	if f.accounts.Generation() != 0 || f.budgets.Generation() != 0 {
		t.Errorf("side effects applied for a rejected transaction")
	}
}

func TestLinkMissingAccountIsReported(t *testing.T) {
	f := newFixture()
	req := groceries()
	req.AccountID = "404"
	_, res, err := f.coord.Record(context.Background(), req)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if res.AccountAdjusted {
		t.Errorf("AccountAdjusted = true for a missing account")
	}
	if res.BudgetsAdjusted != 1 {
		t.Errorf("budget adjustment skipped: %+v", res)
	}
}

func TestRemoveReversesSideEffects(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	tx, _, err := f.coord.Record(ctx, groceries())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.coord.Remove(ctx, tx.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if f.transactions.Len() != 0 {
		t.Errorf("transaction still stored")
	}
	if !f.balance(t, "1").Equal(d(15420)) || !f.spent(t, "1").Equal(d(250)) {
		t.Errorf("Remove did not restore balance/spent: %s / %s", f.balance(t, "1"), f.spent(t, "1"))
	}

	if _, err := f.coord.Remove(ctx, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second Remove() error = %v, want ErrNotFound", err)
	}
}

func TestAmendMovesSideEffects(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	tx, _, err := f.coord.Record(ctx, groceries())
	if err != nil {
		t.Fatal(err)
	}

	amount := d(100)
	income := core.Income
	salary := core.CategorySalary
	updated, err := f.coord.Amend(ctx, tx.ID, core.UpdateTransactionRequest{Amount: &amount, Type: &income, Category: &salary})
	if err != nil {
		t.Fatalf("Amend() error = %v", err)
	}
	if updated.Type != core.Income || !updated.Amount.Equal(amount) {
		t.Errorf("Amend() = %+v", updated)
	}
	if got := f.balance(t, "1"); !got.Equal(d(15520)) {
		t.Errorf("balance = %s, want 15520", got)
	}
	if got := f.spent(t, "1"); !got.Equal(d(250)) {
		t.Errorf("spent = %s, want 250", got)
	}
}

func TestAmendRejectedLeavesStoresUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	tx, _, _ := f.coord.Record(ctx, groceries())
	accGen, budGen := f.accounts.Generation(), f.budgets.Generation()

	zero := decimal.Zero
	if _, err := f.coord.Amend(ctx, tx.ID, core.UpdateTransactionRequest{Amount: &zero}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("Amend() error = %v, want ErrInvalidAmount", err)
	}
	if f.accounts.Generation() != accGen || f.budgets.Generation() != budGen {
		t.Errorf("rejected amend moved balances")
	}
	if _, err := f.coord.Amend(ctx, "missing", core.UpdateTransactionRequest{}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Amend(missing) error = %v, want ErrNotFound", err)
	}
}

// newSlowFixture seeds one linked grocery expense in a transaction store
// whose writes take writeLatency, so a write can be caught in flight.
func newSlowFixture(writeLatency time.Duration) fixture {
	f := newFixture()
	f.transactions = store.NewTransactionStore([]core.Transaction{
		{ID: "t1", AccountID: "1", Type: core.Expense, Category: core.CategoryFood, Amount: d(250), Description: "Groceries", Date: core.NewDate(2025, 10, 5)},
	}, store.WithLatency(writeLatency))
	f.coord = New(f.accounts, f.transactions, f.budgets, nil)
	return f
}

// startUpdate changes t1 to amount 100 and returns once that write holds
// the store.
func startUpdate(t *testing.T, f fixture) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		amount := d(100)
		_, err := f.transactions.Update(context.Background(), "t1", core.UpdateTransactionRequest{Amount: &amount})
		done <- err
	}()
	time.Sleep(40 * time.Millisecond)
	return done
}

func TestAmendUnlinksTheValueItReplaced(t *testing.T) {
	ctx := context.Background()
	f := newSlowFixture(150 * time.Millisecond)
	done := startUpdate(t, f)

	amount := d(300)
	if _, err := f.coord.Amend(ctx, "t1", core.UpdateTransactionRequest{Amount: &amount}); err != nil {
		t.Fatalf("Amend() error = %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	// Amend replaced the 100 written first: +100 back, -300 booked.
	if got := f.balance(t, "1"); !got.Equal(d(15220)) {
		t.Errorf("balance = %s, want 15220", got)
	}
	if got := f.spent(t, "1"); !got.Equal(d(450)) {
		t.Errorf("spent = %s, want 450", got)
	}
}

func TestRemoveUnlinksTheValueItDeleted(t *testing.T) {
	ctx := context.Background()
	f := newSlowFixture(150 * time.Millisecond)
	done := startUpdate(t, f)

	if _, err := f.coord.Remove(ctx, "t1"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if got := f.balance(t, "1"); !got.Equal(d(15520)) {
		t.Errorf("balance = %s, want 15520", got)
	}
	if got := f.spent(t, "1"); !got.Equal(d(150)) {
		t.Errorf("spent = %s, want 150", got)
	}
	if f.transactions.Len() != 0 {
		t.Errorf("Len() = %d, want 0", f.transactions.Len())
	}
}
