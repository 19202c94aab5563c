package derive

import (
	"context"
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/filter"
	"fintrack/internal/store"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func mkTx(id string, typ core.TransactionType, cat core.Category, amt int64, date string) core.Transaction {
	return core.Transaction{
		ID: id, AccountID: "1", Type: typ, Category: cat, Amount: d(amt),
		Description: "tx " + id, Date: core.MustParseDate(date),
	}
}

func fixture() []core.Transaction {
	return []core.Transaction{
		mkTx("1", core.Income, core.CategorySalary, 5000, "2025-10-01"),
		mkTx("2", core.Expense, core.CategoryFood, 250, "2025-10-05"),
		mkTx("3", core.Expense, core.CategoryTransport, 120, "2025-10-07"),
		mkTx("4", core.Income, core.CategoryFreelance, 1200, "2025-10-08"),
		mkTx("5", core.Expense, core.CategoryEntertainment, 80, "2025-10-10"),
	}
}

func ids(txs []core.Transaction) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}

func TestTotalAccountBalance(t *testing.T) {
	accounts := []core.Account{{Balance: d(15420)}, {Balance: d(25000)}, {Balance: d(-1250)}}
	if got := TotalAccountBalance(accounts); !got.Equal(d(39170)) {
		t.Errorf("TotalAccountBalance() = %s, want 39170", got)
	}
	if got := TotalAccountBalance(nil); !got.IsZero() {
		t.Errorf("TotalAccountBalance(nil) = %s, want 0", got)
	}
}

func TestSumTransactions(t *testing.T) {
	got := SumTransactions(fixture())
	if !got.Income.Equal(d(6200)) || !got.Expenses.Equal(d(450)) || !got.Balance.Equal(d(5750)) {
		t.Errorf("SumTransactions() = %+v", got)
	}
	if !TotalIncome(fixture()).Equal(d(6200)) || !TotalExpenses(fixture()).Equal(d(450)) || !TransactionBalance(fixture()).Equal(d(5750)) {
		t.Errorf("single aggregates disagree with SumTransactions")
	}
}

func TestBalanceIsIncomeMinusExpenses(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 100; i++ {
		var txs []core.Transaction
		n := r.Intn(30)
		for j := 0; j < n; j++ {
			typ := core.Income
			if r.Intn(2) == 0 {
				typ = core.Expense
			}
			txs = append(txs, core.Transaction{Type: typ, Amount: decimal.New(int64(r.Intn(100000)+1), -2)})
		}
		got := SumTransactions(txs)
		if !got.Balance.Equal(got.Income.Sub(got.Expenses)) {
			t.Fatalf("balance %s != %s - %s", got.Balance, got.Income, got.Expenses)
		}
	}
}

func TestBudgetsWithProgress(t *testing.T) {
	tests := []struct {
		name      string
		amount    int64
		spent     int64
		progress  float64
		remaining int64
		over      bool
		status    string
	}{
		{"food", 600, 250, 250.0 / 600 * 100, 350, false, StatusGood},
		{"fresh budget", 600, 0, 0, 600, false, StatusGood},
		{"at warning", 100, 80, 80, 20, false, StatusWarning},
		{"exactly spent", 100, 100, 100, 0, false, StatusWarning},
		{"overspent", 100, 150, 150, -50, true, StatusOver},
		{"zero amount nothing spent", 0, 0, 0, 0, false, StatusGood},
		{"zero amount overspent", 0, 10, math.Inf(1), -10, true, StatusOver},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BudgetsWithProgress([]core.Budget{{ID: "b", Amount: d(tt.amount), Spent: d(tt.spent)}})[0]
			if math.IsNaN(got.Progress) {
				t.Fatalf("Progress is NaN")
			}
			if math.Abs(got.Progress-tt.progress) > 1e-9 && !(math.IsInf(tt.progress, 1) && math.IsInf(got.Progress, 1)) {
				t.Errorf("Progress = %v, want %v", got.Progress, tt.progress)
			}
			if !got.Remaining.Equal(d(tt.remaining)) {
				t.Errorf("Remaining = %s, want %d", got.Remaining, tt.remaining)
			}
			if got.IsOverBudget != tt.over {
				t.Errorf("IsOverBudget = %v, want %v", got.IsOverBudget, tt.over)
			}
			if got.Status != tt.status {
				t.Errorf("Status = %q, want %q", got.Status, tt.status)
			}
		})
	}
}

func TestFilterTransactionsSortsNewestFirst(t *testing.T) {
	got := ids(FilterTransactions(fixture(), filter.Criteria{}))
	want := []string{"5", "4", "3", "2", "1"}
	if !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestFilterTransactionsStableOnTies(t *testing.T) {
	txs := []core.Transaction{
		mkTx("a", core.Expense, core.CategoryFood, 1, "2025-10-05"),
		mkTx("b", core.Expense, core.CategoryFood, 1, "2025-10-06"),
		mkTx("c", core.Expense, core.CategoryFood, 1, "2025-10-05"),
		mkTx("d", core.Expense, core.CategoryFood, 1, "2025-10-06"),
	}
	got := ids(FilterTransactions(txs, filter.Criteria{}))
	if want := []string{"b", "d", "a", "c"}; !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestFilterFromDateInclusive(t *testing.T) {
	txs := append(fixture(), mkTx("6", core.Expense, core.CategoryFood, 10, "2025-10-06"))
	c := filter.Filter{DateFrom: "2025-10-06"}.Criteria()

	got := ids(FilterTransactions(txs, c))
	if want := []string{"5", "4", "3", "6"}; !slices.Equal(got, want) {
		t.Errorf("ids = %v, want %v", got, want)
	}
	totals := FilteredTotals(txs, c)
	if !totals.Income.Equal(d(1200)) || !totals.Expenses.Equal(d(210)) || !totals.Balance.Equal(d(990)) {
		t.Errorf("FilteredTotals() = %+v", totals)
	}
}

func TestFilterMonotonicity(t *testing.T) {
	txs := fixture()
	filters := []filter.Filter{
		{},
		{Type: "EXPENSE"},
		{Type: "EXPENSE", Category: "Food"},
		{Type: "EXPENSE", Category: "Food", DateFrom: "2025-10-01"},
		{Type: "EXPENSE", Category: "Food", DateFrom: "2025-10-01", DateTo: "2025-10-04"},
	}
	prev := len(txs) + 1
	for _, f := range filters {
		n := len(FilterTransactions(txs, f.Criteria()))
		if n > prev {
			t.Errorf("adding a constraint grew the result: %+v gave %d > %d", f, n, prev)
		}
		prev = n
	}
}

func TestFilterInvalidDateMatchesNothing(t *testing.T) {
	c := filter.Filter{DateTo: "not-a-date"}.Criteria()
	if got := FilterTransactions(fixture(), c); len(got) != 0 {
		t.Errorf("got %d transactions for an unparsable bound", len(got))
	}
}

func TestComputedRecomputesOnGenerationChange(t *testing.T) {
	ctx := context.Background()
	txs := store.NewTransactionStore(fixture(), store.WithLatency(0))
	state := filter.NewState(nil)

	total := NewComputed(func() Totals {
		return FilteredTotals(txs.List(), state.Criteria())
	}, txs, state)

	if got := total.Get(); !got.Balance.Equal(d(5750)) {
		t.Fatalf("initial balance = %s", got.Balance)
	}
	total.Get()
	if total.Runs() != 1 {
		t.Errorf("Runs() = %d after two reads, want 1", total.Runs())
	}

	if err := txs.Delete(ctx, "1"); err != nil {
		t.Fatal(err)
	}
	if got := total.Get(); !got.Balance.Equal(d(750)) {
		t.Errorf("balance after delete = %s, want 750", got.Balance)
	}

	state.SetType("EXPENSE")
	if got := total.Get(); !got.Balance.Equal(d(-450)) {
		t.Errorf("balance after filter = %s, want -450", got.Balance)
	}
	if total.Runs() != 3 {
		t.Errorf("Runs() = %d, want 3", total.Runs())
	}
}
