package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var testNow = time.Date(2025, 10, 12, 9, 0, 0, 0, time.UTC)

func TestNewBudgetDerivesEndDateAndSpent(t *testing.T) {
	b, err := NewBudget("b1", testNow, CreateBudgetRequest{
		Category:  CategoryFood,
		Amount:    decimal.NewFromInt(600),
		Period:    Monthly,
		StartDate: NewDate(2025, 10, 1),
	})
	if err != nil {
		t.Fatalf("NewBudget() error = %v", err)
	}
	if !b.EndDate.Equal(NewDate(2025, 11, 1)) {
		t.Errorf("EndDate = %v, want 2025-11-01", b.EndDate)
	}
	if !b.Spent.IsZero() {
		t.Errorf("Spent = %v, want 0", b.Spent)
	}
	if b.UserID != OwnerID || !b.CreatedAt.Equal(testNow) || !b.UpdatedAt.Equal(testNow) {
		t.Errorf("unexpected metadata: %+v", b)
	}
}

func TestUpdateBudgetKeepsEndDate(t *testing.T) {
	b, _ := NewBudget("b1", testNow, CreateBudgetRequest{
		Category: CategoryFood, Amount: decimal.NewFromInt(600), Period: Monthly, StartDate: NewDate(2025, 10, 1),
	})
	yearly := Yearly
	later := testNow.Add(time.Hour)
	got, err := UpdateBudgetRequest{Period: &yearly}.Apply(b, later)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got.Period != Yearly || !got.EndDate.Equal(b.EndDate) {
		t.Errorf("unexpected budget after update: %+v", got)
	}
	if !got.UpdatedAt.Equal(later) || !got.CreatedAt.Equal(testNow) {
		t.Errorf("timestamps not handled: %+v", got)
	}
}

func TestEmptyUpdateOnlyTouchesUpdatedAt(t *testing.T) {
	tx, err := NewTransaction("t1", testNow, CreateTransactionRequest{
		AccountID: "1", Type: Expense, Category: CategoryFood,
		Amount: decimal.NewFromInt(250), Description: "Grocery Shopping", Date: NewDate(2025, 10, 5),
	})
	if err != nil {
		t.Fatalf("NewTransaction() error = %v", err)
	}
	later := testNow.Add(time.Minute)
	got, err := UpdateTransactionRequest{}.Apply(tx, later)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	want := tx
	want.UpdatedAt = later
	if got != want {
		t.Errorf("Apply({}) = %+v, want %+v", got, want)
	}
}

func TestUpdateAccountValidatesMergedValue(t *testing.T) {
	a, err := NewAccount("a1", testNow, CreateAccountRequest{Name: "Main", Type: Checking, Currency: "USD"})
	if err != nil {
		t.Fatalf("NewAccount() error = %v", err)
	}
	empty := ""
	if _, err := (UpdateAccountRequest{Name: &empty}).Apply(a, testNow); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}
