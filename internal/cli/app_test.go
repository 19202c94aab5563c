package cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/session"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		LogLevel:       "info",
		SessionBackend: "memory",
		SQLiteDBPath:   filepath.Join(t.TempDir(), "fintrack.db"),
		TokenSecret:    session.DefaultSecret,
		AMQPExchange:   "fintrack",
		AMQPQueue:      "store_changes",
	}
}

func TestNewAppSeedsAndWires(t *testing.T) {
	ctx := context.Background()
	app, err := NewApp(ctx, testConfig(t), nil)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	defer app.Close()

	if app.Accounts.Len() != 3 || app.Transactions.Len() != 5 || app.Budgets.Len() != 3 {
		t.Fatalf("seeded %d/%d/%d, want 3/5/3",
			app.Accounts.Len(), app.Transactions.Len(), app.Budgets.Len())
	}
	if app.Forwarding() {
		t.Error("no AMQP URL configured, forwarder should be off")
	}

	before := app.Dashboard.TotalBalance()
	_, _, err = app.Coordinator.Record(ctx, core.CreateTransactionRequest{
		AccountID:   "1",
		Type:        core.Expense,
		Category:    core.CategoryFood,
		Amount:      decimal.NewFromInt(40),
		Description: "Lunch",
		Date:        core.NewDate(2025, 10, 9),
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if got, want := app.Dashboard.TotalBalance(), before.Sub(decimal.NewFromInt(40)); !got.Equal(want) {
		t.Errorf("TotalBalance() = %s, want %s", got, want)
	}
}

func TestNewAppSQLiteSessionSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.SessionBackend = "sqlite"

	app, err := NewApp(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	sess, err := app.Auth.Login(ctx, "ada@example.com", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if err := app.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	again, err := NewApp(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("NewApp() second run error = %v", err)
	}
	defer again.Close()

	user, err := again.Auth.Validate(ctx, sess.Token)
	if err != nil {
		t.Fatalf("Validate() after restart error = %v", err)
	}
	if user.Name != "ada" {
		t.Errorf("user.Name = %q, want ada", user.Name)
	}
}

func TestNewAppRejectsBadSeedFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.SeedFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := NewApp(context.Background(), cfg, nil); err == nil {
		t.Fatal("NewApp() with a missing seed file should fail")
	}
}

func TestBackgroundStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(t), nil)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Background(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Background() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Background() did not stop")
	}
}
