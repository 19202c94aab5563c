package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/config"
	"fintrack/internal/coordinator"
	"fintrack/internal/filter"
	"fintrack/internal/log"
	"fintrack/internal/seed"
	"fintrack/internal/session"
	"fintrack/internal/store"
	"fintrack/internal/view"
	"fintrack/internal/worker"
)

const (
	sweepInterval = time.Minute
	dialAttempts  = 3
)

// App owns every long-lived component of one process. Nothing here is a
// package-level singleton; commands receive the App they run against.
type App struct {
	Config *config.Config
	Logger *log.Logger

	Accounts     *store.AccountStore
	Transactions *store.TransactionStore
	Budgets      *store.BudgetStore

	Filter      *filter.State
	Dashboard   *view.Dashboard
	Coordinator *coordinator.Coordinator
	Auth        *session.MockAuthenticator

	sweeper   *cache.Sweeper
	forwarder *worker.ChangeForwarder
	events    *amqp.Client
	cleanups  []func() error
}

// NewApp seeds the stores and wires the derived components. When
// cfg.AMQPURL is set it also connects the change forwarder.
func NewApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = log.Nop()
	}
	now := time.Now()

	fx, err := seed.LoadFile(cfg.SeedFile, now)
	if err != nil {
		return nil, fmt.Errorf("load fixtures: %w", err)
	}
	stores := seed.Build(fx,
		store.WithLatency(cfg.MutationLatency),
		store.WithLogger(logger.WithComponent(log.ComponentStore)))
	logger.InfoContext(ctx, "Stores seeded",
		log.FieldOperation, log.OpSeed,
		"accounts", stores.Accounts.Len(),
		"transactions", stores.Transactions.Len(),
		"budgets", stores.Budgets.Len())

	app := &App{
		Config:       cfg,
		Logger:       logger,
		Accounts:     stores.Accounts,
		Transactions: stores.Transactions,
		Budgets:      stores.Budgets,
		Filter:       filter.NewState(logger.WithComponent(log.ComponentView)),
		sweeper:      cache.NewSweeper(logger),
	}
	viewOpts := []view.Option{view.WithLogger(logger)}
	if cfg.ViewCacheSize > 0 {
		viewOpts = append(viewOpts, view.WithCacheSize(cfg.ViewCacheSize, cfg.ViewCacheTTL))
	}
	app.Dashboard = view.New(app.Accounts, app.Transactions, app.Budgets, app.Filter, viewOpts...)
	app.Coordinator = coordinator.New(app.Accounts, app.Transactions, app.Budgets, logger)
	app.sweeper.Register(app.Dashboard.Cache())

	sessions, err := InitSessionStorage(ctx, logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("session storage: %w", err)
	}
	if sessions.Cleanup != nil {
		app.cleanups = append(app.cleanups, sessions.Cleanup)
	}
	app.Auth = session.NewMockAuthenticator(sessions.Storage,
		session.WithLatency(cfg.AuthLatency),
		session.WithSecret(cfg.TokenSecret),
		session.WithLogger(logger))

	if cfg.AMQPURL != "" {
		client, err := amqp.DialWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, dialAttempts, logger)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("change events: %w", err)
		}
		app.events = client
		app.cleanups = append(app.cleanups, client.Close)
		app.forwarder = worker.NewChangeForwarder(client, logger, app.Accounts, app.Transactions, app.Budgets)
	}

	return app, nil
}

// Stores returns the three entity stores as a seed.Stores value.
func (a *App) Stores() seed.Stores {
	return seed.Stores{Accounts: a.Accounts, Transactions: a.Transactions, Budgets: a.Budgets}
}

// Background runs the cache sweeper and, when configured, the change
// forwarder until ctx ends. Returning means both have stopped.
func (a *App) Background(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.sweeper.Run(ctx, sweepInterval)
		return nil
	})
	if a.forwarder != nil {
		g.Go(func() error { return a.forwarder.Run(ctx) })
	}
	return g.Wait()
}

// Ready is closed once Background is forwarding changes. Without a
// forwarder it is closed already.
func (a *App) Ready() <-chan struct{} {
	if a.forwarder == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.forwarder.Ready()
}

// Forwarding reports whether store changes are being published.
func (a *App) Forwarding() bool { return a.forwarder != nil }

// Close releases the session storage and the broker connection.
func (a *App) Close() error {
	var errs []error
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		if err := a.cleanups[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.cleanups = nil
	return errors.Join(errs...)
}
