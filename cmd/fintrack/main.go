// Command fintrack is the command-line front end of the personal-finance core.
//
// Each invocation seeds fresh in-memory stores; only the session survives
// between runs (with SESSION_BACKEND=sqlite or redis). Use the shell command to keep
// one set of stores alive across several operations.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"

	"fintrack/internal/cli"
)

func main() {
	cli.LoadEnvFile()
	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel)

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	register(commander, true)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(int(subcommands.ExitFailure))
	}

	status := run(ctx, commander, app)

	if err := app.Close(); err != nil {
		logger.Warn("Close failed", "error", err)
	}
	os.Exit(int(status))
}

// run executes the selected command while the background workers run, then
// stops the workers so pending change events are flushed.
func run(ctx context.Context, commander *subcommands.Commander, app *cli.App) subcommands.ExitStatus {
	bgCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- app.Background(bgCtx) }()

	select {
	case <-app.Ready():
	case <-ctx.Done():
	}
	status := commander.Execute(ctx, app)

	cancel()
	if err := <-done; err != nil {
		app.Logger.Warn("Background workers failed", "error", err)
	}
	return status
}

// register adds every command to c. The shell command is left out of the
// commander the shell itself builds for each line.
func register(c *subcommands.Commander, withShell bool) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&summaryCmd{}, "dashboard")
	c.Register(&filterCmd{}, "dashboard")
	c.Register(&exportCmd{}, "dashboard")

	c.Register(&accountsCmd{}, "accounts")
	c.Register(&accountAddCmd{}, "accounts")
	c.Register(&accountUpdateCmd{}, "accounts")
	c.Register(&accountDeleteCmd{}, "accounts")

	c.Register(&txCmd{}, "transactions")
	c.Register(&txAddCmd{}, "transactions")
	c.Register(&txUpdateCmd{}, "transactions")
	c.Register(&txDeleteCmd{}, "transactions")

	c.Register(&budgetsCmd{}, "budgets")
	c.Register(&budgetAddCmd{}, "budgets")
	c.Register(&budgetUpdateCmd{}, "budgets")
	c.Register(&budgetDeleteCmd{}, "budgets")

	c.Register(&loginCmd{}, "session")
	c.Register(&registerCmd{}, "session")
	c.Register(&logoutCmd{}, "session")
	c.Register(&whoamiCmd{}, "session")

	if withShell {
		c.Register(&shellCmd{}, "")
	}
}
