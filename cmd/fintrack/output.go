package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"fintrack/internal/cli"
	"fintrack/internal/core"
)

// Command output; tests swap these for buffers.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// appFrom extracts the App passed to Commander.Execute.
func appFrom(args []interface{}) *cli.App {
	if len(args) == 0 {
		panic("fintrack: command executed without an App")
	}
	return args[0].(*cli.App)
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
}

// fail prints err and maps it to an exit status: validation problems are
// usage errors, everything else is a failure.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(stderr, "Error: %v\n", err)
	if errors.Is(err, core.ErrValidation) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

// usage prints msg with the command's usage line.
func usage(c subcommands.Command, msg string) subcommands.ExitStatus {
	fmt.Fprintf(stderr, "Error: %s\nusage: %s", msg, c.Usage())
	return subcommands.ExitUsageError
}

// reportCurrency picks the currency aggregates are shown in: the one every
// account shares, or USD when they differ.
func reportCurrency(app *cli.App) string {
	code := ""
	for _, a := range app.Accounts.List() {
		if code == "" {
			code = a.Currency
		} else if code != a.Currency {
			return "USD"
		}
	}
	if code == "" {
		return "USD"
	}
	return code
}

func money(d decimal.Decimal, code string) string { return core.FormatMoney(d, code) }

func percent(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64) + "%"
}

// optionalString turns a flag left at its zero value into nil.
func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
