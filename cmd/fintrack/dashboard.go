package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"fintrack/internal/cli"
	"fintrack/internal/filter"
	"fintrack/internal/seed"
)

// filterFlags binds the transaction filter to command flags. Only flags
// given on the command line touch the filter state.
type filterFlags struct {
	typ, category, from, to string
	clear                   bool
}

func (ff *filterFlags) register(f *flag.FlagSet) {
	f.StringVar(&ff.typ, "type", "", "Transaction type: INCOME, EXPENSE or ALL.")
	f.StringVar(&ff.category, "category", "", "Category name or ALL.")
	f.StringVar(&ff.from, "from", "", "Earliest date, inclusive (YYYY-MM-DD).")
	f.StringVar(&ff.to, "to", "", "Latest date, inclusive (YYYY-MM-DD).")
	f.BoolVar(&ff.clear, "clear", false, "Reset the filter before applying the other flags.")
}

func (ff *filterFlags) apply(f *flag.FlagSet, state *filter.State) {
	if ff.clear {
		state.Clear()
	}
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "type":
			state.SetType(ff.typ)
		case "category":
			state.SetCategory(ff.category)
		case "from":
			state.SetDateFrom(ff.from)
		case "to":
			state.SetDateTo(ff.to)
		}
	})
}

type summaryCmd struct {
	filters filterFlags
	md      bool
	raw     bool
	style   string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "show balances, totals and budget progress" }
func (*summaryCmd) Usage() string {
	return `summary [-type <t>] [-category <c>] [-from <date>] [-to <date>] [-clear] [-md [-raw] [-style <s>]]

  Prints the dashboard: total balance, income and expense totals, the
  filtered totals and the progress of every budget. With -md the report is
  a Markdown document, styled for the terminal unless -raw is given.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	c.filters.register(f)
	f.BoolVar(&c.md, "md", false, "Render the report as Markdown.")
	f.BoolVar(&c.raw, "raw", false, "With -md, print the Markdown source.")
	f.StringVar(&c.style, "style", "auto", "With -md, the glamour style (auto, dark, light, notty).")
}

func (c *summaryCmd) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appFrom(args)
	c.filters.apply(f, app.Filter)
	if c.md {
		return c.markdown(app)
	}
	d := app.Dashboard
	code := reportCurrency(app)

	all := d.TransactionTotals()
	fmt.Fprintf(stdout, "Total balance:  %s\n", money(d.TotalBalance(), code))
	fmt.Fprintf(stdout, "Income:         %s\n", money(all.Income, code))
	fmt.Fprintf(stdout, "Expenses:       %s\n", money(all.Expenses, code))
	fmt.Fprintf(stdout, "Net:            %s\n", money(all.Balance, code))

	if app.Filter.Active() {
		v := app.Filter.Value()
		ft := d.FilteredTotals()
		fmt.Fprintf(stdout, "\nFiltered (type=%s category=%s from=%s to=%s): %d transactions\n",
			v.Type, v.Category, v.DateFrom, v.DateTo, len(d.FilteredTransactions()))
		fmt.Fprintf(stdout, "  income %s, expenses %s, net %s\n",
			money(ft.Income, code), money(ft.Expenses, code), money(ft.Balance, code))
	}

	fmt.Fprintln(stdout)
	printBudgets(app)
	return subcommands.ExitSuccess
}

func (c *summaryCmd) markdown(app *cli.App) subcommands.ExitStatus {
	md := markdownSummary(app)
	if c.raw {
		fmt.Fprint(stdout, md)
		return subcommands.ExitSuccess
	}
	out, err := renderMarkdown(md, c.style)
	if err != nil {
		return fail(err)
	}
	fmt.Fprint(stdout, out)
	return subcommands.ExitSuccess
}

type filterCmd struct {
	filters filterFlags
}

func (*filterCmd) Name() string     { return "filter" }
func (*filterCmd) Synopsis() string { return "show or change the transaction filter" }
func (*filterCmd) Usage() string {
	return `filter [-type <t>] [-category <c>] [-from <date>] [-to <date>] [-clear]

  Changes the filter used by tx and summary, then prints it. Mostly useful
  inside the shell, where the filter persists between commands.
`
}

func (c *filterCmd) SetFlags(f *flag.FlagSet) { c.filters.register(f) }

func (c *filterCmd) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appFrom(args)
	c.filters.apply(f, app.Filter)
	v := app.Filter.Value()
	fmt.Fprintf(stdout, "type=%s category=%s from=%s to=%s active=%t\n",
		v.Type, v.Category, v.DateFrom, v.DateTo, v.Active())
	return subcommands.ExitSuccess
}

type exportCmd struct {
	out string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the current stores as a fixture file" }
func (*exportCmd) Usage() string {
	return `export [-o <file>]

  Writes accounts, transactions and budgets as YAML in the SEED_FILE format.
  Without -o the document goes to standard output.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.out, "o", "", "Output file.")
}

func (c *exportCmd) Execute(_ context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appFrom(args)
	data, err := seed.Encode(app.Stores())
	if err != nil {
		return fail(err)
	}
	if c.out == "" {
		stdout.Write(data)
		return subcommands.ExitSuccess
	}
	if err := os.WriteFile(c.out, data, 0o644); err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "Wrote %s\n", c.out)
	return subcommands.ExitSuccess
}
