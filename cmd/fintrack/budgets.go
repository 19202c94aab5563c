package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"fintrack/internal/cli"
	"fintrack/internal/core"
)

type budgetsCmd struct{}

func (*budgetsCmd) Name() string     { return "budgets" }
func (*budgetsCmd) Synopsis() string { return "list budgets with their progress" }
func (*budgetsCmd) Usage() string {
	return `budgets

  Lists every budget with spent, remaining, progress and status.
`
}

func (*budgetsCmd) SetFlags(*flag.FlagSet) {}

func (*budgetsCmd) Execute(_ context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	printBudgets(appFrom(args))
	return subcommands.ExitSuccess
}

func printBudgets(app *cli.App) {
	code := reportCurrency(app)
	w := newTable()
	fmt.Fprintln(w, "ID\tCATEGORY\tPERIOD\tWINDOW\tSPENT\tBUDGET\tREMAINING\tPROGRESS\tSTATUS")
	for _, b := range app.Dashboard.BudgetsWithProgress() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s..%s\t%s\t%s\t%s\t%s\t%s\n",
			b.ID, b.Category, b.Period, b.StartDate, b.EndDate,
			money(b.Spent, code), money(b.Amount, code), money(b.Remaining, code),
			percent(b.Progress), b.Status)
	}
	w.Flush()
}

type budgetAddCmd struct {
	category, amount, period, start string
}

func (*budgetAddCmd) Name() string     { return "budget-add" }
func (*budgetAddCmd) Synopsis() string { return "create a budget" }
func (*budgetAddCmd) Usage() string {
	return `budget-add -category <c> -amount <n> [-period Weekly|Monthly|Yearly] [-start <date>]

  The end date is derived from the start date and period once, at creation.
`
}

func (c *budgetAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.category, "category", "", "Expense category.")
	f.StringVar(&c.amount, "amount", "", "Budgeted amount.")
	f.StringVar(&c.period, "period", string(core.Monthly), "Budget period.")
	f.StringVar(&c.start, "start", "", "Start date (YYYY-MM-DD); defaults to today.")
}

func (c *budgetAddCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appFrom(args)
	cat, err := core.ParseCategory(c.category)
	if err != nil {
		return fail(err)
	}
	amount, err := core.ParseAmount(c.amount)
	if err != nil {
		return fail(err)
	}
	period, err := core.ParsePeriod(c.period)
	if err != nil {
		return fail(err)
	}
	start := core.Today()
	if c.start != "" {
		if start, err = core.ParseDate(c.start); err != nil {
			return fail(err)
		}
	}

	b, err := app.Budgets.Create(ctx, core.CreateBudgetRequest{
		Category: cat, Amount: amount, Period: period, StartDate: start,
	})
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "Created budget %s: %s %s %s, %s..%s\n",
		b.ID, b.Category, b.Period, b.Amount.StringFixed(2), b.StartDate, b.EndDate)
	return subcommands.ExitSuccess
}

type budgetUpdateCmd struct {
	category, amount, period string
}

func (*budgetUpdateCmd) Name() string     { return "budget-update" }
func (*budgetUpdateCmd) Synopsis() string { return "change a budget" }
func (*budgetUpdateCmd) Usage() string {
	return `budget-update [-category <c>] [-amount <n>] [-period <p>] <id>

  Only the given fields change. The end date stays as computed at creation.
`
}

func (c *budgetUpdateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.category, "category", "", "New category.")
	f.StringVar(&c.amount, "amount", "", "New amount.")
	f.StringVar(&c.period, "period", "", "New period.")
}

func (c *budgetUpdateCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usage(c, "exactly one budget id is required")
	}
	app := appFrom(args)

	var req core.UpdateBudgetRequest
	if c.category != "" {
		cat, err := core.ParseCategory(c.category)
		if err != nil {
			return fail(err)
		}
		req.Category = &cat
	}
	if c.amount != "" {
		amount, err := core.ParseAmount(c.amount)
		if err != nil {
			return fail(err)
		}
		req.Amount = &amount
	}
	if c.period != "" {
		period, err := core.ParsePeriod(c.period)
		if err != nil {
			return fail(err)
		}
		req.Period = &period
	}

	b, err := app.Budgets.Update(ctx, f.Arg(0), req)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "Updated budget %s: %s %s %s\n", b.ID, b.Category, b.Period, b.Amount.StringFixed(2))
	return subcommands.ExitSuccess
}

type budgetDeleteCmd struct{}

func (*budgetDeleteCmd) Name() string     { return "budget-delete" }
func (*budgetDeleteCmd) Synopsis() string { return "delete a budget" }
func (*budgetDeleteCmd) Usage() string {
	return `budget-delete <id>
`
}

func (*budgetDeleteCmd) SetFlags(*flag.FlagSet) {}

func (c *budgetDeleteCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usage(c, "exactly one budget id is required")
	}
	if err := appFrom(args).Budgets.Delete(ctx, f.Arg(0)); err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "Deleted budget %s\n", f.Arg(0))
	return subcommands.ExitSuccess
}
