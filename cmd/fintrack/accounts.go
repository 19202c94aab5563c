package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"fintrack/internal/core"
)

type accountsCmd struct{}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list accounts" }
func (*accountsCmd) Usage() string {
	return `accounts

  Lists every account with its balance.
`
}

func (*accountsCmd) SetFlags(*flag.FlagSet) {}

func (*accountsCmd) Execute(_ context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appFrom(args)
	w := newTable()
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tBALANCE")
	for _, a := range app.Accounts.List() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.ID, a.Name, a.Type, money(a.Balance, a.Currency))
	}
	w.Flush()
	fmt.Fprintf(stdout, "\nTotal: %s\n", money(app.Dashboard.TotalBalance(), reportCurrency(app)))
	return subcommands.ExitSuccess
}

type accountAddCmd struct {
	name, typ, balance, currency string
}

func (*accountAddCmd) Name() string     { return "account-add" }
func (*accountAddCmd) Synopsis() string { return "create an account" }
func (*accountAddCmd) Usage() string {
	return `account-add -name <name> -type <type> [-balance <amount>] [-currency <code>]

  Types: Checking, Savings, Credit Card, Investment, Cash.
`
}

func (c *accountAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Account name.")
	f.StringVar(&c.typ, "type", "Checking", "Account type.")
	f.StringVar(&c.balance, "balance", "0", "Opening balance; may be negative.")
	f.StringVar(&c.currency, "currency", "USD", "ISO 4217 currency code.")
}

func (c *accountAddCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appFrom(args)
	typ, err := core.ParseAccountType(c.typ)
	if err != nil {
		return fail(err)
	}
	balance, err := core.ParseSignedAmount(c.balance)
	if err != nil {
		return fail(err)
	}
	a, err := app.Accounts.Create(ctx, core.CreateAccountRequest{
		Name: c.name, Type: typ, Balance: balance, Currency: c.currency,
	})
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "Created account %s (%s, %s)\n", a.ID, a.Name, money(a.Balance, a.Currency))
	return subcommands.ExitSuccess
}

type accountUpdateCmd struct {
	name, typ, currency string
}

func (*accountUpdateCmd) Name() string     { return "account-update" }
func (*accountUpdateCmd) Synopsis() string { return "rename or retype an account" }
func (*accountUpdateCmd) Usage() string {
	return `account-update [-name <name>] [-type <type>] [-currency <code>] <id>

  Only the given fields change. Balances move through transactions.
`
}

func (c *accountUpdateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "New name.")
	f.StringVar(&c.typ, "type", "", "New account type.")
	f.StringVar(&c.currency, "currency", "", "New currency code.")
}

func (c *accountUpdateCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usage(c, "exactly one account id is required")
	}
	app := appFrom(args)
	req := core.UpdateAccountRequest{Name: optionalString(c.name), Currency: optionalString(c.currency)}
	if c.typ != "" {
		typ, err := core.ParseAccountType(c.typ)
		if err != nil {
			return fail(err)
		}
		req.Type = &typ
	}
	a, err := app.Accounts.Update(ctx, f.Arg(0), req)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "Updated account %s (%s, %s)\n", a.ID, a.Name, a.Type)
	return subcommands.ExitSuccess
}

type accountDeleteCmd struct{}

func (*accountDeleteCmd) Name() string     { return "account-delete" }
func (*accountDeleteCmd) Synopsis() string { return "delete an account" }
func (*accountDeleteCmd) Usage() string {
	return `account-delete <id>

  Transactions booked on the account are kept and show as "Unknown Account".
`
}

func (*accountDeleteCmd) SetFlags(*flag.FlagSet) {}

func (c *accountDeleteCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usage(c, "exactly one account id is required")
	}
	if err := appFrom(args).Accounts.Delete(ctx, f.Arg(0)); err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "Deleted account %s\n", f.Arg(0))
	return subcommands.ExitSuccess
}
