package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"fintrack/internal/coordinator"
	"fintrack/internal/core"
)

type txCmd struct {
	filters filterFlags
	account string
	head    int
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list transactions, newest first" }
func (*txCmd) Usage() string {
	return `tx [-type <t>] [-category <c>] [-from <date>] [-to <date>] [-clear] [-account <id>] [-head <n>]

  Lists the transactions matching the filter, newest first. With -account
  it lists that account's transactions in booking order instead.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	c.filters.register(f)
	f.StringVar(&c.account, "account", "", "Only this account, ignoring the filter.")
	f.IntVar(&c.head, "head", 0, "Show only the first N transactions.")
}

func (c *txCmd) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appFrom(args)

	var txs []core.Transaction
	if c.account != "" {
		txs = app.Transactions.ListByAccount(c.account)
	} else {
		c.filters.apply(f, app.Filter)
		txs = app.Dashboard.FilteredTransactions()
	}
	if c.head > 0 && len(txs) > c.head {
		txs = txs[:c.head]
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tDATE\tTYPE\tCATEGORY\tAMOUNT\tACCOUNT\tDESCRIPTION")
	for _, t := range txs {
		code := "USD"
		if a, ok := app.Accounts.Get(t.AccountID); ok {
			code = a.Currency
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Date, t.Type, t.Category, money(t.Signed(), code),
			app.Dashboard.AccountName(t.AccountID), t.Description)
	}
	w.Flush()
	return subcommands.ExitSuccess
}

type txAddCmd struct {
	account, typ, category, amount, description, date string
	link                                              bool
}

func (*txAddCmd) Name() string     { return "tx-add" }
func (*txAddCmd) Synopsis() string { return "record a transaction" }
func (*txAddCmd) Usage() string {
	return `tx-add -account <id> -type <INCOME|EXPENSE> -category <c> -amount <n> -desc <text> [-date <date>] [-link=false]

  Records a transaction. By default its account balance and matching
  budgets are adjusted too; -link=false only stores the transaction.
`
}

func (c *txAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account id.")
	f.StringVar(&c.typ, "type", "EXPENSE", "INCOME or EXPENSE.")
	f.StringVar(&c.category, "category", "", "Category name.")
	f.StringVar(&c.amount, "amount", "", "Positive amount, dot or comma decimals.")
	f.StringVar(&c.description, "desc", "", "Description.")
	f.StringVar(&c.date, "date", "", "Economic date (YYYY-MM-DD); defaults to today.")
	f.BoolVar(&c.link, "link", true, "Adjust the account balance and budgets.")
}

func (c *txAddCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appFrom(args)
	req, err := c.request()
	if err != nil {
		return fail(err)
	}

	var (
		tx  core.Transaction
		res coordinator.LinkResult
	)
	if c.link {
		tx, res, err = app.Coordinator.Record(ctx, req)
	} else {
		tx, err = app.Transactions.Create(ctx, req)
	}
	if err != nil {
		return fail(err)
	}

	fmt.Fprintf(stdout, "Recorded transaction %s: %s %s on %s\n",
		tx.ID, tx.Type, tx.Amount.StringFixed(2), app.Dashboard.AccountName(tx.AccountID))
	if c.link {
		printLinkResult(app.Accounts.Get, tx.AccountID, res)
	}
	return subcommands.ExitSuccess
}

func (c *txAddCmd) request() (core.CreateTransactionRequest, error) {
	typ, err := core.ParseTransactionType(c.typ)
	if err != nil {
		return core.CreateTransactionRequest{}, err
	}
	cat, err := core.ParseCategory(c.category)
	if err != nil {
		return core.CreateTransactionRequest{}, err
	}
	amount, err := core.ParseAmount(c.amount)
	if err != nil {
		return core.CreateTransactionRequest{}, err
	}
	date := core.Today()
	if c.date != "" {
		if date, err = core.ParseDate(c.date); err != nil {
			return core.CreateTransactionRequest{}, err
		}
	}
	return core.CreateTransactionRequest{
		AccountID:   c.account,
		Type:        typ,
		Category:    cat,
		Amount:      amount,
		Description: c.description,
		Date:        date,
	}, nil
}

func printLinkResult(get func(string) (core.Account, bool), accountID string, res coordinator.LinkResult) {
	if a, ok := get(accountID); ok && res.AccountAdjusted {
		fmt.Fprintf(stdout, "  %s balance: %s\n", a.Name, money(a.Balance, a.Currency))
	} else {
		fmt.Fprintf(stdout, "  account %s not found, balance unchanged\n", accountID)
	}
	fmt.Fprintf(stdout, "  budgets adjusted: %d\n", res.BudgetsAdjusted)
}

type txUpdateCmd struct {
	typ, category, amount, description, date string
	relink                                   bool
}

func (*txUpdateCmd) Name() string     { return "tx-update" }
func (*txUpdateCmd) Synopsis() string { return "change a transaction" }
func (*txUpdateCmd) Usage() string {
	return `tx-update [-type <t>] [-category <c>] [-amount <n>] [-desc <text>] [-date <date>] [-relink=false] <id>

  Only the given fields change. By default the old effect on the account
  and budgets is reversed and the new one applied.
`
}

func (c *txUpdateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.typ, "type", "", "New type.")
	f.StringVar(&c.category, "category", "", "New category.")
	f.StringVar(&c.amount, "amount", "", "New amount.")
	f.StringVar(&c.description, "desc", "", "New description.")
	f.StringVar(&c.date, "date", "", "New economic date.")
	f.BoolVar(&c.relink, "relink", true, "Move the side effects to the new values.")
}

func (c *txUpdateCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usage(c, "exactly one transaction id is required")
	}
	app := appFrom(args)
	req, err := c.request()
	if err != nil {
		return fail(err)
	}

	var tx core.Transaction
	if c.relink {
		tx, err = app.Coordinator.Amend(ctx, f.Arg(0), req)
	} else {
		tx, err = app.Transactions.Update(ctx, f.Arg(0), req)
	}
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "Updated transaction %s: %s %s %s on %s\n",
		tx.ID, tx.Type, tx.Category, tx.Amount.StringFixed(2), tx.Date)
	return subcommands.ExitSuccess
}

func (c *txUpdateCmd) request() (core.UpdateTransactionRequest, error) {
	req := core.UpdateTransactionRequest{Description: optionalString(c.description)}
	if c.typ != "" {
		typ, err := core.ParseTransactionType(c.typ)
		if err != nil {
			return req, err
		}
		req.Type = &typ
	}
	if c.category != "" {
		cat, err := core.ParseCategory(c.category)
		if err != nil {
			return req, err
		}
		req.Category = &cat
	}
	if c.amount != "" {
		amount, err := core.ParseAmount(c.amount)
		if err != nil {
			return req, err
		}
		req.Amount = &amount
	}
	if c.date != "" {
		date, err := core.ParseDate(c.date)
		if err != nil {
			return req, err
		}
		req.Date = &date
	}
	return req, nil
}

type txDeleteCmd struct {
	unlink bool
}

func (*txDeleteCmd) Name() string     { return "tx-delete" }
func (*txDeleteCmd) Synopsis() string { return "delete a transaction" }
func (*txDeleteCmd) Usage() string {
	return `tx-delete [-unlink=false] <id>

  Deletes a transaction and, by default, reverses its effect on the
  account balance and budgets.
`
}

func (c *txDeleteCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.unlink, "unlink", true, "Reverse the account and budget adjustments.")
}

func (c *txDeleteCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usage(c, "exactly one transaction id is required")
	}
	app := appFrom(args)
	id := f.Arg(0)
	tx, _ := app.Transactions.Get(id)

	if !c.unlink {
		if err := app.Transactions.Delete(ctx, id); err != nil {
			return fail(err)
		}
		fmt.Fprintf(stdout, "Deleted transaction %s\n", id)
		return subcommands.ExitSuccess
	}

	res, err := app.Coordinator.Remove(ctx, id)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "Deleted transaction %s\n", id)
	printLinkResult(app.Accounts.Get, tx.AccountID, res)
	return subcommands.ExitSuccess
}
