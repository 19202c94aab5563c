package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"fintrack/internal/cli"
)

// markdownSummary renders the dashboard as a Markdown report.
func markdownSummary(app *cli.App) string {
	d := app.Dashboard
	code := reportCurrency(app)
	all := d.TransactionTotals()

	var b strings.Builder
	b.WriteString("# Dashboard\n\n")
	fmt.Fprintf(&b, "| | |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Total balance | %s |\n", money(d.TotalBalance(), code))
	fmt.Fprintf(&b, "| Income | %s |\n", money(all.Income, code))
	fmt.Fprintf(&b, "| Expenses | %s |\n", money(all.Expenses, code))
	fmt.Fprintf(&b, "| Net | %s |\n", money(all.Balance, code))

	b.WriteString("\n## Accounts\n\n| Account | Type | Balance |\n|---|---|---:|\n")
	for _, a := range app.Accounts.List() {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", a.Name, a.Type, money(a.Balance, a.Currency))
	}

	b.WriteString("\n## Budgets\n\n| Category | Spent | Budget | Progress | Status |\n|---|---:|---:|---:|---|\n")
	for _, bp := range d.BudgetsWithProgress() {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			bp.Category, money(bp.Spent, code), money(bp.Amount, code), percent(bp.Progress), bp.Status)
	}

	if app.Filter.Active() {
		b.WriteString("\n## Transactions (filtered)\n\n")
	} else {
		b.WriteString("\n## Transactions\n\n")
	}
	b.WriteString("| Date | Description | Category | Amount |\n|---|---|---|---:|\n")
	for _, t := range d.FilteredTransactions() {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", t.Date, t.Description, t.Category, money(t.Signed(), code))
	}
	return b.String()
}

// renderMarkdown styles md for the terminal. style is a glamour style
// name such as "auto", "dark" or "notty".
func renderMarkdown(md, style string) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle(style), glamour.WithWordWrap(100))
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	return r.Render(md)
}
