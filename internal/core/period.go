// This file implements the Strategy Pattern for budget periods.
// Each period (weekly, monthly, yearly) owns the calendar arithmetic that
// turns a budget start date into its end date.

package core

import (
	"fmt"
	"strings"
)

const (
	Weekly  BudgetPeriod = "Weekly"
	Monthly BudgetPeriod = "Monthly"
	Yearly  BudgetPeriod = "Yearly"
)

type BudgetPeriod string

// PeriodStrategy computes where a budget window ends.
type PeriodStrategy interface {
	// End returns the end date of a window starting at start.
	End(start Date) Date
}

// WeeklyPeriod spans seven days.
type WeeklyPeriod struct{}

func (WeeklyPeriod) End(start Date) Date { return start.AddDate(0, 0, 7) }

// MonthlyPeriod spans one calendar month. Day overflow rolls forward
// (Jan 31 ends on Mar 3 in a non-leap year).
type MonthlyPeriod struct{}

func (MonthlyPeriod) End(start Date) Date { return start.AddDate(0, 1, 0) }

// YearlyPeriod spans one calendar year.
type YearlyPeriod struct{}

func (YearlyPeriod) End(start Date) Date { return start.AddDate(1, 0, 0) }

var periodStrategies = map[BudgetPeriod]PeriodStrategy{
	Weekly:  WeeklyPeriod{},
	Monthly: MonthlyPeriod{},
	Yearly:  YearlyPeriod{},
}

// Periods lists the budget periods in display order.
func Periods() []BudgetPeriod {
	return []BudgetPeriod{Weekly, Monthly, Yearly}
}

func (p BudgetPeriod) Validate() error {
	if _, ok := periodStrategies[p]; !ok {
		return fmt.Errorf("%w %q", ErrInvalidPeriod, string(p))
	}
	return nil
}

// ParsePeriod matches a period name case-insensitively.
func ParsePeriod(s string) (BudgetPeriod, error) {
	s = strings.TrimSpace(s)
	for _, p := range Periods() {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrInvalidPeriod, s)
}

// GetPeriodStrategy returns the strategy registered for period.
func GetPeriodStrategy(period BudgetPeriod) (PeriodStrategy, error) {
	s, ok := periodStrategies[period]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrInvalidPeriod, string(period))
	}
	return s, nil
}

// EndDateFor returns the end of the budget window that starts at start.
func EndDateFor(start Date, period BudgetPeriod) (Date, error) {
	s, err := GetPeriodStrategy(period)
	if err != nil {
		return Date{}, err
	}
	return s.End(start), nil
}
