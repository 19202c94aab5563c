// Package filter holds the dashboard's transaction filter.
package filter

import (
	"context"
	"strings"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// All is the wildcard value for the type and category filters.
const All = "ALL"

// Filter is the raw filter as entered by the user. Empty or All leaves a
// dimension unfiltered; dates are ISO strings and empty means no bound.
type Filter struct {
	Type     string `json:"type"`
	Category string `json:"category"`
	DateFrom string `json:"dateFrom"`
	DateTo   string `json:"dateTo"`
}

func unset(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, All)
}

// Active reports whether any dimension is filtered.
func (f Filter) Active() bool {
	return !unset(f.Type) || !unset(f.Category) ||
		strings.TrimSpace(f.DateFrom) != "" || strings.TrimSpace(f.DateTo) != ""
}

// Criteria is a parsed Filter ready for matching.
type Criteria struct {
	Type     core.TransactionType // empty matches any
	Category core.Category        // empty matches any
	From     core.Date            // zero means unbounded
	To       core.Date            // zero means unbounded

	// Never is set when a bound could not be parsed. Such a filter
	// matches no transaction at all.
	Never bool
}

// Criteria parses f. Type and category values are matched exactly, so an
// unknown value simply selects nothing.
func (f Filter) Criteria() Criteria {
	var c Criteria
	if !unset(f.Type) {
		if t, err := core.ParseTransactionType(f.Type); err == nil {
			c.Type = t
		} else {
			c.Type = core.TransactionType(strings.TrimSpace(f.Type))
		}
	}
	if !unset(f.Category) {
		if cat, err := core.ParseCategory(f.Category); err == nil {
			c.Category = cat
		} else {
			c.Category = core.Category(strings.TrimSpace(f.Category))
		}
	}
	c.From, c.Never = parseBound(f.DateFrom, c.Never)
	c.To, c.Never = parseBound(f.DateTo, c.Never)
	return c
}

func parseBound(s string, never bool) (core.Date, bool) {
	if strings.TrimSpace(s) == "" {
		return core.Date{}, never
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, true
	}
	return d, never
}

// Match applies the type, category, from and to tests in that order. Both
// date bounds are inclusive.
func (c Criteria) Match(t core.Transaction) bool {
	if c.Never {
		return false
	}
	if c.Type != "" && t.Type != c.Type {
		return false
	}
	if c.Category != "" && t.Category != c.Category {
		return false
	}
	if !c.From.IsZero() && t.Date.Before(c.From) {
		return false
	}
	if !c.To.IsZero() && t.Date.After(c.To) {
		return false
	}
	return true
}

// State is the mutable filter shared between the CLI and the dashboard view.
// Every setter bumps Generation, even when the value does not change.
type State struct {
	mu     sync.RWMutex
	value  Filter
	gen    uint64
	logger *log.Logger
}

// NewState returns a cleared filter. A nil logger disables change logging.
func NewState(logger *log.Logger) *State {
	if logger == nil {
		logger = log.Nop()
	}
	return &State{value: Filter{Type: All, Category: All}, logger: logger}
}

func (s *State) SetType(v string)     { s.set(func(f *Filter) { f.Type = v }) }
func (s *State) SetCategory(v string) { s.set(func(f *Filter) { f.Category = v }) }
func (s *State) SetDateFrom(v string) { s.set(func(f *Filter) { f.DateFrom = v }) }
func (s *State) SetDateTo(v string)   { s.set(func(f *Filter) { f.DateTo = v }) }

// Set replaces the whole filter at once.
func (s *State) Set(f Filter) { s.set(func(cur *Filter) { *cur = f }) }

// Clear resets every dimension.
func (s *State) Clear() {
	s.set(func(f *Filter) { *f = Filter{Type: All, Category: All} })
}

func (s *State) Value() Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Load returns the current filter together with its generation.
func (s *State) Load() (Filter, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.gen
}

// Generation returns the number of changes applied so far.
func (s *State) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

func (s *State) Active() bool { return s.Value().Active() }

// Criteria returns the parsed current filter.
func (s *State) Criteria() Criteria { return s.Value().Criteria() }

func (s *State) set(fn func(*Filter)) {
	s.mu.Lock()
	fn(&s.value)
	s.gen++
	f := s.value
	s.mu.Unlock()

	s.logger.DebugContext(context.Background(), "Filters changed",
		log.FieldFilterType, f.Type,
		log.FieldFilterCat, f.Category,
		log.FieldDateFrom, f.DateFrom,
		log.FieldDateTo, f.DateTo)
}
