package derive

import (
	"slices"
	"sync"
)

// Versioned is any source whose Generation moves on every change, such as a
// store or a filter state.
type Versioned interface {
	Generation() uint64
}

// Computed memoises fn over its dependencies. Get returns the cached value
// while every dependency is still at the generation seen by the last
// computation, and recomputes otherwise.
type Computed[T any] struct {
	fn   func() T
	deps []Versioned

	mu    sync.Mutex
	gens  []uint64
	value T
	valid bool
	runs  int
}

func NewComputed[T any](fn func() T, deps ...Versioned) *Computed[T] {
	return &Computed[T]{fn: fn, deps: deps}
}

func (c *Computed[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Generations are read before fn runs: a commit racing with fn leaves
	// the recorded generations behind, forcing the next Get to recompute.
	gens := make([]uint64, len(c.deps))
	for i, d := range c.deps {
		gens[i] = d.Generation()
	}
	if c.valid && slices.Equal(gens, c.gens) {
		return c.value
	}
	c.value = c.fn()
	c.gens = gens
	c.valid = true
	c.runs++
	return c.value
}

// Runs reports how many times the value has been computed.
func (c *Computed[T]) Runs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runs
}
