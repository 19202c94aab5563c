// Package store holds the in-memory entity stores.
//
// A Store owns one ordered collection. Every mutation builds a new slice and
// swaps it in atomically (copy-on-write), so readers always see a complete
// snapshot and never wait for writers. Writers are serialised by a mutex held
// from issuance to commit, which keeps their effects in issuance order.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// Entity is anything a Store can hold.
type Entity interface {
	EntityID() string
}

// Change describes one committed mutation.
type Change struct {
	Store      string    `json:"store"`
	Op         string    `json:"op"`
	ID         string    `json:"id,omitempty"`
	Generation uint64    `json:"generation"`
	Count      int       `json:"count"`
	At         time.Time `json:"at"`
}

// Snapshot is an immutable view of a collection at one generation.
type Snapshot[E Entity] struct {
	Generation uint64
	Items      []E

	index map[string]int
}

// Len returns the number of entities in the snapshot.
func (s Snapshot[E]) Len() int { return len(s.Items) }

// Get looks up id in the snapshot.
func (s Snapshot[E]) Get(id string) (E, bool) {
	var zero E
	i, ok := s.index[id]
	if !ok {
		return zero, false
	}
	return s.Items[i], true
}

func newSnapshot[E Entity](gen uint64, items []E) *Snapshot[E] {
	idx := make(map[string]int, len(items))
	for i, it := range items {
		idx[it.EntityID()] = i
	}
	return &Snapshot[E]{Generation: gen, Items: items, index: idx}
}

// Store is a generic copy-on-write entity collection.
type Store[E Entity] struct {
	name string
	opts options

	mu      sync.Mutex
	current atomic.Pointer[Snapshot[E]]

	snapshots hub[Snapshot[E]]
	changes   hub[Change]
}

// New creates a store named name holding seed, in order.
func New[E Entity](name string, seed []E, opts ...Option) *Store[E] {
	s := &Store[E]{
		name: name,
		opts: buildOptions(opts),
	}
	s.current.Store(newSnapshot(0, slices.Clone(seed)))
	return s
}

// Name returns the store name used in logs and change events.
func (s *Store[E]) Name() string { return s.name }

// Snapshot returns the latest committed snapshot.
func (s *Store[E]) Snapshot() Snapshot[E] { return *s.current.Load() }

// Generation returns the number of mutations committed so far.
func (s *Store[E]) Generation() uint64 { return s.current.Load().Generation }

// List returns the collection in insertion order. The slice is a copy.
func (s *Store[E]) List() []E { return slices.Clone(s.current.Load().Items) }

// Get returns the entity with id. Absence is not an error.
func (s *Store[E]) Get(id string) (E, bool) { return s.current.Load().Get(id) }

// Len returns the collection size.
func (s *Store[E]) Len() int { return len(s.current.Load().Items) }

// Subscribe returns a feed that first receives the current snapshot and then
// every snapshot committed afterwards.
func (s *Store[E]) Subscribe(buffer int) *Feed[Snapshot[E]] {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := *s.current.Load()
	return s.snapshots.subscribe(buffer, &cur)
}

// Changes returns a feed of change descriptions for mutations committed after the call.
func (s *Store[E]) Changes(buffer int) *Feed[Change] {
	return s.changes.subscribe(buffer, nil)
}

// Insert builds a new entity with a fresh id and appends it. An error from
// build aborts the insert and leaves the store untouched.
func (s *Store[E]) Insert(ctx context.Context, build func(id string, now time.Time) (E, error)) (E, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wait()

	var zero E
	cur := s.current.Load()
	item, err := guard(func() (E, error) { return build(s.opts.newID(), s.opts.now()) })
	if err != nil {
		s.logFailure(ctx, log.OpCreate, "", err)
		return zero, err
	}

	next := make([]E, len(cur.Items), len(cur.Items)+1)
	copy(next, cur.Items)
	next = append(next, item)
	s.commit(ctx, log.OpCreate, item.EntityID(), next)
	return item, nil
}

// Replace merges over the entity with id and stores the result at the same
// position. It fails with core.ErrNotFound when id is absent.
func (s *Store[E]) Replace(ctx context.Context, id string, merge func(cur E, now time.Time) (E, error)) (E, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wait()

	var zero E
	cur := s.current.Load()
	i, ok := cur.index[id]
	if !ok {
		err := s.notFound(id)
		s.logFailure(ctx, log.OpUpdate, id, err)
		return zero, err
	}

	item, err := guard(func() (E, error) { return merge(cur.Items[i], s.opts.now()) })
	if err == nil && item.EntityID() != id {
		err = fmt.Errorf("%w: %s %q changed id to %q", core.ErrUnknown, s.name, id, item.EntityID())
	}
	if err != nil {
		s.logFailure(ctx, log.OpUpdate, id, err)
		return zero, err
	}

	next := slices.Clone(cur.Items)
	next[i] = item
	s.commit(ctx, log.OpUpdate, id, next)
	return item, nil
}

// Remove deletes the entity with id. It fails with core.ErrNotFound when id is absent.
func (s *Store[E]) Remove(ctx context.Context, id string) error {
	_, err := s.Take(ctx, id)
	return err
}

// Take is Remove that also returns the entity as it was when deleted.
func (s *Store[E]) Take(ctx context.Context, id string) (E, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wait()

	var zero E
	cur := s.current.Load()
	i, ok := cur.index[id]
	if !ok {
		err := s.notFound(id)
		s.logFailure(ctx, log.OpDelete, id, err)
		return zero, err
	}

	removed := cur.Items[i]
	next := make([]E, 0, len(cur.Items)-1)
	next = append(next, cur.Items[:i]...)
	next = append(next, cur.Items[i+1:]...)
	s.commit(ctx, log.OpDelete, id, next)
	return removed, nil
}

// ApplyWhere replaces every entity matching match with fn's result and
// returns how many matched. No match is a silent no-op: nothing is
// published and the generation does not move. There is no artificial latency.
func (s *Store[E]) ApplyWhere(ctx context.Context, match func(E) bool, fn func(cur E, now time.Time) E) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	now := s.opts.now()
	var (
		matched int
		lastID  string
	)
	next, err := guard(func() ([]E, error) {
		var out []E
		for i, it := range cur.Items {
			if !match(it) {
				continue
			}
			if out == nil {
				out = slices.Clone(cur.Items)
			}
			out[i] = fn(it, now)
			matched++
			lastID = it.EntityID()
		}
		return out, nil
	})
	if err != nil {
		s.logFailure(ctx, log.OpAdjust, "", err)
		return 0
	}
	if matched == 0 {
		s.opts.logger.DebugContext(ctx, "Adjustment matched nothing",
			log.FieldStore, s.name,
			log.FieldOperation, log.OpAdjust)
		return 0
	}
	if matched > 1 {
		lastID = ""
	}
	s.commit(ctx, log.OpAdjust, lastID, next)
	return matched
}

func (s *Store[E]) commit(ctx context.Context, op, id string, items []E) {
	prev := s.current.Load()
	snap := newSnapshot(prev.Generation+1, items)
	s.current.Store(snap)

	s.opts.logger.DebugContext(ctx, "Store mutation committed",
		log.NewFields().WithMutation(s.name, op, id, snap.Generation).ToSlice()...)

	s.snapshots.publish(*snap)
	s.changes.publish(Change{
		Store:      s.name,
		Op:         op,
		ID:         id,
		Generation: snap.Generation,
		Count:      len(items),
		At:         s.opts.now(),
	})
}

func (s *Store[E]) wait() {
	if s.opts.latency > 0 {
		time.Sleep(s.opts.latency)
	}
}

func (s *Store[E]) notFound(id string) error {
	return fmt.Errorf("%s %q: %w", s.name, id, core.ErrNotFound)
}

func (s *Store[E]) logFailure(ctx context.Context, op, id string, err error) {
	s.opts.logger.DebugContext(ctx, "Store mutation rejected",
		log.NewFields().
			WithMutation(s.name, op, id, s.Generation()).
			WithError(err).
			WithErrorType(errorType(err)).ToSlice()...)
}

func errorType(err error) string {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return log.ErrorTypeNotFound
	case errors.Is(err, core.ErrUnknown):
		return log.ErrorTypeInternal
	default:
		return log.ErrorTypeValidation
	}
}

// guard runs fn, converting a panic into core.ErrUnknown so a faulty callback
// cannot leave a half-applied mutation behind.
func guard[E any](fn func() (E, error)) (item E, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero E
			item, err = zero, fmt.Errorf("%w: %v", core.ErrUnknown, r)
		}
	}()
	return fn()
}
