package cache

import (
	"context"
	"sync"
	"time"

	"fintrack/internal/log"
)

// Cache defines a generic cache interface
type Cache[K comparable, V any] interface {
	// Get retrieves a value from the cache
	Get(key K) (V, bool)

	// Set stores a value in the cache
	Set(key K, value V)

	// Delete removes a key from the cache
	Delete(key K)

	// Size returns the current number of items in the cache
	Size() int
}

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Sweeper periodically cleans every registered cache until its context ends.
type Sweeper struct {
	mu     sync.Mutex
	caches []Cleaner
	logger *log.Logger
}

func NewSweeper(logger *log.Logger) *Sweeper {
	if logger == nil {
		logger = log.Nop()
	}
	return &Sweeper{logger: logger}
}

// Register adds a cache to the sweep list.
func (s *Sweeper) Register(c Cleaner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.caches = append(s.caches, c)
}

// Sweep cleans every registered cache once and returns the number of
// entries dropped.
func (s *Sweeper) Sweep() int {
	s.mu.Lock()
	caches := append([]Cleaner(nil), s.caches...)
	s.mu.Unlock()

	total := 0
	for _, c := range caches {
		total += c.CleanExpired()
	}
	return total
}

// Run sweeps every interval and returns when ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.DebugContext(ctx, "Expired cache entries removed", log.FieldCount, n)
			}
		case <-ctx.Done():
			return
		}
	}
}
