package worker

import (
	"context"
	"sync"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
)

// ChangeAuditor follows the change stream of every store and logs gaps in
// the generation sequence. A gap means changes were dropped upstream,
// usually by a forwarder whose feed filled up.
type ChangeAuditor struct {
	mu     sync.Mutex
	last   map[string]uint64
	gaps   map[string]uint64
	logger *log.Logger
}

func NewChangeAuditor(logger *log.Logger) *ChangeAuditor {
	if logger == nil {
		logger = log.Nop()
	}
	return &ChangeAuditor{
		last:   make(map[string]uint64),
		gaps:   make(map[string]uint64),
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// Handle records msg. Messages older than the latest seen generation are
// logged and ignored; redelivery is expected.
func (a *ChangeAuditor) Handle(ctx context.Context, msg *amqp.StoreChangeMessage) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	prev, seen := a.last[msg.Store]
	switch {
	case seen && msg.Generation <= prev:
		a.logger.DebugContext(ctx, "Stale store change ignored",
			log.FieldStore, msg.Store, log.FieldGeneration, msg.Generation, "latest", prev)
		return nil
	case seen && msg.Generation > prev+1:
		missed := msg.Generation - prev - 1
		a.gaps[msg.Store] += missed
		a.logger.WarnContext(ctx, "Store changes missing",
			log.FieldStore, msg.Store, "from", prev+1, "to", msg.Generation-1, "missed", missed)
	}
	a.last[msg.Store] = msg.Generation

	a.logger.InfoContext(ctx, "Store changed",
		log.NewFields().
			WithMutation(msg.Store, msg.Op, msg.ID, msg.Generation).
			ToSlice()...)
	return nil
}

// Latest returns the newest generation seen for store.
func (a *ChangeAuditor) Latest(store string) (uint64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	g, ok := a.last[store]
	return g, ok
}

// Missed returns how many generations of store never arrived.
func (a *ChangeAuditor) Missed(store string) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gaps[store]
}
