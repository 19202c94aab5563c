package store

import "sync"

// Feed delivers values published by a store. Delivery never blocks the
// publisher: when the buffer is full the oldest pending value is dropped, so
// a slow reader always ends up holding the latest state.
type Feed[T any] struct {
	C <-chan T

	ch   chan T
	id   uint64
	hub  *hub[T]
	once sync.Once
}

// Close stops delivery and closes C. It is safe to call more than once.
func (f *Feed[T]) Close() {
	f.once.Do(func() { f.hub.remove(f.id) })
}

type hub[T any] struct {
	mu   sync.Mutex
	next uint64
	subs map[uint64]*Feed[T]
}

func (h *hub[T]) subscribe(buffer int, initial *T) *Feed[T] {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan T, buffer)
	if initial != nil {
		ch <- *initial
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs == nil {
		h.subs = make(map[uint64]*Feed[T])
	}
	h.next++
	f := &Feed[T]{C: ch, ch: ch, id: h.next, hub: h}
	h.subs[f.id] = f
	return f
}

func (h *hub[T]) publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, f := range h.subs {
		select {
		case f.ch <- v:
			continue
		default:
		}
		// full: drop the oldest pending value and retry once
		select {
		case <-f.ch:
		default:
		}
		select {
		case f.ch <- v:
		default:
		}
	}
}

func (h *hub[T]) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if f, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(f.ch)
	}
}

func (h *hub[T]) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
