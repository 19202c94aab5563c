package worker

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// DefaultBuffer is the per-store change feed capacity.
const DefaultBuffer = 256

const drainTimeout = 5 * time.Second

// Publisher sends a change message to the broker.
type Publisher interface {
	PublishStoreChange(ctx context.Context, msg *amqp.StoreChangeMessage) error
}

// ChangeSource is a store whose committed mutations can be observed.
type ChangeSource interface {
	Name() string
	Changes(buffer int) *store.Feed[store.Change]
}

// ChangeForwarder relays store change events to a Publisher.
type ChangeForwarder struct {
	publisher Publisher
	sources   []ChangeSource
	buffer    int
	logger    *log.Logger
	ready     chan struct{}

	forwarded atomic.Int64
	failed    atomic.Int64
}

func NewChangeForwarder(publisher Publisher, logger *log.Logger, sources ...ChangeSource) *ChangeForwarder {
	if logger == nil {
		logger = log.Nop()
	}
	return &ChangeForwarder{
		publisher: publisher,
		sources:   sources,
		buffer:    DefaultBuffer,
		logger:    logger.WithComponent(log.ComponentWorker),
		ready:     make(chan struct{}),
	}
}

// WithBuffer sets the feed capacity used by the next Run.
func (w *ChangeForwarder) WithBuffer(n int) *ChangeForwarder {
	w.buffer = n
	return w
}

// Run subscribes to every source and forwards changes until ctx ends,
// then drains what is buffered. It must be called at most once.
// Publish failures are logged and counted; they never stop forwarding.
// When a feed falls behind, its oldest pending changes are dropped.
func (w *ChangeForwarder) Run(ctx context.Context) error {
	feeds := make([]*store.Feed[store.Change], len(w.sources))
	for i, src := range w.sources {
		feeds[i] = src.Changes(w.buffer)
	}
	close(w.ready)

	w.logger.InfoContext(ctx, "Change forwarder started", "stores", len(feeds))

	g, ctx := errgroup.WithContext(ctx)
	for _, feed := range feeds {
		g.Go(func() error {
			defer feed.Close()
			for {
				select {
				case <-ctx.Done():
					w.drain(feed)
					return nil
				case change, ok := <-feed.C:
					if !ok {
						return nil
					}
					w.forward(ctx, change)
				}
			}
		})
	}
	err := g.Wait()

	w.logger.Info("Change forwarder stopped",
		"forwarded", w.forwarded.Load(),
		"failed", w.failed.Load())
	return err
}

func (w *ChangeForwarder) forward(ctx context.Context, change store.Change) {
	msg := amqp.NewStoreChangeMessage(change.Store, change.Op, change.ID, change.Generation, change.Count, change.At)
	if err := w.publisher.PublishStoreChange(ctx, msg); err != nil {
		w.failed.Add(1)
		w.logger.WarnContext(ctx, "Failed to forward store change",
			log.NewFields().
				WithMutation(change.Store, change.Op, change.ID, change.Generation).
				WithOperation(log.OpForward).
				WithError(err).
				WithErrorType(log.ErrorTypeNetwork).ToSlice()...)
		return
	}
	w.forwarded.Add(1)
}

// drain publishes whatever is still buffered on feed, so changes committed
// just before shutdown are not lost.
func (w *ChangeForwarder) drain(feed *store.Feed[store.Change]) {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case change, ok := <-feed.C:
			if !ok {
				return
			}
			w.forward(ctx, change)
		default:
			return
		}
	}
}

// Ready is closed once Run has subscribed to every source. Changes
// committed before that are not forwarded.
func (w *ChangeForwarder) Ready() <-chan struct{} { return w.ready }

// Stats returns how many changes were published and how many failed.
func (w *ChangeForwarder) Stats() (forwarded, failed int64) {
	return w.forwarded.Load(), w.failed.Load()
}
