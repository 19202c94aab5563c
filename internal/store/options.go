package store

import (
	"time"

	"github.com/google/uuid"

	"fintrack/internal/log"
)

// DefaultLatency is the artificial delay applied to create, update and delete.
// Callers must not assume mutations complete instantly.
const DefaultLatency = 300 * time.Millisecond

type options struct {
	latency time.Duration
	now     func() time.Time
	newID   func() string
	logger  *log.Logger
}

// Option configures a Store.
type Option func(*options)

// WithLatency overrides DefaultLatency. Zero disables the delay.
func WithLatency(d time.Duration) Option {
	return func(o *options) { o.latency = d }
}

// WithClock sets the clock used for CreatedAt/UpdatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator replaces the default UUIDv7 generator.
func WithIDGenerator(gen func() string) Option {
	return func(o *options) { o.newID = gen }
}

// WithLogger sets the logger; mutations are logged at debug level.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{
		latency: DefaultLatency,
		now:     time.Now,
		newID:   NewID,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.Nop()
	}
	return o
}

// NewID returns a time-ordered random identifier (UUIDv7: millisecond
// timestamp followed by random bits).
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
