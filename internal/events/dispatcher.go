package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/trimbook/internal/metrics"
)

// Sink receives every dispatched event.
type Sink interface {
	Handle(ctx context.Context, ev Event) error
}

const sinkTimeout = 5 * time.Second

// Dispatcher fans events out to sinks from a single worker. When the
// queue is full the event is dropped; publishing never breaks a request.
type Dispatcher struct {
	sinks []Sink
	queue chan Event
	log   *zap.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewDispatcher(log *zap.Logger, size int, sinks ...Sink) *Dispatcher {
	if size <= 0 {
		size = 100
	}
	d := &Dispatcher{
		sinks: sinks,
		queue: make(chan Event, size),
		log:   log,
		done:  make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		for _, s := range d.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
			if err := s.Handle(ctx, ev); err != nil {
				d.log.Warn("event sink failed",
					zap.String("topic", string(ev.Topic)),
					zap.String("slug", ev.ShopSlug),
					zap.Error(err),
				)
			}
			cancel()
		}
	}
}

func (d *Dispatcher) Publish(ev Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return
	}

	select {
	case d.queue <- ev:
	default:
		metrics.RecordDroppedEvent()
		d.log.Warn("event queue full, dropping event",
			zap.String("topic", string(ev.Topic)),
			zap.String("slug", ev.ShopSlug),
		)
	}
}

// Close stops accepting events and waits until queued ones are delivered.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	<-d.done
}

// LocalBus delivers events to an in-process consumer, used when no Redis
// is configured.
type LocalBus struct {
	deliver func(Event)
}

func NewLocalBus(deliver func(Event)) *LocalBus {
	return &LocalBus{deliver: deliver}
}

func (b *LocalBus) Handle(_ context.Context, ev Event) error {
	b.deliver(ev)
	return nil
}

var (
	_ Publisher = (*Dispatcher)(nil)
	_ Sink      = (*LocalBus)(nil)
)
