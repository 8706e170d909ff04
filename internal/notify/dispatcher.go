// Package notify delivers committed incident events to notification sinks
// without blocking the request that produced them.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/edvin/crisisdesk/internal/metrics"
	"github.com/edvin/crisisdesk/internal/model"
)

// ErrBufferFull is returned by Publish when the dispatch buffer is full.
var ErrBufferFull = errors.New("notification buffer full")

// ErrClosed is returned by Publish after the dispatcher has stopped.
var ErrClosed = errors.New("notification dispatcher closed")

// Sink delivers one event to a single destination.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, evt model.Event) error
}

// Dispatcher queues events in memory and fans each one out to every sink.
// It implements core.EventSink.
type Dispatcher struct {
	sinks   []Sink
	logger  zerolog.Logger
	events  chan model.Event
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewDispatcher creates a dispatcher with room for buffer pending events.
func NewDispatcher(logger zerolog.Logger, buffer int, sinks ...Sink) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Dispatcher{
		sinks:   sinks,
		logger:  logger.With().Str("component", "notify").Logger(),
		events:  make(chan model.Event, buffer),
		timeout: 10 * time.Second,
		done:    make(chan struct{}),
	}
}

// Publish enqueues evt without blocking.
func (d *Dispatcher) Publish(_ context.Context, evt model.Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	select {
	case d.events <- evt:
		return nil
	default:
		metrics.NotificationsDroppedTotal.Inc()
		return ErrBufferFull
	}
}

// Run delivers events until ctx is cancelled, then drains what is already
// queued and returns.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case evt := <-d.events:
			d.deliver(context.WithoutCancel(ctx), evt)
		case <-ctx.Done():
			d.mu.Lock()
			d.closed = true
			d.mu.Unlock()
			close(d.events)
			drainCtx := context.WithoutCancel(ctx)
			for evt := range d.events {
				d.deliver(drainCtx, evt)
			}
			return
		}
	}
}

// Done is closed once Run has drained the queue.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

func (d *Dispatcher) deliver(ctx context.Context, evt model.Event) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var g errgroup.Group
	for _, sink := range d.sinks {
		g.Go(func() error {
			if err := sink.Deliver(ctx, evt); err != nil {
				metrics.NotificationFailuresTotal.WithLabelValues(evt.Type, sink.Name()).Inc()
				d.logger.Warn().Err(err).
					Str("sink", sink.Name()).
					Str("event", evt.Type).
					Str("event_id", evt.ID).
					Str("incident_id", evt.IncidentID).
					Msg("notification delivery failed")
			}
			return nil
		})
	}
	g.Wait()
}
