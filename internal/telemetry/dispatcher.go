package telemetry

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/nerrad567/gray-logic-hub/internal/device"
)

// DefaultBuffer is the queue size used when NewDispatcher gets zero.
const DefaultBuffer = 256

// Sink consumes device events on the dispatcher goroutine.
type Sink interface {
	Name() string
	Handle(ctx context.Context, e device.Event) error
}

// Logger is the subset of logging.Logger the dispatcher needs.
type Logger interface {
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}

// Dispatcher queues events and delivers them to every sink.
type Dispatcher struct {
	sinks  []Sink
	logger Logger

	mu     sync.RWMutex
	closed bool
	queue  chan device.Event

	dropped   atomic.Uint64
	startOnce sync.Once
	done      chan struct{}
}

// NewDispatcher creates a dispatcher. A nil logger discards warnings.
func NewDispatcher(buffer int, logger Logger, sinks ...Sink) *Dispatcher {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Dispatcher{
		sinks:  sinks,
		logger: logger,
		queue:  make(chan device.Event, buffer),
		done:   make(chan struct{}),
	}
}

// Start launches the delivery goroutine. ctx is passed to sinks; the
// worker itself runs until Close so queued events are not lost.
func (d *Dispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		go d.run(context.WithoutCancel(ctx))
	})
}

func (d *Dispatcher) run(ctx context.Context) {
	defer close(d.done)
	for e := range d.queue {
		for _, s := range d.sinks {
			if err := s.Handle(ctx, e); err != nil {
				d.logger.Warn("telemetry sink failed",
					"sink", s.Name(),
					"event", string(e.Type),
					"device", e.Device,
					"error", err,
				)
			}
		}
	}
}

// HandleEvent implements device.Listener. It never blocks.
func (d *Dispatcher) HandleEvent(e device.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	select {
	case d.queue <- e:
	default:
		d.dropped.Add(1)
	}
}

// Dropped returns how many events were discarded because the queue was full.
func (d *Dispatcher) Dropped() uint64 { return d.dropped.Load() }

// Close stops accepting events, delivers what is queued and waits for the
// worker. Close on a dispatcher that was never started discards the queue.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	started := true
	d.startOnce.Do(func() { started = false })
	if started {
		<-d.done
	}
}

// ListenerSink adapts a synchronous device.Listener, such as the Prometheus
// collectors, to a Sink.
func ListenerSink(name string, l device.Listener) Sink {
	return listenerSink{name: name, l: l}
}

type listenerSink struct {
	name string
	l    device.Listener
}

func (s listenerSink) Name() string { return s.name }

func (s listenerSink) Handle(_ context.Context, e device.Event) error {
	s.l.HandleEvent(e)
	return nil
}
