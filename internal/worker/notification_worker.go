package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/staffsync/staffsync-api/internal/events"
)

// Notifier handles one event off the request path.
type Notifier interface {
	EventTypes() []events.EventType
	Handle(ctx context.Context, event events.Event) error
}

// NotificationWorker drains a buffered queue of events into a Notifier on a
// single background goroutine. Events published while the queue is full are
// dropped and logged.
type NotificationWorker struct {
	notifier Notifier
	logger   *zap.Logger
	queue    chan events.Event

	mu      sync.Mutex
	started bool
	stopped bool
	wg      sync.WaitGroup
}

// NewNotificationWorker creates a stopped worker.
func NewNotificationWorker(notifier Notifier, logger *zap.Logger, buffer int) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = 64
	}
	return &NotificationWorker{notifier: notifier, logger: logger, queue: make(chan events.Event, buffer)}
}

// StartNotificationWorker subscribes a worker to dispatcher and starts it.
func StartNotificationWorker(ctx context.Context, dispatcher events.Dispatcher, notifier Notifier, logger *zap.Logger) *NotificationWorker {
	w := NewNotificationWorker(notifier, logger, 0)
	w.Subscribe(dispatcher)
	w.Start(ctx)
	return w
}

// Subscribe routes the notifier's event types from dispatcher into the queue.
func (w *NotificationWorker) Subscribe(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	for _, eventType := range w.notifier.EventTypes() {
		dispatcher.Subscribe(eventType, w.Enqueue)
	}
}

// Enqueue queues an event without blocking the publisher.
func (w *NotificationWorker) Enqueue(_ context.Context, event events.Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full, dropping event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
	}
	return nil
}

// Start launches the delivery loop. It runs until Stop or ctx is done.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.stopped {
		return
	}
	w.started = true
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop closes the queue, waits for queued events to be delivered, and returns.
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.queue)
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *NotificationWorker) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.queue:
			if !ok {
				return
			}
			// delivery outlives the request that published the event
			if err := w.notifier.Handle(context.WithoutCancel(ctx), event); err != nil {
				w.logger.Warn("notification failed", zap.String("event_type", string(event.Type)), zap.Error(err))
			}
		}
	}
}
