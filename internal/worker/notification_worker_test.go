package worker

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/staffsync/staffsync-api/internal/events"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingNotifier struct {
	mu   sync.Mutex
	seen []events.EventType
}

func (r *recordingNotifier) EventTypes() []events.EventType {
	return []events.EventType{events.EventProfileChangeSubmitted, events.EventProfileChangeFinalized}
}

func (r *recordingNotifier) Handle(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, event.Type)
	return nil
}

func (r *recordingNotifier) events() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.EventType{}, r.seen...)
}

func TestWorkerDeliversSubscribedEvents(t *testing.T) {
	notifier := &recordingNotifier{}
	dispatcher := events.NewInMemoryDispatcher()
	w := StartNotificationWorker(context.Background(), dispatcher, notifier, nil)

	ctx := context.Background()
	assert.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventProfileChangeSubmitted}))
	assert.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventTierChanged}))
	assert.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventProfileChangeFinalized}))
	w.Stop()

	assert.Equal(t, []events.EventType{events.EventProfileChangeSubmitted, events.EventProfileChangeFinalized}, notifier.events())
}

func TestWorkerStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := NewNotificationWorker(&recordingNotifier{}, nil, 1)
	w.Start(ctx)
	cancel()
	w.Stop()
	w.Stop()
}

func TestEnqueueAfterStopIsNoop(t *testing.T) {
	notifier := &recordingNotifier{}
	w := NewNotificationWorker(notifier, nil, 1)
	w.Start(context.Background())
	w.Stop()

	assert.NoError(t, w.Enqueue(context.Background(), events.Event{Type: events.EventProfileChangeSubmitted}))
	assert.Empty(t, notifier.events())
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	notifier := &recordingNotifier{}
	w := NewNotificationWorker(notifier, nil, 1)

	ctx := context.Background()
	assert.NoError(t, w.Enqueue(ctx, events.Event{Type: events.EventProfileChangeSubmitted}))
	assert.NoError(t, w.Enqueue(ctx, events.Event{Type: events.EventProfileChangeFinalized}))

	w.Start(ctx)
	w.Stop()
	assert.Equal(t, []events.EventType{events.EventProfileChangeSubmitted}, notifier.events())
}
