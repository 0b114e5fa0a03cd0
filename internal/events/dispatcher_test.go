package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	received := make(chan Event, 1)
	d.Subscribe(EventTicketSold, func(ctx context.Context, event Event) error {
		received <- event
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketSold, TicketID: "t-1"}))

	select {
	case event := <-received:
		assert.Equal(t, "t-1", event.TicketID)
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}
}

func TestDispatcherIgnoresHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls atomic.Int32

	d.Subscribe(EventTicketValidated, func(ctx context.Context, event Event) error {
		calls.Add(1)
		return errors.New("delivery failed")
	})

	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketValidated}))
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestDispatcherSurvivesCancelledPublishContext(t *testing.T) {
	d := NewInMemoryDispatcher()
	done := make(chan error, 1)

	d.Subscribe(EventTicketSold, func(ctx context.Context, event Event) error {
		done <- ctx.Err()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, d.Publish(ctx, Event{Type: EventTicketSold}))

	select {
	case err := <-done:
		assert.NoError(t, err, "handler context must be detached from the publisher's")
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}
}

func TestDispatcherNoSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCancelled}))
}
