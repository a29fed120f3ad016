package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_PublishReachesSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []Event
	d.Subscribe(EventLoginSucceeded, func(_ context.Context, event Event) error {
		got = append(got, event)
		return nil
	})

	err := d.Publish(context.Background(), Event{ID: "e1", Type: EventLoginSucceeded, Subject: "alice-id"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "alice-id", got[0].Subject)
}

func TestDispatcher_UnsubscribedTypeIsIgnored(t *testing.T) {
	d := NewInMemoryDispatcher()

	d.Subscribe(EventLoginFailed, func(_ context.Context, _ Event) error {
		t.Fatal("handler for another type must not run")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventLogout})
	assert.NoError(t, err)
}

func TestDispatcher_FailingHandlerDoesNotStopOthers(t *testing.T) {
	d := NewInMemoryDispatcher()

	ran := false
	d.Subscribe(EventLoginFailed, func(_ context.Context, _ Event) error {
		return errors.New("boom")
	})
	d.Subscribe(EventLoginFailed, func(_ context.Context, _ Event) error {
		ran = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventLoginFailed})
	require.NoError(t, err)
	assert.True(t, ran)
}
