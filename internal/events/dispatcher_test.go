package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDispatcher_PublishToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())

	var got []Event
	d.Subscribe(EventUnauthorizedResponse, func(_ context.Context, e Event) error {
		got = append(got, e)
		return nil
	})
	d.Subscribe(EventSignedOut, func(context.Context, Event) error {
		t.Fatal("handler for another type must not run")
		return nil
	})

	evt := NewEvent(EventUnauthorizedResponse, "/api/orders", UnauthorizedResponsePayload{Method: "GET"})
	require.NoError(t, d.Publish(context.Background(), evt))

	require.Len(t, got, 1)
	assert.Equal(t, evt.ID, got[0].ID)
	assert.NotEmpty(t, got[0].ID)
	assert.False(t, got[0].Timestamp.IsZero())
}

func TestDispatcher_HandlerErrorsDoNotStopOthers(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	boom := errors.New("boom")

	calls := 0
	d.Subscribe(EventSignedOut, func(context.Context, Event) error {
		calls++
		return boom
	})
	d.Subscribe(EventSignedOut, func(context.Context, Event) error {
		calls++
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventSignedOut, "", nil))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestDispatcher_NoSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	assert.NoError(t, d.Publish(context.Background(), NewEvent(EventNavigationAllowed, "/dashboard", nil)))
}
