package authclient_test

import (
	"context"
	"testing"

	authclient "github.com/goliatone/go-authclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivitySinkFunc(t *testing.T) {
	var captured authclient.ActivityEvent
	sink := authclient.ActivitySinkFunc(func(ctx context.Context, event authclient.ActivityEvent) error {
		captured = event
		return nil
	})

	event := authclient.ActivityEvent{
		EventType: authclient.ActivityEventLoginSuccess,
		UserID:    "ada@example.com",
	}

	require.NoError(t, sink.Record(context.Background(), event))
	assert.Equal(t, event.EventType, captured.EventType)
	assert.Equal(t, event.UserID, captured.UserID)
}

func TestNilActivitySinkFuncIsNoop(t *testing.T) {
	var sink authclient.ActivitySinkFunc
	assert.NoError(t, sink.Record(context.Background(), authclient.ActivityEvent{}))
}

func TestActivityEventsStampOccurredAt(t *testing.T) {
	gateway := &MockGateway{}
	sink := &recordingSink{}

	_, _ = anonymousMachine(t, gateway, authclient.WithStateMachineActivitySink(sink))

	require.NotEmpty(t, sink.events)
	assert.False(t, sink.events[0].OccurredAt.IsZero())
	assert.Equal(t, authclient.ActivityEventBootstrapAnonymous, sink.events[0].EventType)
}
