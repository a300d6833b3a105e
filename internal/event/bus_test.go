package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestPublishSubscribe(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := NewBus()
	defer bus.Close()

	ch, unsubscribe, err := bus.Subscribe(context.Background(), AuthState)
	require.NoError(t, err)
	defer unsubscribe()

	require.NoError(t, bus.Publish(AuthState, "uid-1", AuthChange{UID: "uid-1", Email: "a@b.co", SignedIn: true}))

	ev := receive(t, ch)
	assert.Equal(t, AuthState, ev.Topic)
	assert.Equal(t, "uid-1", ev.Key)

	var change AuthChange
	require.NoError(t, ev.Decode(&change))
	assert.True(t, change.SignedIn)
	assert.Equal(t, "a@b.co", change.Email)
}

func TestTopicsAreIsolated(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := NewBus()
	defer bus.Close()

	authCh, unsubAuth, err := bus.Subscribe(context.Background(), AuthState)
	require.NoError(t, err)
	defer unsubAuth()
	agentCh, unsubAgent, err := bus.Subscribe(context.Background(), AgentState)
	require.NoError(t, err)
	defer unsubAgent()

	require.NoError(t, bus.Publish(AgentState, "uid-2", map[string]int{"version": 1}))
	ev := receive(t, agentCh)
	assert.Equal(t, AgentState, ev.Topic)

	select {
	case ev := <-authCh:
		t.Fatalf("auth subscriber got %v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := NewBus()
	defer bus.Close()

	ch, unsubscribe, err := bus.Subscribe(context.Background(), AuthState)
	require.NoError(t, err)
	unsubscribe()
	unsubscribe()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel was not closed after unsubscribe")
	}
}

func TestContextCancelEndsSubscription(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, _, err := bus.Subscribe(ctx, AgentState)
	require.NoError(t, err)
	cancel()

	for range ch {
	}
}

func TestCloseEndsSubscriptionsAndRejectsPublish(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := NewBus()
	ch, _, err := bus.Subscribe(context.Background(), AuthState)
	require.NoError(t, err)

	require.NoError(t, bus.Close())
	for range ch {
	}

	assert.ErrorIs(t, bus.Publish(AuthState, "x", nil), ErrClosed)
	_, _, err = bus.Subscribe(context.Background(), AuthState)
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, bus.Close())
}
