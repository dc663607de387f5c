package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcasterDeliversToMatchingSubscription(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	sub := b.Subscribe("sess-1", []EventType{EventTypeOutput})
	defer b.Unsubscribe(sub)

	b.BroadcastOutput("sess-1", []byte("hello"))

	select {
	case ev := <-sub.Channel:
		assert.Equal(t, "sess-1", ev.SessionID)
		assert.Equal(t, EventTypeOutput, ev.Type)
	case <-time.After(time.Second):
		require.Fail(t, "expected an event to be delivered")
	}
}

func TestBroadcasterFiltersOtherSessions(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	sub := b.Subscribe("sess-1", nil)
	defer b.Unsubscribe(sub)

	b.BroadcastOutput("sess-2", []byte("nope"))
	drainNone(t, sub)
}

func TestBroadcasterFiltersEventType(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	sub := b.Subscribe("", []EventType{EventTypeTrace})
	defer b.Unsubscribe(sub)

	b.BroadcastOutput("sess-1", []byte("ignored"))
	drainNone(t, sub)
}

func drainNone(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case ev := <-sub.Channel:
		require.Failf(t, "unexpected event", "%+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}
