package api

import "sync"

// EventType categorizes a BroadcastEvent for subscription filtering.
type EventType string

const (
	EventTypeTrace     EventType = "trace"
	EventTypeOutput    EventType = "output"
	EventTypeExecution EventType = "event"
)

// BroadcastEvent is one message fanned out to subscribed websocket clients.
type BroadcastEvent struct {
	Type      EventType      `json:"type"`
	SessionID string         `json:"sessionId"`
	Data      map[string]any `json:"data"`
}

// Subscription is one client's filter over the broadcast stream.
type Subscription struct {
	SessionID  string
	EventTypes map[EventType]bool
	Channel    chan BroadcastEvent
}

// Broadcaster fans events out to every subscription whose filter matches,
// dropping events for subscribers that can't keep up rather than
// blocking the emulator loop that produced them.
type Broadcaster struct {
	mu            sync.RWMutex
	subscriptions map[*Subscription]bool
	broadcast     chan BroadcastEvent
	register      chan *Subscription
	unregister    chan *Subscription
	done          chan struct{}
}

// NewBroadcaster starts the fan-out goroutine and returns immediately.
func NewBroadcaster() *Broadcaster {
	b := &Broadcaster{
		subscriptions: make(map[*Subscription]bool),
		broadcast:     make(chan BroadcastEvent, 256),
		register:      make(chan *Subscription),
		unregister:    make(chan *Subscription),
		done:          make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broadcaster) run() {
	for {
		select {
		case sub := <-b.register:
			b.mu.Lock()
			b.subscriptions[sub] = true
			b.mu.Unlock()

		case sub := <-b.unregister:
			b.mu.Lock()
			if b.subscriptions[sub] {
				delete(b.subscriptions, sub)
				close(sub.Channel)
			}
			b.mu.Unlock()

		case event := <-b.broadcast:
			b.mu.RLock()
			for sub := range b.subscriptions {
				if sub.SessionID != "" && sub.SessionID != event.SessionID {
					continue
				}
				if len(sub.EventTypes) > 0 && !sub.EventTypes[event.Type] {
					continue
				}
				select {
				case sub.Channel <- event:
				default:
				}
			}
			b.mu.RUnlock()

		case <-b.done:
			b.mu.Lock()
			for sub := range b.subscriptions {
				close(sub.Channel)
			}
			b.subscriptions = make(map[*Subscription]bool)
			b.mu.Unlock()
			return
		}
	}
}

// Subscribe registers a new filtered subscription. sessionID == "" means
// every session; an empty eventTypes means every type.
func (b *Broadcaster) Subscribe(sessionID string, eventTypes []EventType) *Subscription {
	typeSet := make(map[EventType]bool, len(eventTypes))
	for _, t := range eventTypes {
		typeSet[t] = true
	}
	sub := &Subscription{SessionID: sessionID, EventTypes: typeSet, Channel: make(chan BroadcastEvent, 64)}
	b.register <- sub
	return sub
}

// Unsubscribe removes sub and closes its channel.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.unregister <- sub
}

// Broadcast enqueues event for delivery, dropping it if the internal
// queue is full.
func (b *Broadcaster) Broadcast(event BroadcastEvent) {
	select {
	case b.broadcast <- event:
	default:
	}
}

// BroadcastTrace forwards a vm.TraceEvent (block hit/miss, trap, hot block)
// to every subscriber of sessionID.
func (b *Broadcaster) BroadcastTrace(sessionID, kind string, pc uint32, info string) {
	b.Broadcast(BroadcastEvent{
		Type:      EventTypeTrace,
		SessionID: sessionID,
		Data:      map[string]any{"kind": kind, "pc": pc, "info": info},
	})
}

// BroadcastOutput forwards bytes written to the guest UART.
func (b *Broadcaster) BroadcastOutput(sessionID string, data []byte) {
	b.Broadcast(BroadcastEvent{
		Type:      EventTypeOutput,
		SessionID: sessionID,
		Data:      map[string]any{"data": string(data)},
	})
}

// BroadcastExecutionEvent forwards a halt/trap/breakpoint notification.
func (b *Broadcaster) BroadcastExecutionEvent(sessionID, name string, details map[string]any) {
	data := map[string]any{"event": name}
	for k, v := range details {
		data[k] = v
	}
	b.Broadcast(BroadcastEvent{Type: EventTypeExecution, SessionID: sessionID, Data: data})
}

// Close stops the fan-out goroutine and closes every open subscription.
func (b *Broadcaster) Close() {
	close(b.done)
}

// SubscriptionCount reports the number of live subscriptions.
func (b *Broadcaster) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions)
}
