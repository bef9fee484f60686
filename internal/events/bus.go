// Package events is a small synchronous publish/subscribe bus keyed by
// topic name. Sessions publish gateway notifications on it.
package events

import (
	"slices"
	"sync"
	"time"

	"github.com/muurk/klfgate/internal/klf"
)

// Well-known topics. Notifications are also published under their command
// name, e.g. "GW_NODE_STATE_POSITION_CHANGED_NTF".
const (
	TopicNotification = "NTF"        // every notification
	TopicNotPending   = "notPending" // confirmations nobody waits for, damaged frames
	TopicError        = "err"        // transport failure
	TopicTimeout      = "timeout"    // idle timeout
)

// Event is delivered to handlers.
type Event struct {
	Topic   string
	Message *klf.Message // nil for transport events
	Err     error
	Time    time.Time
}

// Handler receives events. Handlers run on the publisher's goroutine and
// must not block.
type Handler func(Event)

// Subscription identifies a registered handler.
type Subscription struct {
	Topic string
	id    uint64
}

type entry struct {
	id      uint64
	handler Handler
	once    bool
}

// Bus routes events to handlers by topic. It is safe for concurrent use.
type Bus struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[string][]entry
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]entry)}
}

// On registers h for topic.
func (b *Bus) On(topic string, h Handler) Subscription {
	return b.add(topic, h, false)
}

// Once registers h for the next event on topic only.
func (b *Bus) Once(topic string, h Handler) Subscription {
	return b.add(topic, h, true)
}

func (b *Bus) add(topic string, h Handler, once bool) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.handlers[topic] = append(b.handlers[topic], entry{id: b.nextID, handler: h, once: once})
	return Subscription{Topic: topic, id: b.nextID}
}

// Off removes a subscription. It reports whether the subscription was
// still registered.
func (b *Bus) Off(s Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remove(s.Topic, s.id)
}

func (b *Bus) remove(topic string, id uint64) bool {
	list := b.handlers[topic]
	i := slices.IndexFunc(list, func(e entry) bool { return e.id == id })
	if i < 0 {
		return false
	}
	list = slices.Delete(slices.Clone(list), i, i+1)
	if len(list) == 0 {
		delete(b.handlers, topic)
	} else {
		b.handlers[topic] = list
	}
	return true
}

// Publish delivers ev to every handler of ev.Topic in registration order.
// It returns the number of handlers called.
func (b *Bus) Publish(ev Event) int {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	b.mu.Lock()
	list := b.handlers[ev.Topic]
	for _, e := range list {
		if e.once {
			b.remove(ev.Topic, e.id)
		}
	}
	b.mu.Unlock()

	for _, e := range list {
		e.handler(ev)
	}
	return len(list)
}

// Count returns the number of handlers registered for topic.
func (b *Bus) Count(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[topic])
}

// Topics lists topics with at least one handler, sorted.
func (b *Bus) Topics() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.handlers))
	for t := range b.handlers {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}
