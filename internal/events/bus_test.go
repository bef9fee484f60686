package events

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/klfgate/internal/klf"
)

func TestBus_OnPublish(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.On(TopicNotification, func(ev Event) { got = append(got, "first:"+ev.Topic) })
	bus.On(TopicNotification, func(ev Event) { got = append(got, "second:"+ev.Topic) })

	n := bus.Publish(Event{Topic: TopicNotification, Message: &klf.Message{Command: klf.CmdSessionFinishedNtf}})

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"first:NTF", "second:NTF"}, got)
}

func TestBus_PublishSetsTime(t *testing.T) {
	bus := NewBus()
	var ev Event
	bus.On("x", func(e Event) { ev = e })
	bus.Publish(Event{Topic: "x"})
	assert.False(t, ev.Time.IsZero())
}

func TestBus_TopicsAreIndependent(t *testing.T) {
	bus := NewBus()
	calls := 0
	bus.On(TopicError, func(Event) { calls++ })

	assert.Equal(t, 0, bus.Publish(Event{Topic: TopicTimeout}))
	assert.Equal(t, 0, calls)
}

func TestBus_Once(t *testing.T) {
	bus := NewBus()
	calls := 0
	bus.Once(TopicNotPending, func(Event) { calls++ })

	bus.Publish(Event{Topic: TopicNotPending})
	bus.Publish(Event{Topic: TopicNotPending})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.Count(TopicNotPending))
}

func TestBus_Off(t *testing.T) {
	bus := NewBus()
	calls := 0
	sub := bus.On(TopicError, func(Event) { calls++ })

	require.True(t, bus.Off(sub))
	assert.False(t, bus.Off(sub), "second Off must report false")

	bus.Publish(Event{Topic: TopicError, Err: errors.New("boom")})
	assert.Equal(t, 0, calls)
	assert.Empty(t, bus.Topics())
}

func TestBus_OffDuringPublish(t *testing.T) {
	bus := NewBus()
	var order []int
	var second Subscription
	bus.On("t", func(Event) {
		order = append(order, 1)
		bus.Off(second)
	})
	second = bus.On("t", func(Event) { order = append(order, 2) })

	// the snapshot taken at publish time still includes the second handler
	bus.Publish(Event{Topic: "t"})
	bus.Publish(Event{Topic: "t"})

	assert.Equal(t, []int{1, 2, 1}, order)
}

func TestBus_Topics(t *testing.T) {
	bus := NewBus()
	bus.On("b", func(Event) {})
	bus.On("a", func(Event) {})
	bus.On("a", func(Event) {})

	assert.Equal(t, []string{"a", "b"}, bus.Topics())
	assert.Equal(t, 2, bus.Count("a"))
}

func TestBus_Concurrent(t *testing.T) {
	bus := NewBus()
	var mu sync.Mutex
	total := 0
	bus.On("c", func(Event) {
		mu.Lock()
		total++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bus.Publish(Event{Topic: "c"})
				s := bus.On("other", func(Event) {})
				bus.Off(s)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800, total)
}
