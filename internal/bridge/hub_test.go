package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_DropsSlowClient(t *testing.T) {
	h := NewHub(1)
	fast := &client{id: "fast", send: make(chan []byte, 4)}
	slow := &client{id: "slow", send: make(chan []byte, 1)}
	h.add(fast)
	h.add(slow)

	assert.Equal(t, 2, h.Broadcast([]byte("one")))
	assert.Equal(t, 1, h.Broadcast([]byte("two")), "slow client queue is full")
	assert.Equal(t, 1, h.Count())

	assert.Len(t, fast.send, 2)
	<-slow.send
	_, open := <-slow.send
	assert.False(t, open, "dropped client queue should be closed")
}

func TestHub_Close(t *testing.T) {
	h := NewHub(0)
	c := &client{id: "a", send: make(chan []byte, 1)}
	h.add(c)

	h.Close()
	assert.Equal(t, 0, h.Count())
	_, open := <-c.send
	assert.False(t, open)

	assert.False(t, h.add(&client{id: "b", send: make(chan []byte, 1)}), "closed hub refuses clients")
	h.remove(c)
}
