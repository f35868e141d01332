package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestClientEnqueue(t *testing.T) {
	c := &client{
		send:    make(chan []byte, 1),
		limiter: rate.NewLimiter(rate.Inf, 0),
		done:    make(chan struct{}),
	}
	assert.True(t, c.enqueue([]byte("a")))
	assert.False(t, c.enqueue([]byte("b")), "full queue drops the client")

	close(c.done)
	<-c.send
	c.send <- []byte("c")
	assert.True(t, c.enqueue([]byte("d")), "closed client swallows messages")
}

func TestClientEnqueueRateLimited(t *testing.T) {
	c := &client{
		send:    make(chan []byte, 1),
		limiter: rate.NewLimiter(rate.Limit(0.001), 1),
		done:    make(chan struct{}),
	}
	assert.True(t, c.enqueue([]byte("a")))
	assert.True(t, c.enqueue([]byte("b")))
	assert.Len(t, c.send, 1)
}
