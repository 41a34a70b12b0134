// Package event provides the caravan-backed inbox that serializes the
// events of a single workflow run for its actor goroutine.
package event

import (
	"sync"

	"github.com/kode4food/caravan"
	"github.com/kode4food/caravan/message"
	"github.com/kode4food/caravan/topic"

	"github.com/kode4food/banquet/pkg/api"
)

// Inbox buffers the events of one run in delivery order. Senders never
// block, and deliveries after Close are dropped rather than panicking
type Inbox struct {
	topic  topic.Topic[api.Event]
	prod   topic.Producer[api.Event]
	cons   topic.Consumer[api.Event]
	mu     sync.Mutex
	closed bool
}

// NewInbox creates an empty inbox
func NewInbox() *Inbox {
	t := caravan.NewTopic[api.Event]()
	return &Inbox{
		topic: t,
		prod:  t.NewProducer(),
		cons:  t.NewConsumer(),
	}
}

// Deliver enqueues an event, reporting whether the inbox accepted it
func (in *Inbox) Deliver(ev api.Event) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return false
	}
	message.Send(in.prod, ev)
	return true
}

// Receive exposes the ordered event stream for the owning actor
func (in *Inbox) Receive() <-chan api.Event {
	return in.cons.Receive()
}

// Close stops the inbox. Events not yet received are discarded
func (in *Inbox) Close() {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return
	}
	in.closed = true
	in.prod.Close()
	in.cons.Close()
}
