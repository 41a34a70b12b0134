package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/kode4food/caravan"
	"github.com/kode4food/caravan/message"
	"github.com/kode4food/caravan/topic"

	"github.com/kode4food/banquet/pkg/api"
)

// notifier broadcasts run events to every subscribed observer, stamping
// each with a sequence that is monotonic across all runs of the engine
type notifier struct {
	topic  topic.Topic[*api.RunEvent]
	prod   topic.Producer[*api.RunEvent]
	seq    atomic.Int64
	mu     sync.Mutex
	closed bool
}

func newNotifier() *notifier {
	t := caravan.NewTopic[*api.RunEvent]()
	return &notifier{
		topic: t,
		prod:  t.NewProducer(),
	}
}

// publish broadcasts one run event to all observers
func (n *notifier) publish(id api.RunID, t api.EventType, data any) {
	ev := &api.RunEvent{
		RunID:     id,
		Type:      t,
		Data:      data,
		Timestamp: time.Now(),
		Sequence:  n.seq.Add(1),
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	message.Send(n.prod, ev)
}

// NewConsumer subscribes a new observer to the engine's run events
func (n *notifier) NewConsumer() topic.Consumer[*api.RunEvent] {
	return n.topic.NewConsumer()
}

func (n *notifier) close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	n.prod.Close()
}
