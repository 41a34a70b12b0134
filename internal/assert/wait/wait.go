// Package wait provides filtered waits over an engine's run event stream
// for tests that need to observe workflow progress.
package wait

import (
	"testing"
	"time"

	"github.com/kode4food/caravan/topic"

	"github.com/kode4food/banquet/internal/util"
	"github.com/kode4food/banquet/pkg/api"
)

type (
	Wait struct {
		t        *testing.T
		consumer topic.Consumer[*api.RunEvent]
		timeout  time.Duration
	}

	Predicate[T any] func(T) bool

	EventFilter Predicate[*api.RunEvent]
)

const DefaultTimeout = time.Second * 5

func On(t *testing.T, consumer topic.Consumer[*api.RunEvent]) *Wait {
	return &Wait{
		t:        t,
		consumer: consumer,
		timeout:  DefaultTimeout,
	}
}

func (w *Wait) WithTimeout(timeout time.Duration) *Wait {
	res := *w
	res.timeout = timeout
	return &res
}

// ForEvents waits for matching events from the consumer
func (w *Wait) ForEvents(count int, filter EventFilter) {
	w.t.Helper()

	deadline := time.NewTimer(w.timeout)
	defer deadline.Stop()

	for seen := 0; seen < count; {
		select {
		case ev, ok := <-w.consumer.Receive():
			if !ok {
				w.t.Fatalf(
					"event consumer closed before receiving %d events",
					count,
				)
			}
			if !filter(ev) {
				continue
			}
			seen++
		case <-deadline.C:
			w.t.Fatalf("timeout waiting for %d events", count)
		}
	}
}

// ForEvent waits for a single matching event
func (w *Wait) ForEvent(filter EventFilter) {
	w.ForEvents(1, filter)
}

// And composes event filters and returns true when all match
func And(filters ...EventFilter) EventFilter {
	return func(ev *api.RunEvent) bool {
		for _, filter := range filters {
			if !filter(ev) {
				return false
			}
		}
		return true
	}
}

// Type creates a filter for a single event type
func Type(eventType api.EventType) EventFilter {
	return Types(eventType)
}

// Types creates a filter for the given event types
func Types(eventTypes ...api.EventType) EventFilter {
	if len(eventTypes) == 0 {
		return func(*api.RunEvent) bool { return false }
	}
	lookup := make(util.Set[api.EventType], len(eventTypes))
	for _, et := range eventTypes {
		lookup.Add(et)
	}
	return func(ev *api.RunEvent) bool {
		return lookup.Contains(ev.Type)
	}
}

// Run matches every event belonging to the provided run
func Run(id api.RunID) EventFilter {
	return func(ev *api.RunEvent) bool {
		return ev.RunID == id
	}
}

// Runs matches one event per provided run, so a single wait can cover
// several concurrent runs
func Runs(ids ...api.RunID) EventFilter {
	expected := make(util.Set[api.RunID], len(ids))
	for _, id := range ids {
		expected.Add(id)
	}
	return func(ev *api.RunEvent) bool {
		if expected.Contains(ev.RunID) {
			expected.Remove(ev.RunID)
			return true
		}
		return false
	}
}

// RunStarted matches the lifecycle event announcing the run
func RunStarted(id api.RunID) EventFilter {
	return And(Type(api.EventTypeRunStarted), Run(id))
}

// RunCompleted matches the lifecycle event for a successful run
func RunCompleted(id api.RunID) EventFilter {
	return And(Type(api.EventTypeRunCompleted), Run(id))
}

// RunFailed matches the lifecycle event for a failed run
func RunFailed(id api.RunID) EventFilter {
	return And(Type(api.EventTypeRunFailed), Run(id))
}

// RunTerminal matches either terminal lifecycle event for the run
func RunTerminal(id api.RunID) EventFilter {
	return And(
		Types(api.EventTypeRunCompleted, api.EventTypeRunFailed),
		Run(id),
	)
}

// Stopped matches the workflow stop event for the run
func Stopped(id api.RunID) EventFilter {
	return And(Type(api.EventTypeStop), Run(id))
}

// Data creates a filter that type-asserts event data and applies pred
func Data[T any](pred Predicate[T]) EventFilter {
	return func(ev *api.RunEvent) bool {
		data, ok := ev.Data.(T)
		if !ok {
			return false
		}
		return pred(data)
	}
}

// BranchFinalized matches finalize events for the given branch
func BranchFinalized(id api.RunID, branch int) EventFilter {
	return And(
		Type(api.EventTypeFinalize),
		Run(id),
		Data(func(ev *api.FinalizeEvent) bool {
			return ev.Branch == branch
		}),
	)
}
