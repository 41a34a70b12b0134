package helpers

import (
	"context"
	"sync"
	"time"

	"github.com/kode4food/banquet/internal/client"
	"github.com/kode4food/banquet/pkg/api"
)

type (
	// MockBindings scripts capability responses for engine tests. Each
	// capability carries a queue of responses that is consumed in order,
	// with the final response repeating once the queue drains, so retry
	// loops can be driven as far as a test needs
	MockBindings struct {
		scripted map[api.Capability][]scripted
		handlers map[api.Capability]client.Func
		calls    map[api.Capability][]Invocation
		order    []api.Capability
		mu       sync.Mutex
	}

	// Invocation records the arguments and metadata of one capability call
	Invocation struct {
		Args api.Args
		Meta api.Metadata
	}

	scripted struct {
		outputs api.Args
		err     error
	}

	mockClient struct {
		mock *MockBindings
		name api.Capability
	}
)

// DefaultPollInterval is how often invocation waits re-check the record
const DefaultPollInterval = 5 * time.Millisecond

// NewMockBindings creates an empty capability script
func NewMockBindings() *MockBindings {
	return &MockBindings{
		scripted: map[api.Capability][]scripted{},
		handlers: map[api.Capability]client.Func{},
		calls:    map[api.Capability][]Invocation{},
	}
}

// Respond queues outputs to return for a capability
func (m *MockBindings) Respond(name api.Capability, outputs api.Args) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripted[name] = append(m.scripted[name], scripted{outputs: outputs})
}

// RespondError queues an error to return for a capability
func (m *MockBindings) RespondError(name api.Capability, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripted[name] = append(m.scripted[name], scripted{err: err})
}

// Handle installs a function to serve a capability directly, bypassing
// any scripted responses. The invocation is still recorded
func (m *MockBindings) Handle(name api.Capability, fn client.Func) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[name] = fn
}

// Bindings returns resolvable bindings for the named capabilities. A
// bound capability with nothing scripted returns empty outputs
func (m *MockBindings) Bindings(names ...api.Capability) client.Bindings {
	res := make(client.Bindings, len(names))
	for _, name := range names {
		res[name] = &mockClient{mock: m, name: name}
	}
	return res
}

// Invocations returns the recorded calls for a capability, in order
func (m *MockBindings) Invocations(name api.Capability) []Invocation {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]Invocation, len(m.calls[name]))
	copy(res, m.calls[name])
	return res
}

// CountInvocations returns how many times a capability was called
func (m *MockBindings) CountInvocations(name api.Capability) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls[name])
}

// WasInvoked returns whether a capability was called at least once
func (m *MockBindings) WasInvoked(name api.Capability) bool {
	return m.CountInvocations(name) > 0
}

// LastInvocation returns the most recent call recorded for a capability
func (m *MockBindings) LastInvocation(
	name api.Capability,
) (Invocation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := m.calls[name]
	if len(calls) == 0 {
		return Invocation{}, false
	}
	return calls[len(calls)-1], true
}

// InvocationOrder returns every capability call in the order received
func (m *MockBindings) InvocationOrder() []api.Capability {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]api.Capability, len(m.order))
	copy(res, m.order)
	return res
}

// WaitForInvocations blocks until a capability has been called at least
// count times or the timeout expires
func (m *MockBindings) WaitForInvocations(
	name api.Capability, count int, timeout time.Duration,
) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if m.CountInvocations(name) >= count {
			return true
		}
		time.Sleep(DefaultPollInterval)
	}
	return m.CountInvocations(name) >= count
}

func (c *mockClient) Invoke(
	ctx context.Context, args api.Args, meta api.Metadata,
) (api.Args, error) {
	fn, outputs, err := c.mock.record(c.name, args, meta)
	if fn != nil {
		return fn(ctx, args)
	}
	return outputs, err
}

func (m *MockBindings) record(
	name api.Capability, args api.Args, meta api.Metadata,
) (client.Func, api.Args, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[name] = append(m.calls[name], Invocation{
		Args: args,
		Meta: meta,
	})
	m.order = append(m.order, name)

	if fn, ok := m.handlers[name]; ok {
		return fn, nil, nil
	}

	queue := m.scripted[name]
	if len(queue) == 0 {
		return nil, api.Args{}, nil
	}
	next := queue[0]
	if len(queue) > 1 {
		m.scripted[name] = queue[1:]
	}
	return nil, next.outputs, next.err
}
