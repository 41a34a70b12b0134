package api

import (
	"errors"
	"slices"
)

type (
	// Step declares one named step of the catering workflow: the event type
	// it accepts, the event types it may emit, and the capabilities it
	// invokes along the way
	Step struct {
		ID           StepID       `json:"id"`
		Name         string       `json:"name"`
		Accepts      EventType    `json:"accepts"`
		Emits        []EventType  `json:"emits,omitempty"`
		Capabilities []Capability `json:"capabilities,omitempty"`
	}

	// CapabilityRequest is the wire format for invoking a capability over
	// HTTP
	CapabilityRequest struct {
		Arguments Args     `json:"arguments"`
		Metadata  Metadata `json:"metadata,omitempty"`
	}

	// CapabilityResult is the wire format for a capability response
	CapabilityResult struct {
		Outputs Args   `json:"outputs,omitempty"`
		Error   string `json:"error,omitempty"`
		Success bool   `json:"success"`
	}
)

// Millisecond-based durations for wire-level timeout fields
const (
	Second int64 = 1000
	Minute       = Second * 60
)

var (
	ErrStepIDRequired      = errors.New("step id is required")
	ErrStepAcceptsRequired = errors.New("step must accept an event type")
)

func (s *Step) Validate() error {
	if s.ID == "" {
		return ErrStepIDRequired
	}
	if s.Accepts == "" {
		return ErrStepAcceptsRequired
	}
	return nil
}

// CanEmit returns whether the step declares the given event type as one of
// its outputs
func (s *Step) CanEmit(t EventType) bool {
	return slices.Contains(s.Emits, t)
}

func NewResult() *CapabilityResult {
	return &CapabilityResult{
		Success: true,
		Outputs: Args{},
	}
}

func (r *CapabilityResult) WithOutputs(outputs Args) *CapabilityResult {
	res := *r
	res.Outputs = outputs
	return &res
}

func (r *CapabilityResult) WithError(err error) *CapabilityResult {
	res := *r
	res.Success = false
	res.Error = err.Error()
	return &res
}
