package api

import "encoding/json"

type (
	// WebSocketEvent is an event sent to WebSocket clients
	WebSocketEvent struct {
		Type      EventType       `json:"type"`
		Data      json.RawMessage `json:"data"`
		RunID     RunID           `json:"run_id"`
		Timestamp int64           `json:"timestamp"`
		Sequence  int64           `json:"sequence"`
	}

	// SubscribeRequest is sent by clients to subscribe to events
	SubscribeRequest struct {
		Type string             `json:"type"`
		Data ClientSubscription `json:"data"`
	}

	// ClientSubscription configures which events a WebSocket client
	// receives
	ClientSubscription struct {
		RunID      RunID       `json:"run_id,omitempty"`
		EventTypes []EventType `json:"event_types,omitempty"`
	}

	// SubscribedResult is sent to clients with current state on subscribe
	SubscribedResult struct {
		Type     string          `json:"type"`
		RunID    RunID           `json:"run_id,omitempty"`
		Data     json.RawMessage `json:"data,omitempty"`
		Sequence int64           `json:"sequence"`
	}
)
