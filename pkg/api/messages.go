package api

import "time"

type (
	// CreateRunRequest is sent to start a catering workflow run. Timeout is
	// expressed in milliseconds and overrides the engine default when
	// positive
	CreateRunRequest struct {
		Guests  []GuestRecord `json:"guests"`
		Timeout int64         `json:"timeout,omitempty"`
	}

	// RunStartedResponse confirms a run was accepted
	RunStartedResponse struct {
		RunID  RunID     `json:"run_id"`
		Status RunStatus `json:"status"`
	}

	// RunDigest summarizes one run for list responses
	RunDigest struct {
		StartedAt   time.Time `json:"started_at"`
		CompletedAt time.Time `json:"completed_at,omitempty"`
		ID          RunID     `json:"id"`
		Status      RunStatus `json:"status"`
		GuestCount  int       `json:"guest_count"`
		Branches    int       `json:"branches"`
	}

	// RunsListResponse returns digests for all known runs
	RunsListResponse struct {
		Runs  []*RunDigest `json:"runs"`
		Count int          `json:"count"`
	}

	// StepsListResponse returns the declared workflow steps
	StepsListResponse struct {
		Steps []*Step `json:"steps"`
		Count int     `json:"count"`
	}

	// HealthResponse reports service liveness
	HealthResponse struct {
		Service    string `json:"service"`
		Version    string `json:"version"`
		Status     string `json:"status"`
		ActiveRuns int    `json:"active_runs"`
	}

	// MessageResponse returns a simple informational message
	MessageResponse struct {
		Message string `json:"message"`
	}

	// ErrorResponse returns error information for failed requests
	ErrorResponse struct {
		Error  string `json:"error"`
		Status int    `json:"status"`
	}
)
