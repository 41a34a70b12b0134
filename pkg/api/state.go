package api

import (
	"maps"
	"time"
)

type (
	// RunStatus represents the current state of a workflow run
	RunStatus string

	// BranchStatus represents the progress of one requirement branch
	BranchStatus string

	// RunState contains the observable state of a single workflow run
	RunState struct {
		StartedAt    time.Time            `json:"started_at"`
		CompletedAt  time.Time            `json:"completed_at,omitempty"`
		Guests       []GuestRecord        `json:"guests,omitempty"`
		Analysis     *AnalysisResult      `json:"analysis,omitempty"`
		Branches     map[int]*BranchState `json:"branches,omitempty"`
		ID           RunID                `json:"id"`
		Status       RunStatus            `json:"status"`
		Report       string               `json:"report,omitempty"`
		Confirmation string               `json:"confirmation,omitempty"`
		Error        string               `json:"error,omitempty"`
		SearchUsed   bool                 `json:"search_used"`
	}

	// BranchState contains the state of one requirement branch
	BranchState struct {
		Requirement Requirement  `json:"requirement"`
		Branch      int          `json:"branch"`
		Quantity    int          `json:"quantity"`
		Universal   bool         `json:"universal"`
		Status      BranchStatus `json:"status"`
		Attempts    int          `json:"attempts,omitempty"`
		Result      string       `json:"result,omitempty"`
	}

	// FinalReport is the terminal result of a completed run
	FinalReport struct {
		CompletedAt  time.Time `json:"completed_at"`
		RunID        RunID     `json:"run_id"`
		Report       string    `json:"report"`
		Confirmation string    `json:"confirmation,omitempty"`
		Requirements int       `json:"requirements"`
		SearchUsed   bool      `json:"search_used"`
	}
)

const (
	RunActive    RunStatus = "active"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

const (
	BranchFinding   BranchStatus = "finding"
	BranchSearching BranchStatus = "searching"
	BranchReviewing BranchStatus = "reviewing"
	BranchMatching  BranchStatus = "matching"
	BranchFinalized BranchStatus = "finalized"
)

// SetStatus returns a new RunState with the specified status
func (st *RunState) SetStatus(status RunStatus) *RunState {
	res := *st
	res.Status = status
	return &res
}

// SetAnalysis returns a new RunState with the analysis result recorded
func (st *RunState) SetAnalysis(a *AnalysisResult) *RunState {
	res := *st
	res.Analysis = a
	return &res
}

// SetBranch returns a new RunState with the specified branch state recorded
func (st *RunState) SetBranch(b *BranchState) *RunState {
	res := *st
	res.Branches = maps.Clone(st.Branches)
	if res.Branches == nil {
		res.Branches = map[int]*BranchState{}
	}
	res.Branches[b.Branch] = b
	return &res
}

// SetReport returns a new RunState with the formatted report recorded
func (st *RunState) SetReport(report string) *RunState {
	res := *st
	res.Report = report
	return &res
}

// SetConfirmation returns a new RunState with the artifact write
// confirmation recorded
func (st *RunState) SetConfirmation(msg string) *RunState {
	res := *st
	res.Confirmation = msg
	return &res
}

// SetError returns a new RunState with the failure diagnostic recorded
func (st *RunState) SetError(msg string) *RunState {
	res := *st
	res.Error = msg
	return &res
}

// SetSearchUsed returns a new RunState with the research fallback flag set
func (st *RunState) SetSearchUsed(used bool) *RunState {
	res := *st
	res.SearchUsed = used
	return &res
}

// SetCompletedAt returns a new RunState with the completion time recorded
func (st *RunState) SetCompletedAt(t time.Time) *RunState {
	res := *st
	res.CompletedAt = t
	return &res
}

// IsTerminal returns whether the run has finished, successfully or not
func (st *RunState) IsTerminal() bool {
	return st.Status == RunCompleted || st.Status == RunFailed
}

// SetStatus returns a new BranchState with the specified status
func (b *BranchState) SetStatus(status BranchStatus) *BranchState {
	res := *b
	res.Status = status
	return &res
}

// SetAttempts returns a new BranchState with the attempt count recorded
func (b *BranchState) SetAttempts(n int) *BranchState {
	res := *b
	res.Attempts = n
	return &res
}

// SetResult returns a new BranchState with the branch result recorded
func (b *BranchState) SetResult(result string) *BranchState {
	res := *b
	res.Result = result
	return &res
}
