package assert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/banquet/internal/config"
	"github.com/kode4food/banquet/pkg/api"
)

// Wrapper wraps testify assertions with banquet-specific helpers
type Wrapper struct {
	*testing.T
	*assert.Assertions
	Require *require.Assertions
}

// DefaultRetryInterval is the default polling interval for Eventually checks
const DefaultRetryInterval = 100 * time.Millisecond

// New creates a new test assertion wrapper with both assert and require from
// testify plus banquet-specific helpers
func New(t *testing.T) *Wrapper {
	return &Wrapper{
		T:          t,
		Assertions: assert.New(t),
		Require:    require.New(t),
	}
}

// StepValid asserts that a workflow step definition is valid
func (w *Wrapper) StepValid(s *api.Step) {
	w.Helper()
	w.NoError(s.Validate())
	w.NotEmpty(s.ID)
	w.NotEmpty(s.Name)
	w.NotEmpty(s.Accepts)
}

// StepInvalid asserts that a step definition is invalid and returns the
// validation error
func (w *Wrapper) StepInvalid(
	s *api.Step, expectedErrorContains string,
) error {
	w.Helper()
	err := s.Validate()
	w.Error(err)
	if err != nil && expectedErrorContains != "" {
		w.Contains(err.Error(), expectedErrorContains)
	}
	return err
}

// RunStatus asserts the status of a workflow run
func (w *Wrapper) RunStatus(run *api.RunState, expected api.RunStatus) {
	w.Helper()
	w.Equal(expected, run.Status)
}

// BranchStatus asserts the status of a single requirement branch within a run
func (w *Wrapper) BranchStatus(
	run *api.RunState, branch int, expected api.BranchStatus,
) {
	w.Helper()
	b, ok := run.Branches[branch]
	w.True(ok, "run should have branch %d", branch)
	if ok {
		w.Equal(expected, b.Status)
	}
}

// AnalysisCovers asserts that a dietary analysis is internally consistent and
// accounts for the expected number of guests
func (w *Wrapper) AnalysisCovers(res *api.AnalysisResult, guests int) {
	w.Helper()
	w.Require.NotNil(res)
	w.NoError(res.Validate())
	w.Equal(guests, res.GuestCount)
}

// ConfigValid asserts that a configuration is valid
func (w *Wrapper) ConfigValid(cfg *config.Config) {
	w.Helper()
	w.NoError(cfg.Validate())
	w.True(cfg.APIPort > 0 && cfg.APIPort <= 65535)
	w.True(cfg.RunTimeout > 0)
}

// ConfigInvalid asserts that a configuration is invalid
func (w *Wrapper) ConfigInvalid(cfg *config.Config, contains string) {
	w.Helper()
	err := cfg.Validate()
	w.Error(err)
	if contains != "" {
		w.Contains(err.Error(), contains)
	}
}

// Eventually runs a condition repeatedly until it passes or times out
func (w *Wrapper) Eventually(
	condition func() bool, timeout time.Duration, msg string, args ...any,
) {
	w.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(DefaultRetryInterval)
	}
	w.Fail(msg, args...)
}

// EventuallyWithError runs a condition that returns an error until it succeeds
// or times out
func (w *Wrapper) EventuallyWithError(
	condition func() error, timeout time.Duration, msg string, args ...any,
) {
	w.Helper()
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		err := condition()
		if err == nil {
			return
		}
		lastErr = err
		time.Sleep(DefaultRetryInterval)
	}
	if lastErr != nil {
		w.Fail(msg+": last error: "+lastErr.Error(), args...)
		return
	}
	w.Fail(msg, args...)
}
