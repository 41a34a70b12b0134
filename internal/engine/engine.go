package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/kode4food/caravan/topic"

	"github.com/kode4food/banquet/internal/client"
	"github.com/kode4food/banquet/internal/config"
	"github.com/kode4food/banquet/internal/util"
	"github.com/kode4food/banquet/pkg/api"
	"github.com/kode4food/banquet/pkg/log"
)

// Engine drives catering workflow runs. Each run is handled by its own
// actor goroutine; the engine tracks active actors, retains finished run
// states, and broadcasts run events to observers
type Engine struct {
	ctx       context.Context
	cancel    context.CancelFunc
	bindings  client.Bindings
	config    *config.Config
	notify    *notifier
	completed *util.LRUCache[*api.RunState]
	runs      sync.Map // map[api.RunID]*runActor
	wg        sync.WaitGroup
}

var (
	ErrShutdownTimeout = errors.New("shutdown timeout exceeded")
	ErrEngineStopped   = errors.New("engine is not accepting runs")
	ErrRunNotFound     = errors.New("run not found")
	ErrRunFailed       = errors.New("run failed")
	ErrNoGuests        = errors.New("at least one guest is required")

	ErrMalformedAnalysis = errors.New(
		"analysis result is missing required structure",
	)
)

// New creates an engine that resolves capabilities against the provided
// bindings
func New(cfg *config.Config, bindings client.Bindings) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		ctx:       ctx,
		cancel:    cancel,
		bindings:  bindings,
		config:    cfg,
		notify:    newNotifier(),
		completed: util.NewLRUCache[*api.RunState](cfg.RunCacheSize),
	}
}

// Start readies the engine for runs
func (e *Engine) Start() {
	slog.Info("Engine started",
		slog.Int("steps", len(CateringSteps)),
		slog.Int("capabilities", len(e.bindings)))
}

// Stop cancels all active runs and waits for their actors to wind down
func (e *Engine) Stop() error {
	e.cancel()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.notify.close()
		slog.Info("Engine stopped")
		return nil
	case <-time.After(e.config.ShutdownTimeout):
		return ErrShutdownTimeout
	}
}

// StartRun begins a workflow run for the guest list and returns its
// identifier immediately. A non-positive timeout selects the configured
// default
func (e *Engine) StartRun(
	guests []api.GuestRecord, timeout time.Duration,
) (api.RunID, error) {
	wa, err := e.startRun(guests, timeout)
	if err != nil {
		return "", err
	}
	return wa.id, nil
}

// RunWorkflow starts a run and blocks until it finishes, returning the
// final report
func (e *Engine) RunWorkflow(
	ctx context.Context, guests []api.GuestRecord, timeout time.Duration,
) (*api.FinalReport, error) {
	wa, err := e.startRun(guests, timeout)
	if err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-wa.done:
	}

	st, err := e.GetRunState(wa.id)
	if err != nil {
		return nil, err
	}
	if st.Status == api.RunFailed {
		return nil, fmt.Errorf("%w: %s", ErrRunFailed, st.Error)
	}
	return finalReportOf(st), nil
}

func (e *Engine) startRun(
	guests []api.GuestRecord, timeout time.Duration,
) (*runActor, error) {
	if len(guests) == 0 {
		return nil, ErrNoGuests
	}
	if e.ctx.Err() != nil {
		return nil, ErrEngineStopped
	}
	if timeout <= 0 {
		timeout = time.Duration(e.config.RunTimeout) * time.Millisecond
	}

	wa := newRunActor(e, guests, timeout)
	e.runs.Store(wa.id, wa)

	slog.Info("Run started",
		log.RunID(wa.id),
		slog.Int("guests", len(guests)),
		slog.Duration("timeout", timeout))
	e.notify.publish(wa.id, api.EventTypeRunStarted, wa.digest())

	e.wg.Add(1)
	go wa.run()
	return wa, nil
}

// GetRunState returns the current state of an active or recently
// completed run
func (e *Engine) GetRunState(id api.RunID) (*api.RunState, error) {
	if wa, ok := e.runs.Load(id); ok {
		return wa.(*runActor).snapshot(), nil
	}
	if st, ok := e.completed.Get(string(id)); ok {
		return st, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
}

// ListRuns returns digests for all active and recently completed runs,
// most recently started first
func (e *Engine) ListRuns() []*api.RunDigest {
	var res []*api.RunDigest
	e.runs.Range(func(_, v any) bool {
		res = append(res, digestOf(v.(*runActor).snapshot()))
		return true
	})
	for _, key := range e.completed.Keys() {
		if st, ok := e.completed.Get(key); ok {
			res = append(res, digestOf(st))
		}
	}
	slices.SortFunc(res, func(l, r *api.RunDigest) int {
		return r.StartedAt.Compare(l.StartedAt)
	})
	return res
}

// ActiveRuns returns the number of runs still in flight
func (e *Engine) ActiveRuns() int {
	res := 0
	e.runs.Range(func(_, _ any) bool {
		res++
		return true
	})
	return res
}

// Steps returns the declared workflow steps
func (e *Engine) Steps() []*api.Step {
	return Steps()
}

// NewConsumer subscribes an observer to all run events
func (e *Engine) NewConsumer() topic.Consumer[*api.RunEvent] {
	return e.notify.NewConsumer()
}

// Sequence returns the sequence of the most recently published run event
func (e *Engine) Sequence() int64 {
	return e.notify.seq.Load()
}

func (e *Engine) invoke(
	ctx context.Context, name api.Capability, args api.Args,
	meta api.Metadata,
) (api.Args, error) {
	cl, err := e.bindings.Resolve(name)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := cl.Invoke(ctx, args, meta)
	if err != nil {
		slog.Error("Capability invocation failed",
			log.Capability(name),
			slog.Duration("duration", time.Since(start)),
			log.Error(err))
		return nil, err
	}

	slog.Debug("Capability invoked",
		log.Capability(name),
		slog.Duration("duration", time.Since(start)))
	return res, nil
}

func digestOf(st *api.RunState) *api.RunDigest {
	return &api.RunDigest{
		StartedAt:   st.StartedAt,
		CompletedAt: st.CompletedAt,
		ID:          st.ID,
		Status:      st.Status,
		GuestCount:  len(st.Guests),
		Branches:    len(st.Branches),
	}
}

func finalReportOf(st *api.RunState) *api.FinalReport {
	res := &api.FinalReport{
		CompletedAt:  st.CompletedAt,
		RunID:        st.ID,
		Report:       st.Report,
		Confirmation: st.Confirmation,
		SearchUsed:   st.SearchUsed,
	}
	if st.Analysis != nil {
		res.Requirements = st.Analysis.RequirementCount()
	}
	return res
}
