package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tidwall/gjson"

	"github.com/kode4food/banquet/internal/engine/event"
	"github.com/kode4food/banquet/pkg/api"
	"github.com/kode4food/banquet/pkg/log"
)

type (
	// runActor owns all mutable state of one workflow run. Events arrive
	// through the inbox and are handled one at a time; capability calls
	// for requirement branches run in their own goroutines and feed their
	// outcomes back as events. The ctx and cancel fields shadow the
	// engine's on purpose: everything the actor touches is bounded by the
	// run deadline
	runActor struct {
		*Engine
		id       api.RunID
		inbox    *event.Inbox
		join     *barrier
		state    atomic.Pointer[api.RunState]
		ctx      context.Context
		cancel   context.CancelFunc
		done     chan struct{}
		timeout  time.Duration
		branches sync.WaitGroup
	}

	// branchReq is one requirement fanned out to its own branch
	branchReq struct {
		req       api.Requirement
		quantity  int
		universal bool
	}
)

// feedbackPrefix matches the phrasing rejected review verdicts are
// replayed with on the branch's next search attempt
const feedbackPrefix = "feedback for previous result: "

func newRunActor(
	e *Engine, guests []api.GuestRecord, timeout time.Duration,
) *runActor {
	ctx, cancel := context.WithTimeout(e.ctx, timeout)
	wa := &runActor{
		Engine:  e,
		id:      api.NewRunID(),
		inbox:   event.NewInbox(),
		join:    newBarrier(),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		timeout: timeout,
	}
	wa.setState(&api.RunState{
		ID:        wa.id,
		Status:    api.RunActive,
		StartedAt: time.Now(),
		Guests:    guests,
	})
	wa.inbox.Deliver(&api.StartEvent{Guests: guests})
	return wa
}

func (wa *runActor) run() {
	defer wa.wg.Done()
	defer wa.inbox.Close()
	defer wa.branches.Wait()
	defer wa.cancel()

	for {
		select {
		case ev, ok := <-wa.inbox.Receive():
			if !ok {
				return
			}
			// the deadline outranks any event queued behind it
			if wa.ctx.Err() != nil {
				wa.expire(wa.ctx.Err())
				return
			}
			if wa.handle(ev) {
				return
			}

		case <-wa.ctx.Done():
			wa.expire(wa.ctx.Err())
			return
		}
	}
}

// handle dispatches one event to the step that accepts it, reporting
// whether the run reached its terminal event
func (wa *runActor) handle(ev api.Event) bool {
	wa.notify.publish(wa.id, ev.Kind(), ev)

	if stop, ok := ev.(*api.StopEvent); ok {
		wa.handleStop(stop)
		return true
	}

	step, ok := StepFor(ev.Kind())
	if !ok {
		slog.Error("No step accepts event",
			log.RunID(wa.id),
			log.EventType(ev.Kind()))
		return false
	}

	switch ev := ev.(type) {
	case *api.StartEvent:
		wa.handleStart(ev)
	case *api.DietaryAnalysisEvent:
		wa.handleAnalysis(step, ev)
	case *api.FindExistingRecipeEvent:
		wa.handleFind(step, ev)
	case *api.SearchRecipeEvent:
		wa.handleSearch(step, ev)
	case *api.ReviewEvent:
		wa.handleReview(step, ev)
	case *api.MatchChefEvent:
		wa.handleMatchChef(step, ev)
	case *api.FinalizeEvent:
		wa.handleFinalize(step, ev)
	}
	return false
}

func (wa *runActor) handleStart(ev *api.StartEvent) {
	wa.inbox.Deliver(&api.DietaryAnalysisEvent{Guests: ev.Guests})
}

// handleAnalysis segments the guest list and fans one branch out per
// requirement. Nothing else is in flight yet, so the capability call runs
// on the actor goroutine; failure here aborts the run before fan-out
func (wa *runActor) handleAnalysis(
	step *api.Step, ev *api.DietaryAnalysisEvent,
) {
	out, err := wa.invoke(wa.ctx, api.CapabilityAnalyzeDiet,
		api.Args{api.ArgGuests: ev.Guests},
		wa.metaFor(step, api.CapabilityAnalyzeDiet))
	if err != nil {
		wa.fail(step, err)
		return
	}

	res, err := decodeAnalysis(out[api.ArgAnalysis])
	if err != nil {
		wa.fail(step, err)
		return
	}

	wa.update(func(st *api.RunState) *api.RunState {
		return st.SetAnalysis(res)
	})

	reqs := requirementsOf(res)
	wa.join.arm(len(reqs))

	slog.Info("Fanning out requirement branches",
		log.RunID(wa.id),
		slog.Int("branches", len(reqs)))

	for i, r := range reqs {
		wa.inbox.Deliver(&api.FindExistingRecipeEvent{
			Branch:      i,
			Requirement: r.req,
			Quantity:    r.quantity,
			Universal:   r.universal,
		})
	}
}

// search sends a branch into its next research attempt
func (wa *runActor) search(branch int, query string, attempt int) {
	wa.inbox.Deliver(&api.SearchRecipeEvent{
		Branch:  branch,
		Query:   query,
		Attempt: attempt,
	})
}

// handleFind looks the branch's requirement up in the recipe catalog. A
// result carrying the "failed" sentinel, or a lookup error, sends the
// branch into the search/review loop; anything else finalizes it directly
func (wa *runActor) handleFind(
	step *api.Step, ev *api.FindExistingRecipeEvent,
) {
	wa.update(func(st *api.RunState) *api.RunState {
		return st.SetBranch(&api.BranchState{
			Requirement: ev.Requirement,
			Branch:      ev.Branch,
			Quantity:    ev.Quantity,
			Universal:   ev.Universal,
			Status:      api.BranchFinding,
		})
	})

	meta := wa.metaFor(step, api.CapabilityFindRecipeAndChef).
		Apply(api.Metadata{api.MetaBranch: ev.Branch})

	wa.branches.Go(func() {
		out, err := wa.invoke(wa.ctx, api.CapabilityFindRecipeAndChef,
			api.Args{api.ArgRequirement: &ev.Requirement}, meta)
		if err != nil {
			slog.Warn("Catalog lookup failed, falling back to search",
				log.RunID(wa.id),
				log.Branch(ev.Branch),
				log.Error(err))
			wa.search(ev.Branch, branchQuery(ev), 1)
			return
		}

		content := out.GetString(api.ArgResult, "")
		if isFailed(content) {
			wa.search(ev.Branch, branchQuery(ev), 1)
			return
		}
		wa.inbox.Deliver(&api.FinalizeEvent{
			Branch: ev.Branch,
			Result: content,
		})
	})
}

// handleSearch researches a new recipe for the branch. The prompt is
// enriched with the catalog's chef specializations so research favors
// dishes someone on hand can cook
func (wa *runActor) handleSearch(step *api.Step, ev *api.SearchRecipeEvent) {
	wa.update(func(st *api.RunState) *api.RunState {
		st = st.SetSearchUsed(true)
		if b, ok := st.Branches[ev.Branch]; ok {
			st = st.SetBranch(
				b.SetStatus(api.BranchSearching).SetAttempts(ev.Attempt),
			)
		}
		return st
	})

	meta := wa.metaFor(step, api.CapabilitySearchWeb).Apply(api.Metadata{
		api.MetaBranch:  ev.Branch,
		api.MetaAttempt: ev.Attempt,
	})

	wa.branches.Go(func() {
		query := ev.Query
		if specs := wa.availableSpecializations(step); specs != "" {
			query = query + "\n" + specs
		}

		out, err := wa.invoke(wa.ctx, api.CapabilitySearchWeb,
			api.Args{api.ArgQuery: query}, meta)
		if err != nil {
			wa.fail(step, err)
			return
		}
		wa.inbox.Deliver(&api.ReviewEvent{
			Branch:  ev.Branch,
			Query:   ev.Query,
			Content: out.GetString(api.ArgContent, ""),
			Attempt: ev.Attempt,
		})
	})
}

// handleReview verifies researched content against the branch's
// requirement. Rejection re-emits a search with the verdict appended to
// the query, so feedback accumulates until an attempt passes or the run
// deadline expires. A reviewer error re-emits the search unchanged
func (wa *runActor) handleReview(step *api.Step, ev *api.ReviewEvent) {
	wa.setBranchStatus(ev.Branch, api.BranchReviewing)

	meta := wa.metaFor(step, api.CapabilityReviewContent).
		Apply(api.Metadata{
			api.MetaBranch:  ev.Branch,
			api.MetaAttempt: ev.Attempt,
		})

	wa.branches.Go(func() {
		out, err := wa.invoke(wa.ctx, api.CapabilityReviewContent,
			api.Args{
				api.ArgContent: ev.Content,
				api.ArgQuery:   ev.Query,
			}, meta)
		if err != nil {
			slog.Warn("Review failed, retrying search",
				log.RunID(wa.id),
				log.Branch(ev.Branch),
				log.Attempt(ev.Attempt),
				log.Error(err))
			wa.search(ev.Branch, ev.Query, ev.Attempt+1)
			return
		}

		if out.GetBool(api.ArgApproved, false) {
			wa.inbox.Deliver(&api.MatchChefEvent{
				Branch:  ev.Branch,
				Query:   ev.Query,
				Content: ev.Content,
			})
			return
		}

		feedback := out.GetString(api.ArgFeedback, "")
		slog.Info("Recipe rejected, retrying search",
			log.RunID(wa.id),
			log.Branch(ev.Branch),
			log.Attempt(ev.Attempt))
		wa.search(ev.Branch, ev.Query+"\n"+feedbackPrefix+feedback,
			ev.Attempt+1)
	})
}

// handleMatchChef pairs approved recipe content with available chefs and
// finalizes the branch with the combined result
func (wa *runActor) handleMatchChef(step *api.Step, ev *api.MatchChefEvent) {
	wa.setBranchStatus(ev.Branch, api.BranchMatching)

	meta := wa.metaFor(step, api.CapabilityMatchChef).
		Apply(api.Metadata{api.MetaBranch: ev.Branch})

	wa.branches.Go(func() {
		out, err := wa.invoke(wa.ctx, api.CapabilityMatchChef,
			api.Args{
				api.ArgContent: ev.Content,
				api.ArgQuery:   ev.Query,
			}, meta)
		if err != nil {
			wa.fail(step, err)
			return
		}

		chefs := out.GetString(api.ArgChefs, "")
		wa.inbox.Deliver(&api.FinalizeEvent{
			Branch: ev.Branch,
			Result: fmt.Sprintf(
				"recipes: %s\n\nchefs: %s", ev.Content, chefs,
			),
		})
	})
}

// handleFinalize delivers one branch's result to the counting join and,
// on the final arrival, produces the run's report
func (wa *runActor) handleFinalize(step *api.Step, ev *api.FinalizeEvent) {
	wa.update(func(st *api.RunState) *api.RunState {
		if b, ok := st.Branches[ev.Branch]; ok {
			st = st.SetBranch(
				b.SetStatus(api.BranchFinalized).SetResult(ev.Result),
			)
		}
		return st
	})

	results, fired := wa.join.arrive(ev.Branch, ev.Result)
	if !fired {
		slog.Debug("Branch finalized, join deferred",
			log.RunID(wa.id),
			log.Branch(ev.Branch),
			slog.Int("pending", wa.join.pending()))
		return
	}
	wa.finalize(step, results)
}

// finalize formats and persists the aggregated report. Every branch has
// arrived by now, so the capability calls run on the actor goroutine
func (wa *runActor) finalize(step *api.Step, results []string) {
	out, err := wa.invoke(wa.ctx, api.CapabilityFormatReport,
		api.Args{api.ArgResults: results},
		wa.metaFor(step, api.CapabilityFormatReport))
	if err != nil {
		wa.fail(step, err)
		return
	}
	report := out.GetString(api.ArgReport, "")

	out, err = wa.invoke(wa.ctx, api.CapabilityWriteFile,
		api.Args{api.ArgReport: report},
		wa.metaFor(step, api.CapabilityWriteFile))
	if err != nil {
		wa.fail(step, err)
		return
	}

	wa.inbox.Deliver(&api.StopEvent{
		Report:       report,
		Confirmation: out.GetString(api.ArgConfirmation, ""),
	})
}

func (wa *runActor) handleStop(ev *api.StopEvent) {
	now := time.Now()
	wa.update(func(st *api.RunState) *api.RunState {
		st = st.SetCompletedAt(now)
		if ev.Failure != "" {
			return st.SetStatus(api.RunFailed).SetError(ev.Failure)
		}
		return st.SetStatus(api.RunCompleted).
			SetReport(ev.Report).
			SetConfirmation(ev.Confirmation)
	})
	wa.finish()
}

// expire fails a run whose deadline passed or whose engine is shutting
// down. The join never fires for an expired run
func (wa *runActor) expire(cause error) {
	msg := "run canceled during shutdown"
	if errors.Is(cause, context.DeadlineExceeded) {
		msg = fmt.Sprintf("run timed out after %s", wa.timeout)
	}

	now := time.Now()
	wa.update(func(st *api.RunState) *api.RunState {
		return st.SetStatus(api.RunFailed).
			SetError(msg).
			SetCompletedAt(now)
	})
	wa.notify.publish(wa.id, api.EventTypeStop, &api.StopEvent{
		Failure: msg,
	})
	wa.finish()
}

// finish retires the actor: the terminal state moves to the engine's
// completed cache and the lifecycle event goes out to observers
func (wa *runActor) finish() {
	st := wa.snapshot()
	wa.completed.Put(string(wa.id), st)
	wa.runs.Delete(wa.id)

	if st.Status == api.RunFailed {
		slog.Error("Run failed",
			log.RunID(wa.id),
			log.ErrorString(st.Error))
		wa.notify.publish(wa.id, api.EventTypeRunFailed,
			&api.MessageResponse{Message: st.Error})
	} else {
		slog.Info("Run completed",
			log.RunID(wa.id),
			slog.Bool("search_used", st.SearchUsed),
			slog.Duration("elapsed", st.CompletedAt.Sub(st.StartedAt)))
		wa.notify.publish(wa.id, api.EventTypeRunCompleted,
			finalReportOf(st))
	}
	close(wa.done)
}

// fail aborts the run with a diagnostic naming the step that failed
func (wa *runActor) fail(step *api.Step, err error) {
	wa.inbox.Deliver(&api.StopEvent{
		Failure: fmt.Sprintf("failed in %s: %s", step.ID, err),
	})
}

// availableSpecializations folds the catalog's chef specializations into
// a search prompt. Failure here is not fatal to the branch
func (wa *runActor) availableSpecializations(step *api.Step) string {
	out, err := wa.invoke(wa.ctx, api.CapabilityListSpecializations,
		api.Args{}, wa.metaFor(step, api.CapabilityListSpecializations))
	if err != nil {
		return ""
	}
	specs, ok := out.GetStrings(api.ArgSpecializations)
	if !ok || len(specs) == 0 {
		return ""
	}
	return "Available chef specializations: " + strings.Join(specs, ", ")
}

func (wa *runActor) snapshot() *api.RunState {
	return wa.state.Load()
}

func (wa *runActor) setState(st *api.RunState) {
	wa.state.Store(st)
}

// update applies a state transition. The actor goroutine is the only
// writer; the atomic pointer keeps snapshots safe for concurrent readers
func (wa *runActor) update(f func(*api.RunState) *api.RunState) {
	wa.setState(f(wa.snapshot()))
}

func (wa *runActor) setBranchStatus(branch int, status api.BranchStatus) {
	wa.update(func(st *api.RunState) *api.RunState {
		if b, ok := st.Branches[branch]; ok {
			return st.SetBranch(b.SetStatus(status))
		}
		return st
	})
}

func (wa *runActor) digest() *api.RunDigest {
	return digestOf(wa.snapshot())
}

func (wa *runActor) metaFor(
	step *api.Step, name api.Capability,
) api.Metadata {
	return api.Metadata{
		api.MetaRunID:      wa.id,
		api.MetaStepID:     step.ID,
		api.MetaCapability: name,
	}
}

// requirementsOf orders a run's requirements for fan-out: the universal
// requirement first, serving every guest, then each alternative group
func requirementsOf(res *api.AnalysisResult) []branchReq {
	reqs := make([]branchReq, 0, res.RequirementCount())
	reqs = append(reqs, branchReq{
		req:       res.Universal,
		quantity:  res.GuestCount,
		universal: true,
	})
	for _, alt := range res.Alternatives {
		reqs = append(reqs, branchReq{
			req:      alt.Requirement,
			quantity: alt.QuantityNeeded,
		})
	}
	return reqs
}

// branchQuery renders the requirement text a branch carries into its
// search and review loop
func branchQuery(ev *api.FindExistingRecipeEvent) string {
	if ev.Universal {
		return fmt.Sprintf("%s, for all %d guests",
			ev.Requirement.String(), ev.Quantity)
	}
	return fmt.Sprintf("%s, for %d guests",
		ev.Requirement.String(), ev.Quantity)
}

// isFailed reports whether a capability result carries the catalog's
// no-match sentinel
func isFailed(content string) bool {
	return strings.Contains(strings.ToLower(content), "failed")
}

// decodeAnalysis validates and decodes an analyze_diet payload. Results
// arriving over the wire are structurally checked before decoding; a
// payload without the expected keys aborts the run before fan-out
func decodeAnalysis(val any) (*api.AnalysisResult, error) {
	if val == nil {
		return nil, ErrMalformedAnalysis
	}
	if res, ok := val.(*api.AnalysisResult); ok {
		if err := res.Validate(); err != nil {
			return nil, err
		}
		return res, nil
	}

	data, err := json.Marshal(val)
	if err != nil {
		return nil, err
	}
	if !gjson.GetBytes(data, "universal_requirement").Exists() ||
		!gjson.GetBytes(data, "alternatives_needed").Exists() ||
		!gjson.GetBytes(data, "total_guests").Exists() {
		return nil, ErrMalformedAnalysis
	}

	var res api.AnalysisResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	if !gjson.GetBytes(data, "fully_covered").Exists() {
		// Derived field; external analyzers may not report it
		covered := res.GuestCount
		for _, alt := range res.Alternatives {
			covered -= alt.QuantityNeeded
		}
		res.FullyCovered = covered
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	return &res, nil
}
