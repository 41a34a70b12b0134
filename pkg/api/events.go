package api

import "time"

type (
	// Event is a workflow event routed between the steps of a run
	Event interface {
		Kind() EventType
	}

	// EventType identifies a kind of workflow or lifecycle event
	EventType string

	// StartEvent begins a run with the raw guest records
	StartEvent struct {
		Guests []GuestRecord `json:"guests"`
	}

	// DietaryAnalysisEvent requests segmentation of the guest list
	DietaryAnalysisEvent struct {
		Guests []GuestRecord `json:"guests"`
	}

	// FindExistingRecipeEvent starts one requirement branch against the
	// recipe catalog
	FindExistingRecipeEvent struct {
		Branch      int         `json:"branch"`
		Requirement Requirement `json:"requirement"`
		Quantity    int         `json:"quantity"`
		Universal   bool        `json:"universal"`
	}

	// SearchRecipeEvent falls a branch back to recipe research. Query
	// accumulates reviewer feedback across attempts
	SearchRecipeEvent struct {
		Branch  int    `json:"branch"`
		Query   string `json:"query"`
		Attempt int    `json:"attempt"`
	}

	// ReviewEvent carries researched content to the reviewer
	ReviewEvent struct {
		Branch  int    `json:"branch"`
		Query   string `json:"query"`
		Content string `json:"content"`
		Attempt int    `json:"attempt"`
	}

	// MatchChefEvent pairs approved recipe content with available chefs
	MatchChefEvent struct {
		Branch  int    `json:"branch"`
		Query   string `json:"query"`
		Content string `json:"content"`
	}

	// FinalizeEvent delivers one branch's result to the counting join
	FinalizeEvent struct {
		Branch int    `json:"branch"`
		Result string `json:"result"`
	}

	// StopEvent ends a run with the finished report or a failure
	StopEvent struct {
		Report       string `json:"report,omitempty"`
		Confirmation string `json:"confirmation,omitempty"`
		Failure      string `json:"failure,omitempty"`
	}

	// RunEvent is the envelope published to run observers for every
	// workflow and lifecycle event
	RunEvent struct {
		RunID     RunID     `json:"run_id"`
		Type      EventType `json:"type"`
		Data      any       `json:"data,omitempty"`
		Timestamp time.Time `json:"timestamp"`
		Sequence  int64     `json:"sequence"`
	}
)

// Workflow event types routed between steps
const (
	EventTypeStart              EventType = "start"
	EventTypeDietaryAnalysis    EventType = "dietary_analysis"
	EventTypeFindExistingRecipe EventType = "find_existing_recipe"
	EventTypeSearchRecipe       EventType = "search_recipe"
	EventTypeReview             EventType = "review"
	EventTypeMatchChef          EventType = "match_chef"
	EventTypeFinalize           EventType = "finalize"
	EventTypeStop               EventType = "stop"
)

// Lifecycle event types published to run observers
const (
	EventTypeRunStarted   EventType = "run_started"
	EventTypeRunCompleted EventType = "run_completed"
	EventTypeRunFailed    EventType = "run_failed"
)

func (*StartEvent) Kind() EventType              { return EventTypeStart }
func (*DietaryAnalysisEvent) Kind() EventType    { return EventTypeDietaryAnalysis }
func (*FindExistingRecipeEvent) Kind() EventType { return EventTypeFindExistingRecipe }
func (*SearchRecipeEvent) Kind() EventType       { return EventTypeSearchRecipe }
func (*ReviewEvent) Kind() EventType             { return EventTypeReview }
func (*MatchChefEvent) Kind() EventType          { return EventTypeMatchChef }
func (*FinalizeEvent) Kind() EventType           { return EventTypeFinalize }
func (*StopEvent) Kind() EventType               { return EventTypeStop }
