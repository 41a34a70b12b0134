package api

import "github.com/google/uuid"

type (
	// RunID is a unique identifier for a workflow run
	RunID string

	// StepID is a unique identifier for a registered step
	StepID string

	// Capability names a callable capability that steps invoke
	Capability string
)

// Capabilities the catering workflow invokes. The engine resolves these
// against its bindings, either in-process or over HTTP
const (
	CapabilityAnalyzeDiet         Capability = "analyze_diet"
	CapabilityFindRecipeAndChef   Capability = "find_existing_recipe_and_chef"
	CapabilityListSpecializations Capability = "list_specializations"
	CapabilitySearchWeb           Capability = "search_web"
	CapabilityFetch               Capability = "fetch"
	CapabilityReviewContent       Capability = "review_content"
	CapabilityMatchChef           Capability = "match_chef"
	CapabilityWriteFile           Capability = "write_file"
	CapabilityFormatReport        Capability = "format_report"
)

// NewRunID returns a new unique run identifier
func NewRunID() RunID {
	return RunID(uuid.New().String())
}
