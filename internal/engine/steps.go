package engine

import (
	"github.com/kode4food/banquet/internal/util"
	"github.com/kode4food/banquet/pkg/api"
)

// Step identifiers for the catering workflow
const (
	StepIntake          api.StepID = "intake"
	StepDietaryAnalysis api.StepID = "dietary_analysis"
	StepFindRecipe      api.StepID = "find_existing_recipe"
	StepSearchRecipe    api.StepID = "search_recipe"
	StepReview          api.StepID = "review"
	StepMatchChef       api.StepID = "match_chef"
	StepFinalize        api.StepID = "finalize"
)

// CateringSteps declares the fixed steps of the catering workflow in
// execution order: the event each accepts, the events it may emit, and
// the capabilities it invokes along the way
var CateringSteps = []*api.Step{
	{
		ID:      StepIntake,
		Name:    "Intake",
		Accepts: api.EventTypeStart,
		Emits:   []api.EventType{api.EventTypeDietaryAnalysis},
	},
	{
		ID:      StepDietaryAnalysis,
		Name:    "Dietary Analysis",
		Accepts: api.EventTypeDietaryAnalysis,
		Emits:   []api.EventType{api.EventTypeFindExistingRecipe},
		Capabilities: []api.Capability{
			api.CapabilityAnalyzeDiet,
		},
	},
	{
		ID:      StepFindRecipe,
		Name:    "Find Existing Recipe",
		Accepts: api.EventTypeFindExistingRecipe,
		Emits: []api.EventType{
			api.EventTypeSearchRecipe,
			api.EventTypeFinalize,
		},
		Capabilities: []api.Capability{
			api.CapabilityFindRecipeAndChef,
		},
	},
	{
		ID:      StepSearchRecipe,
		Name:    "Search Recipe",
		Accepts: api.EventTypeSearchRecipe,
		Emits:   []api.EventType{api.EventTypeReview},
		Capabilities: []api.Capability{
			api.CapabilityListSpecializations,
			api.CapabilitySearchWeb,
		},
	},
	{
		ID:      StepReview,
		Name:    "Review",
		Accepts: api.EventTypeReview,
		Emits: []api.EventType{
			api.EventTypeSearchRecipe,
			api.EventTypeMatchChef,
		},
		Capabilities: []api.Capability{
			api.CapabilityReviewContent,
		},
	},
	{
		ID:      StepMatchChef,
		Name:    "Match Chef",
		Accepts: api.EventTypeMatchChef,
		Emits:   []api.EventType{api.EventTypeFinalize},
		Capabilities: []api.Capability{
			api.CapabilityMatchChef,
		},
	},
	{
		ID:      StepFinalize,
		Name:    "Finalize",
		Accepts: api.EventTypeFinalize,
		Emits:   []api.EventType{api.EventTypeStop},
		Capabilities: []api.Capability{
			api.CapabilityFormatReport,
			api.CapabilityWriteFile,
		},
	},
}

var stepsByEvent = func() map[api.EventType]*api.Step {
	res := make(map[api.EventType]*api.Step, len(CateringSteps))
	for _, s := range CateringSteps {
		res[s.Accepts] = s
	}
	return res
}()

// Steps returns the declared workflow steps in execution order
func Steps() []*api.Step {
	return CateringSteps
}

// StepFor returns the step that accepts the given event type
func StepFor(t api.EventType) (*api.Step, bool) {
	s, ok := stepsByEvent[t]
	return s, ok
}

// RequiredCapabilities returns every capability the workflow invokes, in
// step order
func RequiredCapabilities() []api.Capability {
	seen := util.Set[api.Capability]{}
	var res []api.Capability
	for _, s := range CateringSteps {
		for _, c := range s.Capabilities {
			if seen.Contains(c) {
				continue
			}
			seen.Add(c)
			res = append(res, c)
		}
	}
	return res
}
