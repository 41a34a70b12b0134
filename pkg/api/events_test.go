package api_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/banquet/pkg/api"
)

func TestEventKinds(t *testing.T) {
	events := map[api.EventType]api.Event{
		api.EventTypeStart:              &api.StartEvent{},
		api.EventTypeDietaryAnalysis:    &api.DietaryAnalysisEvent{},
		api.EventTypeFindExistingRecipe: &api.FindExistingRecipeEvent{},
		api.EventTypeSearchRecipe:       &api.SearchRecipeEvent{},
		api.EventTypeReview:             &api.ReviewEvent{},
		api.EventTypeMatchChef:          &api.MatchChefEvent{},
		api.EventTypeFinalize:           &api.FinalizeEvent{},
		api.EventTypeStop:               &api.StopEvent{},
	}

	for kind, ev := range events {
		assert.Equal(t, kind, ev.Kind())
	}
}
