// Package tools assembles the capability bindings the workflow engine
// resolves at each step. Each binding wraps one of the in-process
// providers: the recipe catalog, the research client, or the report
// writer.
package tools

import (
	"context"
	"errors"

	"github.com/kode4food/banquet/internal/catalog"
	"github.com/kode4food/banquet/internal/client"
	"github.com/kode4food/banquet/internal/report"
	"github.com/kode4food/banquet/internal/research"
	"github.com/kode4food/banquet/internal/segment"
	"github.com/kode4food/banquet/pkg/api"
)

// Dependencies carries the backing providers for the built-in
// capabilities
type Dependencies struct {
	Store    *catalog.Store
	Research *research.Client
	Writer   *report.Writer
}

var ErrMissingGuests = errors.New("guests argument is required")

// NewBindings maps every built-in capability to its in-process
// implementation
func NewBindings(deps *Dependencies) client.Bindings {
	return client.Bindings{
		api.CapabilityAnalyzeDiet: client.Func(analyzeDiet),
		api.CapabilityFindRecipeAndChef: client.Func(
			deps.Store.FindExistingRecipeAndChef,
		),
		api.CapabilityListSpecializations: client.Func(
			deps.Store.ListSpecializations,
		),
		api.CapabilitySearchWeb: client.Func(deps.Research.SearchRecipes),
		api.CapabilityFetch:     client.Func(deps.Research.Fetch),
		api.CapabilityReviewContent: client.Func(
			deps.Research.ReviewContent,
		),
		api.CapabilityMatchChef:    client.Func(deps.Store.MatchChef),
		api.CapabilityWriteFile:    client.Func(deps.Writer.WriteFile),
		api.CapabilityFormatReport: client.Func(deps.Research.FormatReport),
	}
}

func analyzeDiet(_ context.Context, args api.Args) (api.Args, error) {
	guests, ok := api.GuestsArg(args, api.ArgGuests)
	if !ok {
		return nil, ErrMissingGuests
	}
	res, err := segment.Analyze(guests)
	if err != nil {
		return nil, err
	}
	return api.Args{api.ArgAnalysis: res}, nil
}
