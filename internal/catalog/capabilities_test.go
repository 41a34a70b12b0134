package catalog_test

import (
	"context"
	"strings"
	"testing"

	"github.com/kode4food/banquet/internal/assert"
	"github.com/kode4food/banquet/internal/catalog"
	"github.com/kode4food/banquet/pkg/api"
)

func TestFindExistingRecipeAndChef(t *testing.T) {
	as := assert.New(t)
	s := seededStore(t)

	args, err := s.FindExistingRecipeAndChef(context.Background(), api.Args{
		api.ArgRequirement: &api.Requirement{
			Dietary: []api.Restriction{api.Vegan, api.GlutenFree},
		},
	})
	as.NoError(err)

	result := args.GetString(api.ArgResult, "")
	as.Contains(result, "Recipe:")
	as.Contains(result, "Chef:")
	as.NotContains(strings.ToLower(result), "failed")

	// the top-rated chef able to cook a qualifying dish leads the list
	as.Contains(result, "Kenji Watanabe")
}

func TestFindReportsNoMatch(t *testing.T) {
	as := assert.New(t)
	s := testStore(t)

	args, err := s.FindExistingRecipeAndChef(context.Background(), api.Args{
		api.ArgRequirement: &api.Requirement{
			Dietary: []api.Restriction{api.Vegan},
		},
	})
	as.NoError(err)

	result := args.GetString(api.ArgResult, "")
	as.Contains(strings.ToLower(result), "failed")
}

func TestFindMissingRequirement(t *testing.T) {
	as := assert.New(t)
	s := testStore(t)

	_, err := s.FindExistingRecipeAndChef(context.Background(), api.Args{})
	as.ErrorIs(err, catalog.ErrMissingRequirement)
}

func TestMatchChefBySpecializationMention(t *testing.T) {
	as := assert.New(t)
	s := seededStore(t)

	args, err := s.MatchChef(context.Background(), api.Args{
		api.ArgContent: "A rustic Italian polenta bake with seared vegetables",
	})
	as.NoError(err)

	chefs := args.GetString(api.ArgChefs, "")
	as.Contains(chefs, "Maria Rossi")
	as.Contains(chefs, "Luca Moretti")
	as.NotContains(chefs, "Kenji Watanabe")
	as.Less(
		strings.Index(chefs, "Maria Rossi"),
		strings.Index(chefs, "Luca Moretti"),
	)
}

func TestMatchChefScansQuery(t *testing.T) {
	as := assert.New(t)
	s := seededStore(t)

	args, err := s.MatchChef(context.Background(), api.Args{
		api.ArgContent: "Grilled skewers with a tamarind glaze",
		api.ArgQuery:   "thai recipe for a vegan party",
	})
	as.NoError(err)

	chefs := args.GetString(api.ArgChefs, "")
	as.Contains(chefs, "Anong Srisuwan")
}

func TestMatchChefFallsBackToTopRated(t *testing.T) {
	as := assert.New(t)
	s := seededStore(t)

	args, err := s.MatchChef(context.Background(), api.Args{
		api.ArgContent: "A cozy weeknight stew",
	})
	as.NoError(err)

	chefs := args.GetString(api.ArgChefs, "")
	as.Contains(chefs, "Kenji Watanabe")
	as.Contains(chefs, "Maria Rossi")
	as.Contains(chefs, "Priya Sharma")
	as.NotContains(chefs, "Claire Dubois")
}

func TestListSpecializations(t *testing.T) {
	as := assert.New(t)
	s := seededStore(t)

	args, err := s.ListSpecializations(context.Background(), api.Args{})
	as.NoError(err)

	specs, ok := args.GetStrings(api.ArgSpecializations)
	as.True(ok)
	as.Equal([]string{
		"french", "indian", "italian", "japanese", "mediterranean",
		"mexican", "thai",
	}, specs)
}
