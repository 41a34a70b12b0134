package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kode4food/banquet/pkg/api"
)

// ErrMissingRequirement is raised when a capability is invoked without the
// requirement argument it needs
var ErrMissingRequirement = errors.New("missing requirement argument")

const (
	// noMatchResult deliberately contains "failed" so the workflow falls
	// back to researching a new recipe for the branch
	noMatchResult = "failed: no recipes in the catalog satisfy this requirement"

	matchedChefLimit  = 2
	fallbackChefLimit = 3
)

// FindExistingRecipeAndChef answers the find_existing_recipe_and_chef
// capability. It looks up catalog recipes that are safe for the requirement
// and pairs each with the best-rated chef for its specialization. When
// nothing in the catalog qualifies, the result reports the failure so the
// workflow can go research a new recipe instead
func (s *Store) FindExistingRecipeAndChef(
	ctx context.Context, args api.Args,
) (api.Args, error) {
	req, ok := api.RequirementArg(args, api.ArgRequirement)
	if !ok {
		return nil, ErrMissingRequirement
	}
	matches, err := s.SafeMatches(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return api.Args{api.ArgResult: noMatchResult}, nil
	}
	lines := make([]string, 0, len(matches))
	for _, m := range matches {
		lines = append(lines, formatMatch(m))
	}
	return api.Args{api.ArgResult: strings.Join(lines, "\n")}, nil
}

// MatchChef answers the match_chef capability. It scans researched recipe
// content for mentions of a known specialization and returns the top-rated
// chefs for whichever ones appear. If the content names no specialization
// the best-rated chefs overall are offered instead
func (s *Store) MatchChef(
	ctx context.Context, args api.Args,
) (api.Args, error) {
	content := args.GetString(api.ArgContent, "")
	query := args.GetString(api.ArgQuery, "")
	specs, err := s.Specializations(ctx)
	if err != nil {
		return nil, err
	}
	haystack := strings.ToLower(content + "\n" + query)
	var chefs []*Chef
	for _, spec := range specs {
		if !strings.Contains(haystack, spec) {
			continue
		}
		ranked, err := s.ChefsBySpecialization(ctx, spec)
		if err != nil {
			return nil, err
		}
		chefs = append(chefs, firstN(ranked, matchedChefLimit)...)
	}
	if len(chefs) == 0 {
		if chefs, err = s.topRated(ctx, fallbackChefLimit); err != nil {
			return nil, err
		}
	}
	lines := make([]string, 0, len(chefs))
	for _, c := range chefs {
		lines = append(lines, formatChef(c))
	}
	return api.Args{api.ArgChefs: strings.Join(lines, ", ")}, nil
}

// ListSpecializations answers the list_specializations capability with the
// distinct specializations currently represented in the catalog
func (s *Store) ListSpecializations(
	ctx context.Context, args api.Args,
) (api.Args, error) {
	specs, err := s.Specializations(ctx)
	if err != nil {
		return nil, err
	}
	return api.Args{api.ArgSpecializations: specs}, nil
}

func (s *Store) topRated(ctx context.Context, limit int) ([]*Chef, error) {
	all, err := s.Chefs(ctx)
	if err != nil {
		return nil, err
	}
	sortChefsByRating(all)
	return firstN(all, limit), nil
}

func sortChefsByRating(chefs []*Chef) {
	sort.SliceStable(chefs, func(l, r int) bool {
		if chefs[l].Rating != chefs[r].Rating {
			return chefs[l].Rating > chefs[r].Rating
		}
		return chefs[l].ID < chefs[r].ID
	})
}

func formatMatch(m *Match) string {
	r := m.Recipe
	profile := ""
	if d := r.Dietary(); len(d) > 0 {
		strs := make([]string, len(d))
		for i, f := range d {
			strs[i] = string(f)
		}
		profile = fmt.Sprintf(" (%s)", strings.Join(strs, ", "))
	}
	return fmt.Sprintf("Recipe: %s%s - %s, %d min, serves %d\n  Chef: %s",
		r.Name, profile, r.Description, r.TimeToCook, r.Servings,
		formatChef(m.Chef),
	)
}

func formatChef(c *Chef) string {
	return fmt.Sprintf("%s (%s, rated %.1f)",
		c.Name, c.Specialization, c.Rating,
	)
}

func firstN(chefs []*Chef, limit int) []*Chef {
	if len(chefs) <= limit {
		return chefs
	}
	return chefs[:limit]
}
