package research

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kode4food/banquet/pkg/api"
)

var (
	ErrMissingQuery   = errors.New("missing query argument")
	ErrMissingContent = errors.New("missing content argument")
	ErrMissingResults = errors.New("missing results argument")
)

const (
	searchPrompt = `You are a culinary researcher for a catering company.
Given a dietary requirement, produce one complete recipe that satisfies it:
a name, a short description, an ingredient list, and preparation steps
suitable for batch cooking. If feedback on a previous attempt is included,
correct every problem it raises. Respond with the recipe only.`

	reviewPrompt = `You are a meticulous food safety reviewer for a catering
company. You will receive a dietary requirement and a proposed recipe.
Verify that the recipe honors every restriction and avoids every excluded
allergen. Begin your response with the single word Success if it does, or
Failed if it does not, followed by your justification.`

	reportPrompt = `You are a catering planner. You will receive the menu
selections chosen for each group of guests at an event. Compose a clear,
friendly catering report that presents each selection, who it serves, and
any preparation notes worth calling out.`
)

// SearchRecipes answers the search_web capability by asking the model to
// draft a recipe for the query. Reviewer feedback accumulates in the query
// itself, so retries automatically carry everything learned so far
func (c *Client) SearchRecipes(
	ctx context.Context, args api.Args,
) (api.Args, error) {
	query := args.GetString(api.ArgQuery, "")
	if query == "" {
		return nil, ErrMissingQuery
	}
	content, err := c.Complete(ctx, searchPrompt, query)
	if err != nil {
		return nil, err
	}
	return api.Args{api.ArgContent: content}, nil
}

// ReviewContent answers the review_content capability. The verdict is
// approved unless the model's response mentions failure, and the full
// response is returned as feedback for the next search attempt
func (c *Client) ReviewContent(
	ctx context.Context, args api.Args,
) (api.Args, error) {
	content := args.GetString(api.ArgContent, "")
	if content == "" {
		return nil, ErrMissingContent
	}
	query := args.GetString(api.ArgQuery, "")
	user := fmt.Sprintf(
		"Requirement:\n%s\n\nProposed recipe:\n%s", query, content,
	)
	verdict, err := c.Complete(ctx, reviewPrompt, user)
	if err != nil {
		return nil, err
	}
	approved := !strings.Contains(strings.ToLower(verdict), "failed")
	return api.Args{
		api.ArgApproved: approved,
		api.ArgFeedback: verdict,
	}, nil
}

// FormatReport answers the format_report capability by turning the
// per-requirement results into the final catering report
func (c *Client) FormatReport(
	ctx context.Context, args api.Args,
) (api.Args, error) {
	results, ok := args.GetStrings(api.ArgResults)
	if !ok || len(results) == 0 {
		return nil, ErrMissingResults
	}
	user := strings.Join(results, "\n\n---\n\n")
	report, err := c.Complete(ctx, reportPrompt, user)
	if err != nil {
		return nil, err
	}
	return api.Args{api.ArgReport: report}, nil
}
