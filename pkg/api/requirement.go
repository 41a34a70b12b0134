package api

import (
	"encoding/json"
	"errors"
	"strings"
)

type (
	// Requirement describes one dietary requirement a catering menu must
	// satisfy: the restriction flags to honor and the allergens to avoid
	Requirement struct {
		Dietary   []Restriction `json:"dietary_restrictions"`
		Allergens []string      `json:"allergens"`
	}

	// AlternativeRequirement is a minority requirement paired with the
	// number of servings it must cover
	AlternativeRequirement struct {
		Requirement
		QuantityNeeded int `json:"quantity_needed"`
	}

	// AnalysisResult is the outcome of segmenting guest dietary records
	// into a universal requirement and the alternatives it does not cover
	AnalysisResult struct {
		Universal    Requirement              `json:"universal_requirement"`
		Alternatives []AlternativeRequirement `json:"alternatives_needed"`
		GuestCount   int                      `json:"total_guests"`
		FullyCovered int                      `json:"fully_covered"`
	}
)

var ErrCoverageMismatch = errors.New(
	"requirement coverage does not match guest count",
)

// IsEmpty returns whether the requirement carries no restrictions and no
// allergens
func (r *Requirement) IsEmpty() bool {
	return len(r.Dietary) == 0 && len(r.Allergens) == 0
}

// HasDietary returns whether the requirement includes the given flag
func (r *Requirement) HasDietary(d Restriction) bool {
	for _, v := range r.Dietary {
		if v == d {
			return true
		}
	}
	return false
}

func (r *Requirement) String() string {
	var sb strings.Builder
	if len(r.Dietary) == 0 {
		sb.WriteString("no dietary restrictions")
	} else {
		for i, d := range r.Dietary {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(string(d))
		}
	}
	if len(r.Allergens) > 0 {
		sb.WriteString(", avoiding ")
		sb.WriteString(strings.Join(r.Allergens, ", "))
	}
	return sb.String()
}

// RequirementCount returns the number of requirement branches the analysis
// produces: the universal requirement plus one per alternative
func (a *AnalysisResult) RequirementCount() int {
	return 1 + len(a.Alternatives)
}

// Validate checks that the alternatives and the fully covered guests account
// for every guest exactly once
func (a *AnalysisResult) Validate() error {
	covered := a.FullyCovered
	for _, alt := range a.Alternatives {
		covered += alt.QuantityNeeded
	}
	if covered != a.GuestCount {
		return ErrCoverageMismatch
	}
	return nil
}

// RequirementArg extracts a requirement from capability arguments, accepting
// either a typed value or a decoded JSON map
func RequirementArg(args Args, name Name) (*Requirement, bool) {
	val, ok := args[name]
	if !ok {
		return nil, false
	}
	switch v := val.(type) {
	case *Requirement:
		return v, true
	case Requirement:
		return &v, true
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, false
		}
		var r Requirement
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, false
		}
		return &r, true
	}
}
