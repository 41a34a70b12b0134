package helpers

import "github.com/kode4food/banquet/pkg/api"

// NewGuest creates a guest record with no restrictions
func NewGuest(name string) api.GuestRecord {
	return api.GuestRecord{Name: name}
}

// NewVeganGuest creates a vegan guest record
func NewVeganGuest(name string) api.GuestRecord {
	return api.GuestRecord{Name: name, Vegan: true}
}

// NewVegetarianGuest creates a vegetarian guest record
func NewVegetarianGuest(name string) api.GuestRecord {
	return api.GuestRecord{Name: name, Vegetarian: true}
}

// NewAllergicGuest creates a guest record carrying allergens
func NewAllergicGuest(name string, allergens ...string) api.GuestRecord {
	return api.GuestRecord{Name: name, Allergens: allergens}
}

// NewVeganParty creates a party of n vegan guests
func NewVeganParty(n int) []api.GuestRecord {
	res := make([]api.GuestRecord, n)
	for i := range res {
		res[i] = api.GuestRecord{Vegan: true}
	}
	return res
}

// NewRequirement creates a requirement from dietary restriction flags
func NewRequirement(dietary ...api.Restriction) api.Requirement {
	return api.Requirement{Dietary: dietary}
}

// NewAllergenRequirement creates a requirement that only avoids allergens
func NewAllergenRequirement(allergens ...string) api.Requirement {
	return api.Requirement{Allergens: allergens}
}

// NewAlternative pairs a requirement with the servings it must cover
func NewAlternative(
	quantity int, r api.Requirement,
) api.AlternativeRequirement {
	return api.AlternativeRequirement{
		Requirement:    r,
		QuantityNeeded: quantity,
	}
}

// NewAnalysis builds an internally consistent analysis result for total
// guests, deriving the fully covered count from the alternatives
func NewAnalysis(
	total int, universal api.Requirement,
	alts ...api.AlternativeRequirement,
) *api.AnalysisResult {
	covered := total
	for _, alt := range alts {
		covered -= alt.QuantityNeeded
	}
	return &api.AnalysisResult{
		Universal:    universal,
		Alternatives: alts,
		GuestCount:   total,
		FullyCovered: covered,
	}
}
