package api

import "encoding/json"

type (
	// GuestRecord captures one guest's dietary needs as collected at intake.
	// Absent flags and allergens default to false and empty
	GuestRecord struct {
		Name       string   `json:"name,omitempty"`
		Vegan      bool     `json:"is_vegan"`
		Vegetarian bool     `json:"is_vegetarian"`
		GlutenFree bool     `json:"is_gluten_free"`
		DairyFree  bool     `json:"is_dairy_free"`
		Allergens  []string `json:"allergens,omitempty"`
	}

	// Restriction is a single dietary restriction flag
	Restriction string
)

const (
	Vegan      Restriction = "vegan"
	Vegetarian Restriction = "vegetarian"
	GlutenFree Restriction = "gluten_free"
	DairyFree  Restriction = "dairy_free"
)

// KnownRestrictions lists the restriction flags in canonical order
var KnownRestrictions = []Restriction{Vegan, Vegetarian, GlutenFree, DairyFree}

// Restrictions returns the restriction flags set on the guest record, in
// canonical order
func (g *GuestRecord) Restrictions() []Restriction {
	var res []Restriction
	for _, r := range KnownRestrictions {
		if g.HasRestriction(r) {
			res = append(res, r)
		}
	}
	return res
}

// HasRestriction returns whether the guest record carries the given flag
func (g *GuestRecord) HasRestriction(r Restriction) bool {
	switch r {
	case Vegan:
		return g.Vegan
	case Vegetarian:
		return g.Vegetarian
	case GlutenFree:
		return g.GlutenFree
	case DairyFree:
		return g.DairyFree
	default:
		return false
	}
}

// GuestsArg extracts a guest list from capability arguments, accepting either
// a typed slice or its decoded JSON form
func GuestsArg(args Args, name Name) ([]GuestRecord, bool) {
	val, ok := args[name]
	if !ok {
		return nil, false
	}
	if guests, ok := val.([]GuestRecord); ok {
		return guests, true
	}
	data, err := json.Marshal(val)
	if err != nil {
		return nil, false
	}
	var res []GuestRecord
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, false
	}
	return res, true
}
