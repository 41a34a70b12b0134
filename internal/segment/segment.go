// Package segment partitions guest dietary records into a universal catering
// requirement and the minority alternatives it does not cover
package segment

import (
	"errors"
	"slices"
	"strings"

	"github.com/kode4food/banquet/internal/util"
	"github.com/kode4food/banquet/pkg/api"
)

type class struct {
	restrictions util.Set[api.Restriction]
	allergens    util.Set[string]
	ordered      []string
	count        int
}

var ErrNoGuests = errors.New("no guest records provided")

// Analyze segments guest dietary records into a universal requirement and
// the alternatives it does not cover. Guests whose full signature is
// contained by the universal requirement are counted as fully covered; the
// rest are grouped by signature, in first occurrence order, with the
// residual of each signature becoming one alternative. Every guest is
// accounted for exactly once
func Analyze(guests []api.GuestRecord) (*api.AnalysisResult, error) {
	if len(guests) == 0 {
		return nil, ErrNoGuests
	}

	threshold := universalThreshold(len(guests))
	universal := universalRequirement(guests, threshold)

	uniRestrict := util.SetOf(universal.Dietary...)
	uniAllergen := util.SetOf(universal.Allergens...)

	res := &api.AnalysisResult{
		Universal:  universal,
		GuestCount: len(guests),
	}

	for _, cl := range partition(guests) {
		if uniRestrict.ContainsAll(cl.restrictions) &&
			uniAllergen.ContainsAll(cl.allergens) {
			res.FullyCovered += cl.count
			continue
		}
		res.Alternatives = append(res.Alternatives,
			api.AlternativeRequirement{
				Requirement:    cl.residual(uniRestrict, uniAllergen),
				QuantityNeeded: cl.count,
			})
	}

	return res, nil
}

// universalThreshold is the minimum number of guests that must share a
// restriction or allergen before it applies to everyone. Small parties get
// a threshold of one
func universalThreshold(n int) int {
	if n <= 3 {
		return 1
	}
	return (3*n + 9) / 10
}

func universalRequirement(
	guests []api.GuestRecord, threshold int,
) api.Requirement {
	restrictions := map[api.Restriction]int{}
	allergens := map[string]int{}
	var seen []string

	for _, g := range guests {
		for _, r := range g.Restrictions() {
			restrictions[r]++
		}
		for _, a := range dedupe(g.Allergens) {
			if _, ok := allergens[a]; !ok {
				seen = append(seen, a)
			}
			allergens[a]++
		}
	}

	var res api.Requirement
	for _, r := range api.KnownRestrictions {
		if restrictions[r] >= threshold {
			res.Dietary = append(res.Dietary, r)
		}
	}
	for _, a := range seen {
		if allergens[a] >= threshold {
			res.Allergens = append(res.Allergens, a)
		}
	}
	return res
}

func partition(guests []api.GuestRecord) []*class {
	var classes []*class
	index := map[string]*class{}

	for _, g := range guests {
		allergens := dedupe(g.Allergens)
		key := signatureKey(&g, allergens)
		cl, ok := index[key]
		if !ok {
			cl = &class{
				restrictions: util.SetOf(g.Restrictions()...),
				allergens:    util.SetOf(allergens...),
				ordered:      allergens,
			}
			index[key] = cl
			classes = append(classes, cl)
		}
		cl.count++
	}
	return classes
}

// signatureKey builds a canonical key for a guest's full signature. Unit
// separators keep multi-word allergens from colliding
func signatureKey(g *api.GuestRecord, allergens []string) string {
	sorted := slices.Clone(allergens)
	slices.Sort(sorted)

	var sb strings.Builder
	for _, r := range g.Restrictions() {
		sb.WriteString(string(r))
		sb.WriteByte(0x1f)
	}
	sb.WriteByte(0x1e)
	for _, a := range sorted {
		sb.WriteString(a)
		sb.WriteByte(0x1f)
	}
	return sb.String()
}

func (c *class) residual(
	restrictions util.Set[api.Restriction], allergens util.Set[string],
) api.Requirement {
	var res api.Requirement
	for _, r := range api.KnownRestrictions {
		if c.restrictions.Contains(r) && !restrictions.Contains(r) {
			res.Dietary = append(res.Dietary, r)
		}
	}
	for _, a := range c.ordered {
		if !allergens.Contains(a) {
			res.Allergens = append(res.Allergens, a)
		}
	}
	return res
}

func dedupe(items []string) []string {
	seen := util.SetOf[string]()
	var res []string
	for _, s := range items {
		if seen.Contains(s) {
			continue
		}
		seen.Add(s)
		res = append(res, s)
	}
	return res
}
