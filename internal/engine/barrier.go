package engine

// barrier is the counting join at the end of a run. It is armed once with
// the branch count fixed at analysis time, collects one result per branch,
// and fires exactly once when the final branch arrives. The owning run
// actor is its only caller, so no locking is needed
type barrier struct {
	results map[int]string
	order   []int
	need    int
	fired   bool
}

func newBarrier() *barrier {
	return &barrier{results: map[int]string{}}
}

// arm fixes the number of branch arrivals required before firing
func (b *barrier) arm(need int) {
	b.need = need
}

// arrive records one branch result, returning the collected results in
// arrival order when the final branch lands. Repeat arrivals for a branch
// and arrivals after firing are ignored
func (b *barrier) arrive(branch int, result string) ([]string, bool) {
	if b.fired {
		return nil, false
	}
	if _, ok := b.results[branch]; !ok {
		b.results[branch] = result
		b.order = append(b.order, branch)
	}
	if b.need == 0 || len(b.results) < b.need {
		return nil, false
	}
	b.fired = true
	res := make([]string, 0, len(b.order))
	for _, br := range b.order {
		res = append(res, b.results[br])
	}
	return res, true
}

// pending returns how many arrivals are still outstanding
func (b *barrier) pending() int {
	return b.need - len(b.results)
}
