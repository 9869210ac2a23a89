package registry

import "fmt"

// Override is the accumulated effect of amendments on one right.
type Override struct {
	Ceiling  *uint64
	Creditor string
	// Applied counts the amendments folded into this value.
	Applied int
}

func (o Override) apply(e Entry) Override {
	next := o
	if e.Ceiling != nil {
		next.Ceiling = u64(*e.Ceiling)
	}
	if e.Creditor != "" {
		next.Creditor = e.Creditor
	}
	next.Applied++
	return next
}

// FoldAmendments reduces amendment entries, in document order, to one override
// per target rank. Later amendments win field by field. Amendments aimed at
// cancelled or unregistered ranks are discarded.
func FoldAmendments(entries []Entry, cancelled CancellationSet) (map[RankKey]Override, []Diagnostic) {
	registered := make(map[RankKey]struct{})
	byMain := make(map[int][]RankKey)
	for _, e := range entries {
		if e.Kind != KindRegistration {
			continue
		}
		if _, dup := registered[e.Rank]; dup {
			continue
		}
		registered[e.Rank] = struct{}{}
		byMain[e.Rank.Main] = append(byMain[e.Rank.Main], e.Rank)
	}

	var diags diagnostics
	resolve := func(e Entry) (RankKey, bool) {
		target := e.Rank
		if e.Target != nil {
			target = *e.Target
		}
		if _, ok := registered[target]; ok {
			return target, true
		}
		if target.Variant == 0 && len(byMain[target.Main]) == 1 {
			return byMain[target.Main][0], true
		}
		diags.add(DiagAmbiguousTarget, "", e.Rank.String(),
			fmt.Sprintf("amendment targets rank %s which has no single registration", target))
		return RankKey{}, false
	}

	overrides := make(map[RankKey]Override)
	for _, e := range entries {
		if e.Kind != KindAmendment {
			continue
		}
		target, ok := resolve(e)
		if !ok || cancelled.Contains(target) {
			continue
		}
		overrides[target] = overrides[target].apply(e)
	}
	return overrides, diags
}
