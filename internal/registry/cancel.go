package registry

import "fmt"

// CancellationSet holds every rank nullified by a cancellation entry. A bare
// main rank covers all of its variants.
type CancellationSet struct {
	mains map[int]struct{}
	exact map[RankKey]struct{}
}

// Contains reports whether the key is cancelled, either exactly or through its
// main rank.
func (c CancellationSet) Contains(k RankKey) bool {
	if _, ok := c.mains[k.Main]; ok {
		return true
	}
	_, ok := c.exact[k]
	return ok
}

// Len returns the number of distinct references in the set.
func (c CancellationSet) Len() int {
	return len(c.mains) + len(c.exact)
}

// ResolveCancellations unions the references of every cancellation entry.
// References to ranks that no other entry in the section carries are dropped.
func ResolveCancellations(entries []Entry) (CancellationSet, []Diagnostic) {
	set := CancellationSet{
		mains: make(map[int]struct{}),
		exact: make(map[RankKey]struct{}),
	}
	present := make(map[int]struct{})
	for _, e := range entries {
		if e.Kind != KindCancellation {
			present[e.Rank.Main] = struct{}{}
		}
	}

	var diags diagnostics
	for _, e := range entries {
		if e.Kind != KindCancellation {
			continue
		}
		for _, ref := range e.References {
			if _, ok := present[ref.Main]; !ok {
				diags.add(DiagAmbiguousTarget, "", e.Rank.String(),
					fmt.Sprintf("cancellation references rank %d which is not registered", ref.Main))
				continue
			}
			if ref.HasVariant {
				set.exact[ref.Key()] = struct{}{}
			} else {
				set.mains[ref.Main] = struct{}{}
			}
		}
	}
	return set, diags
}
