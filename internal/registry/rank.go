// Package registry reconstructs the current state of a Korean property register
// (등기부등본) from its extracted text. The register is an append-only log of
// registrations, amendments and cancellations; the engine replays that log.
package registry

import (
	"sort"
	"strconv"
)

// RankKey identifies one registered right by its rank number (순위번호) and an
// optional parenthetical variant, e.g. the "(1)" in "2(1)". Variant 0 means none.
type RankKey struct {
	Main    int `json:"main"`
	Variant int `json:"variant,omitempty"`
}

// Less orders keys by (Main, Variant).
func (k RankKey) Less(other RankKey) bool {
	if k.Main != other.Main {
		return k.Main < other.Main
	}
	return k.Variant < other.Variant
}

func (k RankKey) String() string {
	if k.Variant == 0 {
		return strconv.Itoa(k.Main)
	}
	return strconv.Itoa(k.Main) + "(" + strconv.Itoa(k.Variant) + ")"
}

// RankRef is a rank referenced from another entry's text. A ref without a
// variant ("2번") covers every variant of the main rank.
type RankRef struct {
	Main       int  `json:"main"`
	Variant    int  `json:"variant,omitempty"`
	HasVariant bool `json:"hasVariant,omitempty"`
}

// Key returns the exact key the ref names.
func (r RankRef) Key() RankKey {
	return RankKey{Main: r.Main, Variant: r.Variant}
}

func sortRights(rights []ReconstructedRight) {
	sort.SliceStable(rights, func(i, j int) bool {
		return rights[i].Rank.Less(rights[j].Rank)
	})
}
