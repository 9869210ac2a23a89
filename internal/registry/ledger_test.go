package registry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registration(main, variant int, ceiling uint64, creditor string) Entry {
	return Entry{
		Rank:      RankKey{Main: main, Variant: variant},
		Kind:      KindRegistration,
		RightType: "근저당권",
		Ceiling:   u64(ceiling),
		Creditor:  creditor,
	}
}

func amendment(own int, target RankKey, ceiling uint64) Entry {
	return Entry{
		Rank:         RankKey{Main: own},
		AmendmentSeq: 1,
		Kind:         KindAmendment,
		RightType:    "근저당권",
		Ceiling:      u64(ceiling),
		Target:       &target,
	}
}

func cancellation(own int, refs ...RankRef) Entry {
	return Entry{Rank: RankKey{Main: own}, Kind: KindCancellation, RightType: "말소", References: refs}
}

func transfer(main int, date string, reason TransferReason) Entry {
	return Entry{Rank: RankKey{Main: main}, Kind: KindOwnershipTransfer, RightType: "소유권", Date: date, Reason: reason}
}

func rankSet(rights []ReconstructedRight) []RankKey {
	keys := make([]RankKey, 0, len(rights))
	for _, r := range rights {
		keys = append(keys, r.Rank)
	}
	return keys
}

func TestReconstructWithoutCancellationsKeepsEveryRegistration(t *testing.T) {
	entries := []Entry{
		registration(5, 0, 10, "c"),
		registration(2, 0, 10, "a"),
		registration(2, 1, 10, "b"),
		registration(3, 0, 10, "d"),
		registration(2, 0, 99, "duplicate"),
	}

	rights, cancelled, diags := Reconstruct(entries, isLien)

	assert.Empty(t, diags)
	assert.Equal(t, 0, cancelled.Len())
	want := []RankKey{{Main: 2}, {Main: 2, Variant: 1}, {Main: 3}, {Main: 5}}
	if diff := cmp.Diff(want, rankSet(rights)); diff != "" {
		t.Fatalf("ranks mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "a", rights[0].Creditor, "first occurrence of a rank wins")
}

func TestReconstructExcludesCancelledRanks(t *testing.T) {
	entries := []Entry{
		registration(2, 0, 10, "a"),
		registration(2, 1, 10, "b"),
		registration(3, 0, 10, "c"),
		registration(3, 1, 10, "d"),
		registration(4, 0, 10, "e"),
		cancellation(6, RankRef{Main: 2}),
		cancellation(7, RankRef{Main: 3, Variant: 1, HasVariant: true}),
	}

	rights, cancelled, _ := Reconstruct(entries, isLien)

	for _, r := range rights {
		assert.False(t, cancelled.Contains(r.Rank), "rank %s survived cancellation", r.Rank)
	}
	assert.Equal(t, []RankKey{{Main: 3}, {Main: 4}}, rankSet(rights))
	assert.Equal(t, 2, cancelled.Len())
	assert.True(t, cancelled.Contains(RankKey{Main: 2, Variant: 1}))
	assert.False(t, cancelled.Contains(RankKey{Main: 3}))
}

func TestCancellationOfUnknownRankIsDropped(t *testing.T) {
	entries := []Entry{
		registration(2, 0, 10, "a"),
		cancellation(3, RankRef{Main: 9}),
	}

	set, diags := ResolveCancellations(entries)

	assert.Equal(t, 0, set.Len())
	require.Len(t, diags, 1)
	assert.Equal(t, DiagAmbiguousTarget, diags[0].Code)
	assert.Equal(t, "3", diags[0].Rank)
}

func TestCancellationSurvivesReregistration(t *testing.T) {
	entries := []Entry{
		registration(2, 0, 10, "a"),
		cancellation(3, RankRef{Main: 2}),
		registration(2, 0, 20, "reused"),
	}

	rights, _, _ := Reconstruct(entries, isLien)

	assert.Empty(t, rights)
}

func TestFoldAmendmentsLastValueWins(t *testing.T) {
	entries := []Entry{
		registration(2, 0, 50, "a"),
		amendment(6, RankKey{Main: 2}, 80),
		amendment(7, RankKey{Main: 2}, 70),
		{Rank: RankKey{Main: 8}, AmendmentSeq: 1, Kind: KindAmendment, Creditor: "b", Target: &RankKey{Main: 2}},
	}

	overrides, diags := FoldAmendments(entries, CancellationSet{})

	assert.Empty(t, diags)
	o := overrides[RankKey{Main: 2}]
	require.NotNil(t, o.Ceiling)
	assert.Equal(t, uint64(70), *o.Ceiling)
	assert.Equal(t, "b", o.Creditor)
	assert.Equal(t, 3, o.Applied)
}

func TestFoldAmendmentsIsIdempotentUnderRepetition(t *testing.T) {
	once := []Entry{registration(2, 0, 50, "a"), amendment(6, RankKey{Main: 2}, 80)}
	twice := append(append([]Entry{}, once...), amendment(6, RankKey{Main: 2}, 80))

	a, _, _ := Reconstruct(once, isLien)
	b, _, _ := Reconstruct(twice, isLien)

	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("repeated amendment changed the result (-once +twice):\n%s", diff)
	}
	assert.Equal(t, uint64(80), *b[0].Ceiling)
}

func TestFoldAmendmentsSkipsCancelledAndUnknownTargets(t *testing.T) {
	entries := []Entry{
		registration(2, 0, 50, "a"),
		registration(4, 1, 50, "b"),
		cancellation(5, RankRef{Main: 2}),
		amendment(6, RankKey{Main: 2}, 80),
		amendment(7, RankKey{Main: 9}, 80),
		amendment(8, RankKey{Main: 4}, 90),
	}
	cancelled, _ := ResolveCancellations(entries)

	overrides, diags := FoldAmendments(entries, cancelled)

	_, touched := overrides[RankKey{Main: 2}]
	assert.False(t, touched, "cancelled right must not be amended")
	require.Len(t, diags, 1)
	assert.Equal(t, DiagAmbiguousTarget, diags[0].Code)

	o, ok := overrides[RankKey{Main: 4, Variant: 1}]
	require.True(t, ok, "bare main resolves to its only variant")
	assert.Equal(t, uint64(90), *o.Ceiling)
}

func TestSelectTransferPicksGreatestRank(t *testing.T) {
	entries := []Entry{
		transfer(3, "2015-03-02", ReasonOriginalRegistration),
		transfer(5, "2019-05-01", ReasonSale),
		{Rank: RankKey{Main: 7}, Kind: KindNameChange},
	}

	got, ok := SelectTransfer(entries, CancellationSet{})
	require.True(t, ok)
	assert.Equal(t, RankKey{Main: 5}, got.Rank)

	lower := append(append([]Entry{}, entries...), transfer(4, "2017-01-01", ReasonGift))
	again, ok := SelectTransfer(lower, CancellationSet{})
	require.True(t, ok)
	assert.Equal(t, got, again, "a lower rank never changes the selection")
}

func TestSelectTransferSkipsCancelled(t *testing.T) {
	entries := []Entry{
		transfer(3, "2015-03-02", ReasonOriginalRegistration),
		transfer(5, "2019-05-01", ReasonSale),
		cancellation(6, RankRef{Main: 5}),
	}
	cancelled, _ := ResolveCancellations(entries)

	got, ok := SelectTransfer(entries, cancelled)

	require.True(t, ok)
	assert.Equal(t, RankKey{Main: 3}, got.Rank)

	_, ok = SelectTransfer(nil, CancellationSet{})
	assert.False(t, ok)
}

func TestTransferRecordDropsPriceUnlessSale(t *testing.T) {
	e := transfer(4, "2020-01-01", ReasonGift)
	e.Price = u64(100)

	rec := transferRecord(e, []ownerLine{{name: "김영희"}})

	assert.Nil(t, rec.Price)
	assert.Equal(t, []string{"김영희"}, rec.Grantees)

	rec = transferRecord(Entry{Rank: RankKey{Main: 1}}, nil)
	assert.Equal(t, ReasonUnknown, rec.Reason)
}
