package registry

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shareSum(shares []OwnerShare) *big.Rat {
	sum := new(big.Rat)
	for _, s := range shares {
		sum.Add(sum, big.NewRat(s.Numerator, s.Denominator))
	}
	return sum
}

func TestAllocateSharesEqualSplit(t *testing.T) {
	for k := 1; k <= 7; k++ {
		lines := make([]ownerLine, k)
		for i := range lines {
			lines[i] = ownerLine{name: string(rune('가' + i))}
		}

		shares, diags := allocateShares(lines)

		assert.Empty(t, diags)
		require.Len(t, shares, k)
		assert.Equal(t, 0, shareSum(shares).Cmp(big.NewRat(1, 1)), "k=%d", k)
		for _, s := range shares {
			assert.False(t, s.Explicit)
			assert.Equal(t, int64(k), s.Denominator)
		}
	}
}

func TestAllocateSharesSplitsRemainder(t *testing.T) {
	shares, diags := allocateShares([]ownerLine{
		{name: "홍길동", num: 1, den: 2, explicit: true},
		{name: "김영희"},
		{name: "김철수"},
	})

	assert.Empty(t, diags)
	require.Len(t, shares, 3)
	assert.Equal(t, OwnerShare{Name: "홍길동", Numerator: 1, Denominator: 2, Explicit: true}, shares[0])
	assert.Equal(t, int64(1), shares[1].Numerator)
	assert.Equal(t, int64(4), shares[1].Denominator)
	assert.Equal(t, 0, shareSum(shares).Cmp(big.NewRat(1, 1)))
}

func TestAllocateSharesFlagsOverAllocation(t *testing.T) {
	shares, diags := allocateShares([]ownerLine{
		{name: "홍길동", num: 1, den: 1, explicit: true},
		{name: "김영희"},
	})

	require.Len(t, diags, 1)
	assert.Equal(t, DiagShareRemainderMismatch, diags[0].Code)
	assert.Equal(t, int64(2), shares[1].Denominator)
}

func TestAllocateSharesWithLargeCoprimeDenominators(t *testing.T) {
	lines := []ownerLine{
		{name: "김영희", num: 1, den: 10000019, explicit: true},
		{name: "김철수", num: 1, den: 10000079, explicit: true},
		{name: "박민수", num: 1, den: 10000103, explicit: true},
		{name: "이영수"},
	}

	shares, diags := allocateShares(lines)

	require.Len(t, shares, 4)
	want := big.NewRat(1, 1)
	for _, l := range lines[:3] {
		want.Sub(want, big.NewRat(l.num, l.den))
	}
	wantF, _ := want.Float64()
	got, _ := big.NewRat(shares[3].Numerator, shares[3].Denominator).Float64()
	assert.InDelta(t, wantF, got, 1e-11)
	assert.Greater(t, got, 0.9999997)

	require.Len(t, diags, 1)
	assert.Equal(t, DiagShareRemainderMismatch, diags[0].Code)
	assert.Contains(t, diags[0].Message, "rounded")
}

func TestAllocateSharesEmpty(t *testing.T) {
	shares, diags := allocateShares(nil)

	assert.NotNil(t, shares)
	assert.Empty(t, shares)
	assert.Empty(t, diags)
}

func TestTransferOwnersReadsCoOwners(t *testing.T) {
	p := NewPatterns()
	body := "홍길동지분전부이전 2021년1월1일 제100호 2020년12월1일 매매 공유자 지분 3분의 2 김영희 820202-******* 서울특별시 강남구 테헤란로 1 지분 3분의 1 김철수 850505-******* 서울특별시 서초구 반포대로 2 거래가액 금900,000,000원"

	lines := p.transferOwners(body)

	require.Len(t, lines, 2)
	assert.Equal(t, ownerLine{name: "김영희", birth: "820202", num: 2, den: 3, explicit: true}, lines[0])
	assert.Equal(t, ownerLine{name: "김철수", birth: "850505", num: 1, den: 3, explicit: true}, lines[1])
}

func TestTransferOwnersWithoutIDs(t *testing.T) {
	p := NewPatterns()

	lines := p.transferOwners("소유권이전 2021년1월1일 상속 소유자 홍길동 서울특별시 강남구")

	require.Len(t, lines, 1)
	assert.Equal(t, "홍길동", lines[0].name)
	assert.Nil(t, p.transferOwners("소유권이전 2021년1월1일 상속"))
}

func TestSummaryOwnersDedupes(t *testing.T) {
	p := NewPatterns()
	text := "홍길동 (소유자) 800101-******* 단독소유 서울특별시 강남구 2\n홍길동 (소유자) 800101-******* 단독소유 서울특별시 강남구 2\n"

	lines := p.readSummaryOwners(text)

	require.Len(t, lines, 1)
	assert.Equal(t, "800101", lines[0].birth)
	assert.False(t, lines[0].explicit)
}

func TestOwnerSharePercent(t *testing.T) {
	assert.Equal(t, 33.3, OwnerShare{Numerator: 1, Denominator: 3}.Percent())
	assert.Equal(t, 66.7, OwnerShare{Numerator: 2, Denominator: 3}.Percent())
	assert.Equal(t, 0.0, OwnerShare{}.Percent())
}

func TestOwnerSharesPrefersSummaryListing(t *testing.T) {
	p := NewPatterns()
	listing := "김영희 (공유자) 820202-******* 2분의 1 서울특별시 강남구\n김철수 (공유자) 850505-******* 2분의 1 서울특별시 서초구\n"
	transfer := "소유권이전 2021년1월1일 매매 소유자 홍길동 800101-******* 서울특별시 강남구"

	shares, source, diags := p.OwnerShares(listing, transfer)

	assert.Empty(t, diags)
	assert.Equal(t, SourceSummary, source)
	require.Len(t, shares, 2)
	assert.Equal(t, "김영희", shares[0].Name)
	assert.Equal(t, 0, shareSum(shares).Cmp(big.NewRat(1, 1)))
}

func TestOwnerSharesFallsBackToTransfer(t *testing.T) {
	p := NewPatterns()

	shares, source, _ := p.OwnerShares("", "소유권이전 2021년1월1일 매매 소유자 홍길동 800101-******* 서울특별시 강남구")

	assert.Equal(t, SourceSections, source)
	require.Len(t, shares, 1)
	assert.Equal(t, OwnerShare{Name: "홍길동", BirthPrefix: "800101", Numerator: 1, Denominator: 1}, shares[0])

	shares, source, _ = p.OwnerShares("기록사항 없음", "")
	assert.Equal(t, SourceNone, source)
	assert.Empty(t, shares)
}
