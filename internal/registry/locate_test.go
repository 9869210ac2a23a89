package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateSectionsPrimaryMarkers(t *testing.T) {
	p := NewPatterns()
	doc := buildDocument(preservationLine, mortgageRank2)

	sections := p.LocateSections(doc)

	require.True(t, sections.OwnershipFound)
	require.True(t, sections.EncumbranceFound)
	assert.False(t, sections.SummaryFound)
	assert.Contains(t, sections.Ownership, "소유권보존")
	assert.NotContains(t, sections.Ownership, "근저당권설정")
	assert.Contains(t, sections.Encumbrance, "근저당권설정")
	assert.NotContains(t, sections.Encumbrance, "관할등기소")
}

func TestLocateSectionsFallbackMarkers(t *testing.T) {
	p := NewPatterns()
	doc := "표제부 내용\n( 소유권에 관한 사항 )\n" + preservationLine +
		"( 소유권 이외의 권리에 관한 사항 )\n" + mortgageRank2 + "이하여백\n"

	sections := p.LocateSections(doc)

	require.True(t, sections.OwnershipFound)
	require.True(t, sections.EncumbranceFound)
	assert.Contains(t, sections.Ownership, "소유권보존")
	assert.NotContains(t, sections.Ownership, "근저당권")
	assert.Contains(t, sections.Encumbrance, "근저당권설정")
}

func TestLocateSectionsMissingEncumbrance(t *testing.T) {
	p := NewPatterns()
	doc := documentHeader + ownershipHeader + preservationLine + documentFooter

	sections := p.LocateSections(doc)

	assert.True(t, sections.OwnershipFound)
	assert.False(t, sections.EncumbranceFound)
	assert.Empty(t, sections.Encumbrance)
	assert.NotContains(t, sections.Ownership, "관할등기소")
}

func TestLocateSummaryTables(t *testing.T) {
	p := NewPatterns()
	doc := buildDocument(preservationLine, mortgageRank2) + strings.Join([]string{
		"주요 등기사항 요약 (참고용)",
		"1. 소유지분현황 ( 갑구 )",
		"홍길동 (소유자) 800101-******* 단독소유 서울특별시 강남구 2",
		"2. 소유지분을 제외한 소유권에 관한 사항 ( 갑구 )",
		"- 기록사항 없음",
		"3. (근)저당권 및 전세권 등 ( 을구 )",
		"2 근저당권설정 2019년5월1일 제20002호 채권최고액 금50,000,000원 근저당권자 주식회사 에이은행 홍길동",
		"[ 참 고 사 항 ]",
		"가. 1. 소유지분현황 문구는 요약 대상이 아닙니다.",
	}, "\n")

	sections := p.LocateSections(doc)

	require.True(t, sections.SummaryFound)
	assert.NotContains(t, sections.Encumbrance, "주요 등기사항")
	assert.True(t, sections.SummaryOwners.Found)
	assert.Contains(t, sections.SummaryOwners.Text, "홍길동 (소유자)")
	assert.True(t, sections.SummaryOwnership.Found)
	assert.Empty(t, sections.SummaryOwnership.Text)
	assert.True(t, sections.SummaryEncumbrance.Found)
	assert.Contains(t, sections.SummaryEncumbrance.Text, "채권최고액")
	assert.NotContains(t, sections.SummaryEncumbrance.Text, "참 고")
}

func TestSegmentMarkers(t *testing.T) {
	p := NewPatterns()
	section := strings.Join([]string{
		"【 을 구 】 ( 소유권 이외의 권리에 관한 사항 )",
		"순위번호 등기목적 접수 등기원인 권리자 및 기타사항",
		"1 근저당권설정 2019년5월1일",
		"채권최고액 금50,000,000원",
		"1-1 1번근저당권변경 2020년1월1일",
		"2(1) 근저당권설정 2021년1월1일",
		"12(3)-4 12(3)번근저당권변경",
		"800101-1234567 홍길동",
	}, "\n")

	seg := p.Segment(section)

	require.Len(t, seg.Blocks, 4)
	assert.Equal(t, RankKey{Main: 1}, seg.Blocks[0].Rank)
	assert.Equal(t, "1 근저당권설정 2019년5월1일 채권최고액 금50,000,000원", seg.Blocks[0].Text)
	assert.Equal(t, "근저당권설정 2019년5월1일 채권최고액 금50,000,000원", seg.Blocks[0].Body)
	assert.Equal(t, 1, seg.Blocks[1].AmendmentSeq)
	assert.Equal(t, RankKey{Main: 2, Variant: 1}, seg.Blocks[2].Rank)
	assert.Equal(t, RankKey{Main: 12, Variant: 3}, seg.Blocks[3].Rank)
	assert.Equal(t, 4, seg.Blocks[3].AmendmentSeq)
	assert.Contains(t, seg.Blocks[3].Text, "800101-1234567 홍길동")

	for _, b := range seg.Blocks {
		assert.True(t, strings.HasPrefix(seg.Text[b.Span.Start:], strings.Fields(b.Text)[0]))
	}
}

func TestSegmentKeepsWrappedRoleLines(t *testing.T) {
	p := NewPatterns()
	section := "2 근저당권설정 2019년5월1일 채권최고액 금50,000,000원 채무자 홍길동 서울특별시 강남구 테헤란로\n" +
		" 12 근저당권자 주식회사 에이은행 110111-0000001\n" +
		"3 2번근저당권설정등기말소 2020년1월2일\n"

	seg := p.Segment(section)

	require.Len(t, seg.Blocks, 2)
	assert.Equal(t, RankKey{Main: 2}, seg.Blocks[0].Rank)
	assert.Contains(t, seg.Blocks[0].Text, "테헤란로 12 근저당권자 주식회사 에이은행")
	assert.Equal(t, RankKey{Main: 3}, seg.Blocks[1].Rank)
}

func TestNormalizeText(t *testing.T) {
	got := NormalizeText("1 근저당권\r\n\ufeff2\u3000말소\r3\u200b")

	assert.Equal(t, "1 근저당권\n2 말소\n3", got)
}
