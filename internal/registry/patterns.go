package registry

import "regexp"

// Patterns owns every compiled expression the engine uses. A Patterns value is
// immutable after NewPatterns and safe for concurrent use.
type Patterns struct {
	ownershipMarker     *regexp.Regexp
	ownershipFallback   *regexp.Regexp
	encumbranceMarker   *regexp.Regexp
	encumbranceFallback *regexp.Regexp
	endMarker           *regexp.Regexp
	summaryMarker       *regexp.Regexp
	summaryOwners       *regexp.Regexp
	summaryOwnership    *regexp.Regexp
	summaryEncumbrance  *regexp.Regexp
	summaryEnd          *regexp.Regexp
	noRecords           *regexp.Regexp

	noiseLine  *regexp.Regexp
	rankMarker *regexp.Regexp
	// continuation matches a wrapped line that starts with a short number
	// and then a role label ("12 근저당권자 ..."); it belongs to the entry above.
	continuation *regexp.Regexp
	whitespace   *regexp.Regexp

	cancelKeyword *regexp.Regexp
	rankRef       *regexp.Regexp
	refLead       *regexp.Regexp
	mortgageType  *regexp.Regexp
	lienPledge    *regexp.Regexp
	amendTarget   *regexp.Regexp
	amendVerb     *regexp.Regexp
	nameChange    *regexp.Regexp
	transfer      *regexp.Regexp
	provisional   *regexp.Regexp
	attachment    *regexp.Regexp
	prenotation   *regexp.Regexp

	ceiling       *regexp.Regexp
	claim         *regexp.Regexp
	price         *regexp.Regexp
	date          *regexp.Regexp
	lienHolder    *regexp.Regexp
	claimant      *regexp.Regexp
	owner         *regexp.Regexp
	debtor        *regexp.Regexp
	idNumber      *regexp.Regexp
	shareFraction *regexp.Regexp
	birthPrefix   *regexp.Regexp
	summaryOwner  *regexp.Regexp
	hangulName    *regexp.Regexp

	sale        *regexp.Regexp
	inheritance *regexp.Regexp
	gift        *regexp.Regexp
	preserve    *regexp.Regexp

	address       *regexp.Regexp
	location      *regexp.Regexp
	uniqueNumber  *regexp.Regexp
	exclusiveArea *regexp.Regexp
	area          *regexp.Regexp
	viewedAt      *regexp.Regexp
}

// NewPatterns compiles the pattern library.
func NewPatterns() *Patterns {
	return &Patterns{
		ownershipMarker:     regexp.MustCompile(`【\s*갑\s*구\s*】`),
		ownershipFallback:   regexp.MustCompile(`\(\s*소유권에\s*관한\s*사항\s*\)`),
		encumbranceMarker:   regexp.MustCompile(`【\s*을\s*구\s*】`),
		encumbranceFallback: regexp.MustCompile(`\(?\s*소유권\s*이외의\s*권리에\s*관한\s*사항\s*\)?`),
		endMarker:           regexp.MustCompile(`이\s*하\s*여\s*백|관할\s*등기소`),
		summaryMarker:       regexp.MustCompile(`주요\s*등기사항\s*요약`),
		summaryOwners:       regexp.MustCompile(`1\s*\.\s*소유지분\s*현황`),
		summaryOwnership:    regexp.MustCompile(`2\s*\.\s*소유지분을\s*제외한\s*소유권에\s*관한\s*사항`),
		summaryEncumbrance:  regexp.MustCompile(`3\s*\.\s*\(\s*근\s*\)\s*저당권\s*및\s*전세권\s*등`),
		summaryEnd:          regexp.MustCompile(`\[\s*참\s*고\s*사\s*항\s*\]`),
		noRecords:           regexp.MustCompile(`기록\s*사항\s*없음`),

		noiseLine:    regexp.MustCompile(`(?m)^(?:[ \t]*\[(?:집합건물|건물|토지)\].*|.*열람일시.*|[ \t]*\d+[ \t]*/[ \t]*\d+[ \t]*|[ \t]*순위번호[ \t]+등기목적.*|.*실선으로\s*그어진\s*부분은.*|[ \t]*【[^】]*】.*|[ \t]*\(\s*소유권[^)\n]*사항\s*\)[ \t]*)$`),
		rankMarker:   regexp.MustCompile(`(?m)^[ \t]*(\d{1,4})(?:\((\d{1,3})\))?(?:-(\d{1,3}))?(?:[ \t]|$)`),
		continuation: regexp.MustCompile(`^[ \t]*(?:근저당권자|저당권자|근질권자|질권자|채무자|채권자|소유자|공유자|권리자|가처분권자|채권최고액|청구금액|거래가액)`),
		whitespace:   regexp.MustCompile(`\s+`),

		cancelKeyword: regexp.MustCompile(`말소`),
		rankRef:       regexp.MustCompile(`(\d{1,4})(?:\((\d{1,3})\))?\s*번`),
		refLead:       regexp.MustCompile(`^(?:[\s,，·ㆍ및]*)(?:근저당권|저당권|근질권|질권|가압류|압류|가처분|전세권|지상권|지역권|임차권|소유권|가등기|경매|등기|\d{1,4}(?:\(\d{1,3}\))?\s*번)`),
		mortgageType:  regexp.MustCompile(`(근저당권|저당권|근질권|질권)(?:[^자]|$)`),
		lienPledge:    regexp.MustCompile(`(?:근저당권|저당권)\s*부\s*(?:채권\s*)?(?:근질권|질권)`),
		amendTarget:   regexp.MustCompile(`(\d{1,4})(?:\((\d{1,3})\))?\s*번\s*(?:근저당권|저당권|근질권|질권)`),
		amendVerb:     regexp.MustCompile(`변경|이전|경정`),
		nameChange:    regexp.MustCompile(`표시\s*변경|명의인|성명\s*변경|주소\s*변경|개명|전거`),
		transfer:      regexp.MustCompile(`(?:소유권|지분)(?:일부|전부)?\s*이전|소유권\s*보존`),
		provisional:   regexp.MustCompile(`가압류|가처분`),
		attachment:    regexp.MustCompile(`압류|경매\s*개시\s*결정`),
		prenotation:   regexp.MustCompile(`가등기`),

		ceiling:       regexp.MustCompile(`채권\s*최고액\s*금?\s*([\d,]+)\s*원`),
		claim:         regexp.MustCompile(`청구\s*금액\s*금?\s*([\d,]+)\s*원`),
		price:         regexp.MustCompile(`거래\s*가액\s*금?\s*([\d,]+)\s*원`),
		date:          regexp.MustCompile(`(\d{4})\s*년\s*(\d{1,2})\s*월\s*(\d{1,2})\s*일|(\d{4})\.\s*(\d{1,2})\.\s*(\d{1,2})\.?`),
		lienHolder:    regexp.MustCompile(`근저당권자|저당권자|근질권자|질권자`),
		claimant:      regexp.MustCompile(`가처분권자|채권자|권리자`),
		owner:         regexp.MustCompile(`소유자|공유자`),
		debtor:        regexp.MustCompile(`채무자`),
		idNumber:      regexp.MustCompile(`\d{6}-[\d*]|\d{3}-\d{2}-\d{5}`),
		shareFraction: regexp.MustCompile(`(\d+)\s*분의\s*(\d+)`),
		birthPrefix:   regexp.MustCompile(`(\d{6})-`),
		summaryOwner:  regexp.MustCompile(`([가-힣]{2,})\s*\(\s*(?:소유자|공유자)\s*\)`),
		hangulName:    regexp.MustCompile(`[가-힣]{2,}`),

		sale:        regexp.MustCompile(`매매`),
		inheritance: regexp.MustCompile(`상속`),
		gift:        regexp.MustCompile(`증여`),
		preserve:    regexp.MustCompile(`보존`),

		address:       regexp.MustCompile(`\[(?:집합건물|건물|토지)\][ \t]*([^\n]+)`),
		location:      regexp.MustCompile(`소재지\s*[:：]?[ \t]*([^\n]+)`),
		uniqueNumber:  regexp.MustCompile(`고유번호\s*[:：]?\s*(\d{4}-\d{4}-\d{6})`),
		exclusiveArea: regexp.MustCompile(`전유부분의\s*건물의\s*표시([\s\S]*?)대지권의\s*표시`),
		area:          regexp.MustCompile(`(\d+\.\d+)\s*㎡`),
		viewedAt:      regexp.MustCompile(`열람일시\s*[:：]?\s*(\d{4})\s*년\s*(\d{1,2})\s*월\s*(\d{1,2})\s*일\s*(\d{1,2})\s*시\s*(\d{1,2})\s*분(?:\s*(\d{1,2})\s*초)?`),
	}
}

var provinces = map[string]struct{}{
	"서울": {}, "서울시": {}, "서울특별시": {},
	"부산": {}, "부산시": {}, "부산광역시": {},
	"대구": {}, "대구시": {}, "대구광역시": {},
	"인천": {}, "인천시": {}, "인천광역시": {},
	"광주": {}, "광주광역시": {},
	"대전": {}, "대전시": {}, "대전광역시": {},
	"울산": {}, "울산시": {}, "울산광역시": {},
	"세종": {}, "세종시": {}, "세종특별자치시": {},
	"경기": {}, "경기도": {},
	"강원": {}, "강원도": {}, "강원특별자치도": {},
	"충북": {}, "충청북도": {},
	"충남": {}, "충청남도": {},
	"전북": {}, "전라북도": {}, "전북특별자치도": {},
	"전남": {}, "전라남도": {},
	"경북": {}, "경상북도": {},
	"경남": {}, "경상남도": {},
	"제주": {}, "제주도": {}, "제주특별자치도": {},
}

// stopLabels end a party name when a token starts with one of them.
var stopLabels = []string{
	"근저당권자", "저당권자", "근질권자", "질권자", "채권최고액", "채권자", "채무자",
	"권리자", "가처분권자", "소유자", "공유자", "청구금액", "거래가액", "공동담보",
	"매매목록", "존속기간", "전세금", "범위", "목적", "지분", "주소", "대상소유자",
}

var corporatePrefixes = map[string]struct{}{
	"주식회사": {}, "(주)": {}, "㈜": {}, "유한회사": {}, "유한책임회사": {},
	"합자회사": {}, "합명회사": {}, "사단법인": {}, "재단법인": {}, "농업협동조합": {},
}
