package generator

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// ExpectedRight is a right the engine should report as still in force.
type ExpectedRight struct {
	Rank      int    `json:"rank"`
	RightType string `json:"rightType"`
	Amount    uint64 `json:"amount"`
	Creditor  string `json:"creditor"`
	Debtor    string `json:"debtor,omitempty"`
}

// Expectation is the reconstruction a generated document was built to yield.
type Expectation struct {
	UniqueNumber string          `json:"uniqueNumber"`
	Address      string          `json:"address"`
	Liens        []ExpectedRight `json:"liens"`
	Attachments  []ExpectedRight `json:"attachments"`
	TransferRank int             `json:"transferRank"`
	SalePrice    uint64          `json:"salePrice"`
	Owner        string          `json:"owner"`
	OwnerBirth   string          `json:"ownerBirth"`
	TotalCeiling uint64          `json:"totalCeiling"`
}

// Document is one synthetic register printout.
type Document struct {
	Name     string      `json:"name"`
	Text     string      `json:"-"`
	Expected Expectation `json:"expected"`
}

// Dataset contains the generated documents.
type Dataset struct {
	Seed      int64      `json:"seed"`
	Documents []Document `json:"documents"`
}

// Generator produces register text whose reconstruction is known up front.
type Generator struct {
	cfg   Config
	rand  *rand.Rand
	names nameFragments
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.NumDocuments <= 0 {
		cfg.NumDocuments = def.NumDocuments
	}
	if cfg.MaxSales <= 0 {
		cfg.MaxSales = def.MaxSales
	}
	if cfg.MaxMortgages <= 0 {
		cfg.MaxMortgages = def.MaxMortgages
	}
	if cfg.MaxAttachments <= 0 {
		cfg.MaxAttachments = def.MaxAttachments
	}
	if cfg.AmendChance <= 0 {
		cfg.AmendChance = def.AmendChance
	}
	if cfg.CancelChance <= 0 {
		cfg.CancelChance = def.CancelChance
	}
	if cfg.AttachmentChance <= 0 {
		cfg.AttachmentChance = def.AttachmentChance
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:   cfg,
		rand:  rand.New(rand.NewSource(cfg.Seed)),
		names: defaultNameFragments(),
	}
}

// Generate synthesises the configured number of documents. It respects
// context cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	docs := make([]Document, 0, g.cfg.NumDocuments)
	for i := 0; i < g.cfg.NumDocuments; i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		docs = append(docs, g.document(i+1))
	}
	return Dataset{Seed: g.cfg.Seed, Documents: docs}, nil
}

type person struct {
	name    string
	birth   string
	address string
}

type mortgage struct {
	rank      int
	ceiling   uint64
	creditor  string
	cancelled bool
}

func (g *Generator) document(n int) Document {
	var (
		b   strings.Builder
		exp = Expectation{
			Liens:       make([]ExpectedRight, 0),
			Attachments: make([]ExpectedRight, 0),
		}
		day = time.Date(2008+g.rand.Intn(6), time.Month(1+g.rand.Intn(12)), 1+g.rand.Intn(28), 0, 0, 0, 0, time.UTC)
	)

	exp.Address = g.randomAddress()
	exp.UniqueNumber = fmt.Sprintf("%04d-%04d-%06d", 1100+g.rand.Intn(100), day.Year(), n)
	g.writeHeader(&b, exp, day)

	// 갑구: preservation, sales, then provisional attachments and their cancellations.
	b.WriteString("【 갑 구 】 ( 소유권에 관한 사항 )\n")
	b.WriteString("순위번호 등기목적 접수 등기원인 권리자 및 기타사항\n")
	builder := g.pick(g.names.builders)
	fmt.Fprintf(&b, "1 소유권보존 %s 제%d호 소유자 %s %s %s\n",
		koreanDate(day), g.receipt(), builder, corporateNumber(g.rand), g.randomStreetAddress())

	rank := 1
	var owner person
	for sales := 1 + g.rand.Intn(g.cfg.MaxSales); sales > 0; sales-- {
		rank++
		day = g.advance(day, 90, 900)
		owner = g.randomPerson()
		price := uint64(100+g.rand.Intn(1400)) * 1_000_000
		fmt.Fprintf(&b, "%d 소유권이전 %s 제%d호 %s 매매 소유자 %s %s-******* %s 거래가액 금%s원\n",
			rank, koreanDate(day), g.receipt(), koreanDate(day.AddDate(0, 0, -g.rand.Intn(30))),
			owner.name, owner.birth, owner.address, formatWon(price))
		exp.TransferRank = rank
		exp.SalePrice = price
	}
	exp.Owner = owner.name
	exp.OwnerBirth = owner.birth

	var attachments []ExpectedRight
	if g.rand.Float64() < g.cfg.AttachmentChance {
		for count := 1 + g.rand.Intn(g.cfg.MaxAttachments); count > 0; count-- {
			rank++
			day = g.advance(day, 10, 200)
			right := ExpectedRight{
				Rank:      rank,
				RightType: "가압류",
				Amount:    uint64(1+g.rand.Intn(90)) * 1_000_000,
				Creditor:  g.pick(g.names.claimants),
			}
			fmt.Fprintf(&b, "%d 가압류 %s 제%d호 %s %s의 가압류결정 청구금액 금%s원 채권자 %s %s %s\n",
				rank, koreanDate(day), g.receipt(), koreanDate(day.AddDate(0, 0, -2)), g.pick(g.names.courts),
				formatWon(right.Amount), right.Creditor, corporateNumber(g.rand), g.randomStreetAddress())
			attachments = append(attachments, right)
		}
	}
	for _, right := range attachments {
		if g.rand.Float64() < g.cfg.CancelChance {
			rank++
			day = g.advance(day, 10, 200)
			fmt.Fprintf(&b, "%d %d번가압류등기말소 %s 제%d호 %s 해제\n",
				rank, right.Rank, koreanDate(day), g.receipt(), koreanDate(day.AddDate(0, 0, -1)))
			continue
		}
		exp.Attachments = append(exp.Attachments, right)
	}

	// 을구: mortgages with inline amendments, then cancellations.
	b.WriteString("【 을 구 】 ( 소유권 이외의 권리에 관한 사항 )\n")
	b.WriteString("순위번호 등기목적 접수 등기원인 권리자 및 기타사항\n")
	var mortgages []mortgage
	for count := g.rand.Intn(g.cfg.MaxMortgages + 1); count > 0; count-- {
		day = g.advance(day, 30, 400)
		m := mortgage{
			rank:     len(mortgages) + 1,
			ceiling:  uint64(12+g.rand.Intn(60)) * 10_000_000,
			creditor: g.pick(g.names.lenders),
		}
		fmt.Fprintf(&b, "%d 근저당권설정 %s 제%d호 %s 설정계약 채권최고액 금%s원 채무자 %s %s 근저당권자 %s %s %s\n",
			m.rank, koreanDate(day), g.receipt(), koreanDate(day), formatWon(m.ceiling),
			owner.name, owner.address, m.creditor, corporateNumber(g.rand), g.randomStreetAddress())
		if g.rand.Float64() < g.cfg.AmendChance {
			day = g.advance(day, 30, 300)
			m.ceiling = uint64(12+g.rand.Intn(60)) * 10_000_000
			fmt.Fprintf(&b, "%d-1 %d번근저당권변경 %s 제%d호 %s 변경계약 채권최고액 금%s원\n",
				m.rank, m.rank, koreanDate(day), g.receipt(), koreanDate(day), formatWon(m.ceiling))
		}
		mortgages = append(mortgages, m)
	}
	rank = len(mortgages)
	for i := range mortgages {
		if g.rand.Float64() >= g.cfg.CancelChance {
			continue
		}
		rank++
		day = g.advance(day, 30, 400)
		mortgages[i].cancelled = true
		fmt.Fprintf(&b, "%d %d번근저당권설정등기말소 %s 제%d호 %s 해지\n",
			rank, mortgages[i].rank, koreanDate(day), g.receipt(), koreanDate(day))
	}
	for _, m := range mortgages {
		if m.cancelled {
			continue
		}
		exp.Liens = append(exp.Liens, ExpectedRight{
			Rank:      m.rank,
			RightType: "근저당권",
			Amount:    m.ceiling,
			Creditor:  m.creditor,
			Debtor:    owner.name,
		})
		exp.TotalCeiling += m.ceiling
	}

	b.WriteString("-- 이 하 여 백 --\n")
	fmt.Fprintf(&b, "관할등기소 %s 등기국\n", g.pick(g.names.courts))

	return Document{
		Name:     fmt.Sprintf("register-%05d", n),
		Text:     b.String(),
		Expected: exp,
	}
}

func (g *Generator) writeHeader(b *strings.Builder, exp Expectation, built time.Time) {
	viewed := time.Date(2024, time.Month(1+g.rand.Intn(12)), 1+g.rand.Intn(28), g.rand.Intn(24), g.rand.Intn(60), g.rand.Intn(60), 0, time.UTC)
	fmt.Fprintf(b, "[집합건물] %s\n", exp.Address)
	fmt.Fprintf(b, "고유번호 %s\n", exp.UniqueNumber)
	fmt.Fprintf(b, "열람일시 : %d년%02d월%02d일 %02d시%02d분%02d초\n",
		viewed.Year(), viewed.Month(), viewed.Day(), viewed.Hour(), viewed.Minute(), viewed.Second())
	b.WriteString("【 표 제 부 】 ( 1동의 건물의 표시 )\n")
	b.WriteString("철근콘크리트구조 아파트\n")
	b.WriteString("( 전유부분의 건물의 표시 )\n")
	fmt.Fprintf(b, "1 %s 제%d층 철근콘크리트구조 %d.%02d㎡\n",
		koreanDate(built), 1+g.rand.Intn(30), 39+g.rand.Intn(120), g.rand.Intn(100))
	b.WriteString("( 대지권의 표시 )\n")
	fmt.Fprintf(b, "1 소유권대지권 %d분의 %d.%02d\n", 1000+g.rand.Intn(9000), 10+g.rand.Intn(90), g.rand.Intn(100))
}

func (g *Generator) advance(day time.Time, minDays, maxDays int) time.Time {
	return day.AddDate(0, 0, minDays+g.rand.Intn(maxDays-minDays+1))
}

func (g *Generator) receipt() int {
	return 1000 + g.rand.Intn(89000)
}

func (g *Generator) pick(values []string) string {
	return values[g.rand.Intn(len(values))]
}

func (g *Generator) randomPerson() person {
	birth := time.Date(1950+g.rand.Intn(50), time.Month(1+g.rand.Intn(12)), 1+g.rand.Intn(28), 0, 0, 0, 0, time.UTC)
	return person{
		name:    g.pick(g.names.surnames) + g.pick(g.names.givenNames),
		birth:   birth.Format("060102"),
		address: g.randomStreetAddress(),
	}
}

func (g *Generator) randomAddress() string {
	return fmt.Sprintf("%s %s %d %s 제%d동 제%d호",
		g.pick(g.names.districts), g.pick(g.names.neighbourhoods), 1+g.rand.Intn(999),
		g.pick(g.names.complexes), 101+g.rand.Intn(20), (1+g.rand.Intn(25))*100+1+g.rand.Intn(6))
}

func (g *Generator) randomStreetAddress() string {
	return fmt.Sprintf("%s %s %d", g.pick(g.names.districts), g.pick(g.names.roads), 1+g.rand.Intn(300))
}

func corporateNumber(r *rand.Rand) string {
	return fmt.Sprintf("1101%02d-%07d", r.Intn(100), r.Intn(10_000_000))
}

func koreanDate(t time.Time) string {
	return fmt.Sprintf("%d년%d월%d일", t.Year(), int(t.Month()), t.Day())
}

// formatWon renders an amount with thousands separators, e.g. 50,000,000.
func formatWon(v uint64) string {
	s := strconv.FormatUint(v, 10)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

type nameFragments struct {
	surnames       []string
	givenNames     []string
	districts      []string
	neighbourhoods []string
	complexes      []string
	roads          []string
	builders       []string
	lenders        []string
	claimants      []string
	courts         []string
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		surnames:       []string{"김", "이", "박", "최", "정", "강", "조", "윤", "장", "임"},
		givenNames:     []string{"민준", "서연", "도윤", "하은", "지호", "수아", "예준", "지민", "현우", "은서"},
		districts:      []string{"서울특별시 강남구", "서울특별시 서초구", "서울특별시 마포구", "서울특별시 송파구", "경기도 성남시", "부산광역시 해운대구"},
		neighbourhoods: []string{"역삼동", "반포동", "합정동", "잠실동", "정자동", "우동"},
		complexes:      []string{"래미안아파트", "힐스테이트아파트", "푸르지오아파트", "자이아파트", "롯데캐슬아파트"},
		roads:          []string{"테헤란로", "반포대로", "월드컵로", "올림픽로", "불정로", "해운대로"},
		builders:       []string{"주식회사 한빛건설", "주식회사 대성건설", "주식회사 미래종합건설"},
		lenders:        []string{"주식회사 국민은행", "주식회사 신한은행", "주식회사 우리은행", "주식회사 하나은행", "주식회사 케이뱅크"},
		claimants:      []string{"주식회사 국민카드", "주식회사 현대캐피탈", "주식회사 삼성카드", "주식회사 롯데카드"},
		courts:         []string{"서울중앙지방법원", "서울남부지방법원", "수원지방법원", "부산지방법원"},
	}
}
