package registry

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Classify decides the kind of a block and extracts its fields. It reports
// false when the block carries no right the engine tracks.
func (p *Patterns) Classify(b Block) (Entry, bool) {
	e := Entry{
		Rank:         b.Rank,
		AmendmentSeq: b.AmendmentSeq,
		Text:         b.Text,
		Span:         b.Span,
	}
	body := b.Body
	purpose := p.purpose(body)
	e.Date, e.CauseDate = p.dates(body)

	switch {
	case p.cancelKeyword.MatchString(body):
		e.Kind = KindCancellation
		e.RightType = "말소"
		e.References = p.cancelledRefs(body)
		if len(e.References) == 0 {
			e.References = []RankRef{{Main: b.Rank.Main}}
		}

	case p.mortgageType.MatchString(purpose):
		// A pledge taken over a mortgage is a right on the mortgage, not on
		// the property.
		if p.lienPledge.MatchString(purpose) {
			return Entry{}, false
		}
		e.RightType = p.mortgageType.FindStringSubmatch(purpose)[1]
		e.Ceiling = p.amount(p.ceiling, body)
		e.Creditor = p.party(body, p.lienHolder, false)
		e.Debtor = p.party(body, p.debtor, false)
		if target, ok := p.amendmentTarget(b, purpose); ok {
			e.Kind = KindAmendment
			e.Target = &target
		} else if b.AmendmentSeq > 0 {
			// An annotation entry that neither changes nor transfers the right.
			return Entry{}, false
		} else {
			e.Kind = KindRegistration
		}

	case p.nameChange.MatchString(purpose):
		e.Kind = KindNameChange
		e.RightType = "등기명의인표시변경"

	case p.transfer.MatchString(purpose) && !p.prenotation.MatchString(purpose):
		e.Kind = KindOwnershipTransfer
		e.RightType = "소유권"
		e.Reason = p.transferReason(body)
		if e.Reason == ReasonSale {
			e.Price = p.amount(p.price, body)
		}
		if owners := p.transferOwners(body); len(owners) > 0 {
			e.Creditor = owners[0].name
		}

	case p.provisional.MatchString(body):
		e.Kind = KindProvisionalAttachment
		e.RightType = p.provisional.FindString(body)
		e.Claim = p.amount(p.claim, body)
		e.Creditor = p.party(body, p.claimant, true)

	case p.attachment.MatchString(body):
		e.Kind = KindAttachment
		e.RightType = strings.ReplaceAll(p.attachment.FindString(body), " ", "")
		e.Claim = p.amount(p.claim, body)
		e.Creditor = p.party(body, p.claimant, true)

	default:
		return Entry{}, false
	}
	return e, true
}

// purpose returns the registration purpose column (등기목적), the text ahead of
// the first date.
func (p *Patterns) purpose(body string) string {
	if loc := p.date.FindStringIndex(body); loc != nil {
		return body[:loc[0]]
	}
	return body
}

// amendmentTarget resolves the rank an amendment modifies. Only a purpose that
// changes, corrects or transfers the right amends it. An inline reference
// ("2번근저당권변경") wins over the marker; a bare "-M" marker falls back to
// its own main rank.
func (p *Patterns) amendmentTarget(b Block, purpose string) (RankKey, bool) {
	if !p.amendVerb.MatchString(purpose) {
		return RankKey{}, false
	}
	if m := p.amendTarget.FindStringSubmatch(purpose); m != nil {
		return RankKey{Main: atoi(m[1]), Variant: atoi(m[2])}, true
	}
	if b.AmendmentSeq > 0 {
		return b.Rank, true
	}
	return RankKey{}, false
}

// cancelledRefs collects "N번" references that name a right type or chain into
// another reference, which filters out lot numbers such as "123번지".
func (p *Patterns) cancelledRefs(body string) []RankRef {
	var refs []RankRef
	seen := make(map[RankRef]struct{})
	for _, m := range p.rankRef.FindAllStringSubmatchIndex(body, -1) {
		if !p.refLead.MatchString(body[m[1]:]) {
			continue
		}
		// "2-1번" names an amendment entry, not a right.
		if m[2] > 0 && body[m[2]-1] == '-' {
			continue
		}
		ref := RankRef{Main: atoi(body[m[2]:m[3]])}
		if m[4] >= 0 {
			ref.Variant = atoi(body[m[4]:m[5]])
			ref.HasVariant = true
		}
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	return refs
}

func (p *Patterns) transferReason(body string) TransferReason {
	switch {
	case p.sale.MatchString(body):
		return ReasonSale
	case p.inheritance.MatchString(body):
		return ReasonInheritance
	case p.gift.MatchString(body):
		return ReasonGift
	case p.preserve.MatchString(body):
		return ReasonOriginalRegistration
	default:
		return ReasonUnknown
	}
}

// dates returns the first two calendar dates: the receipt date and, when
// printed, the cause date.
func (p *Patterns) dates(body string) (string, string) {
	var found []string
	for _, m := range p.date.FindAllStringSubmatch(body, 2) {
		y, mo, d := m[1], m[2], m[3]
		if y == "" {
			y, mo, d = m[4], m[5], m[6]
		}
		found = append(found, isoDate(y, mo, d))
	}
	switch len(found) {
	case 0:
		return "", ""
	case 1:
		return found[0], ""
	default:
		return found[0], found[1]
	}
}

func isoDate(y, m, d string) string {
	return y + "-" + pad2(m) + "-" + pad2(d)
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func (p *Patterns) amount(re *regexp.Regexp, body string) *uint64 {
	m := re.FindStringSubmatch(body)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseUint(strings.ReplaceAll(m[1], ",", ""), 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

// party returns the first non-empty name following a role label.
func (p *Patterns) party(body string, label *regexp.Regexp, allowPlace bool) string {
	for _, loc := range label.FindAllStringIndex(body, -1) {
		if name := p.takeName(body[loc[1]:], allowPlace); name != "" {
			return name
		}
	}
	return ""
}

// takeName reads a party name from the start of rest. The name ends at an ID
// number, a field or role label, or a token that is a province name. Corporate
// prefixes and parenthesised branch names join the following token.
func (p *Patterns) takeName(rest string, allowPlace bool) string {
	tokens := strings.Fields(rest)
	var parts []string
	for i := 0; i < len(tokens) && len(parts) < 3; i++ {
		tok := strings.Trim(tokens[i], ",;:")
		if tok == "" {
			continue
		}
		if loc := p.idNumber.FindStringIndex(tok); loc != nil {
			if loc[0] > 0 {
				parts = append(parts, tok[:loc[0]])
			}
			break
		}
		if isStopToken(tok) {
			break
		}
		if _, place := provinces[tok]; place {
			if !allowPlace || len(parts) > 0 {
				break
			}
			parts = append(parts, tok)
			if i+1 < len(tokens) && isDistrict(tokens[i+1]) {
				parts = append(parts, tokens[i+1])
			}
			break
		}
		parts = append(parts, tok)
		if _, corp := corporatePrefixes[tok]; corp {
			continue
		}
		if i+1 < len(tokens) && strings.HasPrefix(tokens[i+1], "(") && strings.HasSuffix(tokens[i+1], ")") {
			continue
		}
		break
	}
	return strings.Join(parts, " ")
}

func isStopToken(tok string) bool {
	r := []rune(tok)
	if unicode.IsDigit(r[0]) {
		return true
	}
	if len(r) > 1 && (r[0] == '제' || r[0] == '금') && unicode.IsDigit(r[1]) {
		return true
	}
	for _, label := range stopLabels {
		if strings.HasPrefix(tok, label) {
			return true
		}
	}
	return false
}

func isDistrict(tok string) bool {
	if isStopToken(tok) {
		return false
	}
	return strings.HasSuffix(tok, "구") || strings.HasSuffix(tok, "군") || strings.HasSuffix(tok, "시")
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
