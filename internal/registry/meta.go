package registry

import (
	"strconv"
	"strings"
	"time"
)

// Property categories used by lending rules.
const (
	CategoryApartment = "APT"
	CategoryOther     = "Non-APT"
)

// kst is the zone every register timestamp is printed in.
var kst = time.FixedZone("KST", 9*60*60)

var propertyDetails = []string{
	"아파트", "오피스텔", "도시형생활주택", "다세대주택", "연립주택",
	"다가구주택", "단독주택", "근린생활시설",
}

// DocumentInfo is the descriptive header of a register document.
type DocumentInfo struct {
	Address          string     `json:"address,omitempty"`
	UniqueNumber     string     `json:"uniqueNumber,omitempty"`
	ExclusiveArea    float64    `json:"exclusiveArea,omitempty"`
	PropertyCategory string     `json:"propertyCategory"`
	PropertyDetail   string     `json:"propertyDetail,omitempty"`
	ViewedAt         *time.Time `json:"viewedAt,omitempty"`
}

// AgeCheck reports how old the printed register is.
type AgeCheck struct {
	Known   bool `json:"known"`
	AgeDays int  `json:"ageDays"`
	Stale   bool `json:"stale"`
}

func (p *Patterns) documentInfo(text string) DocumentInfo {
	info := DocumentInfo{PropertyCategory: CategoryOther}

	if m := p.address.FindStringSubmatch(text); m != nil {
		info.Address = p.collapse(m[1])
	} else if m := p.location.FindStringSubmatch(text); m != nil {
		info.Address = p.collapse(m[1])
	}
	if m := p.uniqueNumber.FindStringSubmatch(text); m != nil {
		info.UniqueNumber = m[1]
	}
	if m := p.exclusiveArea.FindStringSubmatch(text); m != nil {
		if areas := p.area.FindAllStringSubmatch(m[1], -1); len(areas) > 0 {
			info.ExclusiveArea, _ = strconv.ParseFloat(areas[len(areas)-1][1], 64)
		}
	}

	header := text
	if loc := p.ownershipMarker.FindStringIndex(text); loc != nil {
		header = text[:loc[0]]
	}
	for _, detail := range propertyDetails {
		if strings.Contains(header, detail) {
			info.PropertyDetail = detail
			break
		}
	}
	if info.PropertyDetail == "아파트" {
		info.PropertyCategory = CategoryApartment
	}

	if m := p.viewedAt.FindStringSubmatch(text); m != nil {
		viewed := time.Date(atoi(m[1]), time.Month(atoi(m[2])), atoi(m[3]), atoi(m[4]), atoi(m[5]), atoi(m[6]), 0, kst)
		info.ViewedAt = &viewed
	}
	return info
}

func ageCheck(viewed *time.Time, now time.Time, staleAfter time.Duration) AgeCheck {
	if viewed == nil {
		return AgeCheck{}
	}
	age := now.Sub(*viewed)
	return AgeCheck{
		Known:   true,
		AgeDays: int(age.Hours() / 24),
		Stale:   age > staleAfter,
	}
}

func recentTransfer(t *TransferRecord, now time.Time, window time.Duration) bool {
	if t == nil || t.Date == "" {
		return false
	}
	date, err := time.ParseInLocation("2006-01-02", t.Date, kst)
	if err != nil {
		return false
	}
	return now.Sub(date) < window
}
