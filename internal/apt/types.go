package apt

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/aptper/internal/series"
)

// DealType is the transaction category used by the Asil source.
// 1은 매매, 2는 전세, 3은 월세.
type DealType string

const (
	DealSale    DealType = "1"
	DealJeonse  DealType = "2"
	DealMonthly DealType = "3"
)

// AllDealTypes lists the deal types in fetch order
var AllDealTypes = []DealType{DealSale, DealJeonse, DealMonthly}

// Valid reports whether d is a known deal type
func (d DealType) Valid() bool {
	return d == DealSale || d == DealJeonse || d == DealMonthly
}

// Label returns the Korean display label
func (d DealType) Label() string {
	switch d {
	case DealSale:
		return "매매"
	case DealJeonse:
		return "전세"
	case DealMonthly:
		return "월세"
	default:
		return string(d)
	}
}

// Identity uniquely identifies a trackable unit: complex name plus size
// class. 평형(py)은 독립 필드다 — 표시 문자열에서 역파싱하지 않는다.
type Identity struct {
	Name      string
	SizeClass string // 평형 (e.g. "34")
}

// DisplayName assembles the "이름 (NN평)" form used by the dashboard
func (i Identity) DisplayName() string {
	return fmt.Sprintf("%s (%s평)", i.Name, i.SizeClass)
}

// ParseDisplayName splits a legacy "이름 (NN평)" display string back into an
// identity. Complex names may themselves contain parentheses
// (예: "래미안슈르(301~342동) (34평)") so only the trailing group is taken.
// Kept for admin input compatibility only; stored data never round-trips
// through this.
func ParseDisplayName(s string) (Identity, bool) {
	idx := strings.LastIndex(s, " (")
	if idx < 0 {
		return Identity{}, false
	}

	name := s[:idx]
	rest := s[idx+2:]
	py, found := strings.CutSuffix(rest, "평)")
	if !found || name == "" || py == "" {
		return Identity{}, false
	}

	return Identity{Name: name, SizeClass: py}, true
}

// Apartment is one raw-series row: a (name, size class, deal type) triple
// with its stored monthly price trend and source metadata.
type Apartment struct {
	ID          int64
	Name        string
	SizeClass   string
	DealType    DealType
	Seq         string // Asil 단지 식별자
	Description string // 원문 설명 (주소/준공년월 추출용)
	Trend       series.Series
	Status      int // 1이면 배치 갱신 대상
	Address     string
	BuiltYM     int // 준공년월 YYYYMM, 0이면 미상
}

// Identity returns the apartment's identity key
func (a *Apartment) Identity() Identity {
	return Identity{Name: a.Name, SizeClass: a.SizeClass}
}

// TrackedUnit is one tracked apartment as seen by the batch drivers:
// identity plus what the source client needs to fetch transactions.
type TrackedUnit struct {
	Name        string
	SizeClass   string
	Seq         string
	Description string
}

// Identity returns the unit's identity key
func (u TrackedUnit) Identity() Identity {
	return Identity{Name: u.Name, SizeClass: u.SizeClass}
}

// Summary is the precomputed last-known valuation row, keyed by
// (apt_name, apt_py) with latest-value-wins semantics.
type Summary struct {
	ID           int64
	AptName      string
	AptPY        string
	LastAvgPrice decimal.Decimal
	LastAvgRent  decimal.Decimal
	LastPER      decimal.Decimal
	Updated      time.Time
}
