package series

import (
	"fmt"
	"time"
)

// Period is a year-month bucket encoded as YYYYMM (e.g. 202406).
// 시계열 조인 키이자 증분 갱신 경계로 쓰인다. 정수 비교가 곧 시간 순서.
type Period int

// ParsePeriod parses a "YYYYMM" string into a Period
func ParsePeriod(s string) (Period, error) {
	if len(s) != 6 {
		return 0, fmt.Errorf("invalid period %q: want YYYYMM", s)
	}

	var year, month int
	if _, err := fmt.Sscanf(s, "%4d%2d", &year, &month); err != nil {
		return 0, fmt.Errorf("invalid period %q: %w", s, err)
	}

	p := Period(year*100 + month)
	if !p.Valid() {
		return 0, fmt.Errorf("invalid period %q: month out of range", s)
	}
	return p, nil
}

// PeriodOf returns the Period containing t
func PeriodOf(t time.Time) Period {
	return Period(t.Year()*100 + int(t.Month()))
}

// Valid reports whether p encodes a real year-month
func (p Period) Valid() bool {
	m := int(p) % 100
	y := int(p) / 100
	return y >= 1900 && y <= 9999 && m >= 1 && m <= 12
}

// Year returns the year component
func (p Period) Year() int {
	return int(p) / 100
}

// Month returns the month component
func (p Period) Month() time.Month {
	return time.Month(int(p) % 100)
}

// String formats the period as "YYYYMM"
func (p Period) String() string {
	return fmt.Sprintf("%06d", int(p))
}

// Time returns the first day of the period in UTC
func (p Period) Time() time.Time {
	return time.Date(p.Year(), p.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths returns the period n months after p (n may be negative)
func (p Period) AddMonths(n int) Period {
	return PeriodOf(p.Time().AddDate(0, n, 0))
}
