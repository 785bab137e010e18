package series

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Observation is one monthly data point of a price trend.
// Avg는 만원 단위 평균가, Count는 해당 월 거래 건수.
// Count 0은 "거래 없음"이고, 월 자체가 빠진 것("데이터 없음")과는 다르다.
type Observation struct {
	Date  Period
	Avg   decimal.Decimal
	Count int
}

// observationJSON is the wire/storage form: {"date":"YYYYMM","avg":N,"cnt":N}.
// avg/cnt는 포인터로 받아서 "필드 누락"과 "명시적 0"을 구분한다.
type observationJSON struct {
	Date string           `json:"date"`
	Avg  *decimal.Decimal `json:"avg"`
	Cnt  *int             `json:"cnt"`
}

// MarshalJSON encodes the observation in the legacy price_trend format
func (o Observation) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"date":%q,"avg":%s,"cnt":%d}`,
		o.Date.String(), o.Avg.String(), o.Count)), nil
}

// UnmarshalJSON decodes the legacy price_trend format.
// avg는 숫자/문자열 어느 쪽이든 받는다 (decimal이 둘 다 처리).
func (o *Observation) UnmarshalJSON(data []byte) error {
	var raw observationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p, err := ParsePeriod(raw.Date)
	if err != nil {
		return err
	}
	if raw.Avg == nil {
		return fmt.Errorf("observation %s: missing avg", raw.Date)
	}
	if raw.Cnt == nil {
		return fmt.Errorf("observation %s: missing cnt", raw.Date)
	}
	if *raw.Cnt < 0 {
		return fmt.Errorf("observation %s: negative cnt %d", raw.Date, *raw.Cnt)
	}

	o.Date = p
	o.Avg = *raw.Avg
	o.Count = *raw.Cnt
	return nil
}

// Series is a per-(apartment, size class, deal type) monthly price history,
// sorted ascending by period with unique periods. Gaps are allowed and are
// filled at consumption time by Merge, never persisted.
type Series []Observation

// Normalize returns the series sorted ascending by period with duplicate
// periods collapsed, keeping the last-seen observation for each period.
func (s Series) Normalize() Series {
	if len(s) == 0 {
		return Series{}
	}

	sorted := make(Series, len(s))
	copy(sorted, s)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	// 안정 정렬이므로 같은 월 내에서는 입력 순서가 유지된다.
	// 런의 마지막 원소가 곧 마지막으로 들어온 값.
	out := make(Series, 0, len(sorted))
	for i, obs := range sorted {
		if i+1 < len(sorted) && sorted[i+1].Date == obs.Date {
			continue
		}
		out = append(out, obs)
	}
	return out
}

// Last returns the chronologically last observation
func (s Series) Last() (Observation, bool) {
	if len(s) == 0 {
		return Observation{}, false
	}
	return s[len(s)-1], true
}

// Periods returns the ordered period keys of the series
func (s Series) Periods() []Period {
	periods := make([]Period, len(s))
	for i, obs := range s {
		periods[i] = obs.Date
	}
	return periods
}

// Equal reports whether two series are element-wise identical
func (s Series) Equal(other Series) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i].Date != other[i].Date ||
			s[i].Count != other[i].Count ||
			!s[i].Avg.Equal(other[i].Avg) {
			return false
		}
	}
	return true
}

// DecodeTrend decodes a stored price_trend column defensively: the value may
// be a JSON array or a JSON string containing the encoded array (레거시 행은
// 문자열로 이중 인코딩되어 있다). nil/empty decodes to an empty series.
func DecodeTrend(data []byte) (Series, error) {
	if len(data) == 0 {
		return Series{}, nil
	}

	trimmed := data
	for len(trimmed) > 0 && (trimmed[0] == ' ' || trimmed[0] == '\t' || trimmed[0] == '\n') {
		trimmed = trimmed[1:]
	}
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return Series{}, nil
	}

	// String-wrapped JSON: unwrap once and decode the inner document
	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return nil, fmt.Errorf("decode trend wrapper: %w", err)
		}
		return DecodeTrend([]byte(inner))
	}

	var s Series
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return nil, fmt.Errorf("decode trend: %w", err)
	}
	return s, nil
}

// EncodeTrend encodes a series for the price_trend column
func EncodeTrend(s Series) ([]byte, error) {
	if s == nil {
		s = Series{}
	}
	return json.Marshal(s)
}
