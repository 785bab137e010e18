package asil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/wonny/aptper/internal/apt"
	"github.com/wonny/aptper/internal/series"
)

// FetchError marks a failed transaction fetch. 빈 결과(해당 연도 거래 없음)와
// 구분하기 위한 타입이다.
type FetchError struct {
	Seq        string
	Year       int
	DealType   apt.DealType
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch transactions seq=%s year=%d deal=%s status=%d: %v",
		e.Seq, e.Year, e.DealType, e.StatusCode, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// FetchTransactions fetches the monthly aggregated transactions of one
// (complex, size class, deal type) for one calendar year.
// ⭐ SSOT: 아실 거래 데이터 호출은 이 함수에서만
//
// A year with no transactions returns an empty series and no error.
func (c *Client) FetchTransactions(ctx context.Context, seq, sizeClass string, year int, deal apt.DealType) (series.Series, error) {
	params := url.Values{}
	params.Set("seq", seq)
	params.Set("py", sizeClass)
	params.Set("year", strconv.Itoa(year))
	params.Set("dealType", string(deal))

	body, status, err := c.fetchBody(ctx, "/app/apt/amount.jsp", params)
	if err != nil {
		return nil, &FetchError{Seq: seq, Year: year, DealType: deal, StatusCode: status, Err: err}
	}

	result, dropped, err := parseTransactions(body)
	if err != nil {
		return nil, &FetchError{Seq: seq, Year: year, DealType: deal, StatusCode: status, Err: err}
	}

	c.logger.WithFields(map[string]interface{}{
		"seq":     seq,
		"py":      sizeClass,
		"year":    year,
		"deal":    deal.Label(),
		"count":   len(result),
		"dropped": dropped,
	}).Debug("Fetched transactions")

	return result, nil
}

// parseTransactions parses the JSON response defensively: the payload is an
// array of {date, avg, cnt} objects but sometimes arrives single-quoted or
// wrapped in an extra string layer. 형식이 깨진 레코드는 개별적으로 버린다.
func parseTransactions(body []byte) (series.Series, int, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" {
		return nil, 0, nil
	}

	// 작은따옴표 응답 방어
	if !strings.Contains(trimmed, "\"") && strings.Contains(trimmed, "'") {
		trimmed = strings.ReplaceAll(trimmed, "'", "\"")
	}

	// 문자열로 한 겹 감싸인 경우 풀기
	if strings.HasPrefix(trimmed, "\"") {
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err == nil {
			trimmed = strings.TrimSpace(inner)
		}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return nil, 0, fmt.Errorf("parse transactions: %w", err)
	}

	var result series.Series
	dropped := 0
	for _, msg := range raw {
		var obs series.Observation
		if err := json.Unmarshal(msg, &obs); err != nil {
			dropped++
			continue
		}
		if !obs.Date.Valid() {
			dropped++
			continue
		}
		// cnt 0은 버리지 않는다: "그 달 거래 없음"이라는 유효한 관측이고,
		// 월이 통째로 빠진 것(데이터 없음)과는 다르게 병합된다.
		result = append(result, obs)
	}

	return result.Normalize(), dropped, nil
}
