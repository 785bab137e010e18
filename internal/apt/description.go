package apt

import (
	"fmt"
	"strconv"
	"strings"
)

// The Asil description field is free text like
// "서울 중구 신당동 / 02년05월 / 5152세대 / 아파트".
// 여기서 주소와 준공년월을 추출한다. 실패는 ok=false로만 알리고
// 파이프라인으로 에러를 올리지 않는다 (ParseError는 비치명적).

// ExtractAddress pulls a short region label from a description.
// 서울은 "서울 구", 그 외는 "시 구" 형태.
//
//	"서울 중구 신당동 / ..."          -> "서울 중구"
//	"경기 수원시 영통구 원천동 / ..." -> "수원시 영통구"
func ExtractAddress(description string) (string, bool) {
	head, _, found := strings.Cut(description, "/")
	if !found {
		return "", false
	}

	parts := strings.Fields(strings.TrimSpace(head))
	if len(parts) < 2 {
		return "", false
	}

	if parts[0] == "서울" {
		return parts[0] + " " + parts[1], true
	}

	if len(parts) < 3 {
		return "", false
	}
	return parts[1] + " " + parts[2], true
}

// ExtractBuiltYM pulls the construction year-month as YYYYMM.
// 연도는 2자리로 온다: 50 초과면 19xx, 이하면 20xx.
//
//	"서울 중구 신당동 / 02년05월 / 5152세대 / 아파트" -> 200205
func ExtractBuiltYM(description string) (int, bool) {
	fields := strings.Split(description, "/")
	if len(fields) < 2 {
		return 0, false
	}

	ymPart := strings.TrimSpace(fields[1])

	yearStr, rest, found := strings.Cut(ymPart, "년")
	if !found {
		return 0, false
	}
	monthStr, _, found := strings.Cut(rest, "월")
	if !found {
		return 0, false
	}

	year, err := strconv.Atoi(strings.TrimSpace(yearStr))
	if err != nil || year < 0 || year > 99 {
		return 0, false
	}
	month, err := strconv.Atoi(strings.TrimSpace(monthStr))
	if err != nil || month < 1 || month > 12 {
		return 0, false
	}

	if year > 50 {
		year += 1900
	} else {
		year += 2000
	}

	ym, err := strconv.Atoi(fmt.Sprintf("%d%02d", year, month))
	if err != nil {
		return 0, false
	}
	return ym, true
}
