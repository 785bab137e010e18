package asil

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/wonny/aptper/internal/series"
)

func TestParseTransactions(t *testing.T) {
	body := []byte(`[
		{"date":"202301","avg":50000,"cnt":3},
		{"date":"202303","avg":52000,"cnt":1}
	]`)

	got, dropped, err := parseTransactions(body)
	if err != nil {
		t.Fatalf("parseTransactions() error = %v", err)
	}
	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Date != 202301 || !got[0].Avg.Equal(decimal.NewFromInt(50000)) || got[0].Count != 3 {
		t.Errorf("first observation = %+v", got[0])
	}
	if got[1].Date != 202303 {
		t.Errorf("second observation date = %v, want 202303", got[1].Date)
	}
}

func TestParseTransactionsSingleQuoted(t *testing.T) {
	// 응답이 가끔 작은따옴표로 온다
	body := []byte(`[{'date':'202301','avg':50000,'cnt':3}]`)

	got, dropped, err := parseTransactions(body)
	if err != nil {
		t.Fatalf("parseTransactions() error = %v", err)
	}
	if dropped != 0 || len(got) != 1 {
		t.Fatalf("got %d observations (%d dropped), want 1 (0 dropped)", len(got), dropped)
	}
}

func TestParseTransactionsStringWrapped(t *testing.T) {
	body := []byte(`"[{\"date\":\"202301\",\"avg\":50000,\"cnt\":3}]"`)

	got, _, err := parseTransactions(body)
	if err != nil {
		t.Fatalf("parseTransactions() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
}

func TestParseTransactionsDropsMalformed(t *testing.T) {
	body := []byte(`[
		{"date":"202301","avg":50000,"cnt":3},
		{"avg":50000,"cnt":3},
		{"date":"2023-01","avg":50000,"cnt":3},
		{"date":"202302","avg":51000},
		{"date":"202303","cnt":2},
		{"date":"202304","avg":52000,"cnt":2}
	]`)

	got, dropped, err := parseTransactions(body)
	if err != nil {
		t.Fatalf("parseTransactions() error = %v", err)
	}
	if dropped != 4 {
		t.Errorf("dropped = %d, want 4", dropped)
	}

	want := []series.Period{202301, 202304}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, p := range want {
		if got[i].Date != p {
			t.Errorf("observation %d date = %v, want %v", i, got[i].Date, p)
		}
	}
}

func TestParseTransactionsKeepsZeroCount(t *testing.T) {
	// cnt 0은 "그 달 거래 없음"이라는 유효한 관측이다.
	// cnt 필드가 아예 없는 깨진 레코드만 버려야 한다.
	body := []byte(`[
		{"date":"202401","avg":50000,"cnt":0},
		{"date":"202402","avg":51000,"cnt":2}
	]`)

	got, dropped, err := parseTransactions(body)
	if err != nil {
		t.Fatalf("parseTransactions() error = %v", err)
	}
	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Date != 202401 || got[0].Count != 0 {
		t.Errorf("zero-count observation = %+v, want date 202401 cnt 0", got[0])
	}
	if !got[0].Avg.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("zero-count avg = %s, want 50000", got[0].Avg)
	}
}

func TestParseTransactionsEmpty(t *testing.T) {
	for _, body := range []string{"", "null", "[]", "  \n "} {
		got, dropped, err := parseTransactions([]byte(body))
		if err != nil {
			t.Fatalf("parseTransactions(%q) error = %v", body, err)
		}
		if len(got) != 0 || dropped != 0 {
			t.Errorf("parseTransactions(%q) = %d observations, %d dropped", body, len(got), dropped)
		}
	}
}

func TestParseTransactionsNormalizes(t *testing.T) {
	// 역순 + 중복 월은 마지막 값이 이긴다
	body := []byte(`[
		{"date":"202303","avg":52000,"cnt":1},
		{"date":"202301","avg":50000,"cnt":3},
		{"date":"202303","avg":53000,"cnt":2}
	]`)

	got, _, err := parseTransactions(body)
	if err != nil {
		t.Fatalf("parseTransactions() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Date != 202301 || got[1].Date != 202303 {
		t.Errorf("order = %v, %v", got[0].Date, got[1].Date)
	}
	if !got[1].Avg.Equal(decimal.NewFromInt(53000)) {
		t.Errorf("duplicate month avg = %s, want 53000 (last wins)", got[1].Avg)
	}
}

func TestParseTransactionsGarbage(t *testing.T) {
	if _, _, err := parseTransactions([]byte(`{"not":"an array"}`)); err == nil {
		t.Error("expected error for non-array payload")
	}
}
