package series

import (
	"testing"
	"time"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Period
		wantErr bool
	}{
		{"valid", "202301", Period(202301), false},
		{"valid december", "199912", Period(199912), false},
		{"month zero", "202300", 0, true},
		{"month thirteen", "202313", 0, true},
		{"too short", "2023", 0, true},
		{"too long", "2023011", 0, true},
		{"not a number", "20ab01", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePeriod(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePeriod(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePeriod(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPeriodOf(t *testing.T) {
	got := PeriodOf(time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC))
	if got != Period(202406) {
		t.Errorf("PeriodOf() = %v, want 202406", got)
	}
}

func TestPeriodAddMonths(t *testing.T) {
	tests := []struct {
		name   string
		start  Period
		months int
		want   Period
	}{
		{"forward within year", 202301, 2, 202303},
		{"forward across year", 202311, 3, 202402},
		{"backward within year", 202306, -5, 202301},
		{"backward across year", 202402, -3, 202311},
		{"twelve back", 202406, -12, 202306},
		{"zero", 202301, 0, 202301},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.start.AddMonths(tt.months); got != tt.want {
				t.Errorf("%v.AddMonths(%d) = %v, want %v", tt.start, tt.months, got, tt.want)
			}
		})
	}
}

func TestPeriodOrdering(t *testing.T) {
	// 정수 비교가 곧 시간 순서여야 한다
	if !(Period(202312) < Period(202401)) {
		t.Error("December must sort before next January")
	}
	if Period(202301).String() != "202301" {
		t.Errorf("String() = %s, want 202301", Period(202301).String())
	}
}
