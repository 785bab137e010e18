package series

import (
	"testing"

	"github.com/shopspring/decimal"
)

func obs(date Period, avg int64, cnt int) Observation {
	return Observation{Date: date, Avg: decimal.NewFromInt(avg), Count: cnt}
}

func TestSeriesNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input Series
		want  Series
	}{
		{
			name:  "already sorted",
			input: Series{obs(202301, 50000, 3), obs(202302, 51000, 1)},
			want:  Series{obs(202301, 50000, 3), obs(202302, 51000, 1)},
		},
		{
			name:  "unsorted",
			input: Series{obs(202303, 52000, 1), obs(202301, 50000, 3)},
			want:  Series{obs(202301, 50000, 3), obs(202303, 52000, 1)},
		},
		{
			name: "duplicate period keeps last seen",
			input: Series{
				obs(202301, 50000, 3),
				obs(202302, 51000, 1),
				obs(202301, 49000, 2), // later fetch revises January
			},
			want: Series{obs(202301, 49000, 2), obs(202302, 51000, 1)},
		},
		{
			name:  "empty",
			input: Series{},
			want:  Series{},
		},
		{
			name:  "nil",
			input: nil,
			want:  Series{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.input.Normalize()
			if !got.Equal(tt.want) {
				t.Errorf("Normalize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSeriesNormalizeUniquePeriods(t *testing.T) {
	input := Series{
		obs(202301, 1, 1), obs(202301, 2, 1), obs(202301, 3, 1),
		obs(202302, 4, 1), obs(202302, 5, 1),
	}

	got := input.Normalize()
	if len(got) != 2 {
		t.Fatalf("Normalize() returned %d observations, want 2", len(got))
	}
	if !got[0].Avg.Equal(decimal.NewFromInt(3)) {
		t.Errorf("202301 avg = %s, want 3 (last seen)", got[0].Avg)
	}
	if !got[1].Avg.Equal(decimal.NewFromInt(5)) {
		t.Errorf("202302 avg = %s, want 5 (last seen)", got[1].Avg)
	}
}

func TestDecodeTrend(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{
			name:  "plain array",
			input: `[{"date":"202301","avg":50000,"cnt":3},{"date":"202302","avg":150,"cnt":1}]`,
			want:  2,
		},
		{
			name:  "string-wrapped array",
			input: `"[{\"date\":\"202301\",\"avg\":50000,\"cnt\":3}]"`,
			want:  1,
		},
		{
			name:  "avg as string",
			input: `[{"date":"202301","avg":"50000","cnt":3}]`,
			want:  1,
		},
		{
			name:  "empty array",
			input: `[]`,
			want:  0,
		},
		{
			name:  "null",
			input: `null`,
			want:  0,
		},
		{
			name:  "empty input",
			input: ``,
			want:  0,
		},
		{
			name:  "zero count kept",
			input: `[{"date":"202301","avg":50000,"cnt":0}]`,
			want:  1,
		},
		{
			name:    "bad date",
			input:   `[{"date":"2023-01","avg":50000,"cnt":3}]`,
			wantErr: true,
		},
		{
			name:    "missing avg",
			input:   `[{"date":"202301","cnt":3}]`,
			wantErr: true,
		},
		{
			name:    "missing cnt",
			input:   `[{"date":"202301","avg":50000}]`,
			wantErr: true,
		},
		{
			name:    "negative cnt",
			input:   `[{"date":"202301","avg":50000,"cnt":-1}]`,
			wantErr: true,
		},
		{
			name:    "not json",
			input:   `{broken`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeTrend([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeTrend() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if len(got) != tt.want {
				t.Errorf("DecodeTrend() returned %d observations, want %d", len(got), tt.want)
			}
		})
	}
}

func TestEncodeTrendRoundTrip(t *testing.T) {
	original := Series{obs(202301, 50000, 3), obs(202303, 52000, 0)}

	data, err := EncodeTrend(original)
	if err != nil {
		t.Fatalf("EncodeTrend() failed: %v", err)
	}

	decoded, err := DecodeTrend(data)
	if err != nil {
		t.Fatalf("DecodeTrend() failed: %v", err)
	}

	if !decoded.Equal(original) {
		t.Errorf("round trip mismatch: got %v, want %v", decoded, original)
	}

	// cnt 0은 유효한 값이다 (그 달에 거래가 없었다는 뜻)
	if decoded[1].Count != 0 {
		t.Errorf("zero count not preserved: got %d", decoded[1].Count)
	}
}

func TestEncodeTrendNil(t *testing.T) {
	data, err := EncodeTrend(nil)
	if err != nil {
		t.Fatalf("EncodeTrend(nil) failed: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("EncodeTrend(nil) = %s, want []", data)
	}
}
