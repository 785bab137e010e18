package series

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMergeForwardFill(t *testing.T) {
	sale := Series{obs(202301, 50000, 3), obs(202303, 52000, 1)}
	rent := Series{obs(202301, 150, 2), obs(202302, 150, 1)}

	merged := Merge(sale, rent)

	if len(merged) != 3 {
		t.Fatalf("Merge() returned %d records, want 3", len(merged))
	}

	wantPeriods := []Period{202301, 202302, 202303}
	wantSale := []int64{50000, 50000, 52000}
	wantRent := []int64{150, 150, 150}

	for i, rec := range merged {
		if rec.Date != wantPeriods[i] {
			t.Errorf("record %d period = %v, want %v", i, rec.Date, wantPeriods[i])
		}
		if !rec.SalePrice.Equal(decimal.NewFromInt(wantSale[i])) {
			t.Errorf("record %d sale = %s, want %d", i, rec.SalePrice, wantSale[i])
		}
		if !rec.RentPrice.Equal(decimal.NewFromInt(wantRent[i])) {
			t.Errorf("record %d rent = %s, want %d", i, rec.RentPrice, wantRent[i])
		}
	}

	// PER at 202303 = 52000 / (150*12) ≈ 28.89
	lastPER := merged[2].PER.Round(2)
	if !lastPER.Equal(decimal.RequireFromString("28.89")) {
		t.Errorf("last PER = %s, want 28.89", lastPER)
	}
}

func TestMergePeriodUnion(t *testing.T) {
	tests := []struct {
		name string
		sale Series
		rent Series
		want int
	}{
		{
			name: "disjoint periods",
			sale: Series{obs(202301, 100, 1), obs(202303, 110, 1)},
			rent: Series{obs(202302, 10, 1), obs(202304, 11, 1)},
			want: 4,
		},
		{
			name: "identical periods",
			sale: Series{obs(202301, 100, 1), obs(202302, 110, 1)},
			rent: Series{obs(202301, 10, 1), obs(202302, 11, 1)},
			want: 2,
		},
		{
			name: "sale only",
			sale: Series{obs(202301, 100, 1), obs(202302, 110, 1)},
			rent: Series{},
			want: 2,
		},
		{
			name: "rent only",
			sale: Series{},
			rent: Series{obs(202301, 10, 1)},
			want: 1,
		},
		{
			name: "both empty",
			sale: Series{},
			rent: Series{},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := Merge(tt.sale, tt.rent)
			if len(merged) != tt.want {
				t.Fatalf("Merge() returned %d records, want %d", len(merged), tt.want)
			}

			// ascending, no duplicates
			for i := 1; i < len(merged); i++ {
				if merged[i].Date <= merged[i-1].Date {
					t.Errorf("records not strictly ascending at %d: %v <= %v",
						i, merged[i].Date, merged[i-1].Date)
				}
			}
		})
	}
}

func TestMergeLeadingGapDefaultsToZero(t *testing.T) {
	// 월세가 매매보다 늦게 시작: 앞쪽 월세는 끌어올 값이 없으므로 0
	sale := Series{obs(202301, 50000, 1), obs(202302, 51000, 1)}
	rent := Series{obs(202302, 150, 1)}

	merged := Merge(sale, rent)
	if len(merged) != 2 {
		t.Fatalf("Merge() returned %d records, want 2", len(merged))
	}

	if !merged[0].RentPrice.IsZero() {
		t.Errorf("leading rent = %s, want 0", merged[0].RentPrice)
	}
	if !merged[0].PER.IsZero() {
		t.Errorf("PER with zero rent = %s, want 0", merged[0].PER)
	}
	if merged[1].RentPrice.IsZero() {
		t.Error("rent at 202302 should be the observed value, not 0")
	}
}

func TestMergeZeroGuard(t *testing.T) {
	// 월세 0이 중간에 끼어도 PER은 정확히 0이어야 한다
	sale := Series{obs(202301, 50000, 1)}
	rent := Series{obs(202301, 0, 0)}

	merged := Merge(sale, rent)
	if len(merged) != 1 {
		t.Fatalf("Merge() returned %d records, want 1", len(merged))
	}
	if !merged[0].PER.Equal(decimal.Zero) {
		t.Errorf("PER = %s, want exactly 0", merged[0].PER)
	}
}

func TestMergeOneSideEmptyShape(t *testing.T) {
	sale := Series{obs(202301, 50000, 3), obs(202302, 51000, 1)}

	merged := Merge(sale, nil)
	if len(merged) != 2 {
		t.Fatalf("Merge() returned %d records, want 2", len(merged))
	}
	for i, rec := range merged {
		if !rec.RentPrice.IsZero() {
			t.Errorf("record %d rent = %s, want 0 (flooded column)", i, rec.RentPrice)
		}
		if !rec.PER.IsZero() {
			t.Errorf("record %d PER = %s, want 0", i, rec.PER)
		}
		if !rec.SalePrice.Equal(sale[i].Avg) {
			t.Errorf("record %d sale = %s, want %s", i, rec.SalePrice, sale[i].Avg)
		}
	}
}

func TestMergeUnsortedInput(t *testing.T) {
	// Merge는 입력 정렬을 신뢰하지 않는다
	sale := Series{obs(202303, 52000, 1), obs(202301, 50000, 3)}
	rent := Series{obs(202302, 150, 1), obs(202301, 150, 2)}

	merged := Merge(sale, rent)
	if len(merged) != 3 {
		t.Fatalf("Merge() returned %d records, want 3", len(merged))
	}
	if merged[0].Date != 202301 || merged[2].Date != 202303 {
		t.Errorf("unexpected period order: %v, %v, %v",
			merged[0].Date, merged[1].Date, merged[2].Date)
	}
}
