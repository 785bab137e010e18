package series

import (
	"testing"

	"github.com/shopspring/decimal"
)

func mergedFrom(sale, rent Series) []MergedRecord {
	return Merge(sale, rent)
}

func TestSummarize(t *testing.T) {
	// 8 months of data; window 6 should only see the last 6
	sale := Series{
		obs(202301, 10000, 1), obs(202302, 20000, 1),
		obs(202303, 60000, 1), obs(202304, 60000, 1),
		obs(202305, 60000, 1), obs(202306, 60000, 1),
		obs(202307, 60000, 1), obs(202308, 60000, 1),
	}
	rent := Series{
		obs(202301, 100, 1), obs(202302, 100, 1),
		obs(202303, 150, 1), obs(202304, 150, 1),
		obs(202305, 150, 1), obs(202306, 150, 1),
		obs(202307, 150, 1), obs(202308, 150, 1),
	}

	v := Summarize(mergedFrom(sale, rent), 6)

	if !v.TrailingAvgPrice.Equal(decimal.NewFromInt(60000)) {
		t.Errorf("TrailingAvgPrice = %s, want 60000", v.TrailingAvgPrice)
	}
	if !v.TrailingAvgRent.Equal(decimal.NewFromInt(150)) {
		t.Errorf("TrailingAvgRent = %s, want 150", v.TrailingAvgRent)
	}

	// LatestPER = 60000 / (150*12) = 33.33...
	if !v.LatestPER.Round(2).Equal(decimal.RequireFromString("33.33")) {
		t.Errorf("LatestPER = %s, want 33.33", v.LatestPER.Round(2))
	}
}

func TestSummarizeFewerThanWindow(t *testing.T) {
	sale := Series{obs(202301, 40000, 1), obs(202302, 60000, 1)}
	rent := Series{obs(202301, 100, 1), obs(202302, 200, 1)}

	v := Summarize(mergedFrom(sale, rent), 6)

	if !v.TrailingAvgPrice.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("TrailingAvgPrice = %s, want 50000", v.TrailingAvgPrice)
	}
	if !v.TrailingAvgRent.Equal(decimal.NewFromInt(150)) {
		t.Errorf("TrailingAvgRent = %s, want 150", v.TrailingAvgRent)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	v := Summarize(nil, 6)

	if !v.TrailingAvgPrice.IsZero() || !v.TrailingAvgRent.IsZero() || !v.LatestPER.IsZero() {
		t.Errorf("empty input should summarize to zeros, got %+v", v)
	}
}

func TestSummarizeLatestPERIsNotAMean(t *testing.T) {
	// PER이 창 안에서 요동쳐도 마지막 값만 보고한다
	sale := Series{obs(202301, 36000, 1), obs(202302, 72000, 1)}
	rent := Series{obs(202301, 100, 1), obs(202302, 200, 1)}

	v := Summarize(mergedFrom(sale, rent), 6)

	// last PER = 72000 / (200*12) = 30
	if !v.LatestPER.Equal(decimal.NewFromInt(30)) {
		t.Errorf("LatestPER = %s, want 30", v.LatestPER)
	}
}

func TestExpectedPriceBand(t *testing.T) {
	band := ExpectedPriceBand(decimal.NewFromInt(150), 30, 35)

	// 150 * 12 * 30 = 54000, 150 * 12 * 35 = 63000
	if !band.Low.Equal(decimal.NewFromInt(54000)) {
		t.Errorf("band low = %s, want 54000", band.Low)
	}
	if !band.High.Equal(decimal.NewFromInt(63000)) {
		t.Errorf("band high = %s, want 63000", band.High)
	}
}

func TestExpectedPriceBandZeroRent(t *testing.T) {
	band := ExpectedPriceBand(decimal.Zero, 30, 35)
	if !band.Low.IsZero() || !band.High.IsZero() {
		t.Errorf("zero rent should give zero band, got %+v", band)
	}
}
