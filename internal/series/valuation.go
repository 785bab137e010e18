package series

import (
	"github.com/shopspring/decimal"
)

// Valuation holds the rolling summary derived from a merged history.
// LatestPER은 이동 평균이 아니라 마지막 행의 PER 그대로다.
type Valuation struct {
	TrailingAvgPrice decimal.Decimal
	TrailingAvgRent  decimal.Decimal
	LatestPER        decimal.Decimal
}

// Summarize computes trailing means over the last `window` merged records
// (all records when fewer exist) and picks the PER of the last record.
// Empty input yields all-zero values. 단위 변환 없음: 입력이 만원이면 출력도 만원.
func Summarize(merged []MergedRecord, window int) Valuation {
	if len(merged) == 0 || window <= 0 {
		return Valuation{
			TrailingAvgPrice: decimal.Zero,
			TrailingAvgRent:  decimal.Zero,
			LatestPER:        decimal.Zero,
		}
	}

	start := len(merged) - window
	if start < 0 {
		start = 0
	}
	tail := merged[start:]

	sumPrice := decimal.Zero
	sumRent := decimal.Zero
	for _, rec := range tail {
		sumPrice = sumPrice.Add(rec.SalePrice)
		sumRent = sumRent.Add(rec.RentPrice)
	}

	n := decimal.NewFromInt(int64(len(tail)))
	return Valuation{
		TrailingAvgPrice: sumPrice.Div(n),
		TrailingAvgRent:  sumRent.Div(n),
		LatestPER:        merged[len(merged)-1].PER,
	}
}

// PriceBand is the rent-implied expected sale price range
type PriceBand struct {
	Low  decimal.Decimal `json:"low"`
	High decimal.Decimal `json:"high"`
}

// ExpectedPriceBand estimates a sale price range from average monthly rent
// as rent * 12 * {low, high} multiples. 배수 30/35는 경험칙이며 설정값이다.
func ExpectedPriceBand(avgRent decimal.Decimal, lowMultiple, highMultiple int) PriceBand {
	annual := avgRent.Mul(monthsPerYear)
	return PriceBand{
		Low:  annual.Mul(decimal.NewFromInt(int64(lowMultiple))),
		High: annual.Mul(decimal.NewFromInt(int64(highMultiple))),
	}
}
