package series

import (
	"github.com/shopspring/decimal"
)

// MergedRecord is one row of the aligned sale/rent history.
// PER = 매매가 / (월세 * 12). 월세가 0이면 PER도 0 (무한대/NaN 금지).
type MergedRecord struct {
	Date      Period          `json:"date"`
	SalePrice decimal.Decimal `json:"sale_price"`
	RentPrice decimal.Decimal `json:"rent_price"`
	PER       decimal.Decimal `json:"per"`
}

var monthsPerYear = decimal.NewFromInt(12)

// Merge joins a sale series and a monthly-rent series over the union of
// their periods, ascending. A period missing from one side carries the value
// forward from the nearest earlier period of that side; a leading gap with
// nothing to carry defaults to zero. "마지막 시세 이후 변동 없음"으로
// 해석하는 것이지 "모름"이 아니다.
//
// Either side may be empty; both empty yields an empty result.
func Merge(sale, rent Series) []MergedRecord {
	sale = sale.Normalize()
	rent = rent.Normalize()

	if len(sale) == 0 && len(rent) == 0 {
		return []MergedRecord{}
	}

	merged := make([]MergedRecord, 0, len(sale)+len(rent))

	lastSale := decimal.Zero
	lastRent := decimal.Zero

	// Two-pointer walk over the period union
	i, j := 0, 0
	for i < len(sale) || j < len(rent) {
		var p Period
		switch {
		case i >= len(sale):
			p = rent[j].Date
		case j >= len(rent):
			p = sale[i].Date
		case sale[i].Date < rent[j].Date:
			p = sale[i].Date
		default:
			p = rent[j].Date
		}

		if i < len(sale) && sale[i].Date == p {
			lastSale = sale[i].Avg
			i++
		}
		if j < len(rent) && rent[j].Date == p {
			lastRent = rent[j].Avg
			j++
		}

		merged = append(merged, MergedRecord{
			Date:      p,
			SalePrice: lastSale,
			RentPrice: lastRent,
			PER:       ratio(lastSale, lastRent),
		})
	}

	return merged
}

// ratio computes sale / (rent * 12) with a zero guard
func ratio(sale, rent decimal.Decimal) decimal.Decimal {
	if rent.Sign() <= 0 {
		return decimal.Zero
	}
	return sale.Div(rent.Mul(monthsPerYear))
}
