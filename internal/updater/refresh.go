package updater

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/aptper/internal/series"
	"github.com/wonny/aptper/pkg/logger"
)

// FetchFunc fetches the monthly observations of one calendar year
type FetchFunc func(ctx context.Context, year int) (series.Series, error)

// Refresh rebuilds the stale tail of a stored series.
//
// 기준월(cutoff)은 asOf에서 windowDays를 뺀 날이 속한 월이다. cutoff 이전
// 구간은 그대로 보존하고, cutoff부터 현재까지는 소스에서 다시 받아 교체한다.
// 소스가 기준월 이전 데이터를 돌려줘도 버린다 — 보존 구간은 소스 상태와
// 무관하게 안정적이어야 한다.
//
// 연도별 조회 실패는 비치명적이다: 해당 연도만 빠지고 나머지는 진행한다.
// 단, 모든 연도가 실패하면 꼬리를 비워 버리는 대신 에러를 돌려준다.
func Refresh(ctx context.Context, existing series.Series, fetch FetchFunc, asOf time.Time, windowDays int, log *logger.Logger) (series.Series, error) {
	if windowDays <= 0 {
		return nil, fmt.Errorf("refresh window must be positive, got %d", windowDays)
	}

	cutoff := series.PeriodOf(asOf.AddDate(0, 0, -windowDays))

	base := existing.Normalize()
	kept := make(series.Series, 0, len(base))
	for _, obs := range base {
		if obs.Date < cutoff {
			kept = append(kept, obs)
		}
	}

	var fetched series.Series
	var errs []error
	years := 0
	for year := cutoff.Year(); year <= asOf.Year(); year++ {
		years++

		yearly, err := fetch(ctx, year)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			log.WithError(err).WithField("year", year).Warn("Fetch year failed, skipping")
			errs = append(errs, err)
			continue
		}

		for _, obs := range yearly {
			if obs.Date >= cutoff {
				fetched = append(fetched, obs)
			}
		}
	}

	if len(errs) == years {
		return nil, fmt.Errorf("all %d fetch years failed: %w", years, errors.Join(errs...))
	}

	return append(kept, fetched...).Normalize(), nil
}
