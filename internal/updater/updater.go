package updater

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/aptper/internal/apt"
	"github.com/wonny/aptper/internal/series"
	"github.com/wonny/aptper/pkg/logger"
)

// Store is the persistence surface the updater needs
type Store interface {
	ListTracked(ctx context.Context) ([]apt.TrackedUnit, error)
	GetRecord(ctx context.Context, name, py string, deal apt.DealType) (*apt.Apartment, error)
	SaveTrend(ctx context.Context, id int64, trend series.Series) error
	ListDescriptions(ctx context.Context) ([]apt.DescriptionRow, error)
	UpdateMeta(ctx context.Context, id int64, address string, builtYM int) error
}

// Source fetches transaction data from the external site
type Source interface {
	FetchTransactions(ctx context.Context, seq, sizeClass string, year int, deal apt.DealType) (series.Series, error)
}

// Updater orchestrates the incremental series refresh across all tracked
// apartments
// ⭐ SSOT: 시세 갱신 오케스트레이션은 이 패키지에서만
type Updater struct {
	store  Store
	source Source
	logger *logger.Logger
	now    func() time.Time
}

// Config holds one refresh run's parameters
type Config struct {
	Workers    int // number of concurrent apartments
	WindowDays int // refresh window (how far back the tail is rebuilt)
}

// NewUpdater creates a new Updater instance
func NewUpdater(store Store, source Source, log *logger.Logger) *Updater {
	return &Updater{
		store:  store,
		source: source,
		logger: log.WithField("module", "updater"),
		now:    time.Now,
	}
}

// FetchResult represents the outcome for one tracked unit
type FetchResult struct {
	Name      string
	SizeClass string
	Updated   int // deal-type rows whose trend changed
	Unchanged int // deal-type rows already up to date
	Missing   int // deal-type rows absent from storage
	Error     error
}

// RefreshAll refreshes the series tail of every tracked unit.
// 아파트 단위로 병렬, 거래유형(매매/전세/월세)은 단위 안에서 순차 처리.
func (u *Updater) RefreshAll(ctx context.Context, cfg Config) ([]FetchResult, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	units, err := u.store.ListTracked(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tracked units: %w", err)
	}

	u.logger.WithFields(map[string]interface{}{
		"unit_count":  len(units),
		"window_days": cfg.WindowDays,
		"workers":     cfg.Workers,
	}).Info("Starting series refresh")

	results := make([]FetchResult, 0, len(units))
	resultCh := make(chan FetchResult, len(units))
	unitCh := make(chan apt.TrackedUnit, len(units))

	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			u.refreshWorker(ctx, workerID, cfg.WindowDays, unitCh, resultCh)
		}(i)
	}

	for _, unit := range units {
		unitCh <- unit
	}
	close(unitCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	successCount := 0
	failCount := 0
	for result := range resultCh {
		results = append(results, result)
		if result.Error != nil {
			failCount++
		} else {
			successCount++
		}
	}

	u.logger.WithFields(map[string]interface{}{
		"success": successCount,
		"failed":  failCount,
		"total":   len(results),
	}).Info("Series refresh completed")

	return results, nil
}

// refreshWorker refreshes the three deal-type rows of each unit it receives
func (u *Updater) refreshWorker(ctx context.Context, workerID, windowDays int, unitCh <-chan apt.TrackedUnit, resultCh chan<- FetchResult) {
	for unit := range unitCh {
		select {
		case <-ctx.Done():
			resultCh <- FetchResult{
				Name:      unit.Name,
				SizeClass: unit.SizeClass,
				Error:     ctx.Err(),
			}
			return
		default:
		}

		result := u.refreshUnit(ctx, windowDays, unit)
		if result.Error != nil {
			u.logger.WithError(result.Error).WithFields(map[string]interface{}{
				"worker": workerID,
				"name":   unit.Name,
				"py":     unit.SizeClass,
			}).Error("Failed to refresh unit")
		} else {
			u.logger.WithFields(map[string]interface{}{
				"worker":    workerID,
				"name":      unit.Name,
				"py":        unit.SizeClass,
				"updated":   result.Updated,
				"unchanged": result.Unchanged,
			}).Debug("Refreshed unit")
		}
		resultCh <- result
	}
}

// refreshUnit refreshes one unit's deal-type rows sequentially. 한 유형이
// 실패해도 나머지 유형은 계속 진행하고, 마지막 에러만 결과에 싣는다.
func (u *Updater) refreshUnit(ctx context.Context, windowDays int, unit apt.TrackedUnit) FetchResult {
	result := FetchResult{Name: unit.Name, SizeClass: unit.SizeClass}
	asOf := u.now()

	for _, deal := range apt.AllDealTypes {
		record, err := u.store.GetRecord(ctx, unit.Name, unit.SizeClass, deal)
		if err != nil {
			result.Error = err
			continue
		}
		if record == nil {
			u.logger.WithFields(map[string]interface{}{
				"name": unit.Name,
				"py":   unit.SizeClass,
				"deal": deal.Label(),
			}).Warn("No stored row for deal type")
			result.Missing++
			continue
		}

		fetch := func(ctx context.Context, year int) (series.Series, error) {
			return u.source.FetchTransactions(ctx, unit.Seq, unit.SizeClass, year, deal)
		}

		refreshed, err := Refresh(ctx, record.Trend, fetch, asOf, windowDays, u.logger)
		if err != nil {
			result.Error = err
			continue
		}

		if refreshed.Equal(record.Trend.Normalize()) {
			result.Unchanged++
			continue
		}

		if err := u.store.SaveTrend(ctx, record.ID, refreshed); err != nil {
			result.Error = err
			continue
		}
		result.Updated++
	}

	return result
}

// BackfillMeta derives address/built-date metadata from stored descriptions
// and writes it back. 추출에 실패한 행은 건너뛴다.
func (u *Updater) BackfillMeta(ctx context.Context) (int, error) {
	rows, err := u.store.ListDescriptions(ctx)
	if err != nil {
		return 0, fmt.Errorf("list descriptions: %w", err)
	}

	updated := 0
	for _, row := range rows {
		select {
		case <-ctx.Done():
			return updated, ctx.Err()
		default:
		}

		address, _ := apt.ExtractAddress(row.Description)
		builtYM, _ := apt.ExtractBuiltYM(row.Description)
		if address == "" && builtYM == 0 {
			continue
		}

		if err := u.store.UpdateMeta(ctx, row.ID, address, builtYM); err != nil {
			u.logger.WithError(err).WithField("id", row.ID).Error("Failed to update meta")
			continue
		}
		updated++
	}

	u.logger.WithFields(map[string]interface{}{
		"rows":    len(rows),
		"updated": updated,
	}).Info("Meta backfill completed")

	return updated, nil
}
