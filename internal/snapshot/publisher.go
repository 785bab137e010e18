package snapshot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/aptper/internal/apt"
	"github.com/wonny/aptper/internal/series"
	"github.com/wonny/aptper/pkg/logger"
)

// SeriesStore is the raw-series read surface the publisher needs
type SeriesStore interface {
	ListTracked(ctx context.Context) ([]apt.TrackedUnit, error)
	GetRecord(ctx context.Context, name, py string, deal apt.DealType) (*apt.Apartment, error)
}

// SummaryStore persists valuation snapshots
type SummaryStore interface {
	Get(ctx context.Context, name, py string) (*apt.Summary, error)
	Insert(ctx context.Context, s *apt.Summary) error
	Update(ctx context.Context, s *apt.Summary) error
}

// Publisher derives valuation snapshots from stored series and upserts them
// into the summary table.
// ⭐ SSOT: 스냅샷 발행은 이 패키지에서만
type Publisher struct {
	store          SeriesStore
	summaries      SummaryStore
	logger         *logger.Logger
	trailingMonths int
	now            func() time.Time

	// (name, py) 키별 직렬화. read-then-branch upsert가 동시 실행으로
	// 중복 insert를 만들지 않게 한다. DB의 유니크 인덱스가 최후 방어선.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewPublisher creates a new snapshot publisher
func NewPublisher(store SeriesStore, summaries SummaryStore, trailingMonths int, log *logger.Logger) *Publisher {
	return &Publisher{
		store:          store,
		summaries:      summaries,
		logger:         log.WithField("module", "snapshot"),
		trailingMonths: trailingMonths,
		now:            time.Now,
		locks:          make(map[string]*sync.Mutex),
	}
}

func (p *Publisher) keyLock(name, py string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := name + "/" + py
	lock, ok := p.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[key] = lock
	}
	return lock
}

// Publish upserts one valuation snapshot. 같은 키에 대한 발행은 직렬화되며,
// 행이 있으면 갱신하고 없으면 새로 만든다. 타임스탬프는 발행 시각.
func (p *Publisher) Publish(ctx context.Context, id apt.Identity, v series.Valuation) error {
	lock := p.keyLock(id.Name, id.SizeClass)
	lock.Lock()
	defer lock.Unlock()

	existing, err := p.summaries.Get(ctx, id.Name, id.SizeClass)
	if err != nil {
		return fmt.Errorf("load snapshot %s/%s: %w", id.Name, id.SizeClass, err)
	}

	summary := &apt.Summary{
		AptName:      id.Name,
		AptPY:        id.SizeClass,
		LastAvgPrice: v.TrailingAvgPrice,
		LastAvgRent:  v.TrailingAvgRent,
		LastPER:      v.LatestPER,
		Updated:      p.now().UTC(),
	}

	if existing == nil {
		if err := p.summaries.Insert(ctx, summary); err != nil {
			return fmt.Errorf("insert snapshot %s/%s: %w", id.Name, id.SizeClass, err)
		}
		return nil
	}

	summary.ID = existing.ID
	if err := p.summaries.Update(ctx, summary); err != nil {
		return fmt.Errorf("update snapshot %s/%s: %w", id.Name, id.SizeClass, err)
	}
	return nil
}

// PublishUnit derives and publishes the snapshot of one tracked unit.
// 매매와 월세 시리즈를 병합해 요약한다. 한쪽이라도 저장 행이 없으면
// 발행하지 않는다.
func (p *Publisher) PublishUnit(ctx context.Context, id apt.Identity) error {
	sale, err := p.store.GetRecord(ctx, id.Name, id.SizeClass, apt.DealSale)
	if err != nil {
		return err
	}
	rent, err := p.store.GetRecord(ctx, id.Name, id.SizeClass, apt.DealMonthly)
	if err != nil {
		return err
	}
	if sale == nil || rent == nil {
		return fmt.Errorf("snapshot %s/%s: missing sale or rent row", id.Name, id.SizeClass)
	}

	merged := series.Merge(sale.Trend, rent.Trend)
	if len(merged) == 0 {
		return fmt.Errorf("snapshot %s/%s: no observations", id.Name, id.SizeClass)
	}

	valuation := series.Summarize(merged, p.trailingMonths)
	return p.Publish(ctx, id, valuation)
}

// Stats summarizes one publish run
type Stats struct {
	Published int
	Failed    int
}

// PublishAll publishes a snapshot for every tracked unit. 단위별 실패는
// 격리되어 나머지 발행을 막지 않는다.
func (p *Publisher) PublishAll(ctx context.Context) (Stats, error) {
	units, err := p.store.ListTracked(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("list tracked units: %w", err)
	}

	p.logger.WithField("unit_count", len(units)).Info("Starting snapshot publish")

	var stats Stats
	for _, unit := range units {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		if err := p.PublishUnit(ctx, unit.Identity()); err != nil {
			p.logger.WithError(err).WithFields(map[string]interface{}{
				"name": unit.Name,
				"py":   unit.SizeClass,
			}).Error("Failed to publish snapshot")
			stats.Failed++
			continue
		}
		stats.Published++
	}

	p.logger.WithFields(map[string]interface{}{
		"published": stats.Published,
		"failed":    stats.Failed,
	}).Info("Snapshot publish completed")

	return stats, nil
}
