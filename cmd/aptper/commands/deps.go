package commands

import (
	"fmt"

	"github.com/wonny/aptper/internal/apt"
	"github.com/wonny/aptper/internal/external/asil"
	"github.com/wonny/aptper/internal/snapshot"
	"github.com/wonny/aptper/internal/updater"
	"github.com/wonny/aptper/pkg/config"
	"github.com/wonny/aptper/pkg/database"
	"github.com/wonny/aptper/pkg/httputil"
	"github.com/wonny/aptper/pkg/logger"
	"github.com/wonny/aptper/pkg/redis"
)

// deps bundles the shared application dependencies for the CLI commands
type deps struct {
	config    *config.Config
	logger    *logger.Logger
	db        *database.DB
	redis     *redis.Client
	cache     *redis.Cache
	asil      *asil.Client
	repo      *apt.Repository
	summaries *apt.SummaryRepository
	updater   *updater.Updater
	publisher *snapshot.Publisher
}

// initDeps wires up the full dependency graph
// ⭐ SSOT: 의존성 조립은 이 함수에서만
func initDeps() (*deps, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// 4. Connect to Redis (비활성화면 no-op)
	rdb, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	cache := redis.NewCache(rdb, "aptper")

	// 5. Create HTTP client with rate limiting
	// 로컬 토큰 버킷은 항상, Redis 슬라이딩 윈도우는 활성화됐을 때만
	httpClient := httputil.NewWithTimeout(cfg, log, cfg.Asil.Timeout).
		WithLocalRateLimit(cfg.Asil.RatePerSec)
	if rdb.Enabled() {
		limiter := redis.NewRateLimiter(rdb, "aptper")
		httpClient = httpClient.WithRateLimiter(limiter, redis.AsilRateLimit)
	}

	// 6. Create external client
	asilClient := asil.NewClient(httpClient, log, cfg.Asil.BaseURL)

	// 7. Create repositories
	repo := apt.NewRepository(db.Pool)
	summaries := apt.NewSummaryRepository(db.Pool)

	// 8. Create batch components
	upd := updater.NewUpdater(repo, asilClient, log)
	pub := snapshot.NewPublisher(repo, summaries, cfg.Batch.TrailingMonths, log)

	return &deps{
		config:    cfg,
		logger:    log,
		db:        db,
		redis:     rdb,
		cache:     cache,
		asil:      asilClient,
		repo:      repo,
		summaries: summaries,
		updater:   upd,
		publisher: pub,
	}, nil
}

// close releases the connections
func (d *deps) close() {
	if d.redis != nil {
		_ = d.redis.Close()
	}
	if d.db != nil {
		d.db.Close()
	}
}
