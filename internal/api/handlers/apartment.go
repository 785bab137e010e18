package handlers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/aptper/internal/apt"
	"github.com/wonny/aptper/internal/series"
	"github.com/wonny/aptper/pkg/config"
	"github.com/wonny/aptper/pkg/logger"
	"github.com/wonny/aptper/pkg/redis"
)

// ApartmentHandler handles apartment read endpoints
// ⭐ SSOT: 아파트 조회 API 핸들러는 이 구조체에서만
type ApartmentHandler struct {
	repo      *apt.Repository
	summaries *apt.SummaryRepository
	cache     *redis.Cache
	config    *config.Config
	logger    *logger.Logger
}

// NewApartmentHandler creates a new apartment handler
func NewApartmentHandler(
	repo *apt.Repository,
	summaries *apt.SummaryRepository,
	cache *redis.Cache,
	cfg *config.Config,
	log *logger.Logger,
) *ApartmentHandler {
	return &ApartmentHandler{
		repo:      repo,
		summaries: summaries,
		cache:     cache,
		config:    cfg,
		logger:    log,
	}
}

// List returns the tracked apartment units with display metadata
// GET /api/apartments
func (h *ApartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var units []apt.UnitMeta
	if found, err := h.cache.Get(ctx, redis.ApartmentListKey(), &units); err == nil && found {
		respondJSON(w, http.StatusOK, units)
		return
	}

	units, err := h.repo.ListUnits(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list apartments")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve apartments")
		return
	}

	if err := h.cache.Set(ctx, redis.ApartmentListKey(), units, redis.TTLDaily); err != nil {
		h.logger.WithError(err).Warn("Failed to cache apartment list")
	}

	respondJSON(w, http.StatusOK, units)
}

// SeriesResponse is the stored series of one deal type
type SeriesResponse struct {
	Name     string        `json:"name"`
	PY       string        `json:"py"`
	DealType string        `json:"deal_type"`
	Trend    series.Series `json:"trend"`
}

// GetSeries returns the stored monthly series of one deal type
// GET /api/apartments/series?name=...&py=...&deal_type=1
func (h *ApartmentHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name := r.URL.Query().Get("name")
	py := r.URL.Query().Get("py")
	if name == "" || py == "" {
		respondError(w, http.StatusBadRequest, "name and py are required")
		return
	}

	deal := apt.DealType(r.URL.Query().Get("deal_type"))
	if deal == "" {
		deal = apt.DealSale
	}
	if !deal.Valid() {
		respondError(w, http.StatusBadRequest, "deal_type must be 1 (매매), 2 (전세) or 3 (월세)")
		return
	}

	record, err := h.repo.GetRecord(ctx, name, py, deal)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get series")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve series")
		return
	}
	if record == nil {
		respondError(w, http.StatusNotFound, "Apartment not found")
		return
	}

	respondJSON(w, http.StatusOK, SeriesResponse{
		Name:     record.Name,
		PY:       record.SizeClass,
		DealType: string(record.DealType),
		Trend:    record.Trend,
	})
}

// ValuationResponse is the derived valuation view of one unit
type ValuationResponse struct {
	Name      string                `json:"name"`
	PY        string                `json:"py"`
	Records   []series.MergedRecord `json:"records"`
	AvgPrice  decimal.Decimal       `json:"trailing_avg_price"`
	AvgRent   decimal.Decimal       `json:"trailing_avg_rent"`
	LatestPER decimal.Decimal       `json:"latest_per"`
	BandLow   decimal.Decimal       `json:"expected_price_low"`
	BandHigh  decimal.Decimal       `json:"expected_price_high"`
}

// GetValuation merges the sale and monthly-rent series of one unit and
// returns the derived valuation with the rent-based expected price band
// GET /api/apartments/valuation?name=...&py=...
func (h *ApartmentHandler) GetValuation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name := r.URL.Query().Get("name")
	py := r.URL.Query().Get("py")
	if name == "" || py == "" {
		respondError(w, http.StatusBadRequest, "name and py are required")
		return
	}

	sale, err := h.repo.GetRecord(ctx, name, py, apt.DealSale)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get sale series")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve valuation")
		return
	}
	rent, err := h.repo.GetRecord(ctx, name, py, apt.DealMonthly)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get rent series")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve valuation")
		return
	}
	if sale == nil || rent == nil {
		respondError(w, http.StatusNotFound, "Apartment not found")
		return
	}

	merged := series.Merge(sale.Trend, rent.Trend)
	valuation := series.Summarize(merged, h.config.Batch.TrailingMonths)
	band := series.ExpectedPriceBand(
		valuation.TrailingAvgRent,
		h.config.Batch.RentMultipleLow,
		h.config.Batch.RentMultipleHigh,
	)

	respondJSON(w, http.StatusOK, ValuationResponse{
		Name:      name,
		PY:        py,
		Records:   merged,
		AvgPrice:  valuation.TrailingAvgPrice,
		AvgRent:   valuation.TrailingAvgRent,
		LatestPER: valuation.LatestPER,
		BandLow:   band.Low,
		BandHigh:  band.High,
	})
}

// SummaryResponse is one published snapshot row
type SummaryResponse struct {
	AptName      string          `json:"apt_name"`
	AptPY        string          `json:"apt_py"`
	LastAvgPrice decimal.Decimal `json:"last_avg_price"`
	LastAvgRent  decimal.Decimal `json:"last_avg_rent"`
	LastPER      decimal.Decimal `json:"last_per"`
	Updated      string          `json:"updated"`
}

// ListSummaries returns every published valuation snapshot
// GET /api/summaries
func (h *ApartmentHandler) ListSummaries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var cached []SummaryResponse
	if found, err := h.cache.Get(ctx, redis.SummaryListKey(), &cached); err == nil && found {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	rows, err := h.summaries.List(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list summaries")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve summaries")
		return
	}

	result := make([]SummaryResponse, 0, len(rows))
	for _, row := range rows {
		result = append(result, SummaryResponse{
			AptName:      row.AptName,
			AptPY:        row.AptPY,
			LastAvgPrice: row.LastAvgPrice,
			LastAvgRent:  row.LastAvgRent,
			LastPER:      row.LastPER,
			Updated:      row.Updated.UTC().Format(time.RFC3339),
		})
	}

	if err := h.cache.Set(ctx, redis.SummaryListKey(), result, redis.TTLMedium); err != nil {
		h.logger.WithError(err).Warn("Failed to cache summary list")
	}

	respondJSON(w, http.StatusOK, result)
}
