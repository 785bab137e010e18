package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/wonny/aptper/internal/apt"
	"github.com/wonny/aptper/internal/external/asil"
	"github.com/wonny/aptper/internal/snapshot"
	"github.com/wonny/aptper/internal/updater"
	"github.com/wonny/aptper/pkg/config"
	"github.com/wonny/aptper/pkg/logger"
	"github.com/wonny/aptper/pkg/redis"
)

// AdminHandler handles registration and batch-trigger endpoints
// ⭐ SSOT: 관리자 API 핸들러는 이 구조체에서만
type AdminHandler struct {
	repo       *apt.Repository
	summaries  *apt.SummaryRepository
	asilClient *asil.Client
	updater    *updater.Updater
	publisher  *snapshot.Publisher
	cache      *redis.Cache
	config     *config.Config
	logger     *logger.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	repo *apt.Repository,
	summaries *apt.SummaryRepository,
	asilClient *asil.Client,
	upd *updater.Updater,
	pub *snapshot.Publisher,
	cache *redis.Cache,
	cfg *config.Config,
	log *logger.Logger,
) *AdminHandler {
	return &AdminHandler{
		repo:       repo,
		summaries:  summaries,
		asilClient: asilClient,
		updater:    upd,
		publisher:  pub,
		cache:      cache,
		config:     cfg,
		logger:     log,
	}
}

// AddRequest registers a new apartment unit for tracking
type AddRequest struct {
	Name string `json:"name"` // 단지명 (아실 검색 키워드)
	PY   string `json:"py"`   // 평형
}

// AddResponse reports the registered unit
type AddResponse struct {
	Status      string `json:"status"`
	Name        string `json:"name"`
	PY          string `json:"py"`
	Seq         string `json:"seq"`
	Description string `json:"description"`
}

// Add searches the source for the complex and registers one row per deal
// type, all marked for batch refresh
// POST /api/admin/apartments
func (h *AdminHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.PY = strings.TrimSpace(req.PY)
	if req.Name == "" || req.PY == "" {
		respondError(w, http.StatusBadRequest, "name and py are required")
		return
	}

	exists, err := h.repo.Exists(ctx, req.Name, req.PY)
	if err != nil {
		h.logger.WithError(err).Error("Failed to check existing unit")
		respondError(w, http.StatusInternalServerError, "Failed to register apartment")
		return
	}
	if exists {
		respondError(w, http.StatusConflict, "Apartment already registered")
		return
	}

	results, err := h.asilClient.SearchComplexes(ctx, req.Name)
	if err != nil {
		h.logger.WithError(err).Error("Complex search failed")
		respondError(w, http.StatusBadGateway, "Complex search failed")
		return
	}
	match := pickComplex(results, req.Name)
	if match == nil {
		respondError(w, http.StatusNotFound, "No matching complex found")
		return
	}

	address, _ := apt.ExtractAddress(match.Description)
	builtYM, _ := apt.ExtractBuiltYM(match.Description)

	for _, deal := range apt.AllDealTypes {
		record := &apt.Apartment{
			Name:        req.Name,
			SizeClass:   req.PY,
			DealType:    deal,
			Seq:         match.Seq,
			Description: match.Description,
			Status:      1,
			Address:     address,
			BuiltYM:     builtYM,
		}
		if err := h.repo.Insert(ctx, record); err != nil {
			h.logger.WithError(err).WithField("deal", deal.Label()).Error("Failed to insert row")
			respondError(w, http.StatusInternalServerError, "Failed to register apartment")
			return
		}
	}

	h.invalidateListCaches(r)

	h.logger.WithFields(map[string]interface{}{
		"name": req.Name,
		"py":   req.PY,
		"seq":  match.Seq,
	}).Info("Registered apartment")

	respondJSON(w, http.StatusCreated, AddResponse{
		Status:      "created",
		Name:        req.Name,
		PY:          req.PY,
		Seq:         match.Seq,
		Description: match.Description,
	})
}

// pickComplex chooses the search hit to register: exact name match first,
// otherwise the first hit.
func pickComplex(results []asil.ComplexResult, name string) *asil.ComplexResult {
	if len(results) == 0 {
		return nil
	}
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return &results[0]
}

// Delete removes a tracked unit and its published snapshot
// DELETE /api/admin/apartments?name=...&py=...
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name := r.URL.Query().Get("name")
	py := r.URL.Query().Get("py")
	if name == "" || py == "" {
		respondError(w, http.StatusBadRequest, "name and py are required")
		return
	}

	removed, err := h.repo.Delete(ctx, name, py)
	if err != nil {
		h.logger.WithError(err).Error("Failed to delete apartment")
		respondError(w, http.StatusInternalServerError, "Failed to delete apartment")
		return
	}
	if removed == 0 {
		respondError(w, http.StatusNotFound, "Apartment not found")
		return
	}

	if err := h.summaries.Delete(ctx, name, py); err != nil {
		h.logger.WithError(err).Warn("Failed to delete snapshot row")
	}

	h.invalidateListCaches(r)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "deleted",
		"name":    name,
		"py":      py,
		"removed": removed,
	})
}

// RefreshRequest triggers a series refresh run
type RefreshRequest struct {
	Fast bool `json:"fast"` // true면 180일 창, 아니면 365일 창
	Meta bool `json:"meta"` // true면 주소/준공년월 백필 포함
}

// Refresh runs the incremental series refresh across all tracked units
// POST /api/admin/refresh
func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RefreshRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	windowDays := h.config.Batch.RefreshWindowDays
	if req.Fast {
		windowDays = h.config.Batch.RefreshFastWindowDays
	}

	h.logger.WithFields(map[string]interface{}{
		"window_days": windowDays,
		"meta":        req.Meta,
	}).Info("Series refresh triggered")

	results, err := h.updater.RefreshAll(ctx, updater.Config{
		Workers:    h.config.Batch.Workers,
		WindowDays: windowDays,
	})
	if err != nil {
		h.logger.WithError(err).Error("Series refresh failed")
		respondError(w, http.StatusInternalServerError, "Series refresh failed")
		return
	}

	if req.Meta {
		if _, err := h.updater.BackfillMeta(ctx); err != nil {
			h.logger.WithError(err).Warn("Meta backfill failed")
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "success",
		"window_days": windowDays,
		"results":     results,
	})
}

// Publish rebuilds and publishes every valuation snapshot
// POST /api/admin/publish
func (h *AdminHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.publisher.PublishAll(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Snapshot publish failed")
		respondError(w, http.StatusInternalServerError, "Snapshot publish failed")
		return
	}

	// 요약 목록 캐시는 바로 무효화한다
	if err := h.cache.Delete(ctx, redis.SummaryListKey()); err != nil {
		h.logger.WithError(err).Warn("Failed to invalidate summary cache")
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "success",
		"published": stats.Published,
		"failed":    stats.Failed,
	})
}

func (h *AdminHandler) invalidateListCaches(r *http.Request) {
	ctx := r.Context()
	if err := h.cache.Delete(ctx, redis.ApartmentListKey()); err != nil {
		h.logger.WithError(err).Warn("Failed to invalidate apartment cache")
	}
	if err := h.cache.Delete(ctx, redis.SummaryListKey()); err != nil {
		h.logger.WithError(err).Warn("Failed to invalidate summary cache")
	}
}
