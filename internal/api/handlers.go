package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/trogers1052/gold-quote-crawler/internal/database"
	"github.com/trogers1052/gold-quote-crawler/internal/models"
	"go.uber.org/zap"
)

const maxLimit = 1000

// QuoteReader is the read side of the quote store
type QuoteReader interface {
	GetQuotes(ctx context.Context, f database.QuoteFilter) ([]*models.StoredQuote, error)
	GetLatestQuote(ctx context.Context) (*models.StoredQuote, error)
	GetQuoteByDate(ctx context.Context, date string) (*models.StoredQuote, error)
	Ping(ctx context.Context) error
}

// LatestCache serves the newest quote ahead of the store
type LatestCache interface {
	GetLatest(ctx context.Context) (*models.Quote, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	db     QuoteReader
	cache  LatestCache
	logger *zap.Logger
}

// NewHandler creates a new Handler. cache may be nil.
func NewHandler(db QuoteReader, cache LatestCache, logger *zap.Logger) *Handler {
	return &Handler{
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// GetQuotes handles GET /quotes?days=N&sort=S&limit=L
func (h *Handler) GetQuotes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := database.QuoteFilter{Sort: query.Get("sort")}

	var err error
	if filter.Days, err = intParam(query.Get("days")); err != nil {
		http.Error(w, "days must be a non-negative integer", http.StatusBadRequest)
		return
	}
	if filter.Limit, err = intParam(query.Get("limit")); err != nil || filter.Limit > maxLimit {
		http.Error(w, "limit must be between 0 and 1000", http.StatusBadRequest)
		return
	}
	if filter.Sort != "" && !database.ValidSort(filter.Sort) {
		http.Error(w, "sort must be one of date_desc, date_asc, price_desc, price_asc", http.StatusBadRequest)
		return
	}

	quotes, err := h.db.GetQuotes(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list quotes", zap.Error(err))
		http.Error(w, "failed to list quotes", http.StatusInternalServerError)
		return
	}
	if quotes == nil {
		quotes = []*models.StoredQuote{}
	}

	respondJSON(w, http.StatusOK, quotes)
}

// GetLatestQuote handles GET /quotes/latest
func (h *Handler) GetLatestQuote(w http.ResponseWriter, r *http.Request) {
	if h.cache != nil {
		q, err := h.cache.GetLatest(r.Context())
		if err == nil {
			w.Header().Set("X-Cache", "HIT")
			respondJSON(w, http.StatusOK, q)
			return
		}
		h.logger.Debug("latest quote not served from cache", zap.Error(err))
	}

	q, err := h.db.GetLatestQuote(r.Context())
	if errors.Is(err, models.ErrQuoteNotFound) {
		http.Error(w, "no quotes stored", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to get latest quote", zap.Error(err))
		http.Error(w, "failed to get latest quote", http.StatusInternalServerError)
		return
	}

	w.Header().Set("X-Cache", "MISS")
	respondJSON(w, http.StatusOK, q)
}

// GetQuote handles GET /quotes/{date}
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	q, err := h.db.GetQuoteByDate(r.Context(), date)
	if errors.Is(err, models.ErrQuoteNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to get quote", zap.String("date", date), zap.Error(err))
		http.Error(w, "failed to get quote", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, q)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func intParam(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
