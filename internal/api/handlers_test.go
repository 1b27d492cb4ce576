package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/gold-quote-crawler/internal/database"
	"github.com/trogers1052/gold-quote-crawler/internal/models"
	"go.uber.org/zap/zaptest"
)

// MockReader implements QuoteReader for testing
type MockReader struct {
	quotes     map[string]*models.StoredQuote
	lastFilter database.QuoteFilter
	err        error
	pingErr    error
}

func NewMockReader(quotes ...*models.StoredQuote) *MockReader {
	m := &MockReader{quotes: make(map[string]*models.StoredQuote)}
	for _, q := range quotes {
		m.quotes[q.Date] = q
	}
	return m
}

func (m *MockReader) GetQuotes(ctx context.Context, f database.QuoteFilter) ([]*models.StoredQuote, error) {
	m.lastFilter = f
	if m.err != nil {
		return nil, m.err
	}
	var out []*models.StoredQuote
	for _, q := range m.quotes {
		out = append(out, q)
	}
	return out, nil
}

func (m *MockReader) GetLatestQuote(ctx context.Context) (*models.StoredQuote, error) {
	if m.err != nil {
		return nil, m.err
	}
	var latest *models.StoredQuote
	for _, q := range m.quotes {
		if latest == nil || q.Date > latest.Date {
			latest = q
		}
	}
	if latest == nil {
		return nil, models.ErrQuoteNotFound
	}
	return latest, nil
}

func (m *MockReader) GetQuoteByDate(ctx context.Context, date string) (*models.StoredQuote, error) {
	if m.err != nil {
		return nil, m.err
	}
	q, ok := m.quotes[date]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrQuoteNotFound, date)
	}
	return q, nil
}

func (m *MockReader) Ping(ctx context.Context) error {
	return m.pingErr
}

type MockCache struct {
	quote *models.Quote
}

func (m *MockCache) GetLatest(ctx context.Context) (*models.Quote, error) {
	if m.quote == nil {
		return nil, errors.New("miss")
	}
	return m.quote, nil
}

func stored(date string, sellPure int64) *models.StoredQuote {
	return &models.StoredQuote{Quote: models.Quote{
		Date:         date,
		SellPure375g: decimal.NewNullDecimal(decimal.NewFromInt(sellPure)),
	}}
}

func serve(t *testing.T, h *Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	SetupRoutes(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestGetQuotes(t *testing.T) {
	reader := NewMockReader(stored("2024-03-05", 1050000), stored("2024-03-04", 1045000))
	h := NewHandler(reader, nil, zaptest.NewLogger(t))

	t.Run("passes filter through", func(t *testing.T) {
		rec := serve(t, h, "/api/v1/quotes?days=30&sort=price_desc&limit=10")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, database.QuoteFilter{Days: 30, Sort: database.SortPriceDesc, Limit: 10}, reader.lastFilter)

		var got []models.StoredQuote
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Len(t, got, 2)
	})

	t.Run("defaults", func(t *testing.T) {
		rec := serve(t, h, "/api/v1/quotes")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, database.QuoteFilter{}, reader.lastFilter)
	})

	badRequests := []string{
		"/api/v1/quotes?days=-1",
		"/api/v1/quotes?days=week",
		"/api/v1/quotes?sort=cheapest",
		"/api/v1/quotes?limit=5000",
	}
	for _, target := range badRequests {
		t.Run(target, func(t *testing.T) {
			rec := serve(t, h, target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetQuotesEmptyIsArray(t *testing.T) {
	h := NewHandler(NewMockReader(), nil, zaptest.NewLogger(t))
	rec := serve(t, h, "/api/v1/quotes")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetQuotesStoreError(t *testing.T) {
	reader := NewMockReader()
	reader.err = errors.New("connection refused")
	h := NewHandler(reader, nil, zaptest.NewLogger(t))

	rec := serve(t, h, "/api/v1/quotes")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestGetLatestQuote(t *testing.T) {
	reader := NewMockReader(stored("2024-03-05", 1050000), stored("2024-03-04", 1045000))

	t.Run("cache hit", func(t *testing.T) {
		h := NewHandler(reader, &MockCache{quote: &models.Quote{Date: "2024-03-06"}}, zaptest.NewLogger(t))
		rec := serve(t, h, "/api/v1/quotes/latest")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))

		var got models.Quote
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "2024-03-06", got.Date)
	})

	t.Run("cache miss falls back to store", func(t *testing.T) {
		h := NewHandler(reader, &MockCache{}, zaptest.NewLogger(t))
		rec := serve(t, h, "/api/v1/quotes/latest")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))

		var got models.StoredQuote
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "2024-03-05", got.Date)
	})

	t.Run("empty store", func(t *testing.T) {
		h := NewHandler(NewMockReader(), nil, zaptest.NewLogger(t))
		rec := serve(t, h, "/api/v1/quotes/latest")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGetQuote(t *testing.T) {
	h := NewHandler(NewMockReader(stored("2024-03-05", 1050000)), nil, zaptest.NewLogger(t))

	rec := serve(t, h, "/api/v1/quotes/2024-03-05")
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.StoredQuote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, decimal.NewFromInt(1050000).Equal(got.SellPure375g.Decimal))

	assert.Equal(t, http.StatusNotFound, serve(t, h, "/api/v1/quotes/2024-03-01").Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, h, "/api/v1/quotes/2024.03.05").Code)
}

func TestHealthCheck(t *testing.T) {
	reader := NewMockReader()
	h := NewHandler(reader, nil, zaptest.NewLogger(t))

	rec := serve(t, h, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())

	reader.pingErr = errors.New("down")
	rec = serve(t, h, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
