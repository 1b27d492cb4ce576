// Package supabase upserts quotes through a Supabase PostgREST endpoint.
package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/trogers1052/gold-quote-crawler/internal/config"
	"github.com/trogers1052/gold-quote-crawler/internal/models"
)

// ErrNotConfigured is returned by New when the URL or key is missing
var ErrNotConfigured = errors.New("supabase url and key are required")

// apiError is the PostgREST error body
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *apiError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Client talks to one PostgREST table
type Client struct {
	http  *resty.Client
	table string
}

// New creates a Client from cfg
func New(cfg config.SupabaseConfig) (*Client, error) {
	if cfg.URL == "" || cfg.Key == "" {
		return nil, ErrNotConfigured
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimRight(cfg.URL, "/") + "/rest/v1")
	client.SetHeader("apikey", cfg.Key)
	client.SetAuthToken(cfg.Key)
	client.SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &Client{http: client, table: cfg.Table}, nil
}

// UpsertQuote merges q into the table on its date. created is true when no
// row existed for the date before the write.
func (c *Client) UpsertQuote(ctx context.Context, q models.Quote) (bool, error) {
	exists, err := c.quoteExists(ctx, q.Date)
	if err != nil {
		return false, err
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("on_conflict", "date").
		SetHeader("Prefer", "resolution=merge-duplicates,return=minimal").
		SetBody([]models.Quote{q}).
		SetError(&apiError{}).
		Post("/" + c.table)
	if err != nil {
		return false, fmt.Errorf("failed to upsert quote %s: %w", q.Date, err)
	}
	if res.IsError() {
		return false, responseError(q.Date, res)
	}
	return !exists, nil
}

func (c *Client) quoteExists(ctx context.Context, date string) (bool, error) {
	var rows []struct {
		Date string `json:"date"`
	}
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"select": "date",
			"date":   "eq." + date,
			"limit":  "1",
		}).
		SetResult(&rows).
		SetError(&apiError{}).
		Get("/" + c.table)
	if err != nil {
		return false, fmt.Errorf("failed to look up quote %s: %w", date, err)
	}
	if res.IsError() {
		return false, fmt.Errorf("failed to look up quote %s: %w", date, responseError(date, res))
	}
	return len(rows) > 0, nil
}

// GetLatestQuote fetches the newest quote in the table
func (c *Client) GetLatestQuote(ctx context.Context) (*models.Quote, error) {
	var quotes []models.Quote
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"select": "date,buy_pure_375g,sell_pure_375g,sell_18k_375g,sell_14k_375g",
			"order":  "date.desc",
			"limit":  "1",
		}).
		SetResult(&quotes).
		SetError(&apiError{}).
		Get("/" + c.table)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest quote: %w", err)
	}
	if res.IsError() {
		return nil, responseError("latest", res)
	}
	if len(quotes) == 0 {
		return nil, models.ErrQuoteNotFound
	}
	return &quotes[0], nil
}

func responseError(date string, res *resty.Response) error {
	apiErr, _ := res.Error().(*apiError)
	if res.StatusCode() == http.StatusConflict || (apiErr != nil && apiErr.Code == "23505") {
		return fmt.Errorf("quote %s: %w", date, models.ErrDuplicateQuote)
	}
	if apiErr != nil && apiErr.Code != "" {
		return fmt.Errorf("quote %s: status %d: %w", date, res.StatusCode(), apiErr)
	}
	return fmt.Errorf("quote %s: unexpected status %d: %s", date, res.StatusCode(), strings.TrimSpace(res.String()))
}
