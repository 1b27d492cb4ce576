package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := Load()

		assert.Equal(t, 100, cfg.Crawler.RowCap)
		assert.Equal(t, 10, cfg.Crawler.MaxPages)
		assert.Equal(t, 10*time.Second, cfg.Crawler.WaitTimeout)
		assert.Equal(t, 2*time.Second, cfg.Crawler.PageSettle)
		assert.Equal(t, `button[data-page="next"]`, cfg.Crawler.NextSelector)
		assert.True(t, cfg.Crawler.Headless)
		assert.Equal(t, "supabase", cfg.Store.Backend)
		assert.Equal(t, "quotes", cfg.Supabase.Table)
		assert.Empty(t, cfg.Kafka.Brokers)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("CRAWLER_ROW_CAP", "50")
		t.Setenv("CRAWLER_PAGE_SETTLE", "250ms")
		t.Setenv("CRAWLER_HEADLESS", "false")
		t.Setenv("STORE_BACKEND", "Postgres")
		t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

		cfg := Load()

		assert.Equal(t, 50, cfg.Crawler.RowCap)
		assert.Equal(t, 250*time.Millisecond, cfg.Crawler.PageSettle)
		assert.False(t, cfg.Crawler.Headless)
		assert.Equal(t, "postgres", cfg.Store.Backend)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	})

	t.Run("malformed values fall back to defaults", func(t *testing.T) {
		t.Setenv("CRAWLER_MAX_PAGES", "ten")
		t.Setenv("CRAWLER_WAIT_TIMEOUT", "soon")

		cfg := Load()

		assert.Equal(t, 10, cfg.Crawler.MaxPages)
		assert.Equal(t, 10*time.Second, cfg.Crawler.WaitTimeout)
	})
}

func TestConnectionString(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "gold", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/gold?sslmode=disable", d.ConnectionString())
}

func TestExportEnabled(t *testing.T) {
	t.Setenv("EXPORT_XLSX", "none")
	cfg := Load()

	assert.False(t, cfg.Export.Enabled(cfg.Export.XLSXName))
	assert.True(t, cfg.Export.Enabled(cfg.Export.CSVName))
	assert.False(t, cfg.Export.Enabled("NONE"))
	assert.False(t, cfg.Export.Enabled(""))
}
