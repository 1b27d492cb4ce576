package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Crawler  CrawlerConfig
	Export   ExportConfig
	Store    StoreConfig
	Database DatabaseConfig
	Supabase SupabaseConfig
	SQLite   SQLiteConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Server   ServerConfig
	Log      LogConfig
}

// CrawlerConfig holds the target page, its selectors and the walk bounds
type CrawlerConfig struct {
	URL            string
	TableSelector  string
	RowSelector    string
	CellSelector   string
	NextSelector   string
	RowCap         int
	MaxPages       int
	WaitTimeout    time.Duration
	InitialSettle  time.Duration
	RenderSettle   time.Duration
	PageSettle     time.Duration
	Headless       bool
	ChromePath     string
	SessionTimeout time.Duration
}

// ExportDisabled as a file name turns that export format off
const ExportDisabled = "none"

// ExportConfig holds local export destinations
type ExportConfig struct {
	Dir      string
	XLSXName string
	CSVName  string
}

// StoreConfig selects the remote store backend: supabase, postgres, sqlite or none
type StoreConfig struct {
	Backend string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// SupabaseConfig holds PostgREST endpoint configuration
type SupabaseConfig struct {
	URL     string
	Key     string
	Table   string
	Timeout time.Duration
}

// SQLiteConfig holds the local store file path
type SQLiteConfig struct {
	Path string
}

// RedisConfig holds Redis configuration. An empty Addr disables the cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// KafkaConfig holds Kafka configuration. No brokers disables publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level       string
	Environment string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Crawler: CrawlerConfig{
			URL:            getEnv("CRAWLER_URL", "https://www.koreagoldx.co.kr/price/gold"),
			TableSelector:  getEnv("CRAWLER_TABLE_SELECTOR", "#example-table"),
			RowSelector:    getEnv("CRAWLER_ROW_SELECTOR", "#example-table .tabulator-row"),
			CellSelector:   getEnv("CRAWLER_CELL_SELECTOR", ".tabulator-cell"),
			NextSelector:   getEnv("CRAWLER_NEXT_SELECTOR", `button[data-page="next"]`),
			RowCap:         getEnvInt("CRAWLER_ROW_CAP", 100),
			MaxPages:       getEnvInt("CRAWLER_MAX_PAGES", 10),
			WaitTimeout:    getEnvDuration("CRAWLER_WAIT_TIMEOUT", 10*time.Second),
			InitialSettle:  getEnvDuration("CRAWLER_INITIAL_SETTLE", 3*time.Second),
			RenderSettle:   getEnvDuration("CRAWLER_RENDER_SETTLE", 2*time.Second),
			PageSettle:     getEnvDuration("CRAWLER_PAGE_SETTLE", 2*time.Second),
			Headless:       getEnvBool("CRAWLER_HEADLESS", true),
			ChromePath:     getEnv("CHROME_PATH", ""),
			SessionTimeout: getEnvDuration("CRAWLER_SESSION_TIMEOUT", 5*time.Minute),
		},
		Export: ExportConfig{
			Dir:      getEnv("EXPORT_DIR", "."),
			XLSXName: getEnv("EXPORT_XLSX", "gold_prices.xlsx"),
			CSVName:  getEnv("EXPORT_CSV", "gold_prices.csv"),
		},
		Store: StoreConfig{
			Backend: strings.ToLower(getEnv("STORE_BACKEND", "supabase")),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "goldquotes"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Supabase: SupabaseConfig{
			URL:     getEnv("SUPABASE_URL", ""),
			Key:     getEnv("SUPABASE_KEY", ""),
			Table:   getEnv("SUPABASE_TABLE", "quotes"),
			Timeout: getEnvDuration("SUPABASE_TIMEOUT", 15*time.Second),
		},
		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "gold_prices.db"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("REDIS_TTL", 48*time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("KAFKA_TOPIC", "gold-quote-events"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Log: LogConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Environment: getEnv("ENVIRONMENT", "production"),
		},
	}
}

// Enabled reports whether an export file name is set to something other than
// ExportDisabled
func (e ExportConfig) Enabled(name string) bool {
	return name != "" && !strings.EqualFold(name, ExportDisabled)
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

// Addr returns the host:port the HTTP server listens on
func (s *ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return d
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
