// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Inoreader application credentials
	AppID  string
	AppKey string

	// OAuth settings
	TokenFile   string
	RedirectURI string

	// Gemini settings
	GeminiAPIKey  string
	GeminiModel   string
	MaxAIRequests int // maximum AI calls per run (0 = unlimited)

	// Stream selection
	StreamsConfigPath string
	FocusFolder       string // folder label looked up via tag/list when no streams file is set

	// Fetching
	MaxDailyArticles int // total item budget across all pages
	PageSize         int
	UsePagination    bool

	// Report settings
	ReportTitle         string
	MaxArticlesPerTheme int
	SummaryMaxChars     int
	ContentChunkLimit   int

	// Summary cache
	DatabaseURL          string // optional; Postgres cache when set
	SummaryCachePath     string
	SummaryCacheTTLHours int

	// App settings
	Debug               bool
	RequestTimeout      time.Duration
	RetryAttempts       int
	RetryDelay          time.Duration
	HeadlessAuthTimeout time.Duration
}

func Load() (*Config, error) {
	// Best effort; a missing .env file is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		TokenFile:            "inoreader_token.json",
		RedirectURI:          "http://localhost:8080/callback",
		GeminiModel:          "gemini-1.5-flash",
		MaxAIRequests:        0,
		FocusFolder:          "Focus",
		MaxDailyArticles:     100,
		PageSize:             100,
		ReportTitle:          "Daily Intelligence Report",
		MaxArticlesPerTheme:  10,
		SummaryMaxChars:      1200,
		ContentChunkLimit:    400,
		SummaryCachePath:     "summary_cache.json",
		SummaryCacheTTLHours: 72,
		RequestTimeout:       30 * time.Second,
		RetryAttempts:        3,
		RetryDelay:           5 * time.Second,
		HeadlessAuthTimeout:  2 * time.Minute,
	}

	cfg.AppID = os.Getenv("INOREADER_APP_ID")
	cfg.AppKey = os.Getenv("INOREADER_APP_KEY")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.TokenFile = getEnvOrDefault("TOKEN_FILE", cfg.TokenFile)
	cfg.RedirectURI = getEnvOrDefault("OAUTH_REDIRECT_URI", cfg.RedirectURI)
	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	cfg.StreamsConfigPath = os.Getenv("STREAMS_CONFIG_PATH")
	cfg.FocusFolder = getEnvOrDefault("FOCUS_FOLDER", cfg.FocusFolder)
	cfg.ReportTitle = getEnvOrDefault("REPORT_TITLE", cfg.ReportTitle)
	cfg.SummaryCachePath = getEnvOrDefault("SUMMARY_CACHE_PATH", cfg.SummaryCachePath)

	cfg.MaxAIRequests = getEnvIntOrDefault("MAX_AI_REQUESTS", cfg.MaxAIRequests)
	cfg.MaxDailyArticles = getEnvIntOrDefault("MAX_DAILY_ARTICLES", cfg.MaxDailyArticles)
	cfg.PageSize = getEnvIntOrDefault("PAGE_SIZE", cfg.PageSize)
	cfg.MaxArticlesPerTheme = getEnvIntOrDefault("MAX_ARTICLES_PER_THEME", cfg.MaxArticlesPerTheme)
	cfg.SummaryMaxChars = getEnvIntOrDefault("SUMMARY_MAX_CHARS", cfg.SummaryMaxChars)
	cfg.ContentChunkLimit = getEnvIntOrDefault("CONTENT_CHUNK_LIMIT", cfg.ContentChunkLimit)
	cfg.SummaryCacheTTLHours = getEnvIntOrDefault("SUMMARY_CACHE_TTL_HOURS", cfg.SummaryCacheTTLHours)
	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)

	cfg.UsePagination = os.Getenv("USE_PAGINATION") == "true"
	cfg.Debug = os.Getenv("DEBUG") == "true"

	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RequestTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("RETRY_DELAY_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RetryDelay = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("HEADLESS_AUTH_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.HeadlessAuthTimeout = time.Duration(val) * time.Second
		}
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.AppID == "" {
		return fmt.Errorf("INOREADER_APP_ID is required")
	}
	if c.AppKey == "" {
		return fmt.Errorf("INOREADER_APP_KEY is required")
	}
	if c.MaxDailyArticles <= 0 {
		return fmt.Errorf("MAX_DAILY_ARTICLES must be positive")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive")
	}
	return nil
}

// StreamsConfig is the YAML stream list structure:
//
//	streams:
//	  - user/-/label/Focus
//	  - feed/https://example.com/rss
type StreamsConfig struct {
	Streams []string `yaml:"streams"`
}

// LoadStreams reads the stream id list from a YAML file.
func LoadStreams(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg StreamsConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	return cfg.Streams, nil
}
