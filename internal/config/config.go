package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// LLMConfig selects and authenticates the enrichment model.
type LLMConfig struct {
	Provider        string
	OpenAIKey       string
	OpenAIModel     string
	AnthropicKey    string
	AnthropicModel  string
	RequestTimeout  time.Duration
	MaxExcerptChars int
}

// SourcesConfig carries provider credentials for the external adapters.
type SourcesConfig struct {
	GooglePlacesKey     string
	OpenCorporatesToken string
	CompaniesHouseKey   string
	EnableSynthetic     bool
	DefaultDataSources  []string
	RequestTimeout      time.Duration
	MaxResultsPerSource int
}

// ScrapeConfig configures website fetching.
type ScrapeConfig struct {
	FirecrawlKey     string
	FirecrawlBaseURL string
	UserAgent        string
	FetchTimeout     time.Duration
	ProbeTimeout     time.Duration
	Concurrency      int
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string
	Format string
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL     string
	JWTSecret       string
	Port            string
	NotifyBaseURL   string
	CatalogPath     string
	RateLimitScrape RateLimitConfig
	TokenTTL        time.Duration
	LLM             LLMConfig
	Sources         SourcesConfig
	Scrape          ScrapeConfig
	Log             LogConfig
}

// Load reads configuration from the environment and an optional config.yaml, applying defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database_url", "")
	v.SetDefault("jwt_secret", "dev-secret")
	v.SetDefault("port", "8080")
	v.SetDefault("jwt_ttl", "24h")
	v.SetDefault("rate_limit_scrape", "5/min")
	v.SetDefault("notify_base_url", "")
	v.SetDefault("catalog_path", "")
	v.SetDefault("llm_provider", "")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_model", "gpt-4o-mini")
	v.SetDefault("anthropic_api_key", "")
	v.SetDefault("anthropic_model", "claude-haiku-4-5-20251001")
	v.SetDefault("llm_timeout", "20s")
	v.SetDefault("google_places_api_key", "")
	v.SetDefault("opencorporates_api_token", "")
	v.SetDefault("companies_house_api_key", "")
	v.SetDefault("enable_synthetic_sources", false)
	v.SetDefault("default_data_sources", "google_places,opencorporates,companies_house")
	v.SetDefault("source_timeout", "15s")
	v.SetDefault("source_max_results", 20)
	v.SetDefault("firecrawl_api_key", "")
	v.SetDefault("firecrawl_base_url", "https://api.firecrawl.dev/v1")
	v.SetDefault("scrape_user_agent", "CompanyDiscoveryBot/1.0 (+https://octobees.com/bot)")
	v.SetDefault("scrape_timeout", "15s")
	v.SetDefault("probe_timeout", "10s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	cfg := &Config{
		DatabaseURL:   v.GetString("database_url"),
		JWTSecret:     v.GetString("jwt_secret"),
		Port:          v.GetString("port"),
		NotifyBaseURL: v.GetString("notify_base_url"),
		CatalogPath:   v.GetString("catalog_path"),
		TokenTTL:      parseDuration(v.GetString("jwt_ttl"), 24*time.Hour),
		LLM: LLMConfig{
			Provider:        strings.ToLower(strings.TrimSpace(v.GetString("llm_provider"))),
			OpenAIKey:       v.GetString("openai_api_key"),
			OpenAIModel:     v.GetString("openai_model"),
			AnthropicKey:    v.GetString("anthropic_api_key"),
			AnthropicModel:  v.GetString("anthropic_model"),
			RequestTimeout:  parseDuration(v.GetString("llm_timeout"), 20*time.Second),
			MaxExcerptChars: 6000,
		},
		Sources: SourcesConfig{
			GooglePlacesKey:     v.GetString("google_places_api_key"),
			OpenCorporatesToken: v.GetString("opencorporates_api_token"),
			CompaniesHouseKey:   v.GetString("companies_house_api_key"),
			EnableSynthetic:     v.GetBool("enable_synthetic_sources"),
			DefaultDataSources:  splitList(v.GetString("default_data_sources")),
			RequestTimeout:      parseDuration(v.GetString("source_timeout"), 15*time.Second),
			MaxResultsPerSource: v.GetInt("source_max_results"),
		},
		Scrape: ScrapeConfig{
			FirecrawlKey:     v.GetString("firecrawl_api_key"),
			FirecrawlBaseURL: v.GetString("firecrawl_base_url"),
			UserAgent:        v.GetString("scrape_user_agent"),
			FetchTimeout:     parseDuration(v.GetString("scrape_timeout"), 15*time.Second),
			ProbeTimeout:     parseDuration(v.GetString("probe_timeout"), 10*time.Second),
			Concurrency:      3,
		},
		Log: LogConfig{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
		},
	}

	rl, err := parseRateLimit(v.GetString("rate_limit_scrape"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SCRAPE value: %w", err)
	}
	cfg.RateLimitScrape = rl

	switch cfg.LLM.Provider {
	case "", "openai", "anthropic":
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER value: %q", cfg.LLM.Provider)
	}

	return cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level := cfg.Level
	if level == "" {
		level = "info"
	}
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(parsed)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
