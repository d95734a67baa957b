package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App       AppConfig
	Relay     RelayConfig
	Providers ProvidersConfig
	Redis     RedisConfig
	Database  DatabaseConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
}

type RelayConfig struct {
	// MaxResults caps the jobs:search limit; requests above it are truncated.
	MaxResults     int
	AdapterTimeout time.Duration
	// TrendingSpec is the cron spec for the background search refresher;
	// empty disables it.
	TrendingSpec     string
	TrendingKeywords []string
}

// ProvidersConfig carries per-upstream API keys. A missing key is not an
// error: the adapter reports itself unconfigured and the engine routes that
// source to the fallback generator.
type ProvidersConfig struct {
	LinkedInKey     string
	IndeedPublisher string
	GlassdoorKey    string
	JSearchKey      string
	CompanyAPIBase  string
	// CareersTargets lists company careers pages to crawl, as
	// "Company Name=https://example.com/careers" pairs.
	CareersTargets []string
	// RealDataMode false forces every source to fallback regardless of keys.
	RealDataMode bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
}

// Configured reports whether enough is set to attempt a connection.
func (c DatabaseConfig) Configured() bool {
	return strings.TrimSpace(c.DBHost) != "" && strings.TrimSpace(c.DBName) != ""
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
	}

	cfg.Relay = RelayConfig{
		MaxResults:       optInt("RELAY_MAX_RESULTS", 50),
		AdapterTimeout:   optDuration("RELAY_ADAPTER_TIMEOUT", 5*time.Second),
		TrendingSpec:     opt("RELAY_TRENDING_SPEC"),
		TrendingKeywords: splitAndTrim(opt("RELAY_TRENDING_KEYWORDS")),
	}

	cfg.Providers = ProvidersConfig{
		LinkedInKey:     opt("LINKEDIN_API_KEY"),
		IndeedPublisher: opt("INDEED_PUBLISHER_ID"),
		GlassdoorKey:    opt("GLASSDOOR_API_KEY"),
		JSearchKey:      opt("JSEARCH_API_KEY"),
		CompanyAPIBase:  opt("COMPANY_API_BASE"),
		CareersTargets:  splitAndTrim(opt("COMPANY_CAREERS_TARGETS")),
		RealDataMode:    optBool("REAL_DATA_MODE", true),
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST"),
		Port:     opt("REDIS_PORT"),
		Password: opt("REDIS_PASSWORD"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:     opt("DB_HOST"),
		DBPort:     opt("DB_PORT"),
		DBName:     opt("DB_NAME"),
		DBUser:     opt("DB_USER"),
		DBPassword: opt("DB_PASSWORD"),
		DBSSLMode:  opt("DB_SSL_MODE"),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

func optInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func optBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func optDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
