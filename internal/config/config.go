package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/gmet/internal/common"
)

const envPrefix = "GMET_"

type AppConfig struct {
	LookupURL   string `validate:"required,url"`
	ForecastURL string `validate:"required,url"`
	GeoIPURL    string `validate:"required,url"`

	// HTTPTimeout bounds every upstream call.
	HTTPTimeout time.Duration `validate:"gt=0"`

	// Outbound rate limit towards the upstream services.
	UpstreamRPS   float64 `validate:"gt=0"`
	UpstreamBurst int     `validate:"gte=1"`

	// City used when geolocation fails or the requested city is unknown.
	DefaultCity      string `validate:"required"`
	DefaultInseeCode string `validate:"required,numeric"`

	FavoriteCities []string
	TopCities      int `validate:"gte=0"`

	Port string `validate:"required,numeric"`

	LogLevel  string `validate:"oneof=CRITICAL ERROR WARNING WARN INFO DEBUG critical error warning warn info debug"`
	LogFormat string `validate:"oneof=text json"`

	// CLI --html output.
	Browser    string
	HTMLOutput string `validate:"required"`
}

// Load reads configuration from environment with sensible defaults.
// A missing .env file is not an error.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.LookupURL = getenvDefault("LOOKUP_URL", "http://ws.meteofrance.com/ws/getLieux/")
	cfg.ForecastURL = getenvDefault("FORECAST_URL", "http://ws.meteofrance.com/ws/getDetail/france/")
	cfg.GeoIPURL = getenvDefault("GEOIP_URL", "http://ipinfo.io")

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid %sHTTP_TIMEOUT: %w", envPrefix, err)
	}
	cfg.HTTPTimeout = timeout

	rps, err := strconv.ParseFloat(getenvDefault("UPSTREAM_RPS", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %sUPSTREAM_RPS: %w", envPrefix, err)
	}
	cfg.UpstreamRPS = rps
	cfg.UpstreamBurst = getenvInt("UPSTREAM_BURST", 5)

	cfg.DefaultCity = getenvDefault("DEFAULT_CITY", "Paris")
	cfg.DefaultInseeCode = getenvDefault("DEFAULT_INSEE", "751010")

	cfg.FavoriteCities = common.SplitList(getenvDefault("FAVORITE_CITIES", "Biot,Eysines,Ustaritz"))
	cfg.TopCities = getenvInt("TOP_CITIES", 47)

	cfg.Port = getenvDefault("PORT", "8080")

	cfg.LogLevel = getenvDefault("LOG_LEVEL", "INFO")
	cfg.LogFormat = getenvDefault("LOG_FORMAT", "text")

	cfg.Browser = getenvDefault("BROWSER", "chromium")
	cfg.HTMLOutput = getenvDefault("HTML_OUTPUT", "output.html")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration values.
func (c *AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ServerAddr returns the listen address in the format ":port".
func (c *AppConfig) ServerAddr() string {
	return ":" + c.Port
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(envPrefix + key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
