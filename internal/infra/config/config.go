package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Ephemeris EphemerisConfig `yaml:"ephemeris"`
	Geocoding GeocodingConfig `yaml:"geocoding"`
	Profiles  ProfilesConfig  `yaml:"profiles"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Auth      AuthConfig      `yaml:"auth"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for transient handler failures.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// EphemerisConfig points at the chart provider. An empty APIKey disables it
// and every profile is computed by the fallback generator.
type EphemerisConfig struct {
	BaseURL           string        `yaml:"baseUrl"`
	UserID            string        `yaml:"userId"`
	APIKey            string        `yaml:"apiKey"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxAttempts       int           `yaml:"maxAttempts"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	HouseSystem       string        `yaml:"houseSystem"`
}

// GeocodingConfig controls the external geocoder used on gazetteer misses.
type GeocodingConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	APIKey  string        `yaml:"apiKey"`
	Timeout time.Duration `yaml:"timeout"`
	Country string        `yaml:"country"`
	Cache   CacheConfig   `yaml:"cache"`
}

// CacheConfig contains connection information for the geocode cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Addr    string        `yaml:"addr"`
	TTL     time.Duration `yaml:"ttl"`
}

// ProfilesConfig controls profile persistence.
type ProfilesConfig struct {
	ListLimit int            `yaml:"listLimit"`
	Postgres  PostgresConfig `yaml:"postgres"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ArchiveConfig enables raw provider payload archiving to R2.
type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// AuthConfig verifies bearer tokens issued by the hosted identity provider.
type AuthConfig struct {
	JWTSecret string `yaml:"jwtSecret"`
	Issuer    string `yaml:"issuer"`
	Audience  string `yaml:"audience"`
}

// Load reads configuration from .env, a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.HTTP.Address, "HTTP_ADDRESS")
	setDuration(&cfg.HTTP.ReadTimeout, "HTTP_READ_TIMEOUT")
	setDuration(&cfg.HTTP.WriteTimeout, "HTTP_WRITE_TIMEOUT")
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	setBool(&cfg.HTTP.RateLimit.Enabled, "HTTP_RATE_LIMIT_ENABLED")
	setInt(&cfg.HTTP.RateLimit.RequestsPerMinute, "HTTP_RATE_LIMIT_RPM")
	setInt(&cfg.HTTP.RateLimit.Burst, "HTTP_RATE_LIMIT_BURST")
	setBool(&cfg.HTTP.Retry.Enabled, "HTTP_RETRY_ENABLED")
	setInt(&cfg.HTTP.Retry.MaxAttempts, "HTTP_RETRY_MAX_ATTEMPTS")
	setDuration(&cfg.HTTP.Retry.BaseBackoff, "HTTP_RETRY_BASE_BACKOFF")

	setString(&cfg.Ephemeris.BaseURL, "EPHEMERIS_BASE_URL")
	setString(&cfg.Ephemeris.UserID, "EPHEMERIS_USER_ID")
	setString(&cfg.Ephemeris.APIKey, "EPHEMERIS_API_KEY")
	setDuration(&cfg.Ephemeris.Timeout, "EPHEMERIS_TIMEOUT")
	setInt(&cfg.Ephemeris.MaxAttempts, "EPHEMERIS_MAX_ATTEMPTS")
	if v := os.Getenv("EPHEMERIS_RPS"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Ephemeris.RequestsPerSecond = parsed
		}
	}
	setString(&cfg.Ephemeris.HouseSystem, "EPHEMERIS_HOUSE_SYSTEM")

	setString(&cfg.Geocoding.BaseURL, "GEOCODING_BASE_URL")
	setString(&cfg.Geocoding.APIKey, "GEOCODING_API_KEY")
	setDuration(&cfg.Geocoding.Timeout, "GEOCODING_TIMEOUT")
	setString(&cfg.Geocoding.Country, "GEOCODING_COUNTRY")
	setBool(&cfg.Geocoding.Cache.Enabled, "GEOCODING_CACHE_ENABLED")
	setString(&cfg.Geocoding.Cache.Addr, "GEOCODING_CACHE_ADDR")
	setDuration(&cfg.Geocoding.Cache.TTL, "GEOCODING_CACHE_TTL")

	setInt(&cfg.Profiles.ListLimit, "PROFILES_LIST_LIMIT")
	setString(&cfg.Profiles.Postgres.DSN, "PROFILES_POSTGRES_DSN")
	if v := os.Getenv("PROFILES_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Profiles.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("PROFILES_POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Profiles.Postgres.MinConns = int32(parsed)
		}
	}

	setBool(&cfg.Archive.Enabled, "ARCHIVE_ENABLED")
	setString(&cfg.Archive.Endpoint, "ARCHIVE_ENDPOINT")
	setString(&cfg.Archive.AccessKey, "ARCHIVE_ACCESS_KEY")
	setString(&cfg.Archive.SecretKey, "ARCHIVE_SECRET_KEY")
	setString(&cfg.Archive.Bucket, "ARCHIVE_BUCKET")
	setString(&cfg.Archive.Region, "ARCHIVE_REGION")

	setString(&cfg.Auth.JWTSecret, "AUTH_JWT_SECRET")
	setString(&cfg.Auth.Issuer, "AUTH_ISSUER")
	setString(&cfg.Auth.Audience, "AUTH_AUDIENCE")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if clean := strings.TrimSpace(part); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:        ":8080",
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   15 * time.Second,
			AllowedOrigins: []string{"*"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 2,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/profiles",
				},
			},
		},
		Ephemeris: EphemerisConfig{
			BaseURL:           "https://json.astrologyapi.com/v1",
			Timeout:           8 * time.Second,
			MaxAttempts:       2,
			RequestsPerSecond: 5,
			HouseSystem:       "placidus",
		},
		Geocoding: GeocodingConfig{
			BaseURL: "https://api.openrouteservice.org",
			Timeout: 5 * time.Second,
			Cache: CacheConfig{
				Enabled: false,
				TTL:     30 * 24 * time.Hour,
			},
		},
		Profiles: ProfilesConfig{
			ListLimit: 50,
			Postgres: PostgresConfig{
				MaxConns: 4,
				MinConns: 0,
			},
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	if c.Ephemeris.Timeout <= 0 {
		return errors.New("ephemeris.timeout must be positive")
	}
	if c.Ephemeris.MaxAttempts <= 0 {
		return errors.New("ephemeris.maxAttempts must be positive")
	}
	if c.Ephemeris.RequestsPerSecond < 0 {
		return errors.New("ephemeris.requestsPerSecond cannot be negative")
	}
	if c.Ephemeris.APIKey != "" && strings.TrimSpace(c.Ephemeris.UserID) == "" {
		return errors.New("ephemeris.userId cannot be empty when apiKey is set")
	}
	switch strings.ToLower(c.Ephemeris.HouseSystem) {
	case "placidus", "koch", "equal", "whole_sign", "topocentric", "porphyry", "campanus", "regiomontanus":
	default:
		return fmt.Errorf("ephemeris.houseSystem %q is not supported", c.Ephemeris.HouseSystem)
	}
	if c.Geocoding.Timeout <= 0 {
		return errors.New("geocoding.timeout must be positive")
	}
	if c.Geocoding.Cache.Enabled && strings.TrimSpace(c.Geocoding.Cache.Addr) == "" {
		return errors.New("geocoding.cache.addr cannot be empty when the cache is enabled")
	}
	if c.Geocoding.Cache.TTL < 0 {
		return errors.New("geocoding.cache.ttl cannot be negative")
	}
	if c.Profiles.ListLimit <= 0 {
		return errors.New("profiles.listLimit must be positive")
	}
	if c.Profiles.Postgres.MinConns > c.Profiles.Postgres.MaxConns {
		return errors.New("profiles.postgres.minConns cannot exceed maxConns")
	}
	if c.Archive.Enabled {
		if strings.TrimSpace(c.Archive.Endpoint) == "" || strings.TrimSpace(c.Archive.Bucket) == "" {
			return errors.New("archive.endpoint and archive.bucket are required when archiving is enabled")
		}
	}
	return nil
}
