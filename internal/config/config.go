package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ClientConfig captures every tunable of the swipe client. Values layer as
// defaults, then an optional YAML file, then .env, then the process
// environment.
type ClientConfig struct {
	APIBaseURL string        `yaml:"api_base_url"`
	APITimeout time.Duration `yaml:"api_timeout"`

	IdentityFile     string `yaml:"identity_file"`
	RedisAddr        string `yaml:"redis_addr"`
	RedisPassword    string `yaml:"redis_password"`
	RedisIdentityKey string `yaml:"redis_identity_key"`

	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`

	PGDSN string `yaml:"pg_dsn"`

	PollInterval  time.Duration `yaml:"poll_interval"`
	SettleDelay   time.Duration `yaml:"settle_delay"`
	ViewportWidth float64       `yaml:"viewport_width"`
	PixelsPerCell float64       `yaml:"pixels_per_cell"`

	LocationEnabled bool     `yaml:"location_enabled"`
	LocationLat     *float64 `yaml:"location_lat"`
	LocationLng     *float64 `yaml:"location_lng"`
	LocateURL       string   `yaml:"locate_url"`
	FallbackLat     float64  `yaml:"fallback_lat"`
	FallbackLng     float64  `yaml:"fallback_lng"`

	StatusAddr string `yaml:"status_addr"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

func defaultClientConfig() ClientConfig {
	dir := stateDir()
	return ClientConfig{
		APIBaseURL:       "http://127.0.0.1:8000",
		APITimeout:       10 * time.Second,
		IdentityFile:     filepath.Join(dir, "identity.json"),
		RedisIdentityKey: "commit-swipe:identity",
		KafkaTopic:       "swipe-decisions",
		PollInterval:     5 * time.Second,
		SettleDelay:      300 * time.Millisecond,
		ViewportWidth:    1280,
		PixelsPerCell:    8,
		LocationEnabled:  true,
		LocateURL:        "http://ip-api.com/json",
		FallbackLat:      40.7128,
		FallbackLng:      -74.0060,
		LogLevel:         "info",
		LogFile:          filepath.Join(dir, "commit-swipe.log"),
	}
}

func stateDir() string {
	if d, err := os.UserConfigDir(); err == nil {
		return filepath.Join(d, "commit-swipe")
	}
	return ".commit-swipe"
}

// LoadClientConfig builds the configuration. path names an optional YAML
// file; an empty path skips it. A .env in the working directory is loaded
// without overriding variables that are already set.
func LoadClientConfig(path string) (ClientConfig, error) {
	cfg := defaultClientConfig()
	var errs []error

	if path != "" {
		if err := loadYAML(&cfg, path); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			errs = append(errs, fmt.Errorf("load .env: %w", err))
		}
	}

	setStringFromEnv(&cfg.APIBaseURL, "API_BASE_URL")
	setDurationFromEnv(&cfg.APITimeout, "API_TIMEOUT", &errs)

	setStringFromEnv(&cfg.IdentityFile, "IDENTITY_FILE")
	setStringFromEnv(&cfg.RedisAddr, "REDIS_ADDR")
	if v, ok := os.LookupEnv("REDIS_PASSWORD"); ok {
		cfg.RedisPassword = v
	}
	setStringFromEnv(&cfg.RedisIdentityKey, "REDIS_IDENTITY_KEY")

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = splitAndTrim(brokers)
	}
	setStringFromEnv(&cfg.KafkaTopic, "KAFKA_TOPIC")

	setStringFromEnv(&cfg.PGDSN, "PG_DSN")

	setDurationFromEnv(&cfg.PollInterval, "POLL_INTERVAL", &errs)
	setDurationFromEnv(&cfg.SettleDelay, "SETTLE_DELAY", &errs)
	setFloatFromEnv(&cfg.ViewportWidth, "VIEWPORT_WIDTH", &errs)
	setFloatFromEnv(&cfg.PixelsPerCell, "PIXELS_PER_CELL", &errs)

	setBoolFromEnv(&cfg.LocationEnabled, "LOCATION_ENABLED", &errs)
	setOptionalFloatFromEnv(&cfg.LocationLat, "LOCATION_LAT", &errs)
	setOptionalFloatFromEnv(&cfg.LocationLng, "LOCATION_LNG", &errs)
	setStringFromEnv(&cfg.LocateURL, "LOCATE_URL")
	setFloatFromEnv(&cfg.FallbackLat, "FALLBACK_LAT", &errs)
	setFloatFromEnv(&cfg.FallbackLng, "FALLBACK_LNG", &errs)

	setStringFromEnv(&cfg.StatusAddr, "STATUS_ADDR")

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	setStringFromEnv(&cfg.LogFile, "LOG_FILE")

	errs = append(errs, cfg.validate()...)
	return cfg, errors.Join(errs...)
}

func loadYAML(cfg *ClientConfig, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c ClientConfig) validate() []error {
	var errs []error
	if strings.TrimSpace(c.APIBaseURL) == "" {
		errs = append(errs, fmt.Errorf("API_BASE_URL must be set"))
	}
	if c.APITimeout <= 0 {
		errs = append(errs, fmt.Errorf("API_TIMEOUT must be > 0"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("POLL_INTERVAL must be > 0"))
	}
	if c.SettleDelay <= 0 {
		errs = append(errs, fmt.Errorf("SETTLE_DELAY must be > 0"))
	}
	if c.ViewportWidth <= 0 {
		errs = append(errs, fmt.Errorf("VIEWPORT_WIDTH must be > 0"))
	}
	if c.PixelsPerCell <= 0 {
		errs = append(errs, fmt.Errorf("PIXELS_PER_CELL must be > 0"))
	}
	if (c.LocationLat == nil) != (c.LocationLng == nil) {
		errs = append(errs, fmt.Errorf("LOCATION_LAT and LOCATION_LNG must be set together"))
	}
	if c.LocationLat != nil {
		errs = append(errs, checkCoordinate("LOCATION", *c.LocationLat, derefOr(c.LocationLng, 0))...)
	}
	errs = append(errs, checkCoordinate("FALLBACK", c.FallbackLat, c.FallbackLng)...)
	return errs
}

func checkCoordinate(prefix string, lat, lng float64) []error {
	var errs []error
	if lat < -90 || lat > 90 {
		errs = append(errs, fmt.Errorf("%s_LAT must be within [-90, 90]", prefix))
	}
	if lng < -180 || lng > 180 {
		errs = append(errs, fmt.Errorf("%s_LNG must be within [-180, 180]", prefix))
	}
	return errs
}

func derefOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func setDurationFromEnv(target *time.Duration, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = d
	}
}

func setFloatFromEnv(target *float64, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = f
	}
}

func setOptionalFloatFromEnv(target **float64, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = &f
	}
}

func setBoolFromEnv(target *bool, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = b
	}
}

func setStringFromEnv(target *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*target = v
	}
}

func splitAndTrim(v string) []string {
	raw := strings.Split(v, ",")
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}
