package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Session store backends
const (
	StoreFile      = "file"
	StoreMemory    = "memory"
	StoreCouchbase = "couchbase"
)

type Config struct {
	APIBaseURL            string `mapstructure:"API_BASE_URL"`
	SessionStore          string `mapstructure:"SESSION_STORE"`
	SessionFile           string `mapstructure:"SESSION_FILE"`
	SessionProfile        string `mapstructure:"SESSION_PROFILE"`
	CouchbaseURL          string `mapstructure:"COUCHBASE_URL"`
	CouchbaseUsername     string `mapstructure:"COUCHBASE_USERNAME"`
	CouchbasePassword     string `mapstructure:"COUCHBASE_PASSWORD"`
	CouchbaseBucket       string `mapstructure:"COUCHBASE_BUCKET"`
	ElasticsearchURL      string `mapstructure:"ELASTICSEARCH_URL"`
	LogIndex              string `mapstructure:"LOG_INDEX"`
	LogLevel              string `mapstructure:"LOG_LEVEL"`
	ViewPort              string `mapstructure:"VIEW_PORT"`
	EnableBusinessMetrics bool   `mapstructure:"ENABLE_BUSINESS_METRICS"`
	EnableSystemMetrics   bool   `mapstructure:"ENABLE_SYSTEM_METRICS"`
	ReasonMinLength       int    `mapstructure:"REASON_MIN_LENGTH"`
}

var keys = []string{
	"API_BASE_URL",
	"SESSION_STORE",
	"SESSION_FILE",
	"SESSION_PROFILE",
	"COUCHBASE_URL",
	"COUCHBASE_USERNAME",
	"COUCHBASE_PASSWORD",
	"COUCHBASE_BUCKET",
	"ELASTICSEARCH_URL",
	"LOG_INDEX",
	"LOG_LEVEL",
	"VIEW_PORT",
	"ENABLE_BUSINESS_METRICS",
	"ENABLE_SYSTEM_METRICS",
	"REASON_MIN_LENGTH",
}

// LoadDotEnv loads ../.env then .env into the process environment, like the
// ingestion services do. Missing files are not an error.
func LoadDotEnv() {
	if err := godotenv.Load("../.env"); err == nil {
		return
	}
	if err := godotenv.Load(".env"); err != nil {
		log.Debug().Msg("No .env file found, assuming environment variables are set")
	}
}

// Load reads configuration from the environment and an optional config file.
// It does not validate; call Validate once flag overrides are applied.
func Load(configFile string) (*Config, error) {
	LoadDotEnv()

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("env")
	}
	v.AutomaticEnv()

	v.SetDefault("SESSION_STORE", StoreFile)
	v.SetDefault("SESSION_FILE", defaultSessionFile())
	v.SetDefault("SESSION_PROFILE", "default")
	v.SetDefault("COUCHBASE_BUCKET", "wardconsole")
	v.SetDefault("LOG_INDEX", "wardconsole-logs")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("VIEW_PORT", "8090")
	v.SetDefault("ENABLE_BUSINESS_METRICS", false)
	v.SetDefault("ENABLE_SYSTEM_METRICS", false)
	v.SetDefault("REASON_MIN_LENGTH", 10)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	if configFile != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	cfg.SessionStore = strings.ToLower(strings.TrimSpace(cfg.SessionStore))

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL %q is not an absolute URL", c.APIBaseURL)
	}

	switch c.SessionStore {
	case StoreFile:
		if c.SessionFile == "" {
			return fmt.Errorf("SESSION_FILE is required when SESSION_STORE is %q", StoreFile)
		}
	case StoreMemory:
	case StoreCouchbase:
		if c.CouchbaseURL == "" {
			return fmt.Errorf("COUCHBASE_URL is required when SESSION_STORE is %q", StoreCouchbase)
		}
	default:
		return fmt.Errorf("SESSION_STORE must be %q, %q or %q, got %q", StoreFile, StoreMemory, StoreCouchbase, c.SessionStore)
	}

	if c.SessionProfile == "" {
		return fmt.Errorf("SESSION_PROFILE cannot be empty")
	}
	if c.ReasonMinLength < 1 {
		return fmt.Errorf("REASON_MIN_LENGTH must be positive, got %d", c.ReasonMinLength)
	}
	return nil
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wardconsole-session.json"
	}
	return filepath.Join(home, ".wardconsole", "session.json")
}
