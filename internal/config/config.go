package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRestBaseURL = "https://ftx.com/api"
	DefaultWSURL       = "wss://ftx.com/ws/"
)

// Environment variables that override file values.
const (
	EnvAPIKey     = "FTX_API_KEY"
	EnvAPISecret  = "FTX_API_SECRET"
	EnvSubaccount = "FTX_SUBACCOUNT"
	EnvBaseURL    = "FTX_BASE_URL"
)

type Config struct {
	Exchange ExchangeConfig `yaml:"exchange"`
	Log      LogConfig      `yaml:"log"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

type ExchangeConfig struct {
	APIKey            string `yaml:"api_key"`
	APISecret         string `yaml:"api_secret"`
	Subaccount        string `yaml:"subaccount"`
	RestBaseURL       string `yaml:"rest_base_url"`
	WSURL             string `yaml:"ws_url"`
	HTTPTimeoutSec    int64  `yaml:"http_timeout_sec"`
	RequestsPerSecond int    `yaml:"requests_per_second"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	JSON       bool   `yaml:"json"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type DefaultsConfig struct {
	// MaxOrderSize caps sizes accepted by the CLI; zero disables the cap.
	MaxOrderSize Decimal `yaml:"max_order_size"`
}

// HasCredentials reports whether authenticated endpoints can be called.
func (e ExchangeConfig) HasCredentials() bool {
	return e.APIKey != "" && e.APISecret != ""
}

// Load reads the YAML file at path. A missing file is not an error when
// path is empty; everything can then come from the environment.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if cfg, err = parse(data); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv(os.Getenv)
	cfg.normalize()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs into the process environment without
// overriding variables that are already set. A missing file is ignored.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func parse(data []byte) (Config, error) {
	var cfg Config
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, err
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); err != io.EOF {
		return Config{}, fmt.Errorf("config must contain a single YAML document")
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvAPIKey); v != "" {
		c.Exchange.APIKey = v
	}
	if v := getenv(EnvAPISecret); v != "" {
		c.Exchange.APISecret = v
	}
	if v := getenv(EnvSubaccount); v != "" {
		c.Exchange.Subaccount = v
	}
	if v := getenv(EnvBaseURL); v != "" {
		c.Exchange.RestBaseURL = v
	}
}

func (c *Config) normalize() {
	c.Exchange.APIKey = strings.TrimSpace(c.Exchange.APIKey)
	c.Exchange.APISecret = strings.TrimSpace(c.Exchange.APISecret)
	c.Exchange.Subaccount = strings.TrimSpace(c.Exchange.Subaccount)
	c.Exchange.RestBaseURL = strings.TrimRight(strings.TrimSpace(c.Exchange.RestBaseURL), "/")
	c.Exchange.WSURL = strings.TrimSpace(c.Exchange.WSURL)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.File = strings.TrimSpace(c.Log.File)
}

func (c *Config) applyDefaults() {
	if c.Exchange.RestBaseURL == "" {
		c.Exchange.RestBaseURL = DefaultRestBaseURL
	}
	if c.Exchange.WSURL == "" {
		c.Exchange.WSURL = DefaultWSURL
	}
	if c.Exchange.HTTPTimeoutSec == 0 {
		c.Exchange.HTTPTimeoutSec = 15
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.File != "" {
		if c.Log.MaxSizeMB == 0 {
			c.Log.MaxSizeMB = 100
		}
		if c.Log.MaxBackups == 0 {
			c.Log.MaxBackups = 5
		}
		if c.Log.MaxAgeDays == 0 {
			c.Log.MaxAgeDays = 30
		}
	}
}

func (c Config) Validate() error {
	if (c.Exchange.APIKey == "") != (c.Exchange.APISecret == "") {
		return fmt.Errorf("exchange api_key and api_secret must be set together")
	}
	if err := validateURL(c.Exchange.RestBaseURL, "http", "https"); err != nil {
		return fmt.Errorf("exchange rest_base_url %v", err)
	}
	if err := validateURL(c.Exchange.WSURL, "ws", "wss"); err != nil {
		return fmt.Errorf("exchange ws_url %v", err)
	}
	if c.Exchange.HTTPTimeoutSec < 1 || c.Exchange.HTTPTimeoutSec > 120 {
		return fmt.Errorf("exchange http_timeout_sec must be between 1 and 120")
	}
	if c.Exchange.RequestsPerSecond < 0 || c.Exchange.RequestsPerSecond > 100 {
		return fmt.Errorf("exchange requests_per_second must be between 0 and 100")
	}
	switch c.Log.Level {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log level must be one of trace, debug, info, warn, error")
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("log rotation settings must be >= 0")
	}
	if c.Defaults.MaxOrderSize.Cmp(decimal.Zero) < 0 {
		return fmt.Errorf("defaults max_order_size must be >= 0")
	}
	return nil
}

func validateURL(raw string, schemes ...string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("must be a valid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("must include scheme and host")
	}
	for _, s := range schemes {
		if parsed.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("scheme must be %s", strings.Join(schemes, " or "))
}
