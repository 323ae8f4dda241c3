package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"stockdash/internal/model"
)

// defaultCatalog is the built-in ticker catalog: major NSE Nifty 50
// components, with the .NS exchange suffix.
var defaultCatalog = []string{
	"RELIANCE.NS", "TCS.NS", "HDFCBANK.NS", "INFY.NS", "ICICIBANK.NS",
	"LT.NS", "KOTAKBANK.NS", "HINDUNILVR.NS", "BHARTIARTL.NS", "AXISBANK.NS",
	"SBIN.NS", "BAJFINANCE.NS",
}

// Config holds all application configuration.
type Config struct {
	Server struct {
		ListenAddr        string `yaml:"listen_addr"`
		RequestTimeoutSec int    `yaml:"request_timeout_sec"`
	} `yaml:"server"`
	DataSource struct {
		Proxy      string `yaml:"proxy"`
		TimeoutSec int    `yaml:"timeout_sec"`
		UseMock    bool   `yaml:"use_mock"`
	} `yaml:"data_source"`
	Cache struct {
		TTLSec    int    `yaml:"ttl_sec"`
		SweepCron string `yaml:"sweep_cron"`
	} `yaml:"cache"`
	Dashboard struct {
		Title          string   `yaml:"title"`
		CurrencySymbol string   `yaml:"currency_symbol"`
		Catalog        []string `yaml:"catalog"`
		DefaultSymbols []string `yaml:"default_symbols"`
		DefaultPeriod  string   `yaml:"default_period"`
	} `yaml:"dashboard"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.DataSource.Proxy = v
	}
	if v := os.Getenv("CACHE_TTL_SEC"); v != "" {
		var ttl int
		if _, err := fmt.Sscanf(v, "%d", &ttl); err == nil && ttl > 0 {
			cfg.Cache.TTLSec = ttl
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("USE_MOCK_DATA"); v == "true" {
		cfg.DataSource.UseMock = true
	}

	// Defaults
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Server.RequestTimeoutSec == 0 {
		cfg.Server.RequestTimeoutSec = 30
	}
	if cfg.DataSource.TimeoutSec == 0 {
		cfg.DataSource.TimeoutSec = 30
	}
	if cfg.Cache.TTLSec == 0 {
		cfg.Cache.TTLSec = 60
	}
	if cfg.Cache.SweepCron == "" {
		cfg.Cache.SweepCron = "0 * * * * *"
	}
	if cfg.Dashboard.Title == "" {
		cfg.Dashboard.Title = "Indian Stock Market Dashboard"
	}
	if cfg.Dashboard.CurrencySymbol == "" {
		cfg.Dashboard.CurrencySymbol = "₹"
	}
	if len(cfg.Dashboard.Catalog) == 0 {
		cfg.Dashboard.Catalog = defaultCatalog
	}
	if len(cfg.Dashboard.DefaultSymbols) == 0 && len(cfg.Dashboard.Catalog) >= 3 {
		cfg.Dashboard.DefaultSymbols = cfg.Dashboard.Catalog[:3]
	}
	if cfg.Dashboard.DefaultPeriod == "" {
		cfg.Dashboard.DefaultPeriod = string(model.Period1y)
	}

	return cfg, nil
}

// Validate checks that all required fields are usable.
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr is required")
	}
	if c.Cache.TTLSec <= 0 {
		return fmt.Errorf("cache.ttl_sec must be positive")
	}
	if _, err := model.ParsePeriod(c.Dashboard.DefaultPeriod); err != nil {
		return fmt.Errorf("dashboard.default_period: %w", err)
	}
	return nil
}
