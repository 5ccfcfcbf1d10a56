package config

import (
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the top-level TOML configuration for the service.
type Config struct {
	App struct {
		Env      string `toml:"env"`
		LogLevel string `toml:"log_level"`
		HTTPAddr string `toml:"http_addr"`
	} `toml:"app"`

	Backend struct {
		APIURL         string `toml:"api_url"`
		TimeoutSeconds int    `toml:"timeout_seconds"`
	} `toml:"backend"`

	Agent struct {
		PollIntervalSeconds int     `toml:"poll_interval_seconds"`
		InitialInvestment   float64 `toml:"initial_investment"`
	} `toml:"agent"`

	Storage struct {
		StrategyDBPath string `toml:"strategy_db_path"`
	} `toml:"storage"`

	Market struct {
		BinanceBaseURL string `toml:"binance_base_url"`
		KlineInterval  string `toml:"kline_interval"`
		MaxCached      int    `toml:"max_cached"`
	} `toml:"market"`

	Report struct {
		OutputDir      string `toml:"output_dir"`
		EnableSnapshot bool   `toml:"enable_snapshot"`
	} `toml:"report"`

	Notify struct {
		Telegram struct {
			Enabled  bool   `toml:"enabled"`
			BotToken string `toml:"bot_token"`
			ChatID   string `toml:"chat_id"`
		} `toml:"telegram"`
	} `toml:"notify"`
}

// Load reads and parses the TOML config file, applying defaults and basic validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse TOML: %w", err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(c *Config) {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.HTTPAddr == "" {
		c.App.HTTPAddr = ":8080"
	}
	if c.Backend.APIURL == "" {
		c.Backend.APIURL = "http://localhost:8000"
	}
	if c.Backend.TimeoutSeconds <= 0 {
		c.Backend.TimeoutSeconds = 15
	}
	// Fixed 5-second poll cadence unless overridden.
	if c.Agent.PollIntervalSeconds <= 0 {
		c.Agent.PollIntervalSeconds = 5
	}
	if c.Agent.InitialInvestment <= 0 {
		c.Agent.InitialInvestment = 1000
	}
	if c.Storage.StrategyDBPath == "" {
		c.Storage.StrategyDBPath = "data/strategies.db"
	}
	if c.Market.KlineInterval == "" {
		c.Market.KlineInterval = "5m"
	}
	if c.Market.MaxCached <= 0 {
		c.Market.MaxCached = 100
	}
	if c.Report.OutputDir == "" {
		c.Report.OutputDir = "reports"
	}
}

func validate(c *Config) error {
	if !strings.HasPrefix(c.Backend.APIURL, "http://") && !strings.HasPrefix(c.Backend.APIURL, "https://") {
		return fmt.Errorf("backend.api_url must be an http(s) URL, got %q", c.Backend.APIURL)
	}
	if c.Market.MaxCached < 50 || c.Market.MaxCached > 1000 {
		return fmt.Errorf("market.max_cached must be within [50,1000]")
	}
	if !isValidInterval(c.Market.KlineInterval) {
		return fmt.Errorf("invalid market.kline_interval: %s", c.Market.KlineInterval)
	}
	if c.Notify.Telegram.Enabled {
		if c.Notify.Telegram.BotToken == "" || c.Notify.Telegram.ChatID == "" {
			return fmt.Errorf("telegram notify enabled, bot_token and chat_id are required")
		}
	}
	return nil
}

// isValidInterval accepts strings like 1m, 15m, 4h, 1d.
func isValidInterval(s string) bool {
	if s == "" {
		return false
	}
	suf := s[len(s)-1]
	if suf != 'm' && suf != 'h' && suf != 'd' {
		return false
	}
	for i := 0; i < len(s)-1; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
