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

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Supabase struct {
		URL               string `yaml:"url"`
		APIKey            string `yaml:"api_key"`
		PricesTable       string `yaml:"prices_table"`
		FundamentalsTable string `yaml:"fundamentals_table"`
		SymbolColumn      string `yaml:"symbol_column"`
		DateColumn        string `yaml:"date_column"`
		ReportDateColumn  string `yaml:"report_date_column"`
	} `yaml:"supabase"`
	RemoteAPI struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"remote_api"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		ScanCron string `yaml:"scan_cron"`
	} `yaml:"schedule"`
	Watchlist []string `yaml:"watchlist"`
	Cache     struct {
		MaxEntries int           `yaml:"max_entries"`
		TTL        time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	HistoryDays int    `yaml:"history_days"`
	Proxy       string `yaml:"proxy"`
	Log         struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
}

// Load reads an optional .env file and the YAML config at path, then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

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

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	overrides := map[string]*string{
		"SUPABASE_URL":       &c.Supabase.URL,
		"SUPABASE_KEY":       &c.Supabase.APIKey,
		"REMOTE_API_URL":     &c.RemoteAPI.BaseURL,
		"REMOTE_API_KEY":     &c.RemoteAPI.APIKey,
		"TELEGRAM_BOT_TOKEN": &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":   &c.Telegram.ChatID,
		"HTTP_ADDR":          &c.Server.Addr,
		"SQLITE_PATH":        &c.Database.SQLitePath,
		"CRON_SCAN":          &c.Schedule.ScanCron,
		"LOG_LEVEL":          &c.Log.Level,
		"HTTPS_PROXY":        &c.Proxy,
	}
	for key, dst := range overrides {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Watchlist = splitList(v)
	}
	if v := os.Getenv("HISTORY_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HISTORY_DAYS: %w", err)
		}
		c.HistoryDays = n
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CACHE_TTL: %w", err)
		}
		c.Cache.TTL = d
	}
	if v := os.Getenv("LOG_PRETTY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOG_PRETTY: %w", err)
		}
		c.Log.Pretty = b
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Supabase.PricesTable == "" {
		c.Supabase.PricesTable = "stock_prices"
	}
	if c.Supabase.FundamentalsTable == "" {
		c.Supabase.FundamentalsTable = "stock_fundamentals"
	}
	if c.Supabase.SymbolColumn == "" {
		c.Supabase.SymbolColumn = "symbol"
	}
	if c.Supabase.DateColumn == "" {
		c.Supabase.DateColumn = "date"
	}
	if c.Supabase.ReportDateColumn == "" {
		c.Supabase.ReportDateColumn = "report_date"
	}
	if c.Schedule.ScanCron == "" {
		// 18:00 on trading days, after the regional market close.
		c.Schedule.ScanCron = "0 0 18 * * 1-5"
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 128
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 15 * time.Minute
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/brvm_sentinel.db"
	}
	if c.HistoryDays == 0 {
		c.HistoryDays = 300
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	for i, s := range c.Watchlist {
		c.Watchlist[i] = strings.ToUpper(strings.TrimSpace(s))
	}
}

// TelegramEnabled reports whether both bot credentials are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Supabase.URL == "" && c.RemoteAPI.BaseURL == "" {
		return fmt.Errorf("supabase.url or remote_api.base_url is required")
	}
	if c.Supabase.URL != "" && c.Supabase.APIKey == "" {
		return fmt.Errorf("supabase.api_key is required with supabase.url")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.HistoryDays < 60 {
		return fmt.Errorf("history_days must be at least 60, got %d", c.HistoryDays)
	}
	if c.Cache.MaxEntries < 0 || c.Cache.TTL < 0 {
		return fmt.Errorf("cache limits must not be negative")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
