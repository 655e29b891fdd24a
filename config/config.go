// Package config holds the bot configuration, loadable from YAML or JSON.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the complete bot configuration.
type Config struct {
	Bot       BotConfig       `json:"bot" yaml:"bot"`
	Trading   TradingConfig   `json:"trading" yaml:"trading"`
	Autotrade AutotradeConfig `json:"autotrade" yaml:"autotrade"`
	Feed      FeedConfig      `json:"feed" yaml:"feed"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
	Accounts  AccountsConfig  `json:"accounts" yaml:"accounts"`
}

// BotConfig names the bot itself; the name doubles as the shared system
// account the alert router trades on.
type BotConfig struct {
	Name string `json:"name" yaml:"name" validate:"required"`
}

// TradingConfig contains ledger parameters.
type TradingConfig struct {
	Fee             float64 `json:"fee" yaml:"fee" validate:"gte=0,lt=1"`
	MinTrade        float64 `json:"min_trade" yaml:"min_trade" validate:"gte=0"`
	DefaultBalance  float64 `json:"default_balance" yaml:"default_balance" validate:"gt=0"`
	DefaultCurrency string  `json:"default_currency" yaml:"default_currency" validate:"required,alpha,min=3"`
	// RebuyPolicy is "merge" or "replace"; see account.MergePolicy.
	RebuyPolicy string `json:"rebuy_policy" yaml:"rebuy_policy" validate:"oneof=merge replace"`
}

// AutotradeConfig contains the position state machine parameters.
type AutotradeConfig struct {
	// Cap bounds how much of the subscription balance a single entry commits.
	Cap float64 `json:"cap" yaml:"cap" validate:"gt=0"`
	// Balance is the isolated sub-ledger balance a new subscription starts with.
	Balance float64 `json:"balance" yaml:"balance" validate:"gt=0"`
	// ProfitPct is the take-profit percentage, e.g. 0.02 for 2%.
	ProfitPct float64 `json:"profit_pct" yaml:"profit_pct" validate:"gt=0"`
	// LossFraction scales ProfitPct down for the stop-loss; the stop is
	// deliberately tighter than the target.
	LossFraction float64 `json:"loss_fraction" yaml:"loss_fraction" validate:"gt=0,lte=1"`
	Interval     string  `json:"interval" yaml:"interval" validate:"required"`
}

// ParseInterval converts the tick interval to a time.Duration.
func (c AutotradeConfig) ParseInterval() (time.Duration, error) {
	return time.ParseDuration(c.Interval)
}

// FeedConfig selects the price feed.
type FeedConfig struct {
	Exchange string `json:"exchange" yaml:"exchange" validate:"oneof=bitstamp binance memory"`
	Timeout  string `json:"timeout" yaml:"timeout" validate:"required"`
}

// ParseTimeout converts the request timeout to a time.Duration.
func (c FeedConfig) ParseTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Timeout)
}

// JournalConfig selects the executed-trade journal backend.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type" validate:"oneof=sqlite csv none"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
}

// AccountsConfig locates the per-user account files.
type AccountsConfig struct {
	Dir string `json:"dir" yaml:"dir" validate:"required"`
}

// LoadFromFile loads configuration from a file, trying YAML first and
// falling back to JSON.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration, YAML for .yaml/.yml paths and
// indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks field constraints and the cross-field rules the tags
// cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if _, err := c.Autotrade.ParseInterval(); err != nil {
		return fmt.Errorf("autotrade.interval: %w", err)
	}
	if _, err := c.Feed.ParseTimeout(); err != nil {
		return fmt.Errorf("feed.timeout: %w", err)
	}
	if c.Autotrade.Cap < c.Trading.MinTrade {
		return fmt.Errorf("autotrade.cap %.2f is below trading.min_trade %.2f: entries could never open", c.Autotrade.Cap, c.Trading.MinTrade)
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal.db_path required for sqlite journal")
	}
	if c.Journal.Type == "csv" && c.Journal.TradesFile == "" {
		return fmt.Errorf("journal.trades_file required for csv journal")
	}
	return nil
}

// Default returns a configuration with the stock simulation parameters.
func Default() *Config {
	return &Config{
		Bot: BotConfig{Name: "KiTrader"},
		Trading: TradingConfig{
			Fee:             0.005,
			MinTrade:        5,
			DefaultBalance:  1000,
			DefaultCurrency: "USD",
			RebuyPolicy:     "merge",
		},
		Autotrade: AutotradeConfig{
			Cap:          50,
			Balance:      50,
			ProfitPct:    0.02,
			LossFraction: 0.5,
			Interval:     "60s",
		},
		Feed: FeedConfig{
			Exchange: "bitstamp",
			Timeout:  "30s",
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./trades.db",
		},
		Accounts: AccountsConfig{Dir: "./accounts"},
	}
}
