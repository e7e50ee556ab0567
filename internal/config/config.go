package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither a flag nor CONFIG_PATH names a config file.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	DataSource DataSourceConfig `yaml:"data_source"`
	Indicators struct {
		RSIMethod string `yaml:"rsi_method" validate:"oneof=sma wilder"`
	} `yaml:"indicators"`
	Email    EmailConfig `yaml:"email"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id" validate:"required_with=BotToken"`
	} `yaml:"telegram"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Server struct {
		Listen string `yaml:"listen"`
	} `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Proxy    string         `yaml:"proxy" validate:"omitempty,url"`
}

// DataSourceConfig selects and parameterizes the candle source.
type DataSourceConfig struct {
	Provider string        `yaml:"provider" validate:"oneof=binance rest mock"`
	BaseURL  string        `yaml:"base_url" validate:"omitempty,url"`
	Path     string        `yaml:"path"`
	APIKey   string        `yaml:"api_key"`
	Symbol   string        `yaml:"symbol" validate:"required,alphanum"`
	Interval string        `yaml:"interval" validate:"required,oneof=1m 3m 5m 15m 30m 1h 2h 4h 6h 8h 12h 1d 3d 1w 1M"`
	Limit    int           `yaml:"limit" validate:"min=2,max=1000"`
	Timeout  time.Duration `yaml:"timeout" validate:"min=0"`
}

// EmailConfig configures the SendGrid channel.
type EmailConfig struct {
	APIKey         string `yaml:"api_key"`
	APIKeySSMParam string `yaml:"api_key_ssm_param"`
	From           string `yaml:"from" validate:"omitempty,email"`
	To             string `yaml:"to" validate:"omitempty,email"`
	Subject        string `yaml:"subject"`
	Asset          string `yaml:"asset"`
}

// Enabled reports whether any email setting was provided.
func (e EmailConfig) Enabled() bool {
	return e.APIKey != "" || e.APIKeySSMParam != "" || e.From != "" || e.To != ""
}

// DatabaseConfig selects where run history is recorded.
type DatabaseConfig struct {
	Driver     string         `yaml:"driver" validate:"oneof=none sqlite postgres"`
	SQLitePath string         `yaml:"sqlite_path"`
	Postgres   PostgresConfig `yaml:"postgres"`
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Format      string `yaml:"format" validate:"oneof=json console"`
	OutputFile  string `yaml:"output_file"`
	Environment string `yaml:"environment"`
}

// LoadDotEnv loads KEY=VALUE pairs from path into the environment. A missing
// file is not an error; variables already set are left untouched.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads config from a YAML file, then applies environment variable overrides
// and defaults. A missing file yields a config built from env and defaults only.
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

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"SENDGRID_API_KEY":   &c.Email.APIKey,
		"FROM_EMAIL":         &c.Email.From,
		"TO_EMAIL":           &c.Email.To,
		"SYMBOL":             &c.DataSource.Symbol,
		"INTERVAL":           &c.DataSource.Interval,
		"TELEGRAM_BOT_TOKEN": &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":   &c.Telegram.ChatID,
		"HTTPS_PROXY":        &c.Proxy,
		"LOG_LEVEL":          &c.Log.Level,
		"CRON_SCHEDULE":      &c.Schedule.Cron,
		"SQLITE_PATH":        &c.Database.SQLitePath,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("CANDLE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CANDLE_LIMIT: %w", err)
		}
		c.DataSource.Limit = n
	}
	// SQLITE_PATH alone is enough to turn on the SQLite recorder.
	if os.Getenv("SQLITE_PATH") != "" && c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "binance"
	}
	if c.DataSource.Symbol == "" {
		c.DataSource.Symbol = "BTCUSDT"
	}
	if c.DataSource.Interval == "" {
		c.DataSource.Interval = "15m"
	}
	if c.DataSource.Limit == 0 {
		c.DataSource.Limit = 200
	}
	if c.Indicators.RSIMethod == "" {
		c.Indicators.RSIMethod = "sma"
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 */15 * * * *"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "none"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/candlealert.db"
	}
	c.Database.Postgres.applyDefaults()
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

var validate = validator.New()

// Validate checks field formats and ranges.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.DataSource.Provider == "rest" && c.DataSource.BaseURL == "" {
		return fmt.Errorf("data_source.base_url is required for the rest provider")
	}
	return nil
}

// ValidateChannels checks that at least one alert channel is fully configured.
// The email API key may still be pending resolution from SSM.
func (c *Config) ValidateChannels() error {
	if c.Email.Enabled() {
		switch {
		case c.Email.APIKey == "" && c.Email.APIKeySSMParam == "":
			return fmt.Errorf("email.api_key (SENDGRID_API_KEY) is required")
		case c.Email.From == "":
			return fmt.Errorf("email.from (FROM_EMAIL) is required")
		case c.Email.To == "":
			return fmt.Errorf("email.to (TO_EMAIL) is required")
		}
		return nil
	}
	if c.Telegram.BotToken != "" {
		return nil
	}
	return fmt.Errorf("no alert channel configured: set SENDGRID_API_KEY, FROM_EMAIL and TO_EMAIL")
}
