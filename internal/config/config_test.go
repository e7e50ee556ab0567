package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"SENDGRID_API_KEY", "FROM_EMAIL", "TO_EMAIL", "SYMBOL", "INTERVAL", "CANDLE_LIMIT",
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "HTTPS_PROXY", "LOG_LEVEL", "CRON_SCHEDULE", "SQLITE_PATH",
}

// clearEnv blanks every override so the host environment cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "binance", cfg.DataSource.Provider)
	assert.Equal(t, "BTCUSDT", cfg.DataSource.Symbol)
	assert.Equal(t, "15m", cfg.DataSource.Interval)
	assert.Equal(t, 200, cfg.DataSource.Limit)
	assert.Equal(t, "sma", cfg.Indicators.RSIMethod)
	assert.Equal(t, "none", cfg.Database.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
data_source:
  symbol: ETHUSDT
  interval: 1h
  limit: 300
  timeout: 10s
email:
  from: file@example.com
  subject: ETH alert
log:
  level: debug
  format: json
`)
	t.Setenv("SYMBOL", "SOLUSDT")
	t.Setenv("CANDLE_LIMIT", "250")
	t.Setenv("SENDGRID_API_KEY", "SG.env")
	t.Setenv("TO_EMAIL", "to@example.com")
	t.Setenv("SQLITE_PATH", "/tmp/runs.db")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "SOLUSDT", cfg.DataSource.Symbol)
	assert.Equal(t, "1h", cfg.DataSource.Interval)
	assert.Equal(t, 250, cfg.DataSource.Limit)
	assert.Equal(t, 10*time.Second, cfg.DataSource.Timeout)
	assert.Equal(t, "SG.env", cfg.Email.APIKey)
	assert.Equal(t, "file@example.com", cfg.Email.From)
	assert.Equal(t, "to@example.com", cfg.Email.To)
	assert.Equal(t, "ETH alert", cfg.Email.Subject)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/runs.db", cfg.Database.SQLitePath)
	assert.NoError(t, cfg.Validate())
	assert.NoError(t, cfg.ValidateChannels())
}

func TestLoad_BadInput(t *testing.T) {
	clearEnv(t)

	_, err := Load(writeFile(t, "bad.yaml", "data_source: [unclosed"))
	assert.Error(t, err)

	t.Setenv("CANDLE_LIMIT", "lots")
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "CANDLE_LIMIT")
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown interval", func(c *Config) { c.DataSource.Interval = "7m" }},
		{"limit too small", func(c *Config) { c.DataSource.Limit = 1 }},
		{"limit too large", func(c *Config) { c.DataSource.Limit = 5000 }},
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "ftx" }},
		{"rest without url", func(c *Config) { c.DataSource.Provider = "rest" }},
		{"bad sender", func(c *Config) { c.Email.From = "not-an-address" }},
		{"bad rsi method", func(c *Config) { c.Indicators.RSIMethod = "ema" }},
		{"chat id missing", func(c *Config) { c.Telegram.BotToken = "token" }},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateChannels(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.ValidateChannels())

	cfg.Email = EmailConfig{APIKey: "SG.x", From: "a@example.com"}
	assert.ErrorContains(t, cfg.ValidateChannels(), "TO_EMAIL")

	cfg.Email.To = "b@example.com"
	assert.NoError(t, cfg.ValidateChannels())

	cfg.Email = EmailConfig{APIKeySSMParam: "/candlealert/sendgrid", From: "a@example.com", To: "b@example.com"}
	assert.NoError(t, cfg.ValidateChannels())

	tg := &Config{}
	tg.Telegram.BotToken = "token"
	assert.NoError(t, tg.ValidateChannels())
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, ".env", "FROM_EMAIL=dotenv@example.com\nSYMBOL=ADAUSDT\n")
	require.NoError(t, os.Unsetenv("SYMBOL"))
	require.NoError(t, os.Unsetenv("FROM_EMAIL"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "dotenv@example.com", os.Getenv("FROM_EMAIL"))
	assert.Equal(t, "ADAUSDT", os.Getenv("SYMBOL"))

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}

func TestPostgresDSN(t *testing.T) {
	pg := PostgresConfig{Host: "db", User: "alert", Password: "pw", DBName: "signals", TimeZone: "UTC"}
	pg.applyDefaults()
	assert.Equal(t, "host=db port=5432 user=alert password=pw dbname=signals sslmode=disable TimeZone=UTC", pg.DSN())
}

type fakeStore struct {
	value *string
	err   error
	asked string
}

func (f *fakeStore) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.asked = *in.Name
	if f.err != nil {
		return nil, f.err
	}
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: f.value}}, nil
}

func TestResolveSecrets(t *testing.T) {
	key := "SG.from-ssm"
	store := &fakeStore{value: &key}

	cfg := &Config{Email: EmailConfig{APIKeySSMParam: "/candlealert/sendgrid"}}
	require.True(t, cfg.NeedsSecrets())
	require.NoError(t, cfg.ResolveSecrets(context.Background(), store))
	assert.Equal(t, "SG.from-ssm", cfg.Email.APIKey)
	assert.Equal(t, "/candlealert/sendgrid", store.asked)

	// An explicit key wins and SSM is not consulted.
	other := &fakeStore{}
	cfg = &Config{Email: EmailConfig{APIKey: "SG.direct", APIKeySSMParam: "/x"}}
	require.NoError(t, cfg.ResolveSecrets(context.Background(), other))
	assert.Empty(t, other.asked)
	assert.Equal(t, "SG.direct", cfg.Email.APIKey)
}

func TestResolveSecrets_Errors(t *testing.T) {
	cfg := &Config{Email: EmailConfig{APIKeySSMParam: "/x"}}
	assert.Error(t, cfg.ResolveSecrets(context.Background(), &fakeStore{err: errors.New("AccessDenied")}))
	assert.Error(t, cfg.ResolveSecrets(context.Background(), &fakeStore{}))
}
