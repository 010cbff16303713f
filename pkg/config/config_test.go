package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, []string{"*"}, c.Server.CORSOrigins)
	assert.Equal(t, 30, c.Indicators.MinPoints)
	assert.Equal(t, 26, c.Indicators.MACDSlow)
	assert.Equal(t, "yahoo", c.History.Source)
	assert.Equal(t, "gpt-3.5-turbo", c.OpenAI.Model)
	assert.InDelta(t, 0.7, c.OpenAI.Temperature, 1e-12)
	assert.Equal(t, 10*time.Second, c.Yahoo.Timeout)
	assert.Equal(t, -1, c.Kafka.RequiredAcks)
	assert.False(t, c.Cache.Enabled)
	assert.False(t, c.Kafka.Enabled)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	p := writeFile(t, "config.yaml", `
environment: production
server:
  port: 9090
  request_timeout: 3s
indicators:
  min_points: 40
cache:
  enabled: true
  backend: layered
  history_ttl: 30s
`)
	c, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "production", c.Environment)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, 3*time.Second, c.Server.RequestTimeout)
	assert.Equal(t, 40, c.Indicators.MinPoints)
	assert.Equal(t, 20, c.Indicators.SMAWindow)
	assert.Equal(t, "layered", c.Cache.Backend)
	assert.Equal(t, 30*time.Second, c.Cache.HistoryTTL)
	assert.Equal(t, time.Hour, c.Cache.FundamentalsTTL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadWithEnv_Overrides(t *testing.T) {
	t.Setenv("FINNHUB_API_KEY", "fh-key")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("PORT", "7000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HISTORY_SOURCE", "yahoo")

	c, err := LoadWithEnv("", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "fh-key", c.Finnhub.APIKey)
	assert.Equal(t, "sk-test", c.OpenAI.APIKey)
	assert.Equal(t, "redis:6380", c.Cache.Redis.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, 7000, c.Server.Port)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestLoadWithEnv_DotEnvFile(t *testing.T) {
	env := writeFile(t, ".env", "FINNHUB_API_KEY=from-dotenv\n")
	t.Setenv("FINNHUB_API_KEY", "")
	require.NoError(t, os.Unsetenv("FINNHUB_API_KEY"))

	c, err := LoadWithEnv("", env)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", c.Finnhub.APIKey)
}

func TestLoadWithEnv_BadPort(t *testing.T) {
	t.Setenv("PORT", "eighty")
	_, err := LoadWithEnv("", filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }},
		{"macd spans", func(c *Config) { c.Indicators.MACDSlow = c.Indicators.MACDFast }},
		{"rsi window", func(c *Config) { c.Indicators.RSIWindow = 0 }},
		{"min points", func(c *Config) { c.Indicators.MinPoints = 1 }},
		{"history source", func(c *Config) { c.History.Source = "bloomberg" }},
		{"clickhouse source without host", func(c *Config) { c.History.Source = "clickhouse" }},
		{"archive without host", func(c *Config) { c.History.Archive = true }},
		{"cache backend", func(c *Config) { c.Cache.Enabled = true; c.Cache.Backend = "memcached" }},
		{"kafka without brokers", func(c *Config) { c.Kafka.Enabled = true }},
		{"collector without kafka", func(c *Config) { c.Log.Collector.Enabled = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Default()
			require.NoError(t, err)
			require.NoError(t, c.Validate())
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
