package config

import (
	"path/filepath"
	"testing"
	"time"

	pkgconfig "github.com/muhammadchandra19/exchange-engine/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T) *Config {
	t.Helper()
	cfg := &Config{}
	require.NoError(t, pkgconfig.Load(cfg, filepath.Join(t.TempDir(), "none.env")))
	return cfg
}

func TestConfig_Defaults(t *testing.T) {
	cfg := load(t)

	assert.Equal(t, "INR", cfg.App.BaseCurrency)
	assert.Equal(t, []string{"TATA"}, cfg.App.Markets)
	assert.Equal(t, []string{"TATA_INR"}, cfg.App.Tickers())
	assert.Equal(t, []string{"1", "2", "5"}, cfg.App.SeedUsers)
	assert.Equal(t, "10000000", cfg.App.SeedAmount.String())
	assert.Equal(t, 3*time.Second, cfg.Engine.SnapshotInterval)
	assert.Equal(t, SourceKafka, cfg.CommandSource)
	assert.Equal(t, "messages", cfg.CommandQueue)
	assert.Equal(t, "db_processor", cfg.History.Topic)
	assert.Equal(t, BackendRedis, cfg.Snapshot.Backend)
	assert.Equal(t, []string{"localhost:6379"}, cfg.Redis.Addrs)
	require.NoError(t, cfg.Validate())
}

func TestConfig_FromEnv(t *testing.T) {
	t.Setenv("APP_MARKETS", "tata,INFY")
	t.Setenv("COMMAND_SOURCE", "redis")
	t.Setenv("SNAPSHOT_BACKEND", "file")
	t.Setenv("ENGINE_SNAPSHOT_COMMAND_DELTA", "50")
	t.Setenv("REDIS_ADDRS", "redis-a:6379,redis-b:6379")

	cfg := load(t)
	assert.Equal(t, []string{"TATA_INR", "INFY_INR"}, cfg.App.Tickers())
	assert.Equal(t, int64(50), cfg.Engine.SnapshotCommandDelta)
	assert.Equal(t, []string{"redis-a:6379", "redis-b:6379"}, cfg.Redis.Addrs)
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "no markets", mutate: func(c *Config) { c.App.Markets = nil }},
		{name: "self quoted", mutate: func(c *Config) { c.App.Markets = []string{"INR"} }},
		{name: "unknown source", mutate: func(c *Config) { c.CommandSource = "nats" }},
		{name: "unknown backend", mutate: func(c *Config) { c.Snapshot.Backend = "s3" }},
		{name: "zero interval", mutate: func(c *Config) { c.Engine.SnapshotInterval = 0 }},
		{name: "zero outbox", mutate: func(c *Config) { c.Engine.OutboxSize = 0 }},
		{name: "missing topic", mutate: func(c *Config) { c.Kafka.Topic = "" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := load(t)
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
