package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.MainConfig.Port)
	assert.Equal(t, "general", cfg.ChatConfig.DefaultRoom)
	assert.Equal(t, []string{"general", "tech", "gaming", "support"}, cfg.ChatConfig.Rooms)
	assert.Equal(t, 200, cfg.ChatConfig.HistoryLimit)
	assert.Equal(t, 25, cfg.ChatConfig.PageSize)
	assert.Equal(t, 15*time.Minute, cfg.RateLimitConfig.Window)
	assert.Equal(t, 100, cfg.RateLimitConfig.Max)
	assert.Empty(t, cfg.PersistenceConfig.Driver)
}

func TestLoad_MalformedFileIsAnError(t *testing.T) {
	path := writeConfig(t, "[mainConfig\nport = \"not closed")
	cfg, err := Load(path)
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), path)
}

func TestLoad_SkipsMissingBeforeExisting(t *testing.T) {
	path := writeConfig(t, "[mainConfig]\nport = 7001\n")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), path)
	require.NoError(t, err)
	assert.Equal(t, 7001, cfg.MainConfig.Port)
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
[mainConfig]
port = 8080
mode = "release"

[chatConfig]
defaultRoom = "lobby"
rooms = ["lobby", " dev ", ""]
historyLimit = 50

[persistenceConfig]
driver = "Redis"
timeout = "2s"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.MainConfig.Port)
	assert.True(t, cfg.IsRelease())
	assert.Equal(t, "lobby", cfg.ChatConfig.DefaultRoom)
	assert.Equal(t, []string{"lobby", "dev"}, cfg.ChatConfig.Rooms)
	assert.Equal(t, 50, cfg.ChatConfig.HistoryLimit)
	assert.Equal(t, "redis", cfg.PersistenceConfig.Driver)
	assert.Equal(t, 2*time.Second, cfg.PersistenceConfig.Timeout)
	// 文件未设置的字段保持默认值
	assert.Equal(t, 25, cfg.ChatConfig.PageSize)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[mainConfig]
port = 8080
`)
	t.Setenv("PORT", "9090")
	t.Setenv("NODE_ENV", "production")
	t.Setenv("CHAT_ROOMS", " a, b ,,c ")
	t.Setenv("DEFAULT_ROOM", "  ")
	t.Setenv("MESSAGE_HISTORY_LIMIT", "10")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.MainConfig.Port)
	assert.Equal(t, "release", cfg.MainConfig.Mode)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.ChatConfig.Rooms)
	assert.Equal(t, "general", cfg.ChatConfig.DefaultRoom)
	assert.Equal(t, 10, cfg.ChatConfig.HistoryLimit)
	assert.Equal(t, "mongo", cfg.PersistenceConfig.Driver)
	assert.True(t, cfg.KafkaConfig.Enabled)
}

func TestLoad_InvalidEnvironmentValue(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestSplitRooms(t *testing.T) {
	assert.Equal(t, []string{"x", "y"}, SplitRooms("x, ,y,"))
	assert.Empty(t, SplitRooms(" , "))
}
