package providers

import (
	"os"
	"path/filepath"
	"rld/internal/structures"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
webServer:
  host: 127.0.0.1
  port: 18090
persistence:
  enabled: true
  filePath: /tmp/rld.dat
  saveInterval: 30s
logger:
  level: info
  mode: 420
  dir: /tmp
store:
  backend: memory
  size: 16
rewards:
  mode: instant
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestNewConfigProvider_LoadsYAMLWithDefaults(t *testing.T) {
	path := writeConfig(t, testConfigYAML)

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path, DebugMode: true})
	require.NoError(t, err)

	assert.Equal(t, "RewardLedgerDaemon", conf.AppName)
	assert.True(t, conf.Debug)
	assert.Equal(t, 18090, conf.WebServer.Port)
	assert.Equal(t, 30*time.Second, conf.Persistence.SaveInterval)
	assert.Equal(t, "instant", conf.Rewards.Mode)
	assert.Equal(t, 10, conf.Rewards.DailyQuota)
	assert.Equal(t, 7*24*time.Hour, conf.Ledger.CounterWindow)
	assert.Equal(t, 50, conf.Ledger.HistoryLimit)
	assert.True(t, conf.Ledger.FailOpen)
}

func TestNewConfigProvider_EnvOverride(t *testing.T) {
	path := writeConfig(t, testConfigYAML)
	t.Setenv("RLD_REWARD_MODE", "staked")
	t.Setenv("RLD_ADMIN_KEY", "secret")

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, "staked", conf.Rewards.Mode)
	assert.Equal(t, "secret", conf.Admin.Key)
}

func TestNewConfigProvider_MissingFile(t *testing.T) {
	_, err := NewConfigProvider(&structures.CliFlags{ConfigPath: filepath.Join(t.TempDir(), "none.yml")})
	assert.Error(t, err)
}

func TestNewConfigProvider_InvalidConfig(t *testing.T) {
	path := writeConfig(t, `
webServer:
  host: ""
  port: 0
`)
	_, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path})
	assert.Error(t, err)
}
