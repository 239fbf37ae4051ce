package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wconnect/internal/relay"
	"wconnect/internal/store"
)

func loadFrom(t *testing.T, home string) Config {
	t.Helper()
	v := viper.New()
	SetDefaults(v, home)
	BindEnv(v)
	cfg, err := LoadConfig(v)
	require.NoError(t, err)
	return cfg
}

func TestLoadConfigDefaults(t *testing.T) {
	home := t.TempDir()
	cfg := loadFrom(t, home)

	assert.Equal(t, home, cfg.Home)
	assert.Equal(t, DefaultBridge, cfg.Bridge)
	assert.Equal(t, store.DefaultStorageKey, cfg.StorageID)
	assert.Equal(t, 5*time.Minute, cfg.CallTimeout)
	assert.Equal(t, DefaultProbeInterval, cfg.ProbeInterval)
	assert.Equal(t, relay.DefaultBackoff(), cfg.Backoff)
	assert.Equal(t, "wconnect", cfg.Client.Name)
	assert.Empty(t, cfg.Push.URL)
	assert.False(t, cfg.Ephemeral)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("WCONNECT_BRIDGE", "https://env.bridge.test")
	t.Setenv("WCONNECT_CALL_TIMEOUT", "30s")
	t.Setenv("WCONNECT_CLIENT_NAME", "from-env")
	t.Setenv("WCONNECT_EPHEMERAL", "true")

	cfg := loadFrom(t, t.TempDir())
	assert.Equal(t, "https://env.bridge.test", cfg.Bridge)
	assert.Equal(t, 30*time.Second, cfg.CallTimeout)
	assert.Equal(t, "from-env", cfg.Client.Name)
	assert.True(t, cfg.Ephemeral)
}

func TestLoadConfigReadsFile(t *testing.T) {
	home := t.TempDir()
	body := `bridge = "https://file.bridge.test"
call_timeout = "2m"

[client]
name = "Dapp"
icons = ["https://dapp.test/icon.png"]

[backoff]
initial_delay = "250ms"
multiplier = 3.0
max_delay = "10s"
`
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.toml"), []byte(body), 0o600))

	cfg := loadFrom(t, home)
	assert.Equal(t, "https://file.bridge.test", cfg.Bridge)
	assert.Equal(t, 2*time.Minute, cfg.CallTimeout)
	assert.Equal(t, "Dapp", cfg.Client.Name)
	assert.Equal(t, []string{"https://dapp.test/icon.png"}, cfg.Client.Icons)
	assert.Equal(t, 250*time.Millisecond, cfg.Backoff.InitialDelay)
	assert.Equal(t, 3.0, cfg.Backoff.Multiplier)
	assert.Equal(t, 10*time.Second, cfg.Backoff.MaxDelay)
	assert.Equal(t, DefaultProbeInterval, cfg.ProbeInterval, "keys missing from the file keep defaults")
}

func TestLoadConfigRejectsBrokenFile(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.toml"), []byte("bridge = ["), 0o600))

	v := viper.New()
	SetDefaults(v, home)
	_, err := LoadConfig(v)
	require.Error(t, err)
}

func TestWriteConfigRoundTrip(t *testing.T) {
	home := t.TempDir()
	cfg := loadFrom(t, home)
	cfg.Bridge = "https://written.bridge.test"
	cfg.Passphrase = "hunter2"
	cfg.CallTimeout = 90 * time.Second
	cfg.SigningMethods = []string{"eth_signTypedData_v4"}
	cfg.Push = PushConfig{URL: "https://push.test", Type: "fcm", Token: "tok"}

	path, err := WriteConfig(cfg, false)
	require.NoError(t, err)
	assert.Equal(t, ConfigPath(home), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hunter2")

	got := loadFrom(t, home)
	assert.Equal(t, cfg.Bridge, got.Bridge)
	assert.Equal(t, cfg.CallTimeout, got.CallTimeout)
	assert.Equal(t, cfg.SigningMethods, got.SigningMethods)
	assert.Equal(t, cfg.Push, got.Push)
	assert.Equal(t, cfg.Backoff, got.Backoff)
	assert.Empty(t, got.Passphrase)

	_, err = WriteConfig(cfg, false)
	require.Error(t, err, "existing file is kept without force")
	_, err = WriteConfig(cfg, true)
	require.NoError(t, err)
}
