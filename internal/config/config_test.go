package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "ethereum", cfg.DefaultNetwork)
	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, dir, cfg.Dir())
	assert.Equal(t, filepath.Join(dir, "cache"), cfg.CacheDir())
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)
	cfg.DefaultNetwork = "polygon"
	require.NoError(t, cfg.AddRPC("polygon", "https://rpc.example.org"))
	require.NoError(t, cfg.Save())

	reloaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "polygon", reloaded.DefaultNetwork)
	assert.Equal(t, []string{"https://rpc.example.org"}, reloaded.CustomRPCs["polygon"])
}

func TestAddRPCDuplicate(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cfg.AddRPC("ethereum", "https://a.example.org"))
	assert.Error(t, cfg.AddRPC("ethereum", "https://a.example.org"))
}

func TestRemoveRPC(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cfg.AddRPC("ethereum", "https://a.example.org"))
	require.NoError(t, cfg.RemoveRPC("ethereum", "https://a.example.org"))
	assert.Error(t, cfg.RemoveRPC("ethereum", "https://a.example.org"))
}

func TestRPCsPrecedence(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	builtin := []string{"https://builtin.example.org"}

	assert.Equal(t, builtin, cfg.RPCs("ethereum", builtin))

	require.NoError(t, cfg.AddRPC("ethereum", "https://custom.example.org"))
	got := cfg.RPCs("ethereum", builtin)
	require.Len(t, got, 2)
	assert.Equal(t, "https://custom.example.org", got[0], "custom RPCs come before built-ins")

	t.Setenv(EnvRPC, "https://override.example.org")
	assert.Equal(t, []string{"https://override.example.org"}, cfg.RPCs("ethereum", builtin))
}

func TestLoadFromEnvDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Dir())

	// The directory is created if missing.
	_, err = os.Stat(dir)
	assert.NoError(t, err)
}

func TestEtherscanKeyEnvOverride(t *testing.T) {
	t.Setenv(EnvEtherscanKey, "env-key")

	var ks Keystore // nil ring: keychain unavailable
	assert.Equal(t, "env-key", ks.EtherscanKey())
}
