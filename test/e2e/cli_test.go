package e2e_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary before all E2E tests.
	tmp, err := os.MkdirTemp("", "ethereal-e2e-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmp)

	binaryPath = filepath.Join(tmp, "ethereal")
	// Build from the module root (two levels up from test/e2e/).
	moduleRoot, err := filepath.Abs(filepath.Join("..", ".."))
	if err != nil {
		panic(err)
	}
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Dir = moduleRoot
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("build failed: " + string(out))
	}

	os.Exit(m.Run())
}

func runCLI(t *testing.T, configDir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(),
		"ETHEREAL_CONFIG_DIR="+configDir,
		// Keep the keychain out of the loop.
		"ETHEREAL_ETHERSCAN_KEY=e2e-test-key",
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func TestVersionFlag(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "ethereal")
	assert.Contains(t, out, "1.0.0")
}

func TestHelpCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "ethereal")
	assert.Contains(t, strings.ToLower(out), "block")
	assert.Contains(t, strings.ToLower(out), "abi")
	assert.Contains(t, strings.ToLower(out), "events")
	assert.Contains(t, strings.ToLower(out), "network")
	assert.Contains(t, strings.ToLower(out), "cache")
}

func TestNetworkList(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "network", "list")
	require.NoError(t, err)

	chains := []string{"ethereum", "base", "polygon", "arbitrum", "optimism", "gnosis"}
	for _, c := range chains {
		assert.Contains(t, strings.ToLower(out), c, "network list should contain %s", c)
	}
}

func TestNetworkUse(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "network", "use", "base")
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(out), "base")

	cfgOut, err := runCLI(t, dir, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, cfgOut, "base")
}

func TestNetworkUseUnknown(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "network", "use", "unknownchain99")
	assert.Error(t, err)
}

func TestConfigList(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "default_network")
	assert.Contains(t, out, "cache_enabled")
}

func TestConfigSetDefaultNetwork(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "config", "set-default-network", "polygon")
	require.NoError(t, err)

	out, _ := runCLI(t, dir, "config", "list")
	assert.Contains(t, out, "polygon")
}

func TestConfigSetAndRemoveRPC(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "config", "set-rpc", "base", "https://custom.rpc.url")
	require.NoError(t, err)

	out, _ := runCLI(t, dir, "config", "list")
	assert.Contains(t, out, "custom.rpc.url")

	_, err = runCLI(t, dir, "config", "remove-rpc", "base", "https://custom.rpc.url")
	require.NoError(t, err)

	out, _ = runCLI(t, dir, "config", "list")
	assert.NotContains(t, out, "custom.rpc.url")
}

func TestCacheClear(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "0 cached entries")
}

func TestBlockInvalidDate(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "block", "not-a-date")
	assert.Error(t, err)
}

func TestBlockInvalidClosest(t *testing.T) {
	dir := t.TempDir()
	out, _ := runCLI(t, dir, "block", "2024-01-01", "--closest", "nearest")
	assert.Contains(t, out, "invalid --closest")
}

func TestEventsInvalidAddress(t *testing.T) {
	dir := t.TempDir()
	out, _ := runCLI(t, dir, "events", "not-an-address")
	assert.Contains(t, out, "invalid address")
}

func TestEventsQueryRequiresRange(t *testing.T) {
	dir := t.TempDir()
	out, _ := runCLI(t, dir, "events", "query", "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", "Transfer")
	assert.Contains(t, out, "--from and --to")
}

func TestUnknownCommandShowsError(t *testing.T) {
	dir := t.TempDir()
	out, _ := runCLI(t, dir, "unknowncommand")
	assert.Contains(t, strings.ToLower(out), "unknown command")
}

func TestBlockHelpShowsClosestFlag(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "block", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "--closest")
	assert.Contains(t, out, "--network")
}
