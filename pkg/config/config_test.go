package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[ranker]
seed = 42
progress_every = 100

[lexicon]
cache_path = "/tmp/lexicon.bin"

[output]
mode = "last"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.Ranker.Seed)
	assert.Equal(t, 100, cfg.Ranker.ProgressEvery)
	assert.Equal(t, "/tmp/lexicon.bin", cfg.Lexicon.CachePath)
	assert.Equal(t, "last", cfg.Output.Mode)
}

func TestLoadConfigKeepsDefaultsForMissingKeys(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "[ranker]\nseed = 7\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Ranker.Seed)
	assert.Equal(t, 10, cfg.Ranker.ProgressEvery)
	assert.Equal(t, "lines", cfg.Output.Mode)
}

func TestLoadConfigPartialRecovery(t *testing.T) {
	path := writeConfig(t, `
[ranker]
seed = 3
progress_every = "often"

[output]
mode = "last"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), cfg.Ranker.Seed)
	assert.Equal(t, 10, cfg.Ranker.ProgressEvery)
	assert.Equal(t, "last", cfg.Output.Mode)
}

func TestLoadConfigGarbage(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "this is [not toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigNonPositiveProgress(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "[ranker]\nprogress_every = 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Ranker.ProgressEvery)
}

func TestInitConfigCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.FileExists(t, path)

	reloaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, reloaded)
}

func TestLoadConfigWithPriorityCustomPath(t *testing.T) {
	path := writeConfig(t, "[output]\nmode = \"last\"\n")

	cfg, used, err := LoadConfigWithPriority(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, "last", cfg.Output.Mode)
}

func TestGetActiveConfigPath(t *testing.T) {
	abs := GetActiveConfigPath("config.toml")
	assert.True(t, filepath.IsAbs(abs))
}
