package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, SourcePostgres, cfg.SnapshotSource)
	assert.Equal(t, 5, cfg.DefaultTopN)
	assert.Equal(t, 5, cfg.MaxSeeds)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("SNAPSHOT_SOURCE", "file")
	t.Setenv("DEFAULT_TOP_N", "10")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("CACHE_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, SourceFile, cfg.SnapshotSource)
	assert.Equal(t, 10, cfg.DefaultTopN)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.False(t, cfg.CacheEnabled)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bookshelf.yaml")
	require.NoError(t, os.WriteFile(path, []byte("snapshot_source: sqlite\nsqlite_path: /tmp/books.db\nmax_top_n: 20\n"), 0o600))
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, SourceSQLite, cfg.SnapshotSource)
	assert.Equal(t, "/tmp/books.db", cfg.SQLitePath)
	assert.Equal(t, 20, cfg.MaxTopN)
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.SnapshotSource = "pickle"
	cfg.DefaultTopN = 100
	cfg.MaxSeeds = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown snapshot_source")
	assert.Contains(t, err.Error(), "default_top_n")
	assert.Contains(t, err.Error(), "max_seeds")
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSOrigins: " https://a.example, ,https://b.example "}
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())
}
