package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/shoplist/internal/share"
	"github.com/idilsaglam/shoplist/internal/storage"
)

// clearEnv blanks every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	for _, k := range []string{"SHOPLIST_BACKEND", "SHOPLIST_DATA", "SHOPLIST_KEY",
		"SHOPLIST_EXPORT_DIR", "SHOPLIST_THEME", "SHOPLIST_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir()) // no stray .env
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, "shopping-list-data", cfg.Storage.Key)
	assert.Equal(t, "Simple List", cfg.Share.Title)
	assert.Equal(t, storage.DefaultKey, cfg.Storage.Key)
	assert.Equal(t, share.DefaultTitle, cfg.Share.Title)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "cfg", "config.yaml")

	cfg := Default()
	cfg.Storage.Backend = BackendSQLite
	cfg.Storage.Path = "/tmp/list.db"
	cfg.UI.Theme = "mono"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("share:\n  title: Weekend\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Weekend", cfg.Share.Title)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHOPLIST_BACKEND", "memory")
	t.Setenv("SHOPLIST_KEY", "groceries")
	t.Setenv("SHOPLIST_THEME", "neon")
	t.Setenv("SHOPLIST_EXPORT_DIR", "/exports")
	t.Setenv("SHOPLIST_LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, "groceries", cfg.Storage.Key)
	assert.Equal(t, "neon", cfg.UI.Theme)
	assert.Equal(t, "/exports", cfg.Export.Dir)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestDotEnvIsRead(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("SHOPLIST_THEME")
	require.NoError(t, os.WriteFile(".env", []byte("SHOPLIST_THEME=mono\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("SHOPLIST_THEME") })

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "mono", cfg.UI.Theme)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Storage.Backend = "redis"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Storage.Key = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Storage.Path = ""
	assert.Error(t, cfg.Validate())
	cfg.Storage.Backend = BackendMemory
	assert.NoError(t, cfg.Validate())
}

func TestBadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: [oops"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadLeavesValidationToCaller(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHOPLIST_BACKEND", "bogus")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "bogus", cfg.Storage.Backend)
	assert.Error(t, cfg.Validate())

	cfg.Storage.Backend = BackendMemory
	assert.NoError(t, cfg.Validate())
}
