package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvConfig, "")
	for _, k := range Keys {
		t.Setenv(EnvPrefix+"_"+strings.ToUpper(k), "")
		os.Unsetenv(EnvPrefix + "_" + strings.ToUpper(k))
	}
	return home
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".itermp"), c.TemplateDir)
	assert.Equal(t, "itermp.json", c.LocalConfig)
	assert.Equal(t, "iTerm2", c.Application)
	assert.Equal(t, "osascript", c.Osascript)
	assert.Zero(t, c.CommandTimeout)
	assert.Equal(t, 32, c.MaxDepth)
	assert.Equal(t, 256, c.MaxPanes)
	assert.False(t, c.Debug)
	assert.Empty(t, c.File)
}

func TestLoad_CompilerLimits(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "limits.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_depth: 64\nmax_panes: 0\n"), 0o644))
	t.Setenv("ITERMP_MAX_PANES", "1000")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, c.MaxDepth)
	assert.Equal(t, 1000, c.MaxPanes)
}

func TestLoad_DefaultFileLocation(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".config", "itermp")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("application: iTerm\ncommand_timeout: 3s\n"), 0o644))

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "iTerm", c.Application)
	assert.Equal(t, 3*time.Second, c.CommandTimeout)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), c.File)
}

func TestLoad_ExplicitFileAndEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("template_dir: ~/layouts\ndebug: true\n"), 0o644))
	t.Setenv("ITERMP_LOCAL_CONFIG", "layout.json")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(os.Getenv("HOME"), "layouts"), c.TemplateDir)
	assert.Equal(t, "layout.json", c.LocalConfig)
	assert.True(t, c.Debug)
	assert.Equal(t, path, c.File)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	isolate(t)
	t.Setenv(EnvConfig, filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestWithDerivedDefaults(t *testing.T) {
	isolate(t)
	c := Config{LocalConfig: "a/b.json", CommandTimeout: -time.Second, MaxDepth: -1}.withDerivedDefaults()
	assert.Equal(t, 32, c.MaxDepth)
	assert.Equal(t, 256, c.MaxPanes)
	assert.Equal(t, "itermp.json", c.LocalConfig)
	assert.Equal(t, "iTerm2", c.Application)
	assert.Equal(t, "osascript", c.Osascript)
	assert.Zero(t, c.CommandTimeout)
	assert.NotEmpty(t, c.TemplateDir)
}

func TestRuntime(t *testing.T) {
	rt := Config{TemplateDir: "/h/.itermp", LocalConfig: "itermp.json"}.Runtime("/work")
	assert.Equal(t, "/work", rt.Cwd)
	assert.Equal(t, "/h/.itermp", rt.TemplateDir)
	assert.Equal(t, filepath.Join("/work", "itermp.json"), rt.LocalConfigPath())
}
