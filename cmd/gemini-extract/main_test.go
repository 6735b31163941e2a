package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/gemini-extractor/internal/config"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out, &out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRequiresOneArgument(t *testing.T) {
	_, err := execute(t, "")
	assert.Error(t, err)

	_, err = execute(t, "", "a.zip", "b.zip")
	assert.Error(t, err)
}

func TestHandledFailuresExitCleanly(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.json")
	dir := t.TempDir()

	out, err := execute(t, "", "--config", cfg, "--no-wait", filepath.Join(dir, "missing.rar"))
	require.NoError(t, err)
	assert.Contains(t, out, "File not found")

	notes := filepath.Join(dir, "notes.7z")
	require.NoError(t, os.WriteFile(notes, []byte("x"), 0644))
	out, err = execute(t, "", "--config", cfg, "--no-wait", notes)
	require.NoError(t, err)
	assert.Contains(t, out, "Only .zip and .rar files are supported.")
}

func TestWaitsForEnter(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.json")

	out, err := execute(t, "\n", "--config", cfg, filepath.Join(t.TempDir(), "missing.zip"))
	require.NoError(t, err)
	assert.Contains(t, out, "Press Enter to exit...")
}

func TestMissingToolIsHandled(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.json")
	archive := filepath.Join(t.TempDir(), "photos.zip")
	require.NoError(t, os.WriteFile(archive, []byte("PK"), 0644))

	// A configured tool path that does not exist, and no PATH to fall back on.
	t.Setenv("PATH", "")
	out, err := execute(t, "", "--config", cfg, "--no-wait", "--tool", filepath.Join(t.TempDir(), "rar"), archive)
	require.NoError(t, err)
	assert.Contains(t, out, "WinRAR not found")
}

func TestLoadSettingsPrecedence(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("model: from-file\napi_key: file-key\n"), 0600))
	t.Setenv("GEMINI_MODEL", "from-env")

	settings, err := loadSettings(options{configPath: cfg})
	require.NoError(t, err)
	assert.Equal(t, "from-env", settings.Model)
	assert.Equal(t, "file-key", settings.APIKey)
	assert.True(t, settings.WaitForKey)

	settings, err = loadSettings(options{configPath: cfg, model: "from-flag", noWait: true, verbose: true})
	require.NoError(t, err)
	assert.Equal(t, "from-flag", settings.Model)
	assert.False(t, settings.WaitForKey)
	assert.True(t, settings.Verbose)
}

func TestConfigInit(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "sub", "config.json")

	out, err := execute(t, "", "--config", cfg, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+cfg)

	settings, err := config.Load(cfg)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultModel, settings.Model)

	_, err = execute(t, "", "--config", cfg, "config", "init")
	assert.Error(t, err, "refuses to overwrite")

	_, err = execute(t, "", "--config", cfg, "config", "init", "--force")
	assert.NoError(t, err)
}

func TestConfigPath(t *testing.T) {
	out, err := execute(t, "", "--config", "/tmp/x.yaml", "config", "path")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.yaml\n", out)
}
