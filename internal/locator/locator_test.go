package locator

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missing(name string) Source {
	return Source{Name: name, Lookup: func() (string, error) { return "", os.ErrNotExist }}
}

func writeTool(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0755))
	return path
}

func TestFind_FirstExistingWins(t *testing.T) {
	first := writeTool(t, "WinRAR.exe")
	second := writeTool(t, "Rar.exe")

	loc := NewWithSources(missing("primary key"), Fixed(first), Fixed(second))

	got, err := loc.Find()
	require.NoError(t, err)
	assert.Equal(t, first, got)
}

func TestFind_SkipsStalePaths(t *testing.T) {
	stale := filepath.Join(t.TempDir(), "uninstalled", "WinRAR.exe")
	installed := writeTool(t, "WinRAR.exe")

	got, err := NewWithSources(Fixed(stale), Fixed(installed)).Find()
	require.NoError(t, err)
	assert.Equal(t, installed, got)
}

func TestFind_SkipsDirectories(t *testing.T) {
	dir := t.TempDir()

	_, err := NewWithSources(Fixed(dir)).Find()
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestFind_NotFound(t *testing.T) {
	loc := NewWithSources(missing("a"), missing("b"))

	_, err := loc.Find()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrToolNotFound))
	assert.Contains(t, err.Error(), "a:")
	assert.Contains(t, err.Error(), "b:")
}

func TestFind_NoSources(t *testing.T) {
	_, err := NewWithSources().Find()
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestNew_OverrideFirst(t *testing.T) {
	tool := writeTool(t, "custom-rar")

	loc := New(tool)
	require.NotEmpty(t, loc.Sources())
	assert.Equal(t, "configured path", loc.Sources()[0].Name)
	assert.Len(t, loc.Sources(), len(PlatformSources())+1)

	got, err := loc.Find()
	require.NoError(t, err)
	assert.Equal(t, tool, got)
}
