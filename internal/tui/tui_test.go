package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/gemini-extractor/internal/config"
	"github.com/handiism/gemini-extractor/internal/model"
	"github.com/handiism/gemini-extractor/internal/unlock"
)

type stubLocator struct{}

func (stubLocator) Find() (string, error) { return "/usr/bin/rar", nil }

type stubInspector struct{}

func (stubInspector) RequiresPassword(context.Context, *model.Archive) (bool, error) {
	return false, nil
}

func (stubInspector) Comment(context.Context, *model.Archive) (string, error) { return "", nil }

type stubRunner struct{ lines []string }

func (r stubRunner) Run(_ context.Context, _ string, _ []string, _ string, onLine func(string)) error {
	for _, l := range r.lines {
		onLine(l)
	}
	return nil
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	m := NewModel(config.DefaultSettings(), nil, "")
	m.newManager = func(onProgress func(unlock.ProgressEvent)) *unlock.Manager {
		return unlock.NewManagerWith(unlock.Components{
			Locator:   stubLocator{},
			Inspector: stubInspector{},
			Runner:    stubRunner{lines: []string{"Extracting a.jpg  40%", "All OK"}},
		}, nil, onProgress)
	}
	t.Cleanup(m.cancel)
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func TestOutputEventsReplaceStatusLine(t *testing.T) {
	m := newTestModel(t)
	m.state = StateExtracting

	m, _ = update(t, m, ProgressMsg{Event: unlock.ProgressEvent{Level: unlock.LevelOutput, Message: "Extracting a.jpg  40%", Percent: 0.4, HasPercent: true}})
	m, _ = update(t, m, ProgressMsg{Event: unlock.ProgressEvent{Level: unlock.LevelOutput, Message: "Extracting b.jpg"}})

	assert.Equal(t, "Extracting b.jpg", m.status)
	assert.True(t, m.hasPercent)
	assert.InDelta(t, 0.4, m.percent, 1e-9)
	assert.Empty(t, m.logs, "tool output is not logged")

	view := m.View()
	assert.Contains(t, view, "Extracting b.jpg")
	assert.NotContains(t, view, "Extracting a.jpg")
}

func TestLogsAreCapped(t *testing.T) {
	m := newTestModel(t)
	m.state = StateExtracting

	for i := 0; i < maxLogs+5; i++ {
		m, _ = update(t, m, ProgressMsg{Event: unlock.ProgressEvent{Level: unlock.LevelWarning, Message: "warn"}})
	}
	assert.Len(t, m.logs, maxLogs)
}

func TestVerboseEventsFiltered(t *testing.T) {
	m := newTestModel(t)
	m.state = StateExtracting

	m, _ = update(t, m, ProgressMsg{Event: unlock.ProgressEvent{Level: unlock.LevelVerbose, Message: "debug"}})
	assert.Empty(t, m.logs)

	m.settings.Verbose = true
	m, _ = update(t, m, ProgressMsg{Event: unlock.ProgressEvent{Level: unlock.LevelVerbose, Message: "debug"}})
	assert.Len(t, m.logs, 1)
}

func TestInfoEventsSetStage(t *testing.T) {
	m := newTestModel(t)
	m.state = StateExtracting

	m, _ = update(t, m, ProgressMsg{Event: unlock.ProgressEvent{Level: unlock.LevelInfo, Message: "Checking if 'a.rar' requires a password..."}})
	assert.Equal(t, "Checking if 'a.rar' requires a password...", m.stage)
}

func TestDoneMessages(t *testing.T) {
	m := newTestModel(t)
	m.state = StateExtracting

	done, _ := update(t, m, DoneMsg{Result: unlock.Result{Outcome: unlock.OutcomeSkipped}})
	assert.Equal(t, StateComplete, done.state)
	assert.Contains(t, done.View(), "Skipped")

	cancelled, _ := update(t, m, DoneMsg{Result: unlock.Result{Outcome: unlock.OutcomeFailed, Cancelled: true}})
	assert.Contains(t, cancelled.View(), "Extraction cancelled")

	failed, _ := update(t, m, DoneMsg{Err: errors.New("corrupt rar header")})
	assert.Equal(t, StateError, failed.state)
	assert.Contains(t, failed.View(), "corrupt rar header")

	_, cmd := update(t, done, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestFullRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photos.zip")
	require.NoError(t, os.WriteFile(path, []byte("PK"), 0644))

	m := newTestModel(t)
	m, cmd := update(t, m, StartMsg{Path: path})
	require.Equal(t, StateExtracting, m.state)

	// The first batched command launches the extraction.
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	require.Nil(t, batch[0]())

	// Drain the extraction the way the runtime would.
	for m.state == StateExtracting {
		msg := m.waitForMsg()()
		require.NotNil(t, msg, "channel closed before DoneMsg")
		m, _ = update(t, m, msg)
	}

	assert.Equal(t, StateComplete, m.state)
	assert.Equal(t, unlock.OutcomeDone, m.result.Outcome)
	assert.Equal(t, "All OK", m.status)

	view := m.View()
	assert.Contains(t, view, "Extraction complete")
	assert.Contains(t, view, strings.TrimSuffix(path, ".zip"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello", 0))
	assert.Equal(t, "hello", truncate("hello", 10))
	assert.Equal(t, "hel…", truncate("hello", 4))
}
