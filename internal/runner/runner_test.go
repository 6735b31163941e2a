package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// TestHelperProcess stands in for the extraction tool. It only runs when
// invoked as a child by helperArgs.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "no mode")
		os.Exit(7)
	}
	mode, rest := args[1], args[2:]

	switch mode {
	case "ok":
		fmt.Fprintln(os.Stdout, "Extracting from photos.rar")
		fmt.Fprintln(os.Stderr, "warning: timestamps not restored")
		fmt.Fprint(os.Stdout, "\r\n\r\nAll OK\n")
		os.Exit(0)
	case "progress":
		fmt.Fprint(os.Stdout, "Extracting  a.jpg      5%\b\b\b\b 60%\b\b\b\b  OK \r\n")
		fmt.Fprint(os.Stdout, "Extracting  b.jpg     42%\r")
		fmt.Fprint(os.Stdout, "Extracting  b.jpg    100%")
		os.Exit(0)
	case "partial":
		// Creates the destination, then fails halfway.
		dest := rest[0]
		_ = os.MkdirAll(filepath.Join(dest, "sub"), 0755)
		_ = os.WriteFile(filepath.Join(dest, "sub", "half.bin"), []byte("xx"), 0644)
		fmt.Fprintln(os.Stdout, "Extracting half.bin")
		fmt.Fprintln(os.Stderr, "ERROR: CRC failed in half.bin")
		os.Exit(3)
	case "badpw":
		fmt.Fprintln(os.Stdout, "Incorrect password for photos.rar")
		os.Exit(ExitCodeBadPassword)
	case "badpw-text":
		fmt.Fprintln(os.Stderr, "The specified password is incorrect.")
		os.Exit(2)
	case "flood":
		for i := 0; i < 20000; i++ {
			fmt.Fprintf(os.Stdout, "Extracting file-%05d.txt OK\n", i)
		}
		os.Exit(0)
	case "longline":
		fmt.Fprint(os.Stdout, strings.Repeat("a", 2*maxLineSize))
		fmt.Fprint(os.Stdout, "\nAll OK\n")
		os.Exit(0)
	case "hang":
		fmt.Fprintln(os.Stdout, "Extracting from photos.rar")
		time.Sleep(time.Minute)
		os.Exit(0)
	case "args":
		for _, a := range rest {
			fmt.Fprintln(os.Stdout, a)
		}
		os.Exit(0)
	}
	os.Exit(7)
}

func helperArgs(t *testing.T, mode string, extra ...string) (string, []string) {
	t.Helper()
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")
	return os.Args[0], append([]string{"-test.run=TestHelperProcess", "--", mode}, extra...)
}

func collect(lines *[]string) func(string) {
	return func(line string) { *lines = append(*lines, line) }
}

func TestRun_StreamsMergedOutput(t *testing.T) {
	tool, args := helperArgs(t, "ok")

	var lines []string
	err := New(nil).Run(context.Background(), tool, args, "", collect(&lines))
	require.NoError(t, err)

	want := []string{
		"Extracting from photos.rar",
		"warning: timestamps not restored",
		"All OK",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_CarriageReturnsAndBackspaces(t *testing.T) {
	tool, args := helperArgs(t, "progress")

	var lines []string
	require.NoError(t, New(nil).Run(context.Background(), tool, args, "", collect(&lines)))

	want := []string{
		"Extracting  a.jpg      OK",
		"Extracting  b.jpg     42%",
		"Extracting  b.jpg    100%",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_FailureRemovesOutputFolder(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "photos")
	tool, args := helperArgs(t, "partial", dest)

	var lines []string
	err := New(nil).Run(context.Background(), tool, args, dest, collect(&lines))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtractionFailed)
	assert.False(t, errors.Is(err, ErrWrongPassword))

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, "ERROR: CRC failed in half.bin", exitErr.LastLine)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "output folder should be removed, stat err = %v", statErr)
	assert.Len(t, lines, 2)
}

func TestRun_FailureWithoutOutputFolder(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "never-created")
	tool, args := helperArgs(t, "badpw")

	err := New(nil).Run(context.Background(), tool, args, dest, nil)
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestRun_WrongPassword(t *testing.T) {
	for _, mode := range []string{"badpw", "badpw-text"} {
		t.Run(mode, func(t *testing.T) {
			tool, args := helperArgs(t, mode)

			err := New(nil).Run(context.Background(), tool, args, "", nil)
			assert.ErrorIs(t, err, ErrExtractionFailed)
			assert.ErrorIs(t, err, ErrWrongPassword)
			assert.Contains(t, err.Error(), "incorrect password")
		})
	}
}

func TestRun_LargeOutputDoesNotBlock(t *testing.T) {
	tool, args := helperArgs(t, "flood")

	count := 0
	err := New(nil).Run(context.Background(), tool, args, "", func(string) { count++ })
	require.NoError(t, err)
	assert.Equal(t, 20000, count)
}

func TestRun_OverlongLineKeepsOutput(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "photos")
	require.NoError(t, os.MkdirAll(dest, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "a.jpg"), []byte("jpeg"), 0644))
	tool, args := helperArgs(t, "longline")

	err := New(nil).Run(context.Background(), tool, args, dest, nil)
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(dest, "a.jpg"))
	assert.NoError(t, statErr, "a clean exit must keep the output folder")
}

func TestRun_Cancelled(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "photos")
	require.NoError(t, os.MkdirAll(dest, 0755))
	tool, args := helperArgs(t, "hang")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := New(nil).Run(ctx, tool, args, dest, func(string) { cancel() })

	assert.ErrorIs(t, err, ErrExtractionFailed)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, ErrWrongPassword))

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.True(t, exitErr.Cancelled)
	assert.Contains(t, err.Error(), "extraction cancelled")

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_PassesArgumentsUnchanged(t *testing.T) {
	sep := string(filepath.Separator)
	tool, args := helperArgs(t, "args", "x", "-pwith space", "photos.rar", "photos"+sep)

	var lines []string
	require.NoError(t, New(nil).Run(context.Background(), tool, args, "", collect(&lines)))

	want := []string{"x", "-pwith space", "photos.rar", "photos" + sep}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_MissingTool(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.MkdirAll(dest, 0755))

	err := New(nil).Run(context.Background(), filepath.Join(t.TempDir(), "no-such-tool"), nil, dest, nil)
	assert.ErrorIs(t, err, ErrExtractionFailed)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestScanLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a\nb\n", []string{"a", "b"}},
		{"a\r\nb", []string{"a", "", "b"}},
		{"10%\r20%\r30%", []string{"10%", "20%", "30%"}},
		{"", nil},
	}
	for _, tt := range tests {
		var got []string
		data := []byte(tt.in)
		for len(data) > 0 {
			adv, tok, err := scanLines(data, true)
			require.NoError(t, err)
			got = append(got, string(tok))
			data = data[adv:]
		}
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestApplyBackspaces(t *testing.T) {
	assert.Equal(t, "abc", applyBackspaces("abc"))
	assert.Equal(t, "ab", applyBackspaces("abc\b"))
	assert.Equal(t, "", applyBackspaces("\b\ba\b"))
	assert.Equal(t, "  OK", applyBackspaces(strings.Repeat("x", 4)+"\b\b\b\b  OK"))
}

func TestRedact(t *testing.T) {
	got := redact([]string{"x", "-phunter2", "-p", "a.rar"})
	assert.Equal(t, []string{"x", "-p***", "-p", "a.rar"}, got)
}
