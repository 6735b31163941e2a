package runner

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrExtractionFailed matches every failed tool run.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrWrongPassword matches runs the tool rejected for a bad password.
	ErrWrongPassword = errors.New("incorrect password")
)

// ExitCodeBadPassword is the rar family's exit code for a wrong password.
const ExitCodeBadPassword = 11

// maxLineSize bounds a single line of tool output.
const maxLineSize = 1 << 20

// pipeDrainDelay bounds how long Wait keeps reading output after the tool
// exits, in case a grandchild still holds the pipe open.
const pipeDrainDelay = 5 * time.Second

// ExitError describes a tool run that did not exit cleanly.
type ExitError struct {
	// Code is the process exit code, or -1 if it did not exit normally.
	Code int

	// LastLine is the last non-empty line of output, if any.
	LastLine string

	// WrongPassword is set when the tool rejected the password.
	WrongPassword bool

	// Cancelled is set when the run was stopped through its context.
	Cancelled bool

	err error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("extraction failed with exit code %d", e.Code)
	switch {
	case e.Cancelled:
		msg = "extraction cancelled"
	case e.WrongPassword:
		msg = "extraction failed: incorrect password"
	}
	if e.LastLine != "" {
		msg += ": " + e.LastLine
	}
	return msg
}

// Is reports whether target is ErrExtractionFailed, ErrWrongPassword for
// a password rejection, or context.Canceled for a cancelled run.
func (e *ExitError) Is(target error) bool {
	switch target {
	case ErrExtractionFailed:
		return true
	case ErrWrongPassword:
		return e.WrongPassword
	case context.Canceled:
		return e.Cancelled
	}
	return false
}

func (e *ExitError) Unwrap() error {
	return e.err
}

// Runner launches the extraction tool and streams its output.
//
// Runner keeps no state between runs; one child process is live at a time
// per call to Run.
type Runner struct {
	logger *zap.Logger
}

// New creates a Runner. A nil logger is replaced with a no-op logger.
func New(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger}
}

// Run executes tool with args and blocks until it exits.
//
// Each non-empty output line is passed to onLine, which may be nil. If the
// tool cannot be started or exits non-zero, outputFolder is removed and the
// returned error matches ErrExtractionFailed.
func (r *Runner) Run(ctx context.Context, tool string, args []string, outputFolder string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, tool, args...)
	cmd.WaitDelay = pipeDrainDelay

	// One writer for both streams makes exec share a single pipe, which
	// keeps stdout and stderr lines in the order the tool wrote them.
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	r.logger.Debug("starting extraction tool", zap.String("tool", tool), zap.Strings("args", redact(args)))

	if err := cmd.Start(); err != nil {
		pw.Close()
		pr.Close()
		r.removeOutput(outputFolder)
		return &ExitError{Code: -1, err: err, LastLine: err.Error()}
	}

	var (
		g         errgroup.Group
		lastLine  string
		badPasswd bool
	)
	g.Go(func() error {
		defer pr.Close()

		sc := bufio.NewScanner(pr)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		sc.Split(scanLines)
		for sc.Scan() {
			line := strings.TrimSpace(applyBackspaces(sc.Text()))
			if line == "" {
				continue
			}
			lastLine = line
			if isPasswordError(line) {
				badPasswd = true
			}
			if onLine != nil {
				onLine(line)
			}
		}
		if err := sc.Err(); err != nil {
			// Keep the pipe draining so the tool never sees a broken pipe.
			_, _ = io.Copy(io.Discard, pr)
			return err
		}
		return nil
	})

	waitErr := cmd.Wait()
	pw.Close()
	pumpErr := g.Wait()

	if pumpErr != nil {
		r.logger.Warn("lost part of the tool output", zap.Error(pumpErr))
	}

	code := -1
	var exitErr *exec.ExitError
	isExit := errors.As(waitErr, &exitErr)
	if isExit {
		code = exitErr.ExitCode()
	}
	cancelled := ctx.Err() != nil

	// Only a non-zero exit or a cancelled run counts as a failure. Output
	// copy errors after a clean exit do not.
	if waitErr == nil || (!isExit && !cancelled && cmd.ProcessState != nil && cmd.ProcessState.Success()) {
		if waitErr != nil {
			r.logger.Warn("tool exited cleanly but its output was cut short", zap.Error(waitErr))
		}
		return nil
	}
	if cancelled {
		waitErr = errors.Join(waitErr, ctx.Err())
	}

	r.logger.Debug("extraction tool failed",
		zap.Int("exit_code", code),
		zap.String("last_line", lastLine),
		zap.Error(waitErr))

	r.removeOutput(outputFolder)
	return &ExitError{
		Code:          code,
		LastLine:      lastLine,
		WrongPassword: !cancelled && (code == ExitCodeBadPassword || badPasswd),
		Cancelled:     cancelled,
		err:           waitErr,
	}
}

// removeOutput deletes a partially extracted folder. Errors are logged
// and otherwise ignored.
func (r *Runner) removeOutput(folder string) {
	if folder == "" {
		return
	}
	if _, err := os.Stat(folder); err != nil {
		return
	}
	if err := os.RemoveAll(folder); err != nil {
		r.logger.Warn("failed to remove partial output", zap.String("folder", folder), zap.Error(err))
		return
	}
	r.logger.Debug("removed partial output", zap.String("folder", folder))
}

// scanLines is a bufio.SplitFunc that ends lines at '\n' or '\r'.
func scanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// applyBackspaces erases one preceding rune per '\b'.
func applyBackspaces(s string) string {
	if !strings.ContainsRune(s, '\b') {
		return s
	}
	out := make([]rune, 0, len(s))
	for _, c := range s {
		if c == '\b' {
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
			continue
		}
		out = append(out, c)
	}
	return string(out)
}

var passwordErrors = []string{
	"incorrect password",
	"wrong password",
	"the specified password is incorrect",
}

func isPasswordError(line string) bool {
	lower := strings.ToLower(line)
	for _, p := range passwordErrors {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// redact hides password arguments from logs.
func redact(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if strings.HasPrefix(a, "-p") && len(a) > 2 {
			a = "-p***"
		}
		out[i] = a
	}
	return out
}
