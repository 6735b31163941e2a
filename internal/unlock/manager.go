package unlock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/handiism/gemini-extractor/internal/archive"
	"github.com/handiism/gemini-extractor/internal/config"
	"github.com/handiism/gemini-extractor/internal/llm"
	"github.com/handiism/gemini-extractor/internal/locator"
	"github.com/handiism/gemini-extractor/internal/model"
	"github.com/handiism/gemini-extractor/internal/runner"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
	LevelOutput
)

// ProgressEvent represents an extraction progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel

	// Percent is the tool's reported progress between 0 and 1. It is only
	// meaningful for LevelOutput events with HasPercent set.
	Percent    float64
	HasPercent bool
}

// Outcome is how an extraction run ended.
type Outcome int

const (
	OutcomeDone Outcome = iota
	OutcomeFailed
	OutcomeSkipped
	OutcomeAborted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDone:
		return "done"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeAborted:
		return "aborted"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Result summarizes one call to Extract.
type Result struct {
	Outcome Outcome

	// Archive is nil when the input path was rejected.
	Archive *model.Archive

	// Tool is the extraction tool used, if one was found.
	Tool string

	// Protected reports whether the archive requires a password.
	Protected bool

	// Password is the candidate returned by the model.
	Password string

	// WrongPassword is set when the tool rejected Password.
	WrongPassword bool

	// Cancelled is set when the tool run was interrupted.
	Cancelled bool

	// Err is the reason for any outcome other than OutcomeDone.
	Err error
}

// ToolLocator finds the extraction tool.
type ToolLocator interface {
	Find() (string, error)
}

// ArchiveInspector reads archive metadata without extracting it.
type ArchiveInspector interface {
	RequiresPassword(ctx context.Context, a *model.Archive) (bool, error)
	Comment(ctx context.Context, a *model.Archive) (string, error)
}

// PasswordExtractor finds a password in an archive comment.
type PasswordExtractor interface {
	ExtractPassword(ctx context.Context, comment string) (string, error)
}

// ToolRunner runs the extraction tool.
type ToolRunner interface {
	Run(ctx context.Context, tool string, args []string, outputFolder string, onLine func(string)) error
}

// Components are the collaborators a Manager drives.
type Components struct {
	Locator   ToolLocator
	Inspector ArchiveInspector
	Extractor PasswordExtractor
	Runner    ToolRunner
}

// Manager coordinates archive extraction.
//
// A Manager holds no per-run state, so Extract may be called repeatedly.
type Manager struct {
	locator   ToolLocator
	inspector ArchiveInspector
	extractor PasswordExtractor
	runner    ToolRunner

	logger     *zap.Logger
	onProgress func(ProgressEvent)
}

// NewManager creates a Manager wired to the real tool locator, archive
// inspector, Gemini client and tool runner.
func NewManager(settings *config.Settings, logger *zap.Logger, onProgress func(ProgressEvent)) *Manager {
	loc := locator.New(settings.ToolPath)
	run := runner.New(logger)
	return NewManagerWith(Components{
		Locator:   loc,
		Inspector: archive.NewInspector(archive.WithCommentFallback(archive.NewToolComment(loc.Find, run))),
		Extractor: llm.NewExtractor(llm.NewGeminiClient(settings.APIKey), settings.Model, logger),
		Runner:    run,
	}, logger, onProgress)
}

// NewManagerWith creates a Manager from explicit components.
func NewManagerWith(c Components, logger *zap.Logger, onProgress func(ProgressEvent)) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		locator:    c.Locator,
		inspector:  c.Inspector,
		extractor:  c.Extractor,
		runner:     c.Runner,
		logger:     logger,
		onProgress: onProgress,
	}
}

// Extract runs the whole flow for the archive at path.
//
// The returned error is non-nil only when the archive could not be
// inspected; it is also stored in Result.Err. All other problems are
// reported as events and reflected in Result.Outcome.
func (m *Manager) Extract(ctx context.Context, path string) (Result, error) {
	a, err := m.validate(path)
	if err != nil {
		return Result{Outcome: OutcomeAborted, Err: err}, nil
	}
	res := Result{Archive: a}

	tool, err := m.locator.Find()
	if err != nil {
		m.progress(ProgressEvent{Message: "WinRAR not found. Please install WinRAR.", Level: LevelError})
		m.progress(ProgressEvent{Message: err.Error(), Level: LevelVerbose})
		res.Outcome, res.Err = OutcomeAborted, err
		return res, nil
	}
	res.Tool = tool
	m.progress(ProgressEvent{Message: fmt.Sprintf("Using WinRAR from: %s", tool), Level: LevelInfo})

	m.progress(ProgressEvent{Message: fmt.Sprintf("Checking if '%s' requires a password...", a.Name), Level: LevelInfo})
	protected, err := m.inspector.RequiresPassword(ctx, a)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Failed to check password protection: %v", err), Level: LevelError})
		res.Outcome, res.Err = OutcomeAborted, err
		return res, err
	}
	res.Protected = protected

	if !protected {
		m.progress(ProgressEvent{Message: "No password required. Extracting directly...", Level: LevelInfo})
		m.run(ctx, &res, "")
		return res, nil
	}

	m.progress(ProgressEvent{Message: "Password protection detected. Reading comment...", Level: LevelInfo})
	password, err := m.findPassword(ctx, a)
	if err != nil {
		res.Outcome, res.Err = OutcomeSkipped, err
		return res, nil
	}
	res.Password = password

	m.progress(ProgressEvent{Message: fmt.Sprintf("Extracting '%s' with detected password...", a.Name), Level: LevelInfo})
	m.run(ctx, &res, password)
	return res, nil
}

// Reasons for skipping a protected archive.
var (
	ErrNoComment  = errors.New("archive has no comment")
	ErrNoPassword = errors.New("no password found in archive comment")
)

func (m *Manager) validate(path string) (*model.Archive, error) {
	info, err := os.Stat(path)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("File not found: %s", path), Level: LevelError})
		return nil, err
	}
	if info.IsDir() {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Not a file: %s", path), Level: LevelError})
		return nil, fmt.Errorf("%s is a directory", path)
	}

	a, err := model.NewArchive(path)
	if err != nil {
		m.progress(ProgressEvent{Message: "Only .zip and .rar files are supported.", Level: LevelError})
		return nil, err
	}
	return a, nil
}

// findPassword reads the comment of a and asks the extractor for a
// password. Every failure is reported here and means "skip".
func (m *Manager) findPassword(ctx context.Context, a *model.Archive) (string, error) {
	comment, err := m.inspector.Comment(ctx, a)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Failed to read archive comment: %v", err), Level: LevelError})
		return "", err
	}
	if strings.TrimSpace(comment) == "" {
		m.progress(ProgressEvent{Message: "No comment found, skipping extraction.", Level: LevelWarning})
		return "", ErrNoComment
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Archive comment: %q", comment), Level: LevelVerbose})

	password, err := m.extractor.ExtractPassword(ctx, comment)
	if err != nil {
		m.logger.Warn("password extraction failed", zap.Error(err))
		m.progress(ProgressEvent{Message: fmt.Sprintf("Password lookup failed: %v", err), Level: LevelError})
	} else if password == "" {
		m.progress(ProgressEvent{Message: "No password found in archive comment.", Level: LevelWarning})
		err = ErrNoPassword
	}
	if err != nil {
		m.progress(ProgressEvent{Message: "Password not detected, skipping extraction.", Level: LevelWarning})
		return "", err
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Password detected: %s", password), Level: LevelSuccess})
	return password, nil
}

// run invokes the tool and records the outcome in res.
func (m *Manager) run(ctx context.Context, res *Result, password string) {
	a := res.Archive
	args := model.ExtractArgs(a, password)

	err := m.runner.Run(ctx, res.Tool, args, a.OutputFolder, func(line string) {
		event := ProgressEvent{Message: line, Level: LevelOutput}
		event.Percent, event.HasPercent = model.ParsePercent(line)
		m.progress(event)
	})
	if err != nil {
		res.Outcome, res.Err = OutcomeFailed, err
		res.WrongPassword = errors.Is(err, runner.ErrWrongPassword)
		res.Cancelled = errors.Is(err, context.Canceled)
		switch {
		case res.Cancelled:
			m.progress(ProgressEvent{Message: "Extraction cancelled.", Level: LevelWarning})
		case res.WrongPassword:
			m.progress(ProgressEvent{Message: "Extraction failed: the detected password was rejected.", Level: LevelError})
		default:
			m.progress(ProgressEvent{Message: "Extraction failed.", Level: LevelError})
		}
		m.progress(ProgressEvent{Message: err.Error(), Level: LevelVerbose})
		return
	}

	res.Outcome = OutcomeDone
	if password == "" {
		m.progress(ProgressEvent{Message: "Extraction completed successfully (no password).", Level: LevelSuccess})
	} else {
		m.progress(ProgressEvent{Message: "Extraction completed successfully.", Level: LevelSuccess})
	}
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
