// Package console renders extraction progress for a plain terminal.
//
// Leveled messages are printed one per line with a colored tag. Tool
// output is shown on a single status line that each new line replaces.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/gemini-extractor/internal/unlock"
)

var (
	infoTag    = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Render("[!]")
	successTag = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render("[✓]")
	warningTag = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Render("[!]")
	errorTag   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render("[✗]")
	verboseTag = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("[·]")
)

// Printer writes leveled messages and the live status line.
type Printer struct {
	out     io.Writer
	verbose bool

	mu     sync.Mutex
	status *StatusLine
}

// NewPrinter creates a Printer writing to out. Verbose events are dropped
// unless verbose is set.
func NewPrinter(out io.Writer, verbose bool) *Printer {
	return &Printer{out: out, verbose: verbose}
}

// Handle prints one manager event. It can be passed directly as the
// manager's progress callback.
func (p *Printer) Handle(event unlock.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if event.Level == unlock.LevelOutput {
		if p.status == nil {
			p.status = NewStatusLine(p.out)
		}
		p.status.Update(event.Message, event.Percent, event.HasPercent)
		return
	}

	var tag string
	switch event.Level {
	case unlock.LevelInfo:
		tag = infoTag
	case unlock.LevelSuccess:
		tag = successTag
	case unlock.LevelWarning:
		tag = warningTag
	case unlock.LevelError:
		tag = errorTag
	case unlock.LevelVerbose:
		if !p.verbose {
			return
		}
		tag = verboseTag
	}

	p.endStatus()
	fmt.Fprintf(p.out, "%s %s\n", tag, event.Message)
}

// Info prints an info message.
func (p *Printer) Info(format string, args ...any) {
	p.Handle(unlock.ProgressEvent{Message: fmt.Sprintf(format, args...), Level: unlock.LevelInfo})
}

// Error prints an error message.
func (p *Printer) Error(format string, args ...any) {
	p.Handle(unlock.ProgressEvent{Message: fmt.Sprintf(format, args...), Level: unlock.LevelError})
}

// Close ends a status line left open by the last tool output.
func (p *Printer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.endStatus()
}

func (p *Printer) endStatus() {
	if p.status != nil {
		p.status.Done()
		p.status = nil
	}
}

// WaitForKey prints a prompt to w and blocks until a line, or EOF, is
// read from r.
func WaitForKey(r io.Reader, w io.Writer) error {
	fmt.Fprint(w, "\nPress Enter to exit...")
	_, err := bufio.NewReader(r).ReadString('\n')
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
