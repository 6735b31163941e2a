package console

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
)

const (
	// statusWidth is the widest description the status line shows.
	statusWidth = 60
	barWidth    = 30
)

// StatusLine shows the latest line of tool output in place.
//
// It starts as a spinner and turns into a 0 to 100 bar once the tool
// reports a percentage.
type StatusLine struct {
	w           io.Writer
	bar         *progressbar.ProgressBar
	determinate bool
}

// NewStatusLine creates a StatusLine that renders to w.
func NewStatusLine(w io.Writer) *StatusLine {
	return &StatusLine{
		w: w,
		bar: progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetWidth(barWidth),
			progressbar.OptionSetElapsedTime(false),
		),
	}
}

// Update replaces the status with line. When hasPercent is set, percent
// (0 to 1) drives the bar.
func (s *StatusLine) Update(line string, percent float64, hasPercent bool) {
	s.bar.Describe(fit(line, statusWidth))

	if !hasPercent {
		if s.determinate {
			_ = s.bar.Add(0)
		} else {
			_ = s.bar.Add(1)
		}
		return
	}

	if !s.determinate {
		s.determinate = true
		s.bar.ChangeMax(100)
	}
	_ = s.bar.Set(int(percent * 100))
}

// Done leaves the last status on screen and moves to a new line.
func (s *StatusLine) Done() {
	_ = s.bar.Exit()
	fmt.Fprintln(s.w)
}

// fit pads or truncates s to exactly n runes.
func fit(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return fmt.Sprintf("%-*s", n, s)
}
